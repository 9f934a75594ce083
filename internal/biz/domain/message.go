package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Message represents a channel message as seen by the bot
type Message struct {
	TS       string
	ThreadTS string // empty for top-level messages
	Channel  string
	User     string
	Text     string
	SubType  string // message_changed, bot_message, channel_join, etc.
	BotID    string
}

// IsThreadReply reports whether the message was posted inside an existing thread
func (m *Message) IsThreadReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

// IsFromHuman checks the message has a human author and is a plain message
func (m *Message) IsFromHuman() bool {
	return m.User != "" && m.SubType == "" && m.BotID == ""
}

// Time converts the platform timestamp to a time.Time.
// Returns the zero time if the timestamp is malformed.
func (m *Message) Time() time.Time {
	secs, frac, _ := strings.Cut(m.TS, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}
	}
	var us int64
	if frac != "" {
		us, _ = strconv.ParseInt(frac, 10, 64)
	}
	return time.Unix(s, us*int64(time.Microsecond))
}

// ErrPatternMismatch is returned when text does not contain a thread permalink
var ErrPatternMismatch = errors.New("no thread permalink found")

var permalinkPattern = regexp.MustCompile(`/archives/([A-Za-z0-9]+)/p(\d{10})(\d{6})(?:\D|$)`)

// Permalink identifies a message by channel and timestamp
type Permalink struct {
	Channel string
	TS      string
}

// ParsePermalink extracts the channel id and message ts from the first
// `/archives/<CHANNEL>/p<16 digits>` occurrence in text.
// The 16 digits map to a ts of the form "<10 digits>.<6 digits>".
func ParsePermalink(text string) (Permalink, error) {
	m := permalinkPattern.FindStringSubmatch(text)
	if m == nil {
		return Permalink{}, ErrPatternMismatch
	}
	return Permalink{Channel: m[1], TS: m[2] + "." + m[3]}, nil
}
