package domain

import "strings"

// Tone is the emotional tone detected in a message
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
	ToneAngry    Tone = "angry"
	ToneSad      Tone = "sad"
	ToneHappy    Tone = "happy"
	ToneConfused Tone = "confused"
	ToneExcited  Tone = "excited"
)

// AllTones lists every tone the classifier may return, in display order
var AllTones = []Tone{
	TonePositive, ToneNegative, ToneNeutral, ToneAngry,
	ToneSad, ToneHappy, ToneConfused, ToneExcited,
}

// Valid checks the tone is one of the known values
func (t Tone) Valid() bool {
	for _, v := range AllTones {
		if t == v {
			return true
		}
	}
	return false
}

// Title returns the tone with its first letter upper-cased
func (t Tone) Title() string {
	return capitalize(string(t))
}

// Urgency is the urgency classification of a message
type Urgency string

const (
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNotUrgent Urgency = "not urgent"
)

// Valid checks the urgency is one of the known values
func (u Urgency) Valid() bool {
	return u == UrgencyUrgent || u == UrgencyNotUrgent
}

// Title returns "Urgent" or "Not urgent"
func (u Urgency) Title() string {
	return capitalize(string(u))
}

// QuickReplyCount is the exact number of reply suggestions a result carries
const QuickReplyCount = 3

// ToneDetectionResult is a fully validated classification of one message.
// Instances are only produced by successful validation; a failed analysis
// yields an *AnalysisError instead.
type ToneDetectionResult struct {
	OriginalMessage string   `json:"original_message"`
	Tone            Tone     `json:"tone"`
	Explanation     string   `json:"explanation"`
	Urgency         Urgency  `json:"urgency"`
	Confidence      int      `json:"confidence"`
	QuickReplies    []string `json:"quick_replies"`
}

// IsUrgent checks if the message was classified as urgent
func (r *ToneDetectionResult) IsUrgent() bool {
	return r.Urgency == UrgencyUrgent
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
