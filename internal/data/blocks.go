package data

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
)

// Action ids carried by interactive buttons
const (
	ActionAnalyzeMessage   = "analyze_message"
	ActionTranslateToGreek = "translate_to_greek"
	ActionQuickReplyPrefix = "quick_reply_"
)

const (
	// ToneResultFallback is the notification text of a rendered tone result
	ToneResultFallback = "Detected tone and quick replies"

	maxButtonLabel = 75   // platform limit for button text
	maxButtonValue = 2000 // platform limit for button values

	fallbackEmoji = "😖"
)

var toneEmojis = map[domain.Tone]string{
	domain.TonePositive: "😊",
	domain.ToneNegative: "😞",
	domain.ToneNeutral:  "😐",
	domain.ToneAngry:    "😠",
	domain.ToneSad:      "😢",
	domain.ToneHappy:    "😃",
	domain.ToneConfused: "😕",
	domain.ToneExcited:  "🤩",
}

// ToneEmoji returns the emoji shown next to a tone
func ToneEmoji(t domain.Tone) string {
	if e, ok := toneEmojis[t]; ok {
		return e
	}
	return fallbackEmoji
}

// RenderToneResult builds the Block Kit layout for a tone result:
// summary section, divider, quick replies header, then the action buttons.
func RenderToneResult(r *domain.ToneDetectionResult) []slack.Block {
	summary := fmt.Sprintf("%s *Detected Tone:* %s\n*Original Message:* %s\n*Why:* %s\n*Urgency:* %s\n*Confidence:* %d%%",
		ToneEmoji(r.Tone), r.Tone.Title(), r.OriginalMessage, r.Explanation, r.Urgency.Title(), r.Confidence)

	var buttons []slack.BlockElement
	for i, reply := range r.QuickReplies {
		if strings.TrimSpace(reply) == "" || utf8.RuneCountInString(reply) > maxButtonLabel {
			continue
		}
		buttons = append(buttons, slack.NewButtonBlockElement(
			ActionQuickReplyPrefix+strconv.Itoa(i),
			reply,
			slack.NewTextBlockObject(slack.PlainTextType, reply, true, false),
		))
	}

	header := "*Quick Replies:*"
	if len(buttons) == 0 {
		header = "_No quick replies available._"
	}

	buttons = append(buttons, slack.NewButtonBlockElement(
		ActionTranslateToGreek,
		truncateRunes(r.OriginalMessage, maxButtonValue),
		slack.NewTextBlockObject(slack.PlainTextType, "🇬🇷 Translate to Greek", true, false),
	))

	return []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, summary, false, false), nil, nil),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, header, false, false), nil, nil),
		slack.NewActionBlock("", buttons...),
	}
}

// RenderAnalyzePrompt builds the in-thread "Analyze this message" button.
// The button value carries the ts of the message to analyze.
func RenderAnalyzePrompt(messageTS string) []slack.Block {
	button := slack.NewButtonBlockElement(
		ActionAnalyzeMessage,
		messageTS,
		slack.NewTextBlockObject(slack.PlainTextType, "Analyze this message", false, false),
	)
	return []slack.Block{slack.NewActionBlock("", button)}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
