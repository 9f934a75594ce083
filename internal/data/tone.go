package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
	"github.com/DevRickLin/slack-tone-bot/internal/conf"
	"github.com/DevRickLin/slack-tone-bot/internal/infra/llm"
)

// Sampling settings for tone detection
const (
	toneMaxTokens   = 200
	toneTemperature = 0.4
	toneTopP        = 0.8
)

// ChatCompleter is the subset of the LLM client used by the tone repository
type ChatCompleter interface {
	Chat(ctx context.Context, systemPrompt, userMessage string, opts ...llm.Option) (string, error)
}

// toneRepo implements ToneRepo on top of an OpenAI-compatible model
type toneRepo struct {
	client  ChatCompleter
	prompts *conf.PromptsConfig
	logger  *zap.Logger
}

// NewToneRepo creates a new Tone repository
func NewToneRepo(client ChatCompleter, prompts *conf.PromptsConfig, logger *zap.Logger) repo.ToneRepo {
	if prompts == nil {
		prompts = conf.DefaultPromptsConfig()
	}
	return &toneRepo{
		client:  client,
		prompts: prompts,
		logger:  logger.Named("tone"),
	}
}

// DetectTone implements ToneRepo
func (r *toneRepo) DetectTone(ctx context.Context, text string) (*domain.ToneDetectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.AnalysisError{Kind: domain.ErrEmptyMessage}
	}

	raw, err := r.client.Chat(ctx, r.prompts.Tone.SystemInstruction, r.prompts.ToneMessage(text),
		llm.WithMaxTokens(toneMaxTokens),
		llm.WithSampling(toneTemperature, toneTopP),
		llm.WithJSONSchema("tone_detection", "Tone, urgency and reply suggestions for one chat message", toneSchema),
	)
	if err != nil {
		return nil, &domain.AnalysisError{Kind: domain.ErrTransportFailure, Err: err}
	}

	result, err := ParseToneResult(raw, text)
	if err != nil {
		r.logger.Warn("model output rejected", zap.Error(err), zap.String("raw", raw))
		return nil, err
	}
	return result, nil
}

// TranslateToGreek implements ToneRepo
func (r *toneRepo) TranslateToGreek(ctx context.Context, text string) (string, error) {
	out, err := r.client.Chat(ctx, "", r.prompts.TranslateMessage(text))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Summarize implements ToneRepo
func (r *toneRepo) Summarize(ctx context.Context, messages []domain.Message) (string, error) {
	out, err := r.client.Chat(ctx, "", r.prompts.SummarizeThread(FormatTranscript(messages)))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// FormatTranscript renders messages as "<user>: <text>" lines
func FormatTranscript(messages []domain.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		user := m.User
		if user == "" {
			user = "Someone"
		}
		sb.WriteString(user)
		sb.WriteString(": ")
		sb.WriteString(m.Text)
	}
	return sb.String()
}

var toneSchema = func() *jsonschema.Definition {
	tones := make([]string, len(domain.AllTones))
	for i, t := range domain.AllTones {
		tones[i] = string(t)
	}
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"original_message": {Type: jsonschema.String},
			"tone":             {Type: jsonschema.String, Enum: tones},
			"explanation":      {Type: jsonschema.String, Description: "At most two sentences"},
			"urgency":          {Type: jsonschema.String, Enum: []string{string(domain.UrgencyUrgent), string(domain.UrgencyNotUrgent)}},
			"confidence":       {Type: jsonschema.Integer, Description: "0-100"},
			"quick_replies": {
				Type:        jsonschema.Array,
				Items:       &jsonschema.Definition{Type: jsonschema.String},
				Description: "Exactly three replies",
			},
		},
		Required:             []string{"original_message", "tone", "explanation", "urgency", "confidence", "quick_replies"},
		AdditionalProperties: false,
	}
}()

// ParseToneResult validates raw model output into a result.
// original replaces whatever message the model echoed back.
func ParseToneResult(raw, original string) (*domain.ToneDetectionResult, error) {
	fields, ok := decodeObject(raw)
	if !ok {
		span, found := ExtractJSONObject(raw)
		if found {
			fields, ok = decodeObject(span)
		}
	}
	if !ok {
		return nil, &domain.AnalysisError{Kind: domain.ErrMalformedResponse, Raw: raw}
	}

	fail := func(kind domain.ErrorKind) (*domain.ToneDetectionResult, error) {
		return nil, &domain.AnalysisError{Kind: kind, Raw: raw}
	}

	tone, ok := fields["tone"].(string)
	if !ok || !domain.Tone(tone).Valid() {
		return fail(domain.ErrInvalidTone)
	}

	urgency, ok := fields["urgency"].(string)
	if !ok || !domain.Urgency(urgency).Valid() {
		return fail(domain.ErrInvalidUrgency)
	}

	confidence, ok := coerceConfidence(fields["confidence"])
	if !ok {
		return fail(domain.ErrInvalidConfidence)
	}

	replies, ok := coerceQuickReplies(fields["quick_replies"])
	if !ok {
		return fail(domain.ErrInvalidQuickReplies)
	}

	explanation, ok := fields["explanation"].(string)
	if !ok {
		return fail(domain.ErrMalformedResponse)
	}

	return &domain.ToneDetectionResult{
		OriginalMessage: original,
		Tone:            domain.Tone(tone),
		Explanation:     explanation,
		Urgency:         domain.Urgency(urgency),
		Confidence:      confidence,
		QuickReplies:    replies,
	}, nil
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(s)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	// trailing garbage means the text was not a single object
	if dec.More() {
		return nil, false
	}
	return fields, true
}

func coerceConfidence(v any) (int, bool) {
	var n int64
	switch c := v.(type) {
	case json.Number:
		if i, err := c.Int64(); err == nil {
			n = i
		} else {
			f, err := c.Float64()
			if err != nil || f != math.Trunc(f) {
				return 0, false
			}
			n = int64(f)
		}
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(c), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < 0 || n > 100 {
		return 0, false
	}
	return int(n), true
}

func coerceQuickReplies(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok || len(items) != domain.QuickReplyCount {
		return nil, false
	}
	replies := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		replies = append(replies, s)
	}
	return replies, true
}

// ExtractJSONObject returns the first balanced {...} span in s.
// Braces inside JSON strings are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	b := []byte(s)
	for i := start; i < len(b); i++ {
		c := b[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(bytes.TrimSpace(b[start : i+1])), true
			}
		}
	}
	return "", false
}
