package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
)

// Mock implementations

type mockToneRepo struct {
	detected   []string
	summarized [][]domain.Message
	result     *domain.ToneDetectionResult
	err        error
}

func (m *mockToneRepo) DetectTone(ctx context.Context, text string) (*domain.ToneDetectionResult, error) {
	m.detected = append(m.detected, text)
	if m.err != nil {
		return nil, m.err
	}
	r := *m.result
	r.OriginalMessage = text
	return &r, nil
}

func (m *mockToneRepo) TranslateToGreek(ctx context.Context, text string) (string, error) {
	return "GR:" + text, m.err
}

func (m *mockToneRepo) Summarize(ctx context.Context, messages []domain.Message) (string, error) {
	m.summarized = append(m.summarized, messages)
	return "summary", m.err
}

type mockChatRepo struct {
	history  []domain.Message
	messages map[string]domain.Message
	replies  map[string][]domain.Message
	err      error

	repliesAsked []string
}

func (m *mockChatRepo) PostEphemeral(ctx context.Context, channel, user, text string) error {
	return nil
}

func (m *mockChatRepo) PostToneResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) error {
	return nil
}

func (m *mockChatRepo) PostMessage(ctx context.Context, channel, text string) error {
	return nil
}

func (m *mockChatRepo) PostAnalyzePrompt(ctx context.Context, channel, messageTS string) error {
	return nil
}

func (m *mockChatRepo) GetChannelHistory(ctx context.Context, channel string, limit int) ([]domain.Message, error) {
	return m.history, m.err
}

func (m *mockChatRepo) GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	msg, ok := m.messages[ts]
	if !ok {
		return nil, &domain.PlatformError{Method: "conversations.history", Code: "message_not_found"}
	}
	return &msg, nil
}

func (m *mockChatRepo) GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error) {
	m.repliesAsked = append(m.repliesAsked, channel+"/"+threadTS)
	return m.replies[threadTS], m.err
}

type mockPreferenceRepo struct {
	prefs map[string]bool
}

func (m *mockPreferenceRepo) IsOptedIn(ctx context.Context, userID string) (bool, error) {
	return m.prefs[userID], nil
}

func (m *mockPreferenceRepo) SetOptIn(ctx context.Context, userID string, optedIn bool) error {
	m.prefs[userID] = optedIn
	return nil
}

var neutral = &domain.ToneDetectionResult{
	Tone:         domain.ToneNeutral,
	Urgency:      domain.UrgencyNotUrgent,
	Confidence:   90,
	QuickReplies: []string{"a", "b", "c"},
}

func TestLatestMessageFromOthers(t *testing.T) {
	chat := &mockChatRepo{history: []domain.Message{
		// deliberately out of order
		{TS: "1700000001.000000", User: "U2", Text: "older from U2"},
		{TS: "1700000005.000000", User: "U1", Text: "mine"},
		{TS: "1700000004.000000", User: "U3", SubType: "channel_join", Text: "joined"},
		{TS: "1700000003.000000", BotID: "B1", Text: "bot"},
		{TS: "1700000002.000000", User: "U4", Text: "latest from U4"},
		{TS: "1700000006.000000", Text: "no author"},
	}}
	uc := NewToneUsecase(&mockToneRepo{result: neutral}, chat)

	msg, err := uc.LatestMessageFromOthers(context.Background(), "C1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "latest from U4", msg.Text)
}

func TestLatestMessageFromOthers_None(t *testing.T) {
	chat := &mockChatRepo{history: []domain.Message{{TS: "1.0", User: "U1", Text: "only me"}}}
	uc := NewToneUsecase(&mockToneRepo{result: neutral}, chat)

	_, err := uc.LatestMessageFromOthers(context.Background(), "C1", "U1")
	assert.ErrorIs(t, err, ErrNoRecentMessage)
}

func TestAnalyzeLatest(t *testing.T) {
	tone := &mockToneRepo{result: neutral}
	chat := &mockChatRepo{history: []domain.Message{{TS: "1.0", User: "U2", Text: "ping"}}}
	uc := NewToneUsecase(tone, chat)

	result, err := uc.AnalyzeLatest(context.Background(), "C1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "ping", result.OriginalMessage)
	assert.Equal(t, []string{"ping"}, tone.detected)
}

func TestAnalyzeMessage(t *testing.T) {
	tone := &mockToneRepo{result: neutral}
	chat := &mockChatRepo{messages: map[string]domain.Message{"5.5": {TS: "5.5", User: "U2", Text: "hello?"}}}
	uc := NewToneUsecase(tone, chat)

	result, err := uc.AnalyzeMessage(context.Background(), "C1", "5.5")
	require.NoError(t, err)
	assert.Equal(t, "hello?", result.OriginalMessage)

	_, err = uc.AnalyzeMessage(context.Background(), "C1", "9.9")
	var pe *domain.PlatformError
	assert.ErrorAs(t, err, &pe)
}

func TestSummarizeThread(t *testing.T) {
	tone := &mockToneRepo{result: neutral}
	chat := &mockChatRepo{replies: map[string][]domain.Message{
		"1712345678.123456": {
			{User: "U1", Text: "parent"},
			{User: "", Text: "system"},
			{User: "U2", Text: ""},
			{User: "U3", Text: "reply"},
		},
	}}
	uc := NewToneUsecase(tone, chat)

	summary, err := uc.SummarizeThread(context.Background(), "<https://x.slack.com/archives/C9/p1712345678123456>")
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)
	assert.Equal(t, []string{"C9/1712345678.123456"}, chat.repliesAsked)
	require.Len(t, tone.summarized, 1)
	assert.Equal(t, []domain.Message{{User: "U1", Text: "parent"}, {User: "U3", Text: "reply"}}, tone.summarized[0])
}

func TestSummarizeThread_Errors(t *testing.T) {
	tone := &mockToneRepo{result: neutral}
	chat := &mockChatRepo{replies: map[string][]domain.Message{}}
	uc := NewToneUsecase(tone, chat)

	_, err := uc.SummarizeThread(context.Background(), "not a link")
	assert.ErrorIs(t, err, domain.ErrPatternMismatch)
	assert.Empty(t, chat.repliesAsked)

	_, err = uc.SummarizeThread(context.Background(), "/archives/C9/p1712345678123456")
	assert.ErrorIs(t, err, ErrEmptyThread)
	assert.Empty(t, tone.summarized)

	chat.err = errors.New("boom")
	_, err = uc.SummarizeThread(context.Background(), "/archives/C9/p1712345678123456")
	assert.Error(t, err)
}

func TestPreferenceUsecase(t *testing.T) {
	uc := NewPreferenceUsecase(&mockPreferenceRepo{prefs: map[string]bool{}})
	ctx := context.Background()

	in, _ := uc.IsOptedIn(ctx, "U1")
	assert.False(t, in)

	require.NoError(t, uc.OptIn(ctx, "U1"))
	in, _ = uc.IsOptedIn(ctx, "U1")
	assert.True(t, in)

	require.NoError(t, uc.OptOut(ctx, "U1"))
	in, _ = uc.IsOptedIn(ctx, "U1")
	assert.False(t, in)
}
