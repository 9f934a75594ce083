package service

import (
	"context"
	"sync"
	"time"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
)

// Mock implementations

type post struct {
	kind    string // ephemeral, result, message, prompt
	channel string
	user    string
	text    string
	result  *domain.ToneDetectionResult
}

type mockChatRepo struct {
	mu       sync.Mutex
	posts    []post
	history  []domain.Message
	messages map[string]domain.Message
	replies  []domain.Message
	postErr  error

	historyErr error
}

func (m *mockChatRepo) record(p post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, p)
	return m.postErr
}

func (m *mockChatRepo) PostEphemeral(ctx context.Context, channel, user, text string) error {
	return m.record(post{kind: "ephemeral", channel: channel, user: user, text: text})
}

func (m *mockChatRepo) PostToneResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) error {
	return m.record(post{kind: "result", channel: channel, user: user, result: result})
}

func (m *mockChatRepo) PostMessage(ctx context.Context, channel, text string) error {
	return m.record(post{kind: "message", channel: channel, text: text})
}

func (m *mockChatRepo) PostAnalyzePrompt(ctx context.Context, channel, messageTS string) error {
	return m.record(post{kind: "prompt", channel: channel, text: messageTS})
}

func (m *mockChatRepo) GetChannelHistory(ctx context.Context, channel string, limit int) ([]domain.Message, error) {
	return m.history, m.historyErr
}

func (m *mockChatRepo) GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error) {
	msg, ok := m.messages[ts]
	if !ok {
		return nil, &domain.PlatformError{Method: "conversations.history", Code: "message_not_found"}
	}
	return &msg, nil
}

func (m *mockChatRepo) GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error) {
	return m.replies, nil
}

func (m *mockChatRepo) Posts() []post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]post(nil), m.posts...)
}

func (m *mockChatRepo) PostsOf(kind string) []post {
	var out []post
	for _, p := range m.Posts() {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

type mockToneRepo struct {
	mu       sync.Mutex
	urgency  domain.Urgency
	err      error
	detected []string
}

func (m *mockToneRepo) DetectTone(ctx context.Context, text string) (*domain.ToneDetectionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detected = append(m.detected, text)
	if m.err != nil {
		return nil, m.err
	}
	urgency := m.urgency
	if urgency == "" {
		urgency = domain.UrgencyNotUrgent
	}
	return &domain.ToneDetectionResult{
		OriginalMessage: text,
		Tone:            domain.ToneNeutral,
		Explanation:     "plain",
		Urgency:         urgency,
		Confidence:      80,
		QuickReplies:    []string{"a", "b", "c"},
	}, nil
}

func (m *mockToneRepo) TranslateToGreek(ctx context.Context, text string) (string, error) {
	return "GR " + text, m.err
}

func (m *mockToneRepo) Summarize(ctx context.Context, messages []domain.Message) (string, error) {
	return "summary of " + string(rune('0'+len(messages))), m.err
}

func (m *mockToneRepo) Detected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.detected...)
}

type mockPreferenceRepo struct {
	mu    sync.Mutex
	prefs map[string]bool
}

func (m *mockPreferenceRepo) IsOptedIn(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs[userID], nil
}

func (m *mockPreferenceRepo) SetOptIn(ctx context.Context, userID string, optedIn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = optedIn
	return nil
}

// fakeClock hands out timers that only fire when the test says so
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) After(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Timers() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}

// FireAll runs every timer that was not stopped, like the delay elapsing
func (c *fakeClock) FireAll() {
	for _, t := range c.Timers() {
		if !t.stopped {
			t.fn()
		}
	}
}
