package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
)

type stubToneRepo struct {
	err        error
	summarized []domain.Message
}

func (s *stubToneRepo) DetectTone(ctx context.Context, text string) (*domain.ToneDetectionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ToneDetectionResult{
		OriginalMessage: text,
		Tone:            domain.ToneConfused,
		Urgency:         domain.UrgencyUrgent,
		Confidence:      70,
		Explanation:     "asks twice",
		QuickReplies:    []string{"x", "y", "z"},
	}, nil
}

func (s *stubToneRepo) TranslateToGreek(ctx context.Context, text string) (string, error) {
	return "ελληνικά", s.err
}

func (s *stubToneRepo) Summarize(ctx context.Context, messages []domain.Message) (string, error) {
	s.summarized = messages
	return "- point", s.err
}

func connect(t *testing.T, srv *ToneMCPServer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	ss, err := srv.GetServer().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		raw, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return res
}

func TestListTools(t *testing.T) {
	cs := connect(t, NewServer(&stubToneRepo{}, nil, "test", zap.NewNop()))

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"detect_tone", "translate_to_greek", "summarize_conversation", "summarize_thread"}, names)
}

func TestDetectToneTool(t *testing.T) {
	cs := connect(t, NewServer(&stubToneRepo{}, nil, "test", zap.NewNop()))

	var out DetectToneOutput
	res := call(t, cs, "detect_tone", map[string]any{"message": "did you see my email?"}, &out)
	require.False(t, res.IsError)
	assert.Equal(t, "confused", out.Tone)
	assert.Equal(t, "urgent", out.Urgency)
	assert.Equal(t, 70, out.Confidence)
	assert.Equal(t, []string{"x", "y", "z"}, out.QuickReplies)
	assert.NotEmpty(t, out.Emoji)
}

func TestDetectToneTool_Error(t *testing.T) {
	repo := &stubToneRepo{err: &domain.AnalysisError{Kind: domain.ErrInvalidTone}}
	cs := connect(t, NewServer(repo, nil, "test", zap.NewNop()))

	res := call(t, cs, "detect_tone", map[string]any{"message": "hm"}, nil)
	assert.True(t, res.IsError)
}

func TestTranslateTool(t *testing.T) {
	cs := connect(t, NewServer(&stubToneRepo{}, nil, "test", zap.NewNop()))

	var out TranslateOutput
	res := call(t, cs, "translate_to_greek", map[string]any{"message": "hello"}, &out)
	require.False(t, res.IsError)
	assert.Equal(t, "ελληνικά", out.Translation)

	res = call(t, cs, "translate_to_greek", map[string]any{"message": "  "}, nil)
	assert.True(t, res.IsError)
}

func TestSummarizeConversationTool(t *testing.T) {
	repo := &stubToneRepo{}
	cs := connect(t, NewServer(repo, nil, "test", zap.NewNop()))

	var out SummaryOutput
	res := call(t, cs, "summarize_conversation", map[string]any{
		"messages": []map[string]any{
			{"user": "U1", "text": "ship friday?"},
			{"user": "U2", "text": ""},
			{"text": "yes"},
		},
	}, &out)
	require.False(t, res.IsError)
	assert.Equal(t, "- point", out.Summary)
	assert.Equal(t, []domain.Message{{User: "U1", Text: "ship friday?"}, {Text: "yes"}}, repo.summarized)

	res = call(t, cs, "summarize_conversation", map[string]any{"messages": []map[string]any{}}, nil)
	assert.True(t, res.IsError)
}

type threadChat struct {
	usecaseChat
	replies []domain.Message
}

func (c threadChat) GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error) {
	return c.replies, nil
}

func TestSummarizeThreadTool(t *testing.T) {
	t.Run("without slack", func(t *testing.T) {
		cs := connect(t, NewServer(&stubToneRepo{}, nil, "test", zap.NewNop()))
		res := call(t, cs, "summarize_thread", map[string]any{"permalink": "https://x.slack.com/archives/C1/p1712345678123456"}, nil)
		assert.True(t, res.IsError)
	})

	t.Run("with slack", func(t *testing.T) {
		repo := &stubToneRepo{}
		chat := threadChat{replies: []domain.Message{{User: "U1", Text: "parent"}, {User: "U2", Text: "reply"}}}
		cs := connect(t, NewServer(repo, usecase.NewToneUsecase(repo, chat), "test", zap.NewNop()))

		var out SummaryOutput
		res := call(t, cs, "summarize_thread", map[string]any{"permalink": "https://x.slack.com/archives/C1/p1712345678123456"}, &out)
		require.False(t, res.IsError)
		assert.Equal(t, "- point", out.Summary)
		assert.Len(t, repo.summarized, 2)

		res = call(t, cs, "summarize_thread", map[string]any{"permalink": "not a link"}, nil)
		assert.True(t, res.IsError)
	})
}

// usecaseChat satisfies the rest of repo.ChatRepo for threadChat
type usecaseChat struct{}

func (usecaseChat) PostEphemeral(ctx context.Context, channel, user, text string) error { return nil }
func (usecaseChat) PostToneResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) error {
	return nil
}
func (usecaseChat) PostMessage(ctx context.Context, channel, text string) error { return nil }
func (usecaseChat) PostAnalyzePrompt(ctx context.Context, channel, messageTS string) error {
	return nil
}
func (usecaseChat) GetChannelHistory(ctx context.Context, channel string, limit int) ([]domain.Message, error) {
	return nil, nil
}
func (usecaseChat) GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error) {
	return nil, errors.New("not supported")
}
func (usecaseChat) GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error) {
	return nil, nil
}
