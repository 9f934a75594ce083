package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/usecase"
	"github.com/DevRickLin/slack-tone-bot/internal/data"
)

// ErrNoSlack is returned by tools that read Slack when no bot token was configured
var ErrNoSlack = errors.New("slack is not configured, set SLACK_BOT_TOKEN")

// ToneMCPServer exposes the tone pipeline as MCP tools
type ToneMCPServer struct {
	server   *mcp.Server
	toneRepo repo.ToneRepo
	toneUC   *usecase.ToneUsecase // nil without Slack
	logger   *zap.Logger
}

// NewServer creates the MCP server and registers its tools.
// toneUC may be nil, which disables summarize_thread.
func NewServer(toneRepo repo.ToneRepo, toneUC *usecase.ToneUsecase, version string, logger *zap.Logger) *ToneMCPServer {
	s := &ToneMCPServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "tone-tools",
			Version: version,
		}, nil),
		toneRepo: toneRepo,
		toneUC:   toneUC,
		logger:   logger.Named("mcp"),
	}
	s.registerTools()
	return s
}

func (s *ToneMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_tone",
		Description: "Classify the tone and urgency of a chat message and suggest three short replies.",
	}, s.handleDetectTone)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "translate_to_greek",
		Description: "Translate a message into Greek.",
	}, s.handleTranslate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_conversation",
		Description: "Summarize a list of chat messages as bullet points.",
	}, s.handleSummarizeConversation)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_thread",
		Description: "Fetch a Slack thread from its permalink and summarize it as bullet points.",
	}, s.handleSummarizeThread)
}

// DetectToneInput is the input for detect_tone
type DetectToneInput struct {
	Message string `json:"message" jsonschema:"the message text to analyze"`
}

// DetectToneOutput mirrors the detection result
type DetectToneOutput struct {
	Tone         string   `json:"tone"`
	Urgency      string   `json:"urgency"`
	Confidence   int      `json:"confidence"`
	Explanation  string   `json:"explanation"`
	QuickReplies []string `json:"quick_replies"`
	Emoji        string   `json:"emoji"`
}

func (s *ToneMCPServer) handleDetectTone(ctx context.Context, req *mcp.CallToolRequest, input DetectToneInput) (*mcp.CallToolResult, DetectToneOutput, error) {
	result, err := s.toneRepo.DetectTone(ctx, input.Message)
	if err != nil {
		s.logger.Warn("detect_tone failed", zap.Error(err))
		return nil, DetectToneOutput{}, err
	}
	return nil, DetectToneOutput{
		Tone:         string(result.Tone),
		Urgency:      string(result.Urgency),
		Confidence:   result.Confidence,
		Explanation:  result.Explanation,
		QuickReplies: result.QuickReplies,
		Emoji:        data.ToneEmoji(result.Tone),
	}, nil
}

// TranslateInput is the input for translate_to_greek
type TranslateInput struct {
	Message string `json:"message" jsonschema:"the message text to translate"`
}

// TranslateOutput carries the translation
type TranslateOutput struct {
	Translation string `json:"translation"`
}

func (s *ToneMCPServer) handleTranslate(ctx context.Context, req *mcp.CallToolRequest, input TranslateInput) (*mcp.CallToolResult, TranslateOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, TranslateOutput{}, errors.New("message is required")
	}
	out, err := s.toneRepo.TranslateToGreek(ctx, input.Message)
	if err != nil {
		return nil, TranslateOutput{}, err
	}
	return nil, TranslateOutput{Translation: out}, nil
}

// ConversationMessage is one line of a conversation to summarize
type ConversationMessage struct {
	User string `json:"user,omitempty" jsonschema:"who wrote the message"`
	Text string `json:"text" jsonschema:"the message text"`
}

// SummarizeConversationInput is the input for summarize_conversation
type SummarizeConversationInput struct {
	Messages []ConversationMessage `json:"messages" jsonschema:"the messages in chronological order"`
}

// SummaryOutput carries a summary
type SummaryOutput struct {
	Summary string `json:"summary"`
}

func (s *ToneMCPServer) handleSummarizeConversation(ctx context.Context, req *mcp.CallToolRequest, input SummarizeConversationInput) (*mcp.CallToolResult, SummaryOutput, error) {
	msgs := make([]domain.Message, 0, len(input.Messages))
	for _, m := range input.Messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		msgs = append(msgs, domain.Message{User: m.User, Text: m.Text})
	}
	if len(msgs) == 0 {
		return nil, SummaryOutput{}, usecase.ErrEmptyThread
	}

	summary, err := s.toneRepo.Summarize(ctx, msgs)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

// SummarizeThreadInput is the input for summarize_thread
type SummarizeThreadInput struct {
	Permalink string `json:"permalink" jsonschema:"a Slack message permalink of the thread parent"`
}

func (s *ToneMCPServer) handleSummarizeThread(ctx context.Context, req *mcp.CallToolRequest, input SummarizeThreadInput) (*mcp.CallToolResult, SummaryOutput, error) {
	if s.toneUC == nil {
		return nil, SummaryOutput{}, ErrNoSlack
	}
	summary, err := s.toneUC.SummarizeThread(ctx, input.Permalink)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

// Run serves MCP over stdio until ctx is done or the client disconnects
func (s *ToneMCPServer) Run(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *ToneMCPServer) GetServer() *mcp.Server {
	return s.server
}
