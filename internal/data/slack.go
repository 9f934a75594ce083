package data

import (
	"context"
	"errors"

	"github.com/slack-go/slack"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"
)

// repliesPageSize is the page size used when walking a thread
const repliesPageSize = 200

// slackRepo implements ChatRepo on the Slack Web API
type slackRepo struct {
	client *slack.Client
}

// NewSlackClient creates a Slack Web API client.
// apiURL overrides the API endpoint when non-empty; it must end with a slash.
func NewSlackClient(token, apiURL string) *slack.Client {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return slack.New(token, opts...)
}

// NewSlackRepo creates a new Slack repository
func NewSlackRepo(client *slack.Client) repo.ChatRepo {
	return &slackRepo{client: client}
}

// PostEphemeral implements ChatRepo
func (r *slackRepo) PostEphemeral(ctx context.Context, channel, user, text string) error {
	_, err := r.client.PostEphemeralContext(ctx, channel, user, slack.MsgOptionText(text, false))
	return platformError("chat.postEphemeral", err)
}

// PostToneResult implements ChatRepo
func (r *slackRepo) PostToneResult(ctx context.Context, channel, user string, result *domain.ToneDetectionResult) error {
	_, err := r.client.PostEphemeralContext(ctx, channel, user,
		slack.MsgOptionText(ToneResultFallback, false),
		slack.MsgOptionBlocks(RenderToneResult(result)...),
	)
	return platformError("chat.postEphemeral", err)
}

// PostMessage implements ChatRepo
func (r *slackRepo) PostMessage(ctx context.Context, channel, text string) error {
	_, _, err := r.client.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	return platformError("chat.postMessage", err)
}

// PostAnalyzePrompt implements ChatRepo
func (r *slackRepo) PostAnalyzePrompt(ctx context.Context, channel, messageTS string) error {
	_, _, err := r.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText("Analyze this message", false),
		slack.MsgOptionBlocks(RenderAnalyzePrompt(messageTS)...),
		slack.MsgOptionTS(messageTS),
	)
	return platformError("chat.postMessage", err)
}

// GetChannelHistory implements ChatRepo
func (r *slackRepo) GetChannelHistory(ctx context.Context, channel string, limit int) ([]domain.Message, error) {
	resp, err := r.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Limit:     limit,
	})
	if err != nil {
		return nil, platformError("conversations.history", err)
	}
	return toMessages(channel, resp.Messages), nil
}

// GetMessage implements ChatRepo
func (r *slackRepo) GetMessage(ctx context.Context, channel, ts string) (*domain.Message, error) {
	resp, err := r.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Latest:    ts,
		Inclusive: true,
		Limit:     1,
	})
	if err != nil {
		return nil, platformError("conversations.history", err)
	}
	for _, m := range toMessages(channel, resp.Messages) {
		if m.TS == ts {
			return &m, nil
		}
	}
	return nil, &domain.PlatformError{Method: "conversations.history", Code: "message_not_found"}
}

// GetThreadReplies implements ChatRepo
func (r *slackRepo) GetThreadReplies(ctx context.Context, channel, threadTS string) ([]domain.Message, error) {
	var all []domain.Message
	cursor := ""
	for {
		msgs, hasMore, next, err := r.client.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channel,
			Timestamp: threadTS,
			Cursor:    cursor,
			Limit:     repliesPageSize,
		})
		if err != nil {
			return nil, platformError("conversations.replies", err)
		}
		all = append(all, toMessages(channel, msgs)...)
		if !hasMore || next == "" {
			return all, nil
		}
		cursor = next
	}
}

func toMessages(channel string, msgs []slack.Message) []domain.Message {
	result := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, domain.Message{
			TS:       m.Timestamp,
			ThreadTS: m.ThreadTimestamp,
			Channel:  channel,
			User:     m.User,
			Text:     m.Text,
			SubType:  m.SubType,
			BotID:    m.BotID,
		})
	}
	return result
}

// platformError wraps a Slack client error with its method and machine-readable code
func platformError(method string, err error) error {
	if err == nil {
		return nil
	}
	code := err.Error()
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		code = slackErr.Err
	}
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		code = "ratelimited"
	}
	return &domain.PlatformError{Method: method, Code: code, Err: err}
}
