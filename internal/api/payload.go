package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/domain"
	"github.com/DevRickLin/slack-tone-bot/internal/service"
)

var (
	// ErrMissingPayload is returned when an interaction request has no payload field
	ErrMissingPayload = errors.New("missing payload")
	// ErrNoAction is returned when an interaction payload carries no block action
	ErrNoAction = errors.New("no action in payload")
)

// ParseSlashCommand reads a form-encoded slash command request
func ParseSlashCommand(r *http.Request) (service.SlashCommand, error) {
	s, err := slack.SlashCommandParse(r)
	if err != nil {
		return service.SlashCommand{}, fmt.Errorf("parse slash command: %w", err)
	}
	return service.SlashCommand{
		Command:   s.Command,
		Text:      s.Text,
		ChannelID: s.ChannelID,
		UserID:    s.UserID,
	}, nil
}

// EventEnvelope is the part of an Events API delivery the bot acts on.
// Exactly one of Challenge or Message is set for deliveries that need handling.
type EventEnvelope struct {
	Type      string
	Challenge string
	Message   *domain.Message
}

// ParseEvent decodes an Events API body.
// Inner event types the bot does not know are returned with a nil Message, not an error.
func ParseEvent(body []byte) (*EventEnvelope, error) {
	if !json.Valid(body) {
		return nil, errors.New("event body is not valid JSON")
	}

	ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return &EventEnvelope{Type: ev.Type}, nil
	}

	env := &EventEnvelope{Type: ev.Type}
	switch ev.Type {
	case slackevents.URLVerification:
		if v, ok := ev.Data.(*slackevents.EventsAPIURLVerificationEvent); ok {
			env.Challenge = v.Challenge
		}
	case slackevents.CallbackEvent:
		if m, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			env.Message = &domain.Message{
				TS:       m.TimeStamp,
				ThreadTS: m.ThreadTimeStamp,
				Channel:  m.Channel,
				User:     m.User,
				Text:     m.Text,
				SubType:  m.SubType,
				BotID:    m.BotID,
			}
		}
	}
	return env, nil
}

// ParseInteraction decodes the payload form field of an interaction request into its first block action
func ParseInteraction(r *http.Request) (service.Action, error) {
	raw := r.PostFormValue("payload")
	if raw == "" {
		return service.Action{}, ErrMissingPayload
	}

	var cb slack.InteractionCallback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return service.Action{}, fmt.Errorf("decode interaction payload: %w", err)
	}

	act := service.Action{UserID: cb.User.ID, ChannelID: cb.Channel.ID}
	if acts := cb.ActionCallback.BlockActions; len(acts) > 0 && acts[0] != nil {
		act.ActionID, act.Value = acts[0].ActionID, acts[0].Value
		return act, nil
	}

	// slack-go only recognizes block actions that carry a block_id
	var bare struct {
		Actions []struct {
			ActionID string `json:"action_id"`
			Value    string `json:"value"`
		} `json:"actions"`
	}
	if err := json.Unmarshal([]byte(raw), &bare); err != nil || len(bare.Actions) == 0 || bare.Actions[0].ActionID == "" {
		return service.Action{}, ErrNoAction
	}
	act.ActionID, act.Value = bare.Actions[0].ActionID, bare.Actions[0].Value
	return act, nil
}
