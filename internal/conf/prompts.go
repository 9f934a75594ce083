package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// PromptsConfig contains all prompt configurations loaded from YAML
type PromptsConfig struct {
	Tone      TonePrompts      `yaml:"tone"`
	Translate TranslatePrompts `yaml:"translate"`
	Summarize SummarizePrompts `yaml:"summarize"`
}

// TonePrompts contains tone detection prompts
type TonePrompts struct {
	SystemInstruction string `yaml:"system_instruction"`
	MessageTemplate   string `yaml:"message_template"` // {{message}} placeholder
}

// TranslatePrompts contains the translation prompt
type TranslatePrompts struct {
	Template string `yaml:"template"` // {{message}} placeholder
}

// SummarizePrompts contains the thread summary prompt
type SummarizePrompts struct {
	Template string `yaml:"template"` // {{thread}} placeholder
}

// LoadPromptsConfig loads prompts configuration from YAML file.
// With an empty path the usual locations are searched; if none exists the defaults are returned.
func LoadPromptsConfig(configPath string, logger *zap.Logger) (*PromptsConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/slack-tone-bot/prompts.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = b, p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("prompts config %s not readable", configPath)
		}
		logger.Info("no prompts.yaml found, using defaults")
		return DefaultPromptsConfig(), nil
	}

	logger.Info("loading prompts", zap.String("path", loadedPath))

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	defaults := DefaultPromptsConfig()

	if c.Tone.SystemInstruction == "" {
		c.Tone.SystemInstruction = defaults.Tone.SystemInstruction
	}
	if c.Tone.MessageTemplate == "" {
		c.Tone.MessageTemplate = defaults.Tone.MessageTemplate
	}
	if c.Translate.Template == "" {
		c.Translate.Template = defaults.Translate.Template
	}
	if c.Summarize.Template == "" {
		c.Summarize.Template = defaults.Summarize.Template
	}
}

// ToneMessage renders the tone detection user prompt
func (c *PromptsConfig) ToneMessage(message string) string {
	return strings.ReplaceAll(c.Tone.MessageTemplate, "{{message}}", message)
}

// TranslateMessage renders the translation prompt
func (c *PromptsConfig) TranslateMessage(message string) string {
	return strings.ReplaceAll(c.Translate.Template, "{{message}}", message)
}

// SummarizeThread renders the summary prompt for a formatted transcript
func (c *PromptsConfig) SummarizeThread(transcript string) string {
	return strings.ReplaceAll(c.Summarize.Template, "{{thread}}", transcript)
}

// DefaultPromptsConfig returns the built-in prompts
func DefaultPromptsConfig() *PromptsConfig {
	return &PromptsConfig{
		Tone: TonePrompts{
			SystemInstruction: defaultToneInstruction,
			MessageTemplate:   `Message: "{{message}}"`,
		},
		Translate: TranslatePrompts{
			Template: "Translate the following message to Greek, preserving the tone, emotion, and urgency. " +
				"Return ONLY the translated Greek sentence, with no explanation, no romanization, and no extra text. " +
				"Message: {{message}}",
		},
		Summarize: SummarizePrompts{
			Template: "Summarize the following Slack thread. " +
				"List key takeaways and any action items or decisions. Be concise.\n" +
				"Thread:\n{{thread}}",
		},
	}
}

const defaultToneInstruction = `You are a tone and urgency detection model for neurodivergent users.
Analyze the following message and return:
- include the original message as "original_message" in the JSON output.
- the tone of the message (choose one: 'positive', 'negative', 'neutral', 'angry', 'sad', 'happy', 'confused', 'excited'),
- a concise explanation (maximum 2 sentences),
- whether the message is urgent or not (choose one: 'urgent', 'not urgent')
- your confidence in your answer as a percentage (0-100), where 100 means absolutely certain and 0 means not confident at all.
- and 3 quick, context-appropriate reply suggestions the user could send in response to the message. Each reply should have 40 characters maximum.

Examples:
- "Can you please respond ASAP? This is important." -> {
  "tone": "neutral",
  "explanation": "The message is a request with urgency.",
  "urgency": "urgent",
  "confidence": 92,
  "quick_replies": [
    "I'm on it and will get back to you ASAP.",
    "Received, I'll update you shortly.",
    "I'll prioritize this and respond soon."
  ]
}
- "Hey, just checking in about the meeting next week." -> {
  "tone": "neutral",
  "explanation": "The message is a casual inquiry.",
  "urgency": "not urgent",
  "confidence": 95,
  "quick_replies": [
    "Yes, the meeting is still on.",
    "Let me confirm and get back to you.",
    "Thanks for the reminder!"
  ]
}`
