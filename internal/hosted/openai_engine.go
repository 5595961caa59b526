package hosted

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEngine translates through the OpenAI chat completion API
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates a new OpenAI engine. A non-empty config.Endpoint
// replaces the API base URL.
func NewOpenAIEngine(config *Config) *OpenAIEngine {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.Endpoint != "" {
		clientConfig.BaseURL = config.Endpoint
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Name returns the engine name
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// Translate sends one chat completion per sentence
func (e *OpenAIEngine) Translate(ctx context.Context, batch Batch) ([]string, error) {
	out := make([]string, 0, len(batch.Sentences))
	for _, sentence := range batch.Sentences {
		req := openai.ChatCompletionRequest{
			Model: e.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: instruction(batch),
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: sentence,
				},
			},
			Temperature: 0.2,
		}

		resp, err := e.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no translation returned")
		}
		out = append(out, strings.TrimSpace(resp.Choices[0].Message.Content))
	}
	return out, nil
}

// instruction is the prompt shared by the chat based engines
func instruction(batch Batch) string {
	return fmt.Sprintf("Translate the user's %s user interface text to %s (%s). "+
		"Keep placeholders such as {{name}} and %%s unchanged. "+
		"Respond with only the translation, nothing else.",
		batch.SourceName, batch.TargetName, batch.Target)
}
