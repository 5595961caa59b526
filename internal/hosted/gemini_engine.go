package hosted

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiEngine translates through the Gemini API
type GeminiEngine struct {
	client *genai.Client
	model  string
}

// NewGeminiEngine creates a Gemini engine with API key authentication
func NewGeminiEngine(ctx context.Context, config *Config) (*GeminiEngine, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Endpoint != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiEngine{client: client, model: model}, nil
}

// Name returns the engine name
func (e *GeminiEngine) Name() string {
	return "gemini"
}

// Translate generates one completion per sentence
func (e *GeminiEngine) Translate(ctx context.Context, batch Batch) ([]string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction(batch), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}

	out := make([]string, 0, len(batch.Sentences))
	for _, sentence := range batch.Sentences {
		resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(sentence), cfg)
		if err != nil {
			return nil, fmt.Errorf("Gemini API error: %w", err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return nil, fmt.Errorf("no translation returned")
		}
		out = append(out, text)
	}
	return out, nil
}
