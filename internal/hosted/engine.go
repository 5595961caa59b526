package hosted

import (
	"context"
	"fmt"
	"time"
)

// DefaultModel is the en→Indic checkpoint served by the http backend
const DefaultModel = "ai4bharat/indictrans2-en-indic-1B"

// Engine runs inference for a batch and returns one output per sentence
type Engine interface {
	// Translate translates every sentence of batch, in order
	Translate(ctx context.Context, batch Batch) ([]string, error)

	// Name returns the engine name
	Name() string
}

// Config holds configuration for the hosted model
type Config struct {
	Backend  string // "http", "openai", "gemini" or "lambda"
	Endpoint string // inference URL; base URL override for openai and gemini
	APIKey   string
	Model    string
	Function string // Lambda function name

	Timeout         time.Duration // per call, 0 for none
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerCooldown time.Duration // time the breaker stays open
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:         "http",
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// NewEngine creates the inference engine selected by config.Backend
func NewEngine(ctx context.Context, config *Config) (Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Backend {
	case "", "http":
		return NewHTTPEngine(config)
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIEngine(config), nil
	case "gemini":
		if config.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiEngine(ctx, config)
	case "lambda":
		return NewLambdaEngine(ctx, config)
	default:
		return nil, fmt.Errorf("unknown hosted backend: %s", config.Backend)
	}
}

func checkCount(batch Batch, outputs []string) error {
	if len(outputs) != len(batch.Sentences) {
		return fmt.Errorf("expected %d translations, got %d", len(batch.Sentences), len(outputs))
	}
	return nil
}
