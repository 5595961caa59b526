// Package hosted provides the remote transformer model. The model is built
// once at startup and hands out a capability per language pair; every call
// is pre-processed into a tagged batch of one, sent to an inference engine
// behind a circuit breaker and post-processed for the target script.
package hosted

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// Model is the process-wide hosted model
type Model struct {
	engine  Engine
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *slog.Logger
}

// New wraps engine with the breaker and timeout settings from config
func New(engine Engine, config *Config, logger *slog.Logger) *Model {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	failures := config.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:    "hosted-" + engine.Name(),
		Timeout: config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the engine
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Model{
		engine:  engine,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: config.Timeout,
		logger:  logger,
	}
}

// Name returns the engine name
func (m *Model) Name() string {
	return m.engine.Name()
}

// For returns the capability for pair. Only pairs with a known language
// tag on both sides are served.
func (m *Model) For(pair lang.Pair) (translation.Capability, error) {
	if _, ok := FloresCode(pair.Source); !ok || pair.Source == pair.Target {
		return nil, fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
	}
	if _, ok := FloresCode(pair.Target); !ok {
		return nil, fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
	}
	return &capability{model: m, pair: pair}, nil
}

type capability struct {
	model *Model
	pair  lang.Pair
}

func (c *capability) Pair() lang.Pair {
	return c.pair
}

func (c *capability) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	batch, err := preprocess(c.pair, text)
	if err != nil {
		return "", err
	}

	if c.model.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.model.timeout)
		defer cancel()
	}

	out, err := c.model.breaker.Execute(func() (interface{}, error) {
		return c.model.engine.Translate(ctx, batch)
	})
	if err != nil {
		return "", fmt.Errorf("%s engine: %w", c.model.engine.Name(), err)
	}

	outputs := out.([]string)
	if err := checkCount(batch, outputs); err != nil {
		return "", err
	}
	return postprocess(outputs[0], batch.Target), nil
}
