package hosted

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

type fakeEngine struct {
	mu      sync.Mutex
	batches []Batch
	outputs []string
	err     error
	delay   time.Duration
}

func (f *fakeEngine) Name() string {
	return "fake"
}

func (f *fakeEngine) Translate(ctx context.Context, batch Batch) ([]string, error) {
	f.mu.Lock()
	f.batches = append(f.batches, batch)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.outputs != nil {
		return f.outputs, nil
	}
	return []string{strings.ToUpper(batch.Sentences[0]) + " |"}, nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestModel_Translate(t *testing.T) {
	engine := &fakeEngine{}
	m := New(engine, nil, quietLogger())

	c, err := m.For(lang.NewPair("en", "hi"))
	if err != nil {
		t.Fatalf("For failed: %v", err)
	}
	if c.Pair() != lang.NewPair("en", "hi") {
		t.Errorf("Unexpected pair %v", c.Pair())
	}

	got, err := c.Translate(context.Background(), "  water  the field ")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "WATER THE FIELD।" {
		t.Errorf("Translate = %q, want %q", got, "WATER THE FIELD।")
	}

	if engine.calls() != 1 {
		t.Fatalf("Expected 1 engine call, got %d", engine.calls())
	}
	b := engine.batches[0]
	if b.Source != "eng_Latn" || b.Target != "hin_Deva" || len(b.Sentences) != 1 {
		t.Errorf("Unexpected batch %+v", b)
	}
}

func TestModel_EmptyText(t *testing.T) {
	engine := &fakeEngine{err: errors.New("must not be called")}
	c, _ := New(engine, nil, quietLogger()).For(lang.NewPair("en", "ta"))

	for _, text := range []string{"", "   "} {
		got, err := c.Translate(context.Background(), text)
		if err != nil || got != "" {
			t.Errorf("Translate(%q) = %q, %v; want empty", text, got, err)
		}
	}
	if engine.calls() != 0 {
		t.Errorf("Expected no engine call, got %d", engine.calls())
	}
}

func TestModel_For_Unsupported(t *testing.T) {
	m := New(&fakeEngine{}, nil, quietLogger())

	for _, pair := range []lang.Pair{
		lang.NewPair("en", "xx"),
		lang.NewPair("fr", "hi"),
		lang.NewPair("en", "en"),
	} {
		if _, err := m.For(pair); !errors.Is(err, translation.ErrUnsupportedLanguagePair) {
			t.Errorf("For(%v) = %v, want ErrUnsupportedLanguagePair", pair, err)
		}
	}
}

func TestModel_EngineErrorPropagates(t *testing.T) {
	cause := errors.New("model crashed")
	c, _ := New(&fakeEngine{err: cause}, nil, quietLogger()).For(lang.NewPair("en", "kn"))

	_, err := c.Translate(context.Background(), "Harvest")
	if !errors.Is(err, cause) {
		t.Errorf("Expected engine error, got %v", err)
	}
}

func TestModel_WrongOutputCount(t *testing.T) {
	c, _ := New(&fakeEngine{outputs: []string{}}, nil, quietLogger()).For(lang.NewPair("en", "kn"))

	if _, err := c.Translate(context.Background(), "Harvest"); err == nil {
		t.Error("Expected error for missing output")
	}
}

func TestModel_BreakerOpens(t *testing.T) {
	engine := &fakeEngine{err: errors.New("unavailable")}
	config := DefaultConfig()
	config.BreakerFailures = 2
	config.BreakerCooldown = time.Minute

	c, _ := New(engine, config, quietLogger()).For(lang.NewPair("en", "te"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Translate(ctx, "Rain"); err == nil {
			t.Fatal("Expected engine error")
		}
	}

	_, err := c.Translate(ctx, "Rain")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open breaker, got %v", err)
	}
	if engine.calls() != 2 {
		t.Errorf("Expected 2 engine calls, got %d", engine.calls())
	}
}

func TestModel_Timeout(t *testing.T) {
	config := DefaultConfig()
	config.Timeout = 20 * time.Millisecond

	c, _ := New(&fakeEngine{delay: time.Second}, config, quietLogger()).For(lang.NewPair("en", "ml"))

	_, err := c.Translate(context.Background(), "Soil")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		want    string
		wantErr bool
	}{
		{"default is http", nil, "http", false},
		{"http with endpoint", &Config{Backend: "http", Endpoint: "http://localhost:9000/translate"}, "http", false},
		{"openai", &Config{Backend: "openai", APIKey: "sk-test"}, "openai", false},
		{"openai without key", &Config{Backend: "openai"}, "", true},
		{"gemini without key", &Config{Backend: "gemini"}, "", true},
		{"unknown", &Config{Backend: "carrier-pigeon"}, "", true},
		{"bad endpoint", &Config{Backend: "http", Endpoint: "not a url"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(context.Background(), tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEngine failed: %v", err)
			}
			if engine.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", engine.Name(), tt.want)
			}
		})
	}
}
