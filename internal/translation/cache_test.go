package translation

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

func TestTranslationCache(t *testing.T) {
	cache := NewTranslationCache()

	// Test empty cache
	_, found := cache.Get("Hello")
	if found {
		t.Error("Expected not found in empty cache")
	}

	cache.Add("Hello", "नमस्ते")
	cache.Add("Weather", "मौसम")

	translation, found := cache.Get("Hello")
	if !found {
		t.Error("Expected to find 'Hello' in cache")
	}
	if translation != "नमस्ते" {
		t.Errorf("Expected 'नमस्ते', got '%s'", translation)
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", cache.Len())
	}
}

func TestCached_Entry(t *testing.T) {
	calls := 0
	c := NewCached(Func{
		LanguagePair: lang.NewPair("en", "hi"),
		Fn: func(ctx context.Context, text string) (string, error) {
			calls++
			if text == "bad" {
				return "", errors.New("nope")
			}
			return "hi:" + text, nil
		},
	})
	ctx := context.Background()

	if _, hit := c.Entry(ctx, "Save"); hit {
		t.Error("First lookup should miss")
	}
	res, hit := c.Entry(ctx, "Save")
	if !hit || res.Text != "hi:Save" {
		t.Errorf("Second lookup = (%+v, %v), want cached hit", res, hit)
	}

	// Fallbacks are retried rather than cached
	c.Entry(ctx, "bad")
	c.Entry(ctx, "bad")

	if calls != 3 {
		t.Errorf("Expected 3 model calls, got %d", calls)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 cached translation, got %d", c.Len())
	}
}
