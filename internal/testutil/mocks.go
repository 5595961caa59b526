package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// MockCapability mocks a translation capability for one pair
type MockCapability struct {
	LanguagePair lang.Pair
	Translations map[string]string
	Errors       map[string]error

	mu    sync.Mutex
	Calls []string
}

// NewMockCapability creates a mock that prefixes texts with the target code
func NewMockCapability(pair lang.Pair) *MockCapability {
	return &MockCapability{
		LanguagePair: pair,
		Translations: make(map[string]string),
		Errors:       make(map[string]error),
	}
}

// Translate mocks translating text
func (m *MockCapability) Translate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if text == "" {
		return "", nil
	}
	if translated, ok := m.Translations[text]; ok {
		return translated, nil
	}

	// Default mock translation
	return fmt.Sprintf("[%s] %s", m.LanguagePair.Target, text), nil
}

// Pair returns the mocked pair
func (m *MockCapability) Pair() lang.Pair {
	return m.LanguagePair
}

// CallCount returns how many times Translate was called
func (m *MockCapability) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockResolver mocks capability resolution
type MockResolver struct {
	Capabilities map[lang.Pair]translation.Capability
	Errors       map[lang.Pair]error

	mu         sync.Mutex
	Calls      []string
	Reinstalls []string
}

// NewMockResolver creates an empty mock resolver
func NewMockResolver() *MockResolver {
	return &MockResolver{
		Capabilities: make(map[lang.Pair]translation.Capability),
		Errors:       make(map[lang.Pair]error),
	}
}

// EnsureCapability returns the configured capability or error for pair.
// Unknown pairs fail with translation.ErrUnsupportedLanguagePair.
func (m *MockResolver) EnsureCapability(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, pair.String())
	m.mu.Unlock()

	if err, ok := m.Errors[pair]; ok {
		return nil, err
	}
	if c, ok := m.Capabilities[pair]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", translation.ErrUnsupportedLanguagePair, pair)
}

// Reinstall records the request and resolves pair like EnsureCapability
func (m *MockResolver) Reinstall(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	m.mu.Lock()
	m.Reinstalls = append(m.Reinstalls, pair.String())
	m.mu.Unlock()

	return m.EnsureCapability(ctx, pair)
}
