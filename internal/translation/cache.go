package translation

import "context"

// TranslationCache memoises translations of one target language during a
// batch run so repeated source texts are only sent to the model once.
// It is not safe for concurrent use.
type TranslationCache struct {
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(text, translation string) {
	tc.translations[text] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(text string) (string, bool) {
	translation, ok := tc.translations[text]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	return len(tc.translations)
}

// Cached wraps a capability so successful translations are memoised in cache
type Cached struct {
	Capability
	cache *TranslationCache
}

// NewCached wraps c with a fresh cache
func NewCached(c Capability) *Cached {
	return &Cached{Capability: c, cache: NewTranslationCache()}
}

// Len returns the number of distinct texts translated so far
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Entry translates text through the cache and reports whether it was a hit.
// Fallbacks are not cached.
func (c *Cached) Entry(ctx context.Context, text string) (Result, bool) {
	if translated, ok := c.cache.Get(text); ok {
		return Result{Text: translated}, true
	}
	res := TranslateEntry(ctx, c.Capability, text)
	if !res.FellBack {
		c.cache.Add(text, res.Text)
	}
	return res, false
}
