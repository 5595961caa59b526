package translation

import (
	"context"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

// Capability is a ready-to-use translation function for one language pair.
// Implementations must return "" for "" without error and must not swallow
// failures of the underlying model.
type Capability interface {
	// Translate translates text from the pair's source to its target language
	Translate(ctx context.Context, text string) (string, error)

	// Pair returns the language pair this capability serves
	Pair() lang.Pair
}

// Result is the outcome of translating one dictionary entry
type Result struct {
	Text     string // translated text, or the source text when FellBack is set
	FellBack bool
	Err      error // cause of the fallback, nil on success
}

// TranslateEntry translates one entry and substitutes the original text if
// the capability fails. The failure is kept in Result.Err as an
// *InvocationError.
func TranslateEntry(ctx context.Context, c Capability, text string) Result {
	translated, err := c.Translate(ctx, text)
	if err != nil {
		return Result{
			Text:     text,
			FellBack: true,
			Err:      &InvocationError{Pair: c.Pair(), Err: err},
		}
	}
	return Result{Text: translated}
}

// Func adapts a plain function into a Capability
type Func struct {
	LanguagePair lang.Pair
	Fn           func(ctx context.Context, text string) (string, error)
}

// Translate calls the wrapped function
func (f Func) Translate(ctx context.Context, text string) (string, error) {
	return f.Fn(ctx, text)
}

// Pair returns the wrapped pair
func (f Func) Pair() lang.Pair {
	return f.LanguagePair
}
