// Package lang defines language pairs, the hosted model's supported
// language set and validation of short language codes.
package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Source is the language every UI string dictionary is written in
const Source = "en"

// ErrInvalidCode is returned for codes that are not well-formed language codes
var ErrInvalidCode = errors.New("invalid language code")

// supported holds the codes accepted by the hosted en→Indic model
var supported = map[string]bool{
	"hi": true, "bn": true, "gu": true, "mr": true, "pa": true,
	"or": true, "ta": true, "te": true, "kn": true, "ml": true,
	"as": true, "ur": true, "kok": true, "sat": true, "mai": true,
	"ne": true, "sd": true, "ks": true, "brx": true, "mni": true,
}

// supportedOrder keeps the published order of the supported set
var supportedOrder = []string{
	"hi", "bn", "gu", "mr", "pa", "or", "ta", "te", "kn", "ml",
	"as", "ur", "kok", "sat", "mai", "ne", "sd", "ks", "brx", "mni",
}

// DefaultBatchTargets are the languages the batch job translates into
// when no targets are configured.
var DefaultBatchTargets = []string{"hi", "ta", "te", "kn", "ml", "mr", "pa", "bn", "as"}

// Pair identifies one translation capability
type Pair struct {
	Source string
	Target string
}

// NewPair builds a pair from two codes, normalising case and whitespace
func NewPair(source, target string) Pair {
	return Pair{
		Source: normalize(source),
		Target: normalize(target),
	}
}

// String renders the pair as "en->hi"
func (p Pair) String() string {
	return p.Source + "->" + p.Target
}

// IsSupported reports whether code is in the hosted model's supported set
func IsSupported(code string) bool {
	return supported[code]
}

// Supported returns the supported language codes in published order
func Supported() []string {
	out := make([]string, len(supportedOrder))
	copy(out, supportedOrder)
	return out
}

// PairsFrom builds pairs from source to every target, dropping duplicates
// but keeping the given order.
func PairsFrom(source string, targets []string) []Pair {
	seen := make(map[Pair]bool, len(targets))
	pairs := make([]Pair, 0, len(targets))
	for _, target := range targets {
		p := NewPair(source, target)
		if p.Target == "" || seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	return pairs
}

// ValidateCode checks that code is a well-formed BCP 47 language subtag.
// Codes that are well-formed but unknown to the CLDR tables are accepted;
// package indexes use a few of those.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidCode)
	}
	if strings.ContainsAny(code, " /\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	if _, err := language.Parse(code); err != nil {
		var valueErr interface{ Subtag() string }
		if errors.As(err, &valueErr) {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
