package translation

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/agritranslate/internal/lang"
)

var (
	// ErrUnsupportedLanguagePair is returned when no capability exists or can
	// be installed for a language pair.
	ErrUnsupportedLanguagePair = errors.New("unsupported language pair")

	// ErrMalformedInput is returned when a request payload fails structural validation
	ErrMalformedInput = errors.New("malformed input")
)

// InstallationError reports a failed package download or install for a pair.
// It is never retried automatically.
type InstallationError struct {
	Pair lang.Pair
	Err  error
}

func (e *InstallationError) Error() string {
	return fmt.Sprintf("installation failed for %s: %v", e.Pair, e.Err)
}

func (e *InstallationError) Unwrap() error {
	return e.Err
}

// InvocationError reports a failed call into the underlying model for one text
type InvocationError struct {
	Pair lang.Pair
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("translation failed for %s: %v", e.Pair, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
