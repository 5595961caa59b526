// Package pipeline serves one translation request over a process boundary:
// a JSON request on standard input, a JSON result on standard output.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"

	"codeberg.org/snonux/agritranslate/internal/batch"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// invalidInput is the error message for payloads failing validation
const invalidInput = "Invalid input"

// maxRequestSize caps how much of standard input is read
const maxRequestSize = 32 << 20

// Resolver resolves translation capabilities for language pairs
type Resolver interface {
	EnsureCapability(ctx context.Context, pair lang.Pair) (translation.Capability, error)
}

// Request is a validated pipeline request
type Request struct {
	Target  string
	Strings *batch.Dictionary
}

// Adapter translates pipeline requests from Source into the requested language
type Adapter struct {
	resolver Resolver
	source   string
	logger   *slog.Logger
}

// New creates an adapter translating from source
func New(resolver Resolver, source string, logger *slog.Logger) *Adapter {
	if source == "" {
		source = lang.Source
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{resolver: resolver, source: source, logger: logger}
}

// ParseRequest validates a request payload. The target language is read
// from "targetLang" or "targetLangCode"; "strings" must be an object of
// string values.
func ParseRequest(data []byte) (*Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", translation.ErrMalformedInput)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object", translation.ErrMalformedInput)
	}

	var target string
	for _, field := range []string{"targetLang", "targetLangCode"} {
		if v := root.Get(field); v.Type == gjson.String && v.String() != "" {
			target = v.String()
			break
		}
	}
	if target == "" {
		return nil, fmt.Errorf("%w: missing target language", translation.ErrMalformedInput)
	}

	strs := root.Get("strings")
	if !strs.Exists() {
		return nil, fmt.Errorf("%w: missing strings", translation.ErrMalformedInput)
	}
	dict, err := batch.FromResult(strs)
	if err != nil {
		return nil, err
	}

	return &Request{Target: target, Strings: dict}, nil
}

// Run reads one request from in, writes one result to out and returns the
// process exit status.
func (a *Adapter) Run(ctx context.Context, in io.Reader, out io.Writer) int {
	data, err := io.ReadAll(io.LimitReader(in, maxRequestSize))
	if err != nil {
		a.logger.Error("failed to read request", "error", err)
		return WriteError(out, invalidInput, a.logger)
	}

	req, err := ParseRequest(data)
	if err != nil {
		a.logger.Error("rejected request", "error", err)
		return WriteError(out, invalidInput, a.logger)
	}

	pair := lang.NewPair(a.source, req.Target)
	capability, err := a.resolver.EnsureCapability(ctx, pair)
	if err != nil {
		a.logger.Error("failed to resolve capability", "pair", pair.String(), "error", err)
		return WriteError(out, err.Error(), a.logger)
	}

	translated := a.Translate(ctx, capability, req.Strings)
	if err := ctx.Err(); err != nil {
		a.logger.Error("translation interrupted", "pair", pair.String(), "error", err)
		return WriteError(out, err.Error(), a.logger)
	}

	var buf bytes.Buffer
	body, err := translated.MarshalJSON()
	if err != nil {
		return WriteError(out, err.Error(), a.logger)
	}
	buf.WriteString(`{"translated":`)
	buf.Write(body)
	buf.WriteString("}\n")

	if _, err := out.Write(buf.Bytes()); err != nil {
		a.logger.Error("failed to write result", "error", err)
		return 1
	}
	return 0
}

// Translate translates every entry, keeping the source text for entries
// that fail.
func (a *Adapter) Translate(ctx context.Context, c translation.Capability, strs *batch.Dictionary) *batch.Dictionary {
	cached := translation.NewCached(c)
	out := batch.NewDictionary()
	for _, entry := range strs.Entries() {
		res, _ := cached.Entry(ctx, entry.Text)
		if res.FellBack {
			a.logger.Warn("translation failed, keeping source text", "key", entry.Key, "error", res.Err)
		}
		out.Set(entry.Key, res.Text)
	}
	return out
}

// WriteError writes {"error": message} to out and returns exit status 1.
// A failed write is logged to logger; nil means slog.Default.
func WriteError(out io.Writer, message string, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		logger.Error("failed to encode error", "message", message, "error", err)
		return 1
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		logger.Error("failed to write error", "message", message, "error", err)
	}
	return 1
}
