// Package batch translates a source string dictionary into every target
// language, writing one output file per language.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"codeberg.org/snonux/agritranslate/internal"
	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

// Resolver resolves translation capabilities for language pairs
type Resolver interface {
	EnsureCapability(ctx context.Context, pair lang.Pair) (translation.Capability, error)
	Reinstall(ctx context.Context, pair lang.Pair) (translation.Capability, error)
}

// Options configures an Orchestrator
type Options struct {
	OutputDir    string // output goes to <OutputDir>/<target>/<FileName>
	FileName     string
	ForceInstall bool      // reinstall every target before translating
	Progress     io.Writer // per-language progress bars, nil disables them
	Logger       *slog.Logger
}

// Orchestrator runs batch translation jobs
type Orchestrator struct {
	resolver Resolver
	opts     Options
	logger   *slog.Logger
}

// NewOrchestrator creates a new batch orchestrator
func NewOrchestrator(resolver Resolver, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FileName == "" {
		opts.FileName = "complete.json"
	}
	return &Orchestrator{resolver: resolver, opts: opts, logger: logger}
}

// OutputPath returns the output file of a target language
func (o *Orchestrator) OutputPath(target string) string {
	return filepath.Join(o.opts.OutputDir, internal.SanitizeFilename(target), o.opts.FileName)
}

// Run translates source into every pair's target, in the given order. A
// language whose capability cannot be resolved is skipped; a failing entry
// keeps its source text. Each language is written to disk before the next
// one starts. The returned map holds the dictionaries that were written.
//
// Cancelling ctx stops the run: the language in progress and every later
// one are skipped without touching their existing output, and Report.Err
// is set.
func (o *Orchestrator) Run(ctx context.Context, pairs []lang.Pair, source *Dictionary) (map[string]*Dictionary, *Report) {
	report := &Report{
		RunID:   internal.GenerateRunID(),
		Entries: source.Len(),
		Started: time.Now(),
	}
	logger := o.logger.With("run", report.RunID)
	results := make(map[string]*Dictionary, len(pairs))

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch interrupted", "remaining", len(pairs)-i, "error", err)
			for _, rest := range pairs[i:] {
				report.Languages = append(report.Languages, LanguageReport{Code: rest.Target, Skipped: true, Cause: err})
			}
			break
		}

		lr := LanguageReport{Code: pair.Target}
		start := time.Now()

		capability, err := o.resolve(ctx, pair)
		if err != nil {
			logger.Error("skipping language", "pair", pair.String(), "error", err)
			lr.Skipped = true
			lr.Cause = err
			report.Languages = append(report.Languages, lr)
			continue
		}

		logger.Info("translating", "pair", pair.String(), "entries", source.Len())
		translated, err := o.translate(ctx, capability, source, &lr, report, logger)
		if err != nil {
			logger.Warn("translation interrupted, existing output left untouched", "pair", pair.String(), "error", err)
			lr.Skipped = true
			lr.Cause = err
			report.Languages = append(report.Languages, lr)
			continue
		}

		path := o.OutputPath(pair.Target)
		if err := translated.Save(path); err != nil {
			logger.Error("failed to save translations", "pair", pair.String(), "error", err)
			lr.Skipped = true
			lr.Cause = err
			report.Languages = append(report.Languages, lr)
			continue
		}

		lr.Output = path
		lr.Duration = time.Since(start)
		report.Languages = append(report.Languages, lr)
		results[pair.Target] = translated
		logger.Info("saved translations", "pair", pair.String(), "path", path,
			"translated", lr.Translated, "fell_back", lr.FellBack)
	}

	report.Err = ctx.Err()
	report.Finished = time.Now()
	return results, report
}

func (o *Orchestrator) resolve(ctx context.Context, pair lang.Pair) (translation.Capability, error) {
	if o.opts.ForceInstall {
		return o.resolver.Reinstall(ctx, pair)
	}
	return o.resolver.EnsureCapability(ctx, pair)
}

// translate returns ctx's error as soon as ctx is done. An entry that
// failed because of the cancellation is not counted as a fallback.
func (o *Orchestrator) translate(ctx context.Context, c translation.Capability, source *Dictionary,
	lr *LanguageReport, report *Report, logger *slog.Logger) (*Dictionary, error) {
	cached := translation.NewCached(c)
	out := NewDictionary()
	bar := o.progressBar(c.Pair().Target, source.Len())

	var warnings []Warning
	for _, entry := range source.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, _ := cached.Entry(ctx, entry.Text)
		if res.FellBack && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		out.Set(entry.Key, res.Text)

		if res.FellBack {
			lr.FellBack++
			warnings = append(warnings, Warning{Language: lr.Code, Key: entry.Key, Err: res.Err})
			logger.Warn("translation failed, keeping source text", "language", lr.Code, "key", entry.Key, "error", res.Err)
		} else {
			lr.Translated++
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	// Every successful miss added one cache entry, the rest were hits
	lr.Reused = lr.Translated - cached.Len()
	report.Warnings = append(report.Warnings, warnings...)
	return out, nil
}

func (o *Orchestrator) progressBar(code string, total int) *progressbar.ProgressBar {
	if o.opts.Progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("Translating to %s", code)),
		progressbar.OptionSetWriter(o.opts.Progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(o.opts.Progress)
		}),
	)
}
