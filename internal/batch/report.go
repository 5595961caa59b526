package batch

import (
	"fmt"
	"io"
	"time"
)

// LanguageReport is the outcome of one target language
type LanguageReport struct {
	Code       string
	Translated int // entries with a model translation, cache hits included
	Reused     int // entries served from the memo cache
	FellBack   int // entries that kept their source text
	Skipped    bool
	Cause      error // why the language was skipped
	Output     string
	Duration   time.Duration
}

// Warning records one entry that fell back to its source text
type Warning struct {
	Language string
	Key      string
	Err      error
}

// Report summarises a batch run
type Report struct {
	RunID     string
	Entries   int
	Languages []LanguageReport
	Warnings  []Warning
	Started   time.Time
	Finished  time.Time
	Err       error // set when the run was cancelled before it finished
}

// Written returns the number of languages whose output was written
func (r *Report) Written() int {
	n := 0
	for _, l := range r.Languages {
		if !l.Skipped {
			n++
		}
	}
	return n
}

// Skipped returns the codes of the languages that were skipped
func (r *Report) Skipped() []string {
	var codes []string
	for _, l := range r.Languages {
		if l.Skipped {
			codes = append(codes, l.Code)
		}
	}
	return codes
}

// PrintSummary writes a human readable summary of the run
func (r *Report) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n=== Batch Translation Summary (run %s) ===\n", r.RunID)
	fmt.Fprintf(w, "Source entries: %d\n", r.Entries)
	for _, l := range r.Languages {
		if l.Skipped {
			fmt.Fprintf(w, "  %-4s skipped: %v\n", l.Code, l.Cause)
			continue
		}
		fmt.Fprintf(w, "  %-4s translated %d, fell back %d -> %s\n", l.Code, l.Translated, l.FellBack, l.Output)
	}
	fmt.Fprintf(w, "Languages written: %d/%d\n", r.Written(), len(r.Languages))
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", len(r.Warnings))
	}
	if r.Err != nil {
		fmt.Fprintf(w, "Interrupted: %v\n", r.Err)
	}
	fmt.Fprintf(w, "Duration: %s\n", r.Finished.Sub(r.Started).Round(time.Millisecond))
	fmt.Fprintf(w, "==========================================\n")
}
