// Package analyzer issues the three natural-language analysis requests
// against a hosted text-generation model and assembles the responses into
// one markdown report body.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nao1215/markdown"
)

// timestampLayout renders the process-start time in the report header.
const timestampLayout = "2006-01-02 - 15:04:05"

// Generator is the single capability the analyzer needs from the model
// client: turn prompt parts into text.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...string) (string, error)
}

// SectionResult is the typed outcome of one optional analysis request.
// A failure keeps its reason observable instead of vanishing into a log line.
type SectionResult struct {
	Name string
	Text string
	Err  error
}

// Report carries the assembled markdown body plus the per-request outcomes.
type Report struct {
	Body     string
	Sections []SectionResult
}

// Analyzer runs the fixed three-request analysis sequence.
type Analyzer struct {
	gen        Generator
	attempts   int
	retryDelay time.Duration
	sleep      func(time.Duration)
	out        io.Writer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRetry sets the mandatory request's total attempt count and the fixed
// delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(a *Analyzer) {
		if attempts > 0 {
			a.attempts = attempts
		}
		if delay >= 0 {
			a.retryDelay = delay
		}
	}
}

// WithOutput redirects progress and warning lines (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(a *Analyzer) { a.out = w }
}

// WithSleep overrides the delay function between retry attempts (tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(a *Analyzer) { a.sleep = sleep }
}

// New returns an Analyzer with the default policy: 3 attempts for the
// mandatory request, a fixed 5 second pause between them, no backoff growth.
func New(gen Generator, opts ...Option) *Analyzer {
	a := &Analyzer{
		gen:        gen,
		attempts:   3,
		retryDelay: 5 * time.Second,
		sleep:      time.Sleep,
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run sends the three requests in sequence and assembles the report body.
// The first request is retried up to the configured attempt count and its
// exhaustion is fatal (*ModelUnavailableError). The visualization and
// cleaning requests run exactly once each; their failures only omit the
// corresponding section.
func (a *Analyzer) Run(ctx context.Context, sampleData, sourceName string, startedAt time.Time) (*Report, error) {
	explain, err := a.generateWithRetry(ctx, promptExplain, sampleData)
	if err != nil {
		return nil, &ModelUnavailableError{Attempts: a.attempts, Err: err}
	}
	sections := []SectionResult{{Name: "explanation", Text: explain}}

	fmt.Fprintln(a.out, "Generating data visualization techniques for data analysis of this file...")
	sections = append(sections, a.optional(ctx, "visualization", promptVisualization, sampleData))

	fmt.Fprintln(a.out, "Generating data cleaning recommendations...")
	sections = append(sections, a.optional(ctx, "cleaning", promptCleaning, sampleData))

	return &Report{
		Body:     assemble(startedAt, sourceName, sections),
		Sections: sections,
	}, nil
}

// generateWithRetry drives the mandatory request's state machine:
// Pending -> Done on success, or Pending -> retry(<=attempts) -> Failed.
// The delay between attempts is fixed, without jitter.
func (a *Analyzer) generateWithRetry(ctx context.Context, parts ...string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := a.gen.GenerateContent(ctx, parts...)
		if err == nil {
			return text, nil
		}
		lastErr = err
		fmt.Fprintf(a.out, "⚠ model request failed (attempt %d/%d): %v\n", attempt, a.attempts, err)
		if attempt < a.attempts {
			a.sleep(a.retryDelay)
		}
	}
	return "", lastErr
}

// optional runs one non-mandatory request exactly once.
func (a *Analyzer) optional(ctx context.Context, name, prompt, sampleData string) SectionResult {
	text, err := a.gen.GenerateContent(ctx, prompt, sampleData)
	if err != nil {
		fmt.Fprintf(a.out, "⚠ a part of the report could not be created (%s): %v\n", name, err)
		return SectionResult{Name: name, Err: err}
	}
	return SectionResult{Name: name, Text: text}
}

// assemble builds the report body: right-aligned timestamp, italic source
// label, a horizontal rule, then each successful section's text with the
// literal token "CSV" removed.
func assemble(startedAt time.Time, sourceName string, sections []SectionResult) string {
	var buf strings.Builder
	md := markdown.NewMarkdown(&buf)
	md.PlainTextf(`<div style="text-align: right"> %s </div><br>`, startedAt.Format(timestampLayout))
	md.PlainText("")
	md.PlainTextf(`<div style="font-style: italic"> %s </div>`, sourceLabel(sourceName))
	md.PlainText("")
	md.HorizontalRule()
	for _, s := range sections {
		if s.Err != nil {
			continue
		}
		md.PlainText("")
		md.PlainText(stripToken(s.Text))
	}
	_ = md.Build()
	return buf.String()
}

// stripToken removes every case-sensitive occurrence of the literal substring
// "CSV". Deliberately not word-boundary aware: "CSVfile" becomes "file".
func stripToken(s string) string {
	return strings.ReplaceAll(s, "CSV", "")
}

// sourceLabel is the first path segment of the source name before any
// separator, matching the header label of the original reports.
func sourceLabel(name string) string {
	if i := strings.IndexAny(name, `/\`); i >= 0 {
		return name[:i]
	}
	return name
}
