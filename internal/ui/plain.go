package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	noColor bool
	stage   Stage
	errors  []ErrorEvent
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		noColor: cfg.NoColor,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// UpdateProgress implements Renderer.
func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stage = event.Stage

	// Format: [STAGE] current/total - message or document id
	var msg string
	if event.Message != "" {
		msg = event.Message
	} else if event.CurrentDoc != "" {
		msg = event.CurrentDoc
	}

	if event.Total > 0 {
		_, _ = fmt.Fprintf(r.out, "[%s] %d/%d - %s\n", event.Stage.Icon(), event.Current, event.Total, msg)
	} else if msg != "" {
		_, _ = fmt.Fprintf(r.out, "[%s] %s\n", event.Stage.Icon(), msg)
	}
}

// AddError implements Renderer.
func (r *PlainRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errors = append(r.errors, event)

	prefix := "ERROR"
	if event.IsWarn {
		prefix = "WARN"
	}

	if event.Doc != "" {
		_, _ = fmt.Fprintf(r.out, "%s: %s: %v\n", prefix, event.Doc, event.Err)
	} else {
		_, _ = fmt.Fprintf(r.out, "%s: %v\n", prefix, event.Err)
	}
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.out, "Complete: %d documents, %d keywords indexed (%s image) in %s",
		stats.Documents, stats.Keywords, FormatBytes(stats.ImageBytes), stats.Duration.Round(100*millisecond))

	if stats.Errors > 0 || stats.Warnings > 0 {
		_, _ = fmt.Fprintf(r.out, " (%d errors, %d warnings)", stats.Errors, stats.Warnings)
	}

	_, _ = fmt.Fprintln(r.out)

	// Show detailed stage breakdown if available
	if stats.Stages.Ingest > 0 || stats.Stages.Embed > 0 {
		_, _ = fmt.Fprintln(r.out)
		_, _ = fmt.Fprintln(r.out, "Stage Breakdown:")
		_, _ = fmt.Fprintf(r.out, "  Ingest:    %s (documents parsed)\n", stats.Stages.Ingest.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Extract:   %s (keyphrases extracted)\n", stats.Stages.Extract.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Aggregate: %s (postings grouped)\n", stats.Stages.Aggregate.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Compress:  %s (strings compressed)\n", stats.Stages.Compress.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Build:     %s (FST assembled)\n", stats.Stages.Build.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Serialize: %s (image encoded)\n", stats.Stages.Serialize.Round(100*millisecond))
		_, _ = fmt.Fprintf(r.out, "  Embed:     %s (wasm patched)\n", stats.Stages.Embed.Round(100*millisecond))
	}
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

const millisecond = 1000000 // nanoseconds
