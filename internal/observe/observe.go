// Package observe receives the failures that search primitives absorb instead of returning.
package observe

import (
	"context"
	"log/slog"
	"time"
)

// Failure describes one upstream request that was treated as zero hits.
type Failure struct {
	Op       string // primitive name, e.g. search_comments
	Endpoint string
	Query    string
	StoryID  int64
	Page     int
	Status   int // HTTP status, 0 for transport/decode failures
	Err      error
	At       time.Time
}

// Reporter is an observability sink. Implementations must not block for long and never fail.
type Reporter interface {
	Report(ctx context.Context, f Failure)
}

// LogReporter writes failures to slog at warn level.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(ctx context.Context, f Failure) {
	l := r.Logger
	if l == nil {
		l = slog.Default()
	}
	l.WarnContext(ctx, "search: request failed, treating as empty",
		"op", f.Op, "endpoint", f.Endpoint, "query", f.Query, "story_id", f.StoryID,
		"page", f.Page, "status", f.Status, "error", f.Err)
}

// Multi fans a failure out to several reporters.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, f Failure) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, f)
		}
	}
}

// Nop discards failures.
type Nop struct{}

func (Nop) Report(context.Context, Failure) {}
