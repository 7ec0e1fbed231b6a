package worker

import "context"

// Worker is a long-running component that stops when ctx is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}
