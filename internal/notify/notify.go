// Package notify delivers transient user-facing notifications.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier surfaces operation outcomes to the user. Implementations must
// never block on delivery.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Writer prints notifications to an io.Writer, one per line.
type Writer struct {
	Out io.Writer
}

func (w Writer) Success(msg string) { fmt.Fprintln(w.Out, "ok:", msg) }
func (w Writer) Error(msg string)   { fmt.Fprintln(w.Out, "error:", msg) }

// Recorder collects notifications for assertions in tests.
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}
