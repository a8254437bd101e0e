// Package notify delivers short user-visible notices about the outcome of
// uploads and mutations.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/chirp/internal/logging"
)

// Notifier surfaces a notice to the user.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string, err error)
}

type nop struct{}

func (nop) Success(context.Context, string)      {}
func (nop) Error(context.Context, string, error) {}

// Nop discards every notice.
func Nop() Notifier { return nop{} }

// Console prints notices to w and mirrors them to the logger.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	logger logging.Logger
}

func NewConsole(w io.Writer, logger logging.Logger) *Console {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Console{w: w, logger: logger}
}

func (c *Console) Success(ctx context.Context, msg string) {
	c.logger.Info(ctx, "notice", "kind", KindSuccess, "message", msg)
	c.print("✓ " + msg)
}

func (c *Console) Error(ctx context.Context, msg string, err error) {
	c.logger.Warn(ctx, "notice", "kind", KindError, "message", msg, "error", err)
	if err != nil {
		c.print(fmt.Sprintf("✗ %s: %v", msg, err))
		return
	}
	c.print("✗ " + msg)
}

func (c *Console) print(line string) {
	if c.w == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is one recorded notification.
type Notice struct {
	Kind    Kind
	Message string
	Err     error
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Success(_ context.Context, msg string) {
	r.add(Notice{Kind: KindSuccess, Message: msg})
}

func (r *Recorder) Error(_ context.Context, msg string, err error) {
	r.add(Notice{Kind: KindError, Message: msg, Err: err})
}

func (r *Recorder) add(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what has been recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Errors returns only the failure notices.
func (r *Recorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Kind == KindError {
			out = append(out, n)
		}
	}
	return out
}
