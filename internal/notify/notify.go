// Package notify carries short user-facing notices (toasts) and operator
// alerts to whichever channels are configured.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Error   Kind = "error"
)

func (k Kind) Valid() bool {
	switch k {
	case Info, Success, Error:
		return true
	}
	return false
}

type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (n Notice) String() string {
	if n.Detail == "" {
		return fmt.Sprintf("[%s] %s", n.Kind, n.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", n.Kind, n.Message, n.Detail)
}

// Notifier delivers a notice. Callers treat delivery as fire-and-forget and
// only log a returned error.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice) error

func (f NotifierFunc) Notify(ctx context.Context, n Notice) error {
	return f(ctx, n)
}

// Log writes notices to the structured log.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, n Notice) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Kind == Error {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "notice", "kind", string(n.Kind), "message", n.Message, "detail", n.Detail)
	return nil
}

// Recorder keeps notices so a handler can hand them back to the browser.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
