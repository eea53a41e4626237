package notify

import (
	"context"
	"log/slog"
)

var _ Notifier = (*Multi)(nil)

// Multi fans a notice out to all registered notifiers.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a notifier that delegates to every non-nil notifier given.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify never fails; a failing channel is logged and the rest still run.
func (m *Multi) Notify(ctx context.Context, n Notice) error {
	for _, nt := range m.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			slog.Error("multi-notifier: notification failed", "kind", string(n.Kind), "error", err)
		}
	}
	return nil
}
