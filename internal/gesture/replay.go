package gesture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/jonboulle/clockwork"
)

type EventType string

const (
	EventPointerDown  EventType = "pointerdown"
	EventPointerUp    EventType = "pointerup"
	EventPointerLeave EventType = "pointerleave"
	EventDragEnd      EventType = "dragend"
	EventClick        EventType = "click"
)

const (
	MaxTraceEvents   = 256
	MaxTraceDuration = 2 * time.Minute
)

var ErrInvalidTrace = errors.New("invalid gesture trace")

// Event is one pointer event reported by the browser, timed in milliseconds
// from the start of the trace.
type Event struct {
	Type    EventType `json:"type"`
	AtMs    int64     `json:"atMs"`
	OffsetY float64   `json:"offsetY,omitempty"`
}

type Outcome struct {
	Unlocked   bool            `json:"unlocked"`
	Decoy      bool            `json:"decoy"`
	RedirectTo string          `json:"redirectTo,omitempty"`
	Notices    []notify.Notice `json:"notices,omitempty"`
	// Phase is where the machine rests after the last event. A client keeps
	// extending the same trace while it is not Idle.
	Phase Phase `json:"phase"`
}

// ValidateTrace checks that a trace is well formed: bounded, ordered in time
// and made of known events.
func ValidateTrace(events []Event) error {
	if len(events) == 0 {
		return fmt.Errorf("%w: no events", ErrInvalidTrace)
	}
	if len(events) > MaxTraceEvents {
		return fmt.Errorf("%w: more than %d events", ErrInvalidTrace, MaxTraceEvents)
	}
	var last int64
	for i, e := range events {
		switch e.Type {
		case EventPointerDown, EventPointerUp, EventPointerLeave, EventDragEnd, EventClick:
		default:
			return fmt.Errorf("%w: unknown event %q at %d", ErrInvalidTrace, e.Type, i)
		}
		if e.AtMs < last {
			return fmt.Errorf("%w: event %d goes back in time", ErrInvalidTrace, i)
		}
		last = e.AtMs
	}
	if time.Duration(last)*time.Millisecond > MaxTraceDuration {
		return fmt.Errorf("%w: longer than %s", ErrInvalidTrace, MaxTraceDuration)
	}
	return nil
}

// Replay runs a recorded trace through a fresh Machine on a fake clock and
// reports what the interaction produced.
func Replay(ctx context.Context, cfg Config, events []Event) (Outcome, error) {
	if err := cfg.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := ValidateTrace(events); err != nil {
		return Outcome{}, err
	}

	clock := clockwork.NewFakeClock()
	nav := &capturedNavigation{}
	notices := &notify.Recorder{}

	m := New(cfg, clock, nav)
	m.SetNotifier(notices)
	defer m.Close()

	var out Outcome
	var elapsed int64
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		clock.Advance(time.Duration(e.AtMs-elapsed) * time.Millisecond)
		elapsed = e.AtMs

		switch e.Type {
		case EventPointerDown:
			m.PointerDown()
		case EventPointerUp:
			m.PointerUp()
		case EventPointerLeave:
			m.PointerLeave()
		case EventDragEnd:
			if m.DragEnd(e.OffsetY) {
				out.Unlocked = true
			}
		case EventClick:
			if m.Click(ctx) {
				out.Decoy = true
			}
		}
	}

	if out.Unlocked {
		out.RedirectTo = nav.path
	}
	out.Phase = m.Snapshot().Phase
	out.Notices = notices.Notices()
	return out, nil
}

type capturedNavigation struct {
	path string
}

func (c *capturedNavigation) NavigateTo(path string) {
	c.path = path
}
