// Package gesture turns a timed pointer hold followed by an upward drag into
// a navigation trigger, while an ordinary tap on the same target only gets a
// harmless acknowledgement.
package gesture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/jonboulle/clockwork"
)

type Phase int

const (
	Idle Phase = iota
	Holding
	Armed
	// Consumed is passed through while the unlock action fires; a Machine
	// never rests in it.
	Consumed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Armed:
		return "armed"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for _, candidate := range []Phase{Idle, Holding, Armed, Consumed} {
		if candidate.String() == string(b) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown gesture phase %q", b)
}

// State is the transient, per-view interaction state.
type State struct {
	Phase     Phase     `json:"phase"`
	HoldStart time.Time `json:"holdStart,omitzero"`
	Progress  float64   `json:"progress"`
	Armed     bool      `json:"armed"`
}

// Navigator performs the unlock navigation.
type Navigator interface {
	NavigateTo(path string)
}

// Machine is one interaction instance. Hooks and collaborators are invoked
// with the machine locked and must not call back into it.
type Machine struct {
	cfg      Config
	clock    clockwork.Clock
	nav      Navigator
	notifier notify.Notifier

	onProgress func(percent float64)
	onArmed    func()

	mu     sync.Mutex
	state  State
	gen    uint64
	tick   clockwork.Timer
	expiry clockwork.Timer
	closed bool
}

func New(cfg Config, clock clockwork.Clock, nav Navigator) *Machine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Machine{cfg: cfg, clock: clock, nav: nav}
}

func (m *Machine) SetNotifier(n notify.Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// OnProgress registers the hold progress hook, reported in percent.
func (m *Machine) OnProgress(fn func(percent float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress = fn
}

func (m *Machine) OnArmed(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onArmed = fn
}

func (m *Machine) Config() Config {
	return m.cfg
}

// PointerDown starts a hold. Repeated presses while a hold is running or
// armed are ignored.
func (m *Machine) PointerDown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.cfg.RequireHoldBeforeDrag || m.state.Phase != Idle {
		return
	}

	m.gen++
	gen := m.gen
	m.state = State{Phase: Holding, HoldStart: m.clock.Now()}
	m.emitProgress(0)

	// Both timers measure from HoldStart; the decision itself is made in
	// advance, so the number of ticks observed never matters.
	m.tick = m.clock.AfterFunc(m.cfg.ProgressInterval, func() { m.onTimer(gen, true) })
	m.expiry = m.clock.AfterFunc(m.cfg.HoldThreshold, func() { m.onTimer(gen, false) })
}

func (m *Machine) PointerUp() {
	m.release()
}

func (m *Machine) PointerLeave() {
	m.release()
}

// DragEnd reports the vertical offset of a finished drag; negative is
// upward. It returns true when the unlock action fired.
func (m *Machine) DragEnd(offsetY float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	if m.cfg.RequireHoldBeforeDrag {
		m.advance()
		if m.state.Phase != Armed {
			return false
		}
	}
	if offsetY >= -m.cfg.DragThreshold {
		return false
	}

	m.state.Phase = Consumed
	if m.cfg.UnlockMessage != "" {
		m.notify(context.Background(), notify.Notice{Kind: notify.Info, Message: m.cfg.UnlockMessage, Detail: m.cfg.UnlockDetail})
	}
	if m.nav != nil {
		m.nav.NavigateTo(m.cfg.UnlockPath)
	}
	m.reset()
	return true
}

// Click handles a plain tap. Unless the hold has completed it triggers the
// decoy acknowledgement and returns true.
func (m *Machine) Click(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.advance()
	if m.state.Progress >= 100 {
		return false
	}
	m.notify(ctx, notify.Notice{Kind: notify.Info, Message: m.cfg.DecoyMessage})
	return true
}

// Cancel abandons the interaction. It is safe to call in any phase.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Close tears the machine down; later events are ignored.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	m.closed = true
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	return m.state
}

func (m *Machine) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.advance()
	if m.state.Phase == Holding {
		m.reset()
	}
}

func (m *Machine) onTimer(gen uint64, reschedule bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.state.Phase != Holding {
		return
	}
	m.advance()
	if reschedule && m.state.Phase == Holding {
		m.tick = m.clock.AfterFunc(m.cfg.ProgressInterval, func() { m.onTimer(gen, true) })
	}
}

// advance brings a running hold up to date with the clock. Callers hold mu.
func (m *Machine) advance() {
	if m.state.Phase != Holding {
		return
	}
	elapsed := m.clock.Since(m.state.HoldStart)
	if elapsed < m.cfg.HoldThreshold {
		p := float64(elapsed) / float64(m.cfg.HoldThreshold) * 100
		if p > m.state.Progress {
			m.state.Progress = p
			m.emitProgress(p)
		}
		return
	}

	m.state.Progress = 100
	m.emitProgress(100)
	m.stopTimers()
	m.state.Phase = Armed
	m.state.Armed = true
	if m.onArmed != nil {
		m.onArmed()
	}
}

// reset returns to Idle and invalidates callbacks of the current hold.
func (m *Machine) reset() {
	m.gen++
	m.stopTimers()
	m.state = State{Phase: Idle}
}

func (m *Machine) stopTimers() {
	if m.tick != nil {
		m.tick.Stop()
		m.tick = nil
	}
	if m.expiry != nil {
		m.expiry.Stop()
		m.expiry = nil
	}
}

func (m *Machine) notify(ctx context.Context, n notify.Notice) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, n); err != nil {
		slog.Warn("gesture: notify failed", "gesture", m.cfg.Name, "error", err)
	}
}

func (m *Machine) emitProgress(p float64) {
	if m.onProgress != nil {
		m.onProgress(p)
	}
}
