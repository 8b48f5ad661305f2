package motd

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"randommotd/internal/eventbus"
	logx "randommotd/pkg/logx"
)

// EventUpdated is published on the bus after each applied status.
const EventUpdated = "motd.updated"

// Host is the status field owned by the hosting server.
type Host interface {
	SetStatus(text string)
}

// HostFunc adapts a plain function to Host.
type HostFunc func(text string)

func (f HostFunc) SetStatus(text string) { f(text) }

type State int32

const (
	StateIdle State = iota
	StateScheduled
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// Update describes one applied status.
type Update struct {
	ID    string
	Index int
	Raw   string
	Text  string
	At    time.Time
}

var errNoMessages = errors.New("message list is empty")

type RotatorOption func(*Rotator)

func WithPicker(p Picker) RotatorOption {
	return func(r *Rotator) {
		if p != nil {
			r.pick = p
		}
	}
}

// WithNewlines toggles the backslash-n / slash-n expansion (on by default).
func WithNewlines(enabled bool) RotatorOption {
	return func(r *Rotator) { r.newlines = enabled }
}

func WithBus(bus eventbus.Bus) RotatorOption {
	return func(r *Rotator) { r.bus = bus }
}

func WithClock(now func() time.Time) RotatorOption {
	return func(r *Rotator) {
		if now != nil {
			r.now = now
		}
	}
}

type hostRef struct{ h Host }

// Rotator picks a random message on every tick and pushes it to the host.
//
// The message list is set once before the first tick and only read afterwards.
type Rotator struct {
	log      logx.Logger
	messages []string
	newlines bool
	pick     Picker
	bus      eventbus.Bus
	now      func() time.Time

	host  atomic.Pointer[hostRef]
	state atomic.Int32
	ticks atomic.Uint64

	// busy holds a token while a tick runs.
	busy chan struct{}
}

func NewRotator(messages []string, log logx.Logger, opts ...RotatorOption) *Rotator {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Rotator{
		log:      log,
		messages: messages,
		newlines: true,
		pick:     rand.IntN,
		now:      time.Now,
		busy:     make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// BindHost sets (or replaces) the status target. Passing nil unbinds it.
func (r *Rotator) BindHost(h Host) {
	if h == nil {
		r.host.Store(nil)
		return
	}
	r.host.Store(&hostRef{h: h})
}

func (r *Rotator) Bound() bool { return r.host.Load() != nil }

func (r *Rotator) State() State { return State(r.state.Load()) }

func (r *Rotator) setState(s State) { r.state.Store(int32(s)) }

// Messages returns a copy of the loaded list.
func (r *Rotator) Messages() []string { return append([]string(nil), r.messages...) }

// Ticks reports how many ticks ran, including skipped ones.
func (r *Rotator) Ticks() uint64 { return r.ticks.Load() }

// Tick is the scheduled job. Failures are logged; nothing is retried until the next tick.
// A tick that starts after the rotator was stopped does nothing.
func (r *Rotator) Tick(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case r.busy <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-r.busy }()
	if ctx.Err() != nil || r.State() == StateStopped {
		return
	}
	u, err := r.rotate()
	switch {
	case errors.Is(err, errNoMessages):
		r.log.Warn("message list is empty; skipping update")
	case errors.Is(err, ErrMissingHost):
		r.log.Error("host not available to update status", logx.Err(err))
	case err != nil:
		r.log.Error("status update failed", logx.Err(err))
	default:
		r.log.Info("updated status", logx.Int("index", u.Index), logx.String("motd", u.Text))
	}
}

func (r *Rotator) rotate() (Update, error) {
	r.ticks.Add(1)
	n := len(r.messages)
	if n == 0 {
		return Update{}, errNoMessages
	}
	idx := r.pick(n)
	if idx < 0 || idx >= n {
		idx = 0
	}
	raw := r.messages[idx]
	text := Normalize(raw, r.newlines)

	ref := r.host.Load()
	if ref == nil || ref.h == nil {
		return Update{}, ErrMissingHost
	}
	ref.h.SetStatus(text)

	u := Update{ID: uuid.NewString(), Index: idx, Raw: raw, Text: text, At: r.now()}
	if r.bus != nil {
		r.bus.Publish(eventbus.Event{Type: EventUpdated, Time: u.At, Data: u})
	}
	return u, nil
}

// waitIdle blocks until no tick is running or ctx is done.
func (r *Rotator) waitIdle(ctx context.Context) error {
	select {
	case r.busy <- struct{}{}:
		<-r.busy
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load installs the message list. Only called before scheduling.
func (r *Rotator) load(messages []string) { r.messages = messages }
