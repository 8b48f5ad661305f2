package motd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	logx "randommotd/pkg/logx"
)

// DefaultJobName is the schedule name used for the rotation job.
const DefaultJobName = "motd.rotate"

// Scheduler runs job immediately and then every interval, until the job is removed.
type Scheduler interface {
	Every(name string, every time.Duration, job func(ctx context.Context)) error
	Remove(name string) bool
}

type Options struct {
	// Dir holds message-list and randomize-message-timer. Defaults to DefaultDir.
	Dir string
	// DisableNewlines keeps backslash-n and slash-n sequences as typed.
	DisableNewlines bool
	JobName         string
}

// Snapshot is a point-in-time view of a Binding.
type Snapshot struct {
	State       State
	HostBound   bool
	Interval    time.Duration
	Messages    int
	MessagePath string
	TimerPath   string
	Ticks       uint64
}

// Binding is the surface a host talks to: BindHost when the status field exists,
// Start once when the host is ready.
type Binding struct {
	opts  Options
	log   logx.Logger
	sched Scheduler
	rot   *Rotator

	started atomic.Bool

	mu   sync.Mutex
	snap Snapshot
}

func NewBinding(opts Options, sched Scheduler, log logx.Logger, ropts ...RotatorOption) *Binding {
	if log.IsZero() {
		log = logx.Nop()
	}
	if strings.TrimSpace(opts.Dir) == "" {
		opts.Dir = DefaultDir
	}
	if strings.TrimSpace(opts.JobName) == "" {
		opts.JobName = DefaultJobName
	}
	ropts = append([]RotatorOption{WithNewlines(!opts.DisableNewlines)}, ropts...)
	return &Binding{
		opts:  opts,
		log:   log,
		sched: sched,
		rot:   NewRotator(nil, log.With(logx.String("comp", "rotator")), ropts...),
	}
}

func (b *Binding) BindHost(h Host) { b.rot.BindHost(h) }

func (b *Binding) Rotator() *Rotator { return b.rot }

// Start resolves and loads the config files, then schedules the rotator.
//
// Only an unusable config directory (or a scheduler failure) leaves the module
// inactive; every other problem falls back to defaults.
func (b *Binding) Start(ctx context.Context) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if !b.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if b.sched == nil {
		return errors.New("motd: scheduler required")
	}

	res := Resolver{Dir: b.opts.Dir, Log: b.log}
	if err := res.EnsureDir(); err != nil {
		b.log.Error("config directory unusable; module inactive", logx.String("dir", b.opts.Dir), logx.Err(err))
		return err
	}

	msgPath, err := res.Resolve(MessageListName, DefaultMessages)
	if err != nil {
		b.log.Warn("message list not resolved; using defaults", logx.Err(err))
	}
	timerPath, err := res.Resolve(TimerName, DefaultTimerLines)
	if err != nil {
		b.log.Warn("timer file not resolved; using default interval", logx.Err(err))
	}

	msgs := defaultMessages()
	if msgPath != "" {
		msgs = LoadMessages(msgPath, b.log)
	}
	interval := DefaultInterval
	if timerPath != "" {
		interval = LoadInterval(timerPath, b.log)
	}

	b.rot.load(msgs)
	b.rot.setState(StateScheduled)

	b.mu.Lock()
	b.snap = Snapshot{
		Interval:    interval,
		Messages:    len(msgs),
		MessagePath: msgPath,
		TimerPath:   timerPath,
	}
	b.mu.Unlock()

	if err := b.sched.Every(b.opts.JobName, interval, b.rot.Tick); err != nil {
		b.rot.setState(StateIdle)
		b.log.Error("schedule rotation failed; module inactive", logx.Err(err))
		return err
	}
	b.log.Info("rotation scheduled",
		logx.Duration("interval", interval),
		logx.Int("messages", len(msgs)),
		logx.Bool("host_bound", b.rot.Bound()))
	return nil
}

// Stop removes the rotation job and waits for an in-flight tick, bounded by ctx.
// The binding cannot be started again.
func (b *Binding) Stop(ctx context.Context) error {
	if b.rot.State() != StateScheduled {
		return nil
	}
	if b.sched != nil {
		b.sched.Remove(b.opts.JobName)
	}
	b.rot.setState(StateStopped)
	if ctx == nil {
		ctx = context.Background()
	}
	if err := b.rot.waitIdle(ctx); err != nil {
		b.log.Warn("rotation stop: tick still running", logx.Err(err))
		return err
	}
	b.log.Info("rotation stopped", logx.Uint64("ticks", b.rot.Ticks()))
	return nil
}

func (b *Binding) Snapshot() Snapshot {
	b.mu.Lock()
	s := b.snap
	b.mu.Unlock()
	s.State = b.rot.State()
	s.HostBound = b.rot.Bound()
	s.Ticks = b.rot.Ticks()
	return s
}
