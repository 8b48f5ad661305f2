package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	logx "randommotd/pkg/logx"
)

func New(log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:  log,
		loc:  time.Local,
		defs: map[string]*scheduleDef{},
	}
}

// Start starts triggering and registers every job added so far.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	cl := cronLogger{log: s.log}
	s.c = cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, d := range s.defs {
		if err := s.addLocked(d); err != nil {
			s.log.Error("schedule register failed", logx.String("name", d.name), logx.Err(err))
		}
	}
	s.c.Start()
	s.log.Info("service started", logx.Int("schedules", len(s.defs)))
}

// Stop stops triggering and waits for running jobs (or ctx).
// Definitions are kept so a later Start resumes them.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c = nil
	s.cancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	if cancel != nil {
		cancel()
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

// Every registers job under name, replacing any job with the same name.
// The job runs right away if the service is started, otherwise on Start.
func (s *Service) Every(name string, every time.Duration, job func(ctx context.Context)) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name required")
	}
	if every <= 0 {
		return fmt.Errorf("interval must be > 0 (got %s)", every)
	}
	if job == nil {
		return errors.New("job required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(name)
	d := &scheduleDef{name: name, every: every, job: job}
	s.defs[name] = d
	if s.c == nil {
		return nil
	}
	if err := s.addLocked(d); err != nil {
		delete(s.defs, name)
		return err
	}
	s.log.Debug("schedule registered", logx.String("name", name), logx.Duration("every", every))
	return nil
}

// Remove unregisters name. It reports whether anything was removed.
func (s *Service) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(name)
}

func (s *Service) Entries() []ScheduleInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduleInfo, 0, len(s.defs))
	for _, d := range s.defs {
		info := ScheduleInfo{Name: d.name, Every: d.every}
		if s.c != nil && d.entryID != 0 {
			e := s.c.Entry(d.entryID)
			info.Next = e.Next
			info.Prev = e.Prev
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) addLocked(d *scheduleDef) error {
	ctx := s.ctx
	job := d.job
	sched := &immediateSchedule{base: cron.Every(d.every)}
	d.entryID = s.c.Schedule(sched, cron.FuncJob(func() { job(ctx) }))
	if d.entryID == 0 {
		return fmt.Errorf("cron rejected schedule %q", d.name)
	}
	return nil
}

func (s *Service) removeLocked(name string) bool {
	d, ok := s.defs[name]
	if !ok {
		return false
	}
	if s.c != nil && d.entryID != 0 {
		s.c.Remove(d.entryID)
	}
	delete(s.defs, name)
	return true
}
