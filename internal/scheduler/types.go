package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	logx "randommotd/pkg/logx"
)

type scheduleDef struct {
	name    string
	every   time.Duration
	job     func(ctx context.Context)
	entryID cron.EntryID
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	loc *time.Location

	c      *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	defs   map[string]*scheduleDef
}

type ScheduleInfo struct {
	Name  string
	Every time.Duration
	Next  time.Time
	Prev  time.Time
}

// immediateSchedule fires at the first time it is asked, then delegates to base.
type immediateSchedule struct {
	base  cron.Schedule
	fired atomic.Bool
}

func (s *immediateSchedule) Next(t time.Time) time.Time {
	if s.fired.CompareAndSwap(false, true) {
		return t
	}
	return s.base.Next(t)
}

// cronLogger routes robfig/cron's internal logging through logx.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}
