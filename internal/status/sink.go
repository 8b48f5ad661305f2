// Package status provides motd.Host implementations a daemon can push to.
package status

import (
	"sync"

	"randommotd/internal/motd"
	logx "randommotd/pkg/logx"
)

// Memory keeps the latest status in memory.
type Memory struct {
	mu  sync.RWMutex
	cur string
	n   int
}

func (m *Memory) SetStatus(text string) {
	m.mu.Lock()
	m.cur = text
	m.n++
	m.mu.Unlock()
}

func (m *Memory) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

// Count reports how many times SetStatus was called.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.n
}

// Log writes every status to a logger.
type Log struct {
	Logger logx.Logger
}

func (l Log) SetStatus(text string) {
	l.Logger.Info("status changed", logx.String("motd", text))
}

type fanout []motd.Host

func (f fanout) SetStatus(text string) {
	for _, h := range f {
		h.SetStatus(text)
	}
}

// Fanout forwards every status to all non-nil hosts, in order.
func Fanout(hosts ...motd.Host) motd.Host {
	out := make(fanout, 0, len(hosts))
	for _, h := range hosts {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
