package app

import (
	"sync/atomic"

	"randommotd/internal/config"
	"randommotd/internal/motd"
	"randommotd/internal/status"
	logx "randommotd/pkg/logx"
)

// hostSet is the motd.Host handed to the binding. The sinks behind it can be
// swapped on config reload without rebinding.
type hostSet struct {
	log logx.Logger
	mem *status.Memory
	out atomic.Pointer[hostBox]
}

type hostBox struct{ h motd.Host }

func newHostSet(cfg config.HostConfig, log logx.Logger) (*hostSet, error) {
	hs := &hostSet{log: log, mem: &status.Memory{}}
	if err := hs.apply(cfg); err != nil {
		return nil, err
	}
	return hs, nil
}

func (hs *hostSet) SetStatus(text string) {
	if b := hs.out.Load(); b != nil {
		b.h.SetStatus(text)
	}
}

// apply rebuilds the sinks. On error the previous sinks stay in place.
func (hs *hostSet) apply(cfg config.HostConfig) error {
	sinks := []motd.Host{hs.mem}
	if cfg.Log {
		sinks = append(sinks, status.Log{Logger: hs.log})
	}
	if cfg.Properties.Enabled {
		pf, err := status.NewPropertiesFile(status.PropertiesConfig{
			Path:            cfg.Properties.Path,
			Key:             cfg.Properties.Key,
			MaxWritesPerSec: cfg.Properties.MaxWritesPerSec,
		}, hs.log.With(logx.String("sink", "properties")))
		if err != nil {
			return err
		}
		sinks = append(sinks, pf)
	}
	hs.out.Store(&hostBox{h: status.Fanout(sinks...)})
	hs.log.Debug("host sinks applied", logx.Int("sinks", len(sinks)))
	return nil
}
