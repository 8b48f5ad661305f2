package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"randommotd/internal/config"
	"randommotd/internal/eventbus"
	"randommotd/internal/motd"
	"randommotd/internal/runtime/supervisor"
	"randommotd/internal/scheduler"
	"randommotd/internal/storage"
	logx "randommotd/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store

	sched   *scheduler.Service
	binding *motd.Binding
	host    *hostSet

	notify notifyFunc
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(logConfig(cfg))
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	sc, err := mapStorageConfig(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	store, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	if store != nil {
		log.Info("history enabled", logx.String("driver", sc.Driver), logx.String("path", sc.Path))
	}

	host, err := newHostSet(cfg.Host, log.With(logx.String("comp", "host")))
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		_ = logSvc.Close()
		return nil, err
	}

	bus := eventbus.New()
	schedSvc := scheduler.New(log.With(logx.String("comp", "scheduler")))
	binding := motd.NewBinding(motd.Options{
		Dir:             cfg.Motd.ConfigDir,
		DisableNewlines: !cfg.Motd.NewlinesEnabled(),
	}, schedSvc, log.With(logx.String("comp", "motd")), motd.WithBus(bus))

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     bus,
		store:   store,
		sched:   schedSvc,
		binding: binding,
		host:    host,
		notify:  sdNotify,
	}, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Binding() *motd.Binding { return a.binding }

// Current returns the last status pushed to the host.
func (a *App) Current() string { return a.host.mem.Current() }

func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	a.sched.Start()

	// Subscribers must exist before the binding starts: the first tick fires immediately.
	if a.store != nil {
		events, unsub := a.bus.Subscribe(64)
		a.sup.Go("history.record", func(c context.Context) error {
			defer unsub()
			return recordHistory(c, events, a.store, a.log.With(logx.String("comp", "history")))
		})
	}

	// The host's status field exists from here on.
	a.binding.BindHost(a.host)
	if err := a.binding.Start(a.sup.Context()); err != nil {
		// Binding.Start already logged; the daemon stays up so it can be stopped cleanly.
		a.log.Warn("motd rotation inactive", logx.Err(err))
	}

	sub := a.cfgm.Subscribe(8)
	a.sup.Go("config.reload", func(c context.Context) error {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(c, sub)
		return nil
	})
	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.notify(notifyReady)
	snap := a.binding.Snapshot()
	a.log.Info("app started",
		logx.String("state", snap.State.String()),
		logx.Duration("interval", snap.Interval),
		logx.Int("messages", snap.Messages))
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	a.notify(notifyStopping)

	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, max)
		defer cancel()
		if err := fn(stepCtx); err != nil {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	}

	step("motd", time.Second, func(c context.Context) error { return a.binding.Stop(c) })
	step("scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Stop(c) })
	step("storage", time.Second, func(c context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})

	a.log.Info("stopped", logx.Uint64("bus_dropped", eventbus.Dropped(a.bus)))
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

func logConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	hc := cfg.History
	driver := strings.ToLower(strings.TrimSpace(hc.Driver))
	path := strings.TrimSpace(hc.Path)
	switch driver {
	case "", "none":
		return storage.Config{}, nil
	case "file":
		return storage.Config{Driver: "file", Path: path}, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, fmt.Errorf("history.path is required when history.driver=sqlite")
		}
		busy, err := config.ParseDuration("history.busy_timeout", hc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, err
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
	default:
		return storage.Config{}, fmt.Errorf("unknown history.driver: %s", hc.Driver)
	}
}
