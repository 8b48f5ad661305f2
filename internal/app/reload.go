package app

import (
	"context"
	"slices"
	"strings"

	"randommotd/internal/config"
	logx "randommotd/pkg/logx"
)

// reloadLoop applies daemon config changes. Logging and host sinks are live;
// motd and history changes only take effect after a restart.
func (a *App) reloadLoop(ctx context.Context, sub <-chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			// Coalesce bursts: keep only the latest config in the channel.
		drain:
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					break drain
				}
			}
			if newCfg == nil {
				continue
			}
			a.applyConfig(lastApplied, newCfg)
			lastApplied = newCfg
		}
	}
}

func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	if slices.Contains(sections, "logging") {
		if err := a.logs.Apply(logConfig(newCfg)); err != nil {
			a.log.Warn("logging applied without file sink", logx.Err(err))
		}
	}
	if slices.Contains(sections, "host") {
		if err := a.host.apply(newCfg.Host); err != nil {
			a.log.Warn("invalid host config; keeping previous", logx.Err(err))
		}
	}
	if slices.Contains(sections, "motd") {
		a.log.Warn("motd config changed; restart required for changes to take effect")
	}
	if slices.Contains(sections, "history") {
		a.log.Warn("history config changed; restart required for changes to take effect")
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}
