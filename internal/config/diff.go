package config

import (
	"strings"

	logx "randommotd/pkg/logx"
)

// SummarizeChange returns the changed sections and structured attrs for logging.
//
// Changes under "motd" are reported but never applied at runtime; the caller
// should warn that a restart is needed.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if strings.TrimSpace(oldCfg.Motd.ConfigDir) != strings.TrimSpace(newCfg.Motd.ConfigDir) ||
		oldCfg.Motd.NewlinesEnabled() != newCfg.Motd.NewlinesEnabled() {
		changed = append(changed, "motd")
		attrs = append(attrs,
			logx.String("motd.config_dir", strings.TrimSpace(newCfg.Motd.ConfigDir)),
			logx.Bool("motd.normalize_newlines", newCfg.Motd.NewlinesEnabled()),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Host != newCfg.Host {
		changed = append(changed, "host")
		attrs = append(attrs,
			logx.Bool("host.log", newCfg.Host.Log),
			logx.Bool("host.properties_enabled", newCfg.Host.Properties.Enabled),
			logx.String("host.properties_path", strings.TrimSpace(newCfg.Host.Properties.Path)),
		)
	}

	if oldCfg.History != newCfg.History {
		changed = append(changed, "history")
		attrs = append(attrs,
			logx.String("history.driver", strings.TrimSpace(newCfg.History.Driver)),
			logx.String("history.path", strings.TrimSpace(newCfg.History.Path)),
		)
	}

	return changed, attrs
}
