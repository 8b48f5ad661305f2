package config

// Config is the daemon config (motdd.yaml / motdd.json).
//
// Only the daemon's own knobs live here. The MOTD message list and timer are
// plain-text files inside motd.config_dir and are read once at startup.
type Config struct {
	Motd    MotdConfig    `json:"motd"`
	Logging LoggingConfig `json:"logging"`
	Host    HostConfig    `json:"host"`
	History HistoryConfig `json:"history"`
}

type MotdConfig struct {
	// ConfigDir defaults to "./config/random-motd".
	ConfigDir string `json:"config_dir,omitempty"`

	// NormalizeNewlines expands backslash-n and slash-n into real newlines.
	// A pointer so an omitted key means true and an explicit false is kept.
	NormalizeNewlines *bool `json:"normalize_newlines,omitempty"`
}

// NewlinesEnabled reports the effective normalize_newlines value.
func (m MotdConfig) NewlinesEnabled() bool {
	return m.NormalizeNewlines == nil || *m.NormalizeNewlines
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// HostConfig selects where applied statuses go.
//
// Example:
//
//	host:
//	  log: true
//	  properties:
//	    enabled: true
//	    path: ./server.properties
//	    max_writes_per_sec: 1
type HostConfig struct {
	Log        bool             `json:"log"`
	Properties PropertiesConfig `json:"properties"`
}

type PropertiesConfig struct {
	Enabled         bool    `json:"enabled"`
	Path            string  `json:"path"`
	Key             string  `json:"key,omitempty"` // default: "motd"
	MaxWritesPerSec float64 `json:"max_writes_per_sec,omitempty"`
}

// HistoryConfig controls the optional applied-status history.
//
// Example:
//
//	"history": { "driver": "sqlite", "path": "./data/motd.db", "busy_timeout": "2s" }
type HistoryConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Default is used when no daemon config file exists.
func Default() *Config {
	return &Config{
		Motd:    MotdConfig{ConfigDir: "./config/random-motd"},
		Logging: LoggingConfig{Level: "info", Console: true},
		Host:    HostConfig{Log: true},
		History: HistoryConfig{Driver: "none"},
	}
}
