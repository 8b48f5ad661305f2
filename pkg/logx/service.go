package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultFilePath is used when file logging is enabled without a path.
const DefaultFilePath = "./motdd.log"

// Config mirrors the daemon's logging section.
type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// Service owns the daemon's log sinks. Loggers from a Service pick up Apply
// without being rebuilt.
type Service struct {
	console io.Writer

	mu   sync.Mutex
	cfg  Config
	file *os.File

	cur atomic.Pointer[zerolog.Logger]
}

// New builds the service and applies cfg. A log file that cannot be opened is
// reported on the console and the service keeps running without it.
func New(cfg Config) (*Service, Logger) {
	s := &Service{console: os.Stdout}
	if err := s.Apply(cfg); err != nil {
		s.Logger().Warn("file logging disabled", Err(err))
	}
	return s, s.Logger()
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

func (s *Service) load() zerolog.Logger {
	if zl := s.cur.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Apply replaces level and sinks. The new file is opened before the old one is
// closed; if it fails the other sinks are still applied and the error returned.
// With no sink left the console is used.
func (s *Service) Apply(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		sinks   []io.Writer
		next    *os.File
		fileErr error
	)
	if cfg.Console {
		sinks = append(sinks, consoleWriter(s.console))
	}
	if cfg.File.Enabled {
		next, fileErr = openLogFile(cfg.File.Path)
		if next != nil {
			sinks = append(sinks, zerolog.SyncWriter(next))
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(s.console))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Logger()
	s.cur.Store(&zl)

	prev := s.file
	s.file = next
	s.cfg = cfg
	if prev != nil {
		_ = prev.Close()
	}
	return fileErr
}

// Close releases the log file and routes later writes to the console.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	zl := zerolog.New(consoleWriter(s.console)).Level(parseLevel(s.cfg.Level)).With().Timestamp().Logger()
	s.cur.Store(&zl)
	f := s.file
	s.file = nil
	return f.Close()
}

func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFilePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func consoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   timeFormat,
		FormatCaller: func(i any) string { s, _ := i.(string); return s },
	}
}
