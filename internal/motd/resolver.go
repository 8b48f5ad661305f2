package motd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	logx "randommotd/pkg/logx"
)

const (
	// DefaultDir is the config directory used when none is configured.
	DefaultDir = "./config/random-motd"

	MessageListName = "message-list"
	TimerName       = "randomize-message-timer"

	preferredExt = ".txt"
)

// DefaultTimerLines is written to a freshly created timer file.
var DefaultTimerLines = []string{
	"#Change MOTD timer set below",
	"hours=0",
	"minutes=1",
	"seconds=0",
}

// Resolver maps logical config names to physical files inside Dir.
type Resolver struct {
	Dir string
	Log logx.Logger
}

func (r Resolver) dir() string {
	if d := strings.TrimSpace(r.Dir); d != "" {
		return d
	}
	return DefaultDir
}

// EnsureDir creates the config directory if needed.
func (r Resolver) EnsureDir() error {
	dir := r.dir()
	st, err := os.Stat(dir)
	switch {
	case err == nil:
		if !st.IsDir() {
			return fmt.Errorf("%w: %s exists but is not a directory", ErrConfigDirectory, dir)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigDirectory, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrConfigDirectory, err)
	}
}

// Resolve returns the file bound to base.
//
// Preference: base.txt, then the legacy extensionless base, then a new base.txt
// populated with defaults. An existing file is never overwritten.
func (r Resolver) Resolve(base string, defaults []string) (string, error) {
	if err := r.EnsureDir(); err != nil {
		return "", err
	}
	log := r.Log
	if log.IsZero() {
		log = logx.Nop()
	}

	txt := filepath.Join(r.dir(), base+preferredExt)
	raw := filepath.Join(r.dir(), base)

	txtOK := isRegular(txt)
	rawOK := isRegular(raw)
	if txtOK && rawOK {
		log.Info("both config files exist; using .txt",
			logx.String("using", txt), logx.String("ignored", raw))
	}
	if txtOK {
		return txt, nil
	}
	if rawOK {
		return raw, nil
	}

	if err := writeNew(txt, defaults); err != nil {
		return "", err
	}
	log.Info("created default config", logx.String("path", txt), logx.Int("lines", len(defaults)))
	return txt, nil
}

func isRegular(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func writeNew(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigFileConflict, path)
		}
		return err
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
