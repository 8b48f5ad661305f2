package status

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf16"

	"golang.org/x/time/rate"

	logx "randommotd/pkg/logx"
)

const DefaultPropertiesKey = "motd"

type PropertiesConfig struct {
	Path string
	// Key defaults to "motd".
	Key string
	// MaxWritesPerSec drops updates above this rate; <= 0 means unlimited.
	MaxWritesPerSec float64
}

// PropertiesFile rewrites one key of a Java-style .properties file (e.g. server.properties).
type PropertiesFile struct {
	cfg     PropertiesConfig
	log     logx.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	writes  atomic.Uint64
	dropped atomic.Uint64
}

func NewPropertiesFile(cfg PropertiesConfig, log logx.Logger) (*PropertiesFile, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("properties path required")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		cfg.Key = DefaultPropertiesKey
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.MaxWritesPerSec > 0 {
		burst := int(cfg.MaxWritesPerSec)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.MaxWritesPerSec), burst)
	}
	return &PropertiesFile{cfg: cfg, log: log, limiter: lim}, nil
}

func (p *PropertiesFile) SetStatus(text string) {
	if !p.limiter.Allow() {
		p.dropped.Add(1)
		p.log.Debug("properties write dropped (rate limited)", logx.String("path", p.cfg.Path))
		return
	}
	if err := p.Write(text); err != nil {
		p.log.Error("properties write failed", logx.String("path", p.cfg.Path), logx.Err(err))
	}
}

// Writes and Dropped are best-effort counters.
func (p *PropertiesFile) Writes() uint64  { return p.writes.Load() }
func (p *PropertiesFile) Dropped() uint64 { return p.dropped.Load() }

// Write sets the key to text, bypassing the rate limit.
func (p *PropertiesFile) Write(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, err := os.ReadFile(p.cfg.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	out := SetProperty(string(b), p.cfg.Key, text)
	if err := writeAtomic(p.cfg.Path, []byte(out)); err != nil {
		return err
	}
	p.writes.Add(1)
	return nil
}

// SetProperty replaces the first assignment of key in content, or appends one.
func SetProperty(content, key, value string) string {
	line := EscapeKey(key) + "=" + EscapeValue(value)
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		if propertyKey(l) == key {
			lines[i] = line
			return strings.Join(lines, "\n") + "\n"
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n") + "\n"
}

func propertyKey(line string) string {
	s := strings.TrimLeft(line, " \t\f")
	if s == "" || s[0] == '#' || s[0] == '!' {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

func EscapeKey(k string) string {
	r := strings.NewReplacer(`\`, `\\`, "=", `\=`, ":", `\:`, " ", `\ `)
	return r.Replace(k)
}

// EscapeValue encodes s the way java.util.Properties.store does for values:
// control characters and non-ASCII runes become \uXXXX.
func EscapeValue(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == ' ' && i == 0:
			b.WriteString(`\ `)
		case r < 0x20 || r > 0x7e:
			if r > 0xffff {
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04X\u%04X`, r1, r2)
			} else {
				fmt.Fprintf(&b, `\u%04X`, r)
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if st, err := os.Stat(path); err == nil {
		_ = os.Chmod(name, st.Mode().Perm())
	}
	return os.Rename(name, path)
}
