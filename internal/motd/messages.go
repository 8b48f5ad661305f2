package motd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	logx "randommotd/pkg/logx"
)

// DefaultMessages is used whenever the message list is missing or empty.
var DefaultMessages = []string{"Welcome Server", "Test", "Change these strings!"}

func defaultMessages() []string {
	return append([]string(nil), DefaultMessages...)
}

// trimControl strips leading and trailing runes <= U+0020. Unicode spaces such
// as U+00A0 are content.
func trimControl(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}

// ParseMessages returns the trimmed, non-blank lines of r in order.
func ParseMessages(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrConfigFileRead, n)
		}
		line = trimControl(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
	}
	return out, nil
}

// LoadMessages reads the message list at path. It always returns a usable list.
func LoadMessages(path string, log logx.Logger) []string {
	if log.IsZero() {
		log = logx.Nop()
	}
	msgs, err := readMessages(path)
	if err != nil {
		log.Warn("failed to load messages; using defaults", logx.String("path", path), logx.Err(err))
		return defaultMessages()
	}
	if len(msgs) == 0 {
		log.Warn("no messages found; using defaults", logx.String("path", path))
		return defaultMessages()
	}
	log.Info("loaded messages", logx.String("path", path), logx.Int("count", len(msgs)))
	return msgs
}

func readMessages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
	}
	defer f.Close()
	return ParseMessages(f)
}
