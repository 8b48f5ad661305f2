package motd

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	logx "randommotd/pkg/logx"
)

// DefaultInterval applies when the timer file is unusable.
const DefaultInterval = 60 * time.Second

// TimerSpec is the parsed content of the timer file.
type TimerSpec struct {
	Hours   int64
	Minutes int64
	Seconds int64
}

var reKeyValue = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

const maxSeconds = math.MaxInt64 / int64(time.Second)

// Interval converts the parsed values to a positive duration.
func (ts TimerSpec) Interval() (time.Duration, error) {
	if ts.Hours < 0 || ts.Minutes < 0 || ts.Seconds < 0 {
		return 0, fmt.Errorf("%w: negative component", ErrTimerParse)
	}
	if ts.Hours > maxSeconds/3600 || ts.Minutes > maxSeconds/60 {
		return 0, fmt.Errorf("%w: interval too large", ErrTimerParse)
	}
	total := ts.Hours*3600 + ts.Minutes*60
	if total > maxSeconds-ts.Seconds {
		return 0, fmt.Errorf("%w: interval too large", ErrTimerParse)
	}
	total += ts.Seconds
	if total <= 0 {
		return 0, fmt.Errorf("%w: interval must be > 0", ErrTimerParse)
	}
	return time.Duration(total) * time.Second, nil
}

// ParseTimer reads hours/minutes/seconds from r.
// Blank and '#' lines are skipped, unknown keys ignored, and the last duplicate wins.
func ParseTimer(r io.Reader) (TimerSpec, error) {
	var ts TimerSpec
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := trimControl(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := reKeyValue.FindStringSubmatch(line)
		if len(m) != 3 {
			continue
		}
		var dst *int64
		switch m[1] {
		case "hours":
			dst = &ts.Hours
		case "minutes":
			dst = &ts.Minutes
		case "seconds":
			dst = &ts.Seconds
		default:
			continue
		}
		v, err := parseCount(m[2])
		if err != nil {
			return TimerSpec{}, fmt.Errorf("%w: line %d (%s): %v", ErrTimerParse, n, m[1], err)
		}
		*dst = v
	}
	if err := sc.Err(); err != nil {
		return TimerSpec{}, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
	}
	return ts, nil
}

func parseCount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative number %q", raw)
	}
	return v, nil
}

// LoadInterval reads the timer file at path. It always returns a positive interval.
func LoadInterval(path string, log logx.Logger) time.Duration {
	if log.IsZero() {
		log = logx.Nop()
	}
	d, err := readInterval(path)
	if err != nil {
		log.Warn("failed to load timer; using default",
			logx.String("path", path), logx.Duration("default", DefaultInterval), logx.Err(err))
		return DefaultInterval
	}
	log.Info("loaded timer interval", logx.String("path", path), logx.Int64("interval_ms", d.Milliseconds()))
	return d
}

func readInterval(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConfigFileRead, err)
	}
	defer f.Close()
	ts, err := ParseTimer(f)
	if err != nil {
		return 0, err
	}
	return ts.Interval()
}
