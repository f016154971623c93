package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DurationPlaceholder is shown when there is no duration to format.
const DurationPlaceholder = "-"

// MaxDurationSec bounds any duration accepted as seconds.
const MaxDurationSec = math.MaxInt32

// ParseDurationToSec parses "H:MM:SS", "M:SS" or a bare number of seconds.
// The second return is false when s cannot be read.
func ParseDurationToSec(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !inSecondsRange(f) {
			return 0, false
		}
		return int(f), true
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > MaxDurationSec {
			return 0, false
		}
		total = total*60 + n
		if total > MaxDurationSec {
			return 0, false
		}
	}
	return total, true
}

func inSecondsRange(f float64) bool {
	return !math.IsNaN(f) && f > -MaxDurationSec && f < MaxDurationSec
}

// DurationSeconds coerces a loosely typed duration into seconds. Numbers pass
// through unchanged, strings are parsed, anything else is unreadable.
func DurationSeconds(v any) (float64, bool) {
	switch d := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(d), true
	case int32:
		return float64(d), true
	case int64:
		return float64(d), true
	case float32:
		return float64(d), inSecondsRange(float64(d))
	case float64:
		return d, inSecondsRange(d)
	case *int:
		if d == nil {
			return 0, false
		}
		return float64(*d), true
	case string:
		sec, ok := ParseDurationToSec(d)
		return float64(sec), ok
	}
	return 0, false
}

// FormatDuration renders seconds as "H:MM:SS", dropping the hour when zero.
func FormatDuration(sec *int) string {
	if sec == nil {
		return DurationPlaceholder
	}
	return FormatSeconds(*sec)
}

func FormatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
