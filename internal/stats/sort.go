package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"er-dashboard/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Asc)) {
		return Asc
	}
	return Desc
}

// Sortable rows expose a value per column key.
type Sortable interface {
	SortValue(key string) any
}

// Sort returns a sorted copy of rows. Rows with equal keys keep their input
// order in both directions, so flipping the direction only reverses rows that
// actually differ.
func Sort[T Sortable](rows []T, key string, dir Direction) []T {
	out := make([]T, len(rows))
	copy(out, rows)

	cmp := newComparator(key)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SortValue(key), out[j].SortValue(key)
		if dir == Asc {
			return cmp.compare(a, b) < 0
		}
		return cmp.compare(b, a) < 0
	})
	return out
}

type comparator struct {
	key      string
	collator *collate.Collator
}

func newComparator(key string) *comparator {
	return &comparator{
		key:      key,
		collator: collate.New(language.Korean, collate.Numeric),
	}
}

func (c *comparator) compare(a, b any) int {
	if c.key == domain.KeyAvgSurvival {
		return compareFloat(durationOrNegInf(a), durationOrNegInf(b))
	}

	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	switch {
	case aNum && bNum:
		return compareFloat(fa, fb)
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return c.collator.CompareString(toString(a), toString(b))
}

func durationOrNegInf(v any) float64 {
	if sec, ok := DurationSeconds(v); ok {
		return sec
	}
	return math.Inf(-1)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
