package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Repeat days use a fixed 0=Monday .. 6=Sunday convention.
var weekdayNames = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// ParseRepeatDays normalizes a repeat-day list into sorted, de-duplicated
// weekday numbers. Accepted tokens: integers 0-6 (JSON numbers arrive as
// float64) and three-letter weekday abbreviations ("mon".."sun", any case).
// Any invalid token rejects the whole list.
func ParseRepeatDays(days []any) ([]int, error) {
	if len(days) == 0 {
		return nil, nil
	}

	seen := make(map[int]bool)
	for _, d := range days {
		var n int
		switch v := d.(type) {
		case int:
			n = v
		case float64:
			n = int(v)
			if float64(n) != v {
				return nil, fmt.Errorf("weekday %v: %w", v, ErrInvalidArgument)
			}
		case string:
			key := strings.ToLower(strings.TrimSpace(v))
			if len(key) > 3 {
				key = key[:3]
			}
			idx, ok := weekdayNames[key]
			if !ok {
				return nil, fmt.Errorf("weekday %q: %w", v, ErrInvalidArgument)
			}
			n = idx
		default:
			return nil, fmt.Errorf("weekday %v: %w", d, ErrInvalidArgument)
		}

		if n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday %d out of range: %w", n, ErrInvalidArgument)
		}
		seen[n] = true
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// WeekdayIndex maps a time to the 0=Monday convention.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
