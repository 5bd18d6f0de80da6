package series

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"SVMonit/internal/model"
)

// ParseInterval parses "all" or "<N>d" with N a positive day count.
func ParseInterval(token string) (model.Interval, error) {
	tok := strings.TrimSpace(token)
	if tok == model.TokenAll {
		return model.Interval{Token: tok, All: true}, nil
	}
	digits, ok := strings.CutSuffix(tok, "d")
	if !ok || digits == "" || digits[0] == '+' || digits[0] == '-' {
		return model.Interval{}, &model.IntervalError{Token: token}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return model.Interval{}, &model.IntervalError{Token: token}
	}
	return model.Interval{Token: tok, Days: n}, nil
}

// Window returns the trailing sub-range selected by iv. A trailing window
// keeps every date t with t >= last - Days (calendar days, inclusive) and
// clamps to the full store when Days exceeds the store's span.
func (s *Store) Window(iv model.Interval) *View {
	if iv.All || iv.Days >= s.spanDays() {
		return s.All()
	}
	cutoff := s.Last().AddDate(0, 0, -iv.Days)
	start := sort.Search(len(s.dates), func(i int) bool {
		return !s.dates[i].Before(cutoff)
	})
	return &View{store: s, start: start, end: len(s.dates)}
}

// spanDays is the number of whole calendar days between the first and last date.
func (s *Store) spanDays() int {
	return int(s.Last().Sub(s.First()) / (24 * time.Hour))
}

// Select parses token and returns the matching view of store.
func Select(store *Store, token string) (*View, error) {
	iv, err := ParseInterval(token)
	if err != nil {
		return nil, err
	}
	return store.Window(iv), nil
}
