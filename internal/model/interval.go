package model

import "fmt"

// Interval is a parsed selection token: either a trailing day count or the whole history.
type Interval struct {
	Token string
	Days  int
	All   bool
}

// TokenAll selects every point in the store.
const TokenAll = "all"

// StandardIntervals is the vocabulary offered to users.
var StandardIntervals = []string{"1d", "7d", "30d", "180d", "365d", TokenAll}

func (i Interval) String() string {
	if i.All {
		return TokenAll
	}
	return fmt.Sprintf("%dd", i.Days)
}
