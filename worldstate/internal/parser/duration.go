package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Each unit has its own pattern so any subset ("45m", "1h 5s") parses.
var (
	hoursRe   = regexp.MustCompile(`(\d+)h`)
	minutesRe = regexp.MustCompile(`(\d+)m`)
	secondsRe = regexp.MustCompile(`(\d+)s`)
)

// ParseDuration converts a countdown such as "1h 30m 5s" to a duration.
// Placeholders ("N/A", "Loading...", "") and absent units count as zero.
func ParseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	switch s {
	case "", "N/A", "Loading...":
		return 0
	}
	var total time.Duration
	total += unit(hoursRe, s) * time.Hour
	total += unit(minutesRe, s) * time.Minute
	total += unit(secondsRe, s) * time.Second
	return total
}

func unit(re *regexp.Regexp, s string) time.Duration {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return time.Duration(n)
}
