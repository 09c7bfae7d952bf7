package segment

import (
	"regexp"
	"strconv"
)

var (
	hoursRe      = regexp.MustCompile(`(\d+)\s*h`)
	minutesRe    = regexp.MustCompile(`(\d+)\s*m`)
	minuteWordRe = regexp.MustCompile(`(?i)(\d+)\s*minute`)
)

// Duration converts a free-text running time to whole minutes. "3 h 32 m"
// style components are summed; a bare "212 minutes" falls through to the
// word pattern. Unmatchable input yields 0.
func Duration(raw string) int {
	total := 0
	if m := hoursRe.FindStringSubmatch(raw); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutesRe.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}
	if total == 0 {
		if m := minuteWordRe.FindStringSubmatch(raw); m != nil {
			total, _ = strconv.Atoi(m[1])
		}
	}
	return total
}
