package pipeline

import (
	"regexp"
	"strconv"
)

var timecodePattern = regexp.MustCompile(`\[(?:(\d{1,2}):)?(\d{1,2}):(\d{2})\]`)

// findTimecode returns the first [MM:SS] or [HH:MM:SS] timecode in s,
// converted to seconds, and whether one was found.
func findTimecode(s string) (float64, bool) {
	m := timecodePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])

	return float64(hours*3600+minutes*60) + float64(seconds), true
}
