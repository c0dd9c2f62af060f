package ffmpeg

import (
	"regexp"
	"strconv"
)

// timePattern matches the elapsed-time token ffmpeg prints on its periodic
// status lines, e.g. "frame= 10 fps=0.0 q=-1.0 size=... time=00:01:05.50 ...".
var timePattern = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ParseProgress extracts the elapsed seconds from one line of transcoder
// diagnostic output. It returns false when the line carries no time token.
func ParseProgress(line string) (float64, bool) {
	if line == "" {
		return 0, false
	}
	match := timePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// Percent converts elapsed seconds into an integer percentage of duration,
// clamped to [0,100]. Duration must be positive; callers skip percentage
// tracking entirely when the duration is unknown.
func Percent(elapsed, duration float64) int {
	if duration <= 0 || elapsed <= 0 {
		return 0
	}
	pct := int(elapsed / duration * 100)
	if pct > 100 {
		return 100
	}
	return pct
}
