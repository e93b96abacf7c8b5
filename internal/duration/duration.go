// Package duration converts between time.Duration and the "H:MM:SS" strings
// stored in the activity log.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse reads "M:S" or "H:M:S". Any other shape, a non-numeric part or a
// negative part yields zero; Parse never fails.
func Parse(s string) time.Duration {
	parts := strings.Split(strings.TrimSpace(s), ":")

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2: //nolint:mnd // M:S
		return time.Duration(nums[0])*time.Minute + time.Duration(nums[1])*time.Second
	case 3: //nolint:mnd // H:M:S
		return time.Duration(nums[0])*time.Hour +
			time.Duration(nums[1])*time.Minute +
			time.Duration(nums[2])*time.Second
	default:
		return 0
	}
}

// Format renders d as "H:MM:SS". Hours are not padded and not capped at 24.
// Sub-second precision is truncated and negative durations render as "0:00:00".
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600 //nolint:mnd // seconds per hour
	mins := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatSeconds is Format for a whole number of seconds.
func FormatSeconds(seconds int) string {
	return Format(time.Duration(seconds) * time.Second)
}
