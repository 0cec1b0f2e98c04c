package scaling

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Contains reports whether now falls inside the allowed window. The local
// hour is the UTC hour shifted by the configured offset, wrapped mod 24 so
// offsets that push past 23 land back at 0.
func (w Window) Contains(now time.Time) bool {
	localHour := (now.UTC().Hour() + w.OffsetHours) % 24
	if localHour < 0 {
		localHour += 24
	}
	for _, h := range w.AllowedHours {
		if h == localHour {
			return true
		}
	}
	return false
}

// Describe renders the allowed hours for notifications, e.g. "09:00-18:59
// (UTC+8)". Non-contiguous hour sets are listed individually.
func (w Window) Describe() string {
	if len(w.AllowedHours) == 0 {
		return "no allowed hours configured"
	}

	hours := append([]int(nil), w.AllowedHours...)
	sort.Ints(hours)

	tz := fmt.Sprintf("UTC%+d", w.OffsetHours)
	if contiguous(hours) {
		return fmt.Sprintf("%02d:00-%02d:59 (%s)", hours[0], hours[len(hours)-1], tz)
	}

	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, ", "), tz)
}

func contiguous(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}
