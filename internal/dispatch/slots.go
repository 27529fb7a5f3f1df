package dispatch

import (
	"cmp"
	"slices"
	"time"

	"github.com/correlate-dev/zennpub/internal/config"
)

// SlotConfig describes where publication slots may fall.
type SlotConfig struct {
	Times       []config.TimeOfDay
	HorizonDays int
	// MaxPerDay skips dates that already hold this many articles. Zero disables it.
	MaxPerDay int
}

// NextSlots returns up to count free slots after now in chronological order.
// A slot is free when no existing time falls on the same minute and its date
// is below MaxPerDay. Dates and times are taken in now's location.
func NextSlots(existing []time.Time, now time.Time, count int, sc SlotConfig) []time.Time {
	if count <= 0 {
		return nil
	}
	loc := now.Location()
	taken := make(map[int64]bool, len(existing))
	perDay := make(map[string]int)
	for _, t := range existing {
		t = t.In(loc)
		taken[t.Truncate(time.Minute).Unix()] = true
		perDay[t.Format(time.DateOnly)]++
	}

	times := sortedTimes(sc.Times)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var out []time.Time
	for day := range sc.HorizonDays {
		date := today.AddDate(0, 0, day)
		key := date.Format(time.DateOnly)
		for _, tod := range times {
			if sc.MaxPerDay > 0 && perDay[key] >= sc.MaxPerDay {
				break
			}
			slot := tod.On(date)
			if !slot.After(now) || taken[slot.Unix()] {
				continue
			}
			out = append(out, slot)
			taken[slot.Unix()] = true
			perDay[key]++
			if len(out) == count {
				return out
			}
		}
	}
	return out
}

// sortedTimes orders times of day so each date yields slots chronologically.
func sortedTimes(in []config.TimeOfDay) []config.TimeOfDay {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b config.TimeOfDay) int {
		return cmp.Compare(a.Hour*60+a.Minute, b.Hour*60+b.Minute)
	})
	return out
}
