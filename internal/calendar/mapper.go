// Package calendar maps calendar dates onto the program's abstract
// (phase, week, day) grid. The mapping is pure: it depends only on the
// program start date and the athlete's selected training weekdays.
package calendar

import (
	"sort"
	"time"

	"github.com/meltforce/periodize/internal/models"
)

// maxWalkSteps bounds the occurrence walk. The full grid is at most
// 3 phases x 4 weeks x 7 days = 84 occurrences; anything past 100 steps is
// malformed input, not a reachable slot.
const maxWalkSteps = 100

// SlotForDate maps a calendar date to its workout slot. Returns nil when the
// date precedes the first training day, is not a training day, lands beyond
// the final phase, or no training weekday is selected.
func SlotForDate(startDate time.Time, weekdays []time.Weekday, target time.Time) *models.WorkoutSlot {
	if len(weekdays) == 0 {
		return nil
	}

	selected := make(map[time.Weekday]bool, len(weekdays))
	for _, wd := range weekdays {
		selected[wd] = true
	}

	startDate = truncateToDay(startDate)
	target = truncateToDay(target)

	// First occurrence of any selected weekday on or after the start date.
	first := startDate
	for i := 0; !selected[first.Weekday()]; i++ {
		if i >= 7 {
			return nil
		}
		first = first.AddDate(0, 0, 1)
	}
	if target.Before(first) {
		return nil
	}

	// Walk forward one training-day occurrence at a time until the target is
	// reached. Overshooting means the target is not a training day.
	current := first
	for index := 0; index < maxWalkSteps; index++ {
		if current.Equal(target) {
			slot, ok := models.SlotFromIndex(index, len(weekdays))
			if !ok {
				return nil
			}
			return &slot
		}
		if current.After(target) {
			return nil
		}
		current = current.AddDate(0, 0, 1)
		for !selected[current.Weekday()] {
			current = current.AddDate(0, 0, 1)
		}
	}
	return nil
}

// SortedWeekdays returns a copy of the weekday selection in ascending order,
// the order in which slots map onto days within a week.
func SortedWeekdays(weekdays []time.Weekday) []time.Weekday {
	out := make([]time.Weekday, len(weekdays))
	copy(out, weekdays)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
