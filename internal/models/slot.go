package models

// Scheduling grid dimensions. Every phase spans a fixed number of weeks;
// workouts per week follows the athlete's selected training weekdays.
const WeeksPerPhase = 4

// WorkoutSlot is an abstract (phase, week, day) coordinate identifying one
// scheduled workout position, independent of calendar date. Week and Day are
// 1-based.
type WorkoutSlot struct {
	Phase Phase `json:"phase"`
	Week  int   `json:"week"`
	Day   int   `json:"day"`
}

// AbsoluteIndex linearizes the slot for ordering and range comparisons.
// workoutsPerWeek is the count of the athlete's selected training weekdays.
func (s WorkoutSlot) AbsoluteIndex(workoutsPerWeek int) int {
	return s.Phase.Index()*WeeksPerPhase*workoutsPerWeek +
		(s.Week-1)*workoutsPerWeek +
		(s.Day - 1)
}

// SlotFromIndex is the inverse of AbsoluteIndex. The bool is false when the
// index falls beyond the final phase.
func SlotFromIndex(index, workoutsPerWeek int) (WorkoutSlot, bool) {
	if index < 0 || workoutsPerWeek <= 0 {
		return WorkoutSlot{}, false
	}
	perPhase := WeeksPerPhase * workoutsPerWeek
	phaseIdx := index / perPhase
	if phaseIdx >= len(Phases) {
		return WorkoutSlot{}, false
	}
	rem := index % perPhase
	return WorkoutSlot{
		Phase: Phases[phaseIdx],
		Week:  rem/workoutsPerWeek + 1,
		Day:   rem%workoutsPerWeek + 1,
	}, true
}
