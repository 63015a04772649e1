package main

// macroTotals is a per-field calorie/macro sum. Used both for what was eaten
// on a day and for what is left of the day's goal (which may be negative).
type macroTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// sumConsumed totals the foods logged for one day. Missing numeric fields
// count as zero.
func sumConsumed(foods []foodItem) macroTotals {
	var t macroTotals
	for _, f := range foods {
		t.Calories += valueOrZero(f.Calories)
		t.ProteinG += valueOrZero(f.ProteinG)
		t.CarbsG += valueOrZero(f.CarbsG)
		t.FatG += valueOrZero(f.FatG)
	}
	return t
}

// remainingBudget subtracts consumed totals from a goal field by field.
// The sign is kept: a negative value means the goal was exceeded.
func remainingBudget(goal macroGoal, consumed macroTotals) macroTotals {
	return macroTotals{
		Calories: float64(goal.Calories) - consumed.Calories,
		ProteinG: float64(goal.ProteinG) - consumed.ProteinG,
		CarbsG:   float64(goal.CarbsG) - consumed.CarbsG,
		FatG:     float64(goal.FatG) - consumed.FatG,
	}
}

// isWorkoutDay resolves the entry's day type. Entries that never set the
// flag are workout days.
func isWorkoutDay(e dailyEntry) bool {
	if e.IsWorkoutDay == nil {
		return true
	}
	return *e.IsWorkoutDay
}

// goalForDay picks the workout or rest goal.
func goalForDay(g goalSet, workout bool) macroGoal {
	if workout {
		return g.Workout
	}
	return g.Rest
}

// buildDashboard composes goals, consumed totals and the remaining budget for
// one day. Goals and remaining stay nil while the profile is incomplete.
func buildDashboard(date string, p *profile, e dailyEntry) dailyDashboard {
	if e.Foods == nil {
		e.Foods = []foodItem{}
	}
	d := dailyDashboard{
		Date:         date,
		Entry:        e,
		IsWorkoutDay: isWorkoutDay(e),
		Consumed:     sumConsumed(e.Foods),
	}
	if goals, ok := computeGoals(p); ok {
		goal := goalForDay(goals, d.IsWorkoutDay)
		remaining := remainingBudget(goal, d.Consumed)
		d.Goals = &goals
		d.Goal = &goal
		d.Remaining = &remaining
	}
	return d
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
