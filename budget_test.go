package main

import "testing"

func f64(v float64) *float64 { return &v }

func TestSumConsumed_MissingFieldsCountAsZero(t *testing.T) {
	foods := []foodItem{
		{Name: "Chicken Breast", Calories: f64(280), ProteinG: f64(53), FatG: f64(6)},
		{Name: "Rice", Calories: f64(205), ProteinG: f64(4.3), CarbsG: f64(45)},
		{Name: "Black Coffee"},
	}
	got := sumConsumed(foods)
	want := macroTotals{Calories: 485, ProteinG: 57.3, CarbsG: 45, FatG: 6}
	if got != want {
		t.Errorf("sumConsumed = %+v, want %+v", got, want)
	}
}

func TestSumConsumed_Empty(t *testing.T) {
	if got := sumConsumed(nil); got != (macroTotals{}) {
		t.Errorf("sumConsumed(nil) = %+v, want zero", got)
	}
}

func TestRemainingBudget(t *testing.T) {
	goal := macroGoal{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60}

	cases := []struct {
		name     string
		consumed macroTotals
		want     macroTotals
	}{
		{
			name:     "under goal",
			consumed: macroTotals{Calories: 500, ProteinG: 40, CarbsG: 60, FatG: 10},
			want:     macroTotals{Calories: 1500, ProteinG: 110, CarbsG: 140, FatG: 50},
		},
		{
			name:     "over goal keeps sign",
			consumed: macroTotals{Calories: 2500, ProteinG: 150, CarbsG: 260, FatG: 30},
			want:     macroTotals{Calories: -500, ProteinG: 0, CarbsG: -60, FatG: 30},
		},
		{
			name:     "nothing eaten",
			consumed: macroTotals{},
			want:     macroTotals{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := remainingBudget(goal, tc.consumed); got != tc.want {
				t.Errorf("remainingBudget = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestIsWorkoutDay(t *testing.T) {
	yes, no := true, false
	cases := []struct {
		name string
		flag *bool
		want bool
	}{
		{"unset defaults to workout", nil, true},
		{"explicit workout", &yes, true},
		{"explicit rest", &no, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isWorkoutDay(dailyEntry{IsWorkoutDay: tc.flag}); got != tc.want {
				t.Errorf("isWorkoutDay = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestBuildDashboard_RestDayUsesRestGoal verifies the day-type flag picks the
// goal that remaining is computed against.
func TestBuildDashboard_RestDayUsesRestGoal(t *testing.T) {
	p := makeProfile("male", 180, 5, 10, 28, "lightly_active")
	rest := false
	e := dailyEntry{
		Date:         "2026-10-19",
		IsWorkoutDay: &rest,
		Foods:        []foodItem{{Name: "Oats", Calories: f64(300), ProteinG: f64(10), CarbsG: f64(54), FatG: f64(5)}},
	}

	d := buildDashboard("2026-10-19", p, e)
	if d.IsWorkoutDay {
		t.Fatal("expected rest day")
	}
	if d.Goal == nil || *d.Goal != d.Goals.Rest {
		t.Fatalf("goal = %+v, want rest goal %+v", d.Goal, d.Goals.Rest)
	}
	want := macroTotals{Calories: 1775 - 300, ProteinG: 180 - 10, CarbsG: 151 - 54, FatG: 55 - 5}
	if *d.Remaining != want {
		t.Errorf("remaining = %+v, want %+v", *d.Remaining, want)
	}
}

func TestBuildDashboard_IncompleteProfile(t *testing.T) {
	d := buildDashboard("2026-10-19", &profile{}, dailyEntry{Date: "2026-10-19"})
	if d.Goals != nil || d.Goal != nil || d.Remaining != nil {
		t.Errorf("expected no goals for incomplete profile, got %+v", d)
	}
	if !d.IsWorkoutDay {
		t.Error("expected default workout day")
	}
	if d.Entry.Foods == nil {
		t.Error("expected non-nil foods so JSON renders []")
	}
}
