package main

import (
	"net/http"
	"testing"
)

func TestDailyDashboard_RemainingAfterFoods(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)
	env.do(http.MethodPut, "/api/profile", token, completeProfileJSON)

	for _, food := range []string{
		`{"name":"Eggs","calories":180,"protein_g":14,"carbs_g":2,"fat_g":12}`,
		`{"name":"Toast","calories":120,"carbs_g":22}`,
	} {
		if w := env.do(http.MethodPost, "/api/daily-log/2026-10-19/foods", token, food); w.Code != http.StatusCreated {
			t.Fatalf("add food: expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w := env.do(http.MethodGet, "/api/daily-log?date=2026-10-19", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var d dailyDashboard
	decode(t, w, &d)

	if !d.IsWorkoutDay {
		t.Error("expected an entry without a day type to be a workout day")
	}
	if len(d.Entry.Foods) != 2 || d.Entry.Foods[0].Name != "Eggs" {
		t.Errorf("expected foods in insertion order, got %+v", d.Entry.Foods)
	}
	wantConsumed := macroTotals{Calories: 300, ProteinG: 14, CarbsG: 24, FatG: 12}
	if d.Consumed != wantConsumed {
		t.Errorf("consumed = %+v, want %+v", d.Consumed, wantConsumed)
	}
	wantRemaining := macroTotals{Calories: 1972 - 300, ProteinG: 180 - 14, CarbsG: 189 - 24, FatG: 55 - 12}
	if d.Remaining == nil || *d.Remaining != wantRemaining {
		t.Errorf("remaining = %+v, want %+v", d.Remaining, wantRemaining)
	}
}

func TestDailyDashboard_NoProfile(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	w := env.do(http.MethodGet, "/api/daily-log?date=2026-10-19", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var d dailyDashboard
	decode(t, w, &d)
	if d.Goals != nil || d.Remaining != nil {
		t.Errorf("expected no goals without a profile, got %+v", d)
	}
	if d.Entry.Foods == nil || len(d.Entry.Foods) != 0 {
		t.Errorf("expected empty foods array, got %v", d.Entry.Foods)
	}
}

func TestDailyDashboard_InvalidDate(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	w := env.do(http.MethodGet, "/api/daily-log?date=19-10-2026", token, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// TestPatchDailyEntry_MergesFields verifies that each PATCH only overwrites the
// fields it carries.
func TestPatchDailyEntry_MergesFields(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)
	path := "/api/daily-log/2026-10-20"

	env.do(http.MethodPost, path+"/foods", token, `{"name":"Banana","calories":105}`)
	if w := env.do(http.MethodPatch, path, token, `{"weight_lbs":181.4}`); w.Code != http.StatusOK {
		t.Fatalf("patch weight: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w := env.do(http.MethodPatch, path, token,
		`{"is_workout_day":false,"workout":{"title":"Mobility","exercises":[{"name":"Hip Flexor Stretch","sets":2,"reps":"45s"}]}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch day type: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var e dailyEntry
	decode(t, w, &e)
	if e.WeightLBS == nil || *e.WeightLBS != 181.4 {
		t.Errorf("weight_lbs = %v, want 181.4 kept from first patch", e.WeightLBS)
	}
	if e.IsWorkoutDay == nil || *e.IsWorkoutDay {
		t.Errorf("is_workout_day = %v, want false", e.IsWorkoutDay)
	}
	if len(e.Foods) != 1 {
		t.Errorf("expected foods untouched by patch, got %+v", e.Foods)
	}
	if e.Workout == nil || e.Workout.Title != "Mobility" || len(e.Workout.Exercises) != 1 {
		t.Errorf("workout = %+v, want Mobility with one exercise", e.Workout)
	}

	// Rest day flag switches the dashboard to the rest goal.
	env.do(http.MethodPut, "/api/profile", token, completeProfileJSON)
	w = env.do(http.MethodGet, "/api/daily-log?date=2026-10-20", token, "")
	var d dailyDashboard
	decode(t, w, &d)
	if d.IsWorkoutDay || d.Goal == nil || d.Goal.Calories != 1775 {
		t.Errorf("expected rest goal of 1775 kcal, got workout=%v goal=%+v", d.IsWorkoutDay, d.Goal)
	}
}

func TestPatchDailyEntry_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	cases := []struct {
		name, path, body string
	}{
		{"empty body", "/api/daily-log/2026-10-20", `{}`},
		{"bad date", "/api/daily-log/yesterday", `{"weight_lbs":180}`},
		{"zero weight", "/api/daily-log/2026-10-20", `{"weight_lbs":0}`},
		{"untitled workout", "/api/daily-log/2026-10-20", `{"workout":{"title":" "}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := env.do(http.MethodPatch, tc.path, token, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAddFood_Validation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	cases := []struct {
		name, body string
	}{
		{"missing name", `{"calories":100}`},
		{"blank name", `{"name":"   "}`},
		{"negative protein", `{"name":"Shake","protein_g":-3}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := env.do(http.MethodPost, "/api/daily-log/2026-10-20/foods", token, tc.body); w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteFood(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)
	path := "/api/daily-log/2026-10-21/foods"

	for _, name := range []string{"Apple", "Yogurt", "Almonds"} {
		env.do(http.MethodPost, path, token, `{"name":"`+name+`"}`)
	}

	w := env.do(http.MethodDelete, path+"/1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var e dailyEntry
	decode(t, w, &e)
	if len(e.Foods) != 2 || e.Foods[0].Name != "Apple" || e.Foods[1].Name != "Almonds" {
		t.Errorf("foods after delete = %+v, want [Apple Almonds]", e.Foods)
	}

	t.Run("out of range", func(t *testing.T) {
		if w := env.do(http.MethodDelete, path+"/5", token, ""); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
	t.Run("unknown day", func(t *testing.T) {
		if w := env.do(http.MethodDelete, "/api/daily-log/2026-01-01/foods/0", token, ""); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})
	t.Run("non-numeric index", func(t *testing.T) {
		if w := env.do(http.MethodDelete, path+"/first", token, ""); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestDailyRange(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	env.do(http.MethodPost, "/api/daily-log/2026-10-18/foods", token, `{"name":"Pizza","calories":800}`)
	env.do(http.MethodPatch, "/api/daily-log/2026-10-19", token, `{"weight_lbs":180}`)
	env.do(http.MethodPatch, "/api/daily-log/2026-10-25", token, `{"weight_lbs":179}`)

	w := env.do(http.MethodGet, "/api/daily-log/range?start=2026-10-18&end=2026-10-24", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var entries map[string]dailyEntry
	decode(t, w, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 days in range, got %d: %v", len(entries), entries)
	}
	if _, ok := entries["2026-10-25"]; ok {
		t.Error("entry outside range returned")
	}

	t.Run("start after end", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/daily-log/range?start=2026-10-24&end=2026-10-18", token, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
	t.Run("missing params", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/daily-log/range", token, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}
