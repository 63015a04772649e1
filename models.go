package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly. NULL values zero the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// dateLayout is the calendar-date key used for daily entries and query params.
const dateLayout = "2006-01-02"

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. Anonymous users have no username or password.
type user struct {
	ID           string     `json:"id"        db:"id"`
	Username     *string    `json:"username"  db:"username"`
	PasswordHash *string    `json:"-"         db:"password_hash"`
	Anonymous    bool       `json:"anonymous" db:"anonymous"`
	CreatedAt    *time.Time `json:"created_at" db:"created_at"`
}

// profile maps to the profiles table. Every field is nullable so a partially
// completed onboarding still round-trips; goals are only computed once the
// required fields are present.
type profile struct {
	WeightLBS     *float64   `json:"weight_lbs"     db:"weight_lbs"`
	HeightFeet    *float64   `json:"height_feet"    db:"height_feet"`
	HeightInches  *float64   `json:"height_inches"  db:"height_inches"`
	Age           *int       `json:"age"            db:"age"`
	Gender        *string    `json:"gender"         db:"gender"`
	ActivityLevel *string    `json:"activity_level" db:"activity_level"`
	BodyFatGoal   *float64   `json:"body_fat_goal"  db:"body_fat_goal"`
	UpdatedAt     *time.Time `json:"updated_at"     db:"updated_at"`
}

// macroGoal is the calorie/macro target for one day type.
type macroGoal struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// goalSet holds the workout-day and rest-day targets derived from a profile.
type goalSet struct {
	Workout macroGoal `json:"workout"`
	Rest    macroGoal `json:"rest"`
}

// foodItem is one logged food. Numeric fields are optional; a missing value
// counts as zero when the day is totalled.
type foodItem struct {
	Name     string   `json:"name"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// exerciseSet is one exercise line inside a workout log or plan.
type exerciseSet struct {
	Name      string   `json:"name"`
	Sets      int      `json:"sets"`
	Reps      string   `json:"reps"`
	WeightLBS *float64 `json:"weight_lbs,omitempty"`
}

// workoutLog is the optional workout record attached to a daily entry.
type workoutLog struct {
	Title           string        `json:"title"`
	Exercises       []exerciseSet `json:"exercises"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// dailyEntry maps to daily_entries, keyed by (user_id, date). Foods and
// workout are JSONB columns; foods keeps insertion order.
type dailyEntry struct {
	Date         string      `json:"date"           db:"date"`
	WeightLBS    *float64    `json:"weight_lbs"     db:"weight_lbs"`
	Foods        []foodItem  `json:"foods"          db:"foods"`
	IsWorkoutDay *bool       `json:"is_workout_day" db:"is_workout_day"`
	Workout      *workoutLog `json:"workout"        db:"workout"`
	UpdatedAt    *time.Time  `json:"updated_at"     db:"updated_at"`
}

// dailyEntryPatch carries a partial daily-entry update. Only non-nil fields
// are written; everything else keeps its stored value.
type dailyEntryPatch struct {
	WeightLBS    *float64    `json:"weight_lbs"`
	IsWorkoutDay *bool       `json:"is_workout_day"`
	Workout      *workoutLog `json:"workout"`
}

func (p dailyEntryPatch) empty() bool {
	return p.WeightLBS == nil && p.IsWorkoutDay == nil && p.Workout == nil
}

// weeklySummary maps to weekly_summaries: one AI-written recap per user/week.
type weeklySummary struct {
	UserID     string     `json:"user_id"    db:"user_id"`
	WeekStart  DateOnly   `json:"week_start" db:"week_start"`
	Summary    string     `json:"summary"    db:"summary"`
	Highlights []string   `json:"highlights" db:"highlights"`
	CreatedAt  *time.Time `json:"created_at" db:"created_at"`
}

/* ─── Response shapes ────────────────────────────────────────────────── */

// profileResponse is returned by GET/PUT /api/profile. Goals and the energy
// breakdown are omitted until the profile is complete.
type profileResponse struct {
	Profile      *profile `json:"profile"`
	Goals        *goalSet `json:"goals"`
	ComputedBMR  *int     `json:"computed_bmr,omitempty"`
	ComputedTDEE *int     `json:"computed_tdee,omitempty"`
}

// dailyDashboard is the response shape for GET /api/daily-log.
type dailyDashboard struct {
	Date         string       `json:"date"`
	Entry        dailyEntry   `json:"entry"`
	IsWorkoutDay bool         `json:"is_workout_day"`
	Goals        *goalSet     `json:"goals"`
	Goal         *macroGoal   `json:"goal"`
	Consumed     macroTotals  `json:"consumed"`
	Remaining    *macroTotals `json:"remaining"`
}
