package main

import (
	"math"
	"time"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// It is also the list of valid activity levels checked by validateProfile.
var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

// validGenders is the set of genders the BMR formula has a constant for.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
}

const (
	kgPerLb        = 0.453592
	cmPerInch      = 2.54
	deficitRatio   = 0.20
	proteinPerKg   = 2.2
	fatCalorieFrac = 0.25
	restCarbsRatio = 0.8
	restCalsRatio  = 0.9
)

// energyEstimate computes BMR (Mifflin-St Jeor) and TDEE from a profile.
// Returns ok=false when weight, height (feet), age, gender or activity level is
// missing, or when the activity level is unknown. Height inches default to 0.
func energyEstimate(p *profile) (bmr, tdee float64, ok bool) {
	if p == nil || p.WeightLBS == nil || p.HeightFeet == nil || p.Age == nil ||
		p.Gender == nil || p.ActivityLevel == nil {
		return 0, 0, false
	}
	if *p.WeightLBS == 0 || *p.HeightFeet == 0 || *p.Age == 0 {
		return 0, 0, false
	}

	// Unknown levels produce no goals rather than NaN targets.
	mult, found := activityMultipliers[*p.ActivityLevel]
	if !found {
		return 0, 0, false
	}

	var inches float64
	if p.HeightInches != nil {
		inches = *p.HeightInches
	}
	weightKG := *p.WeightLBS * kgPerLb
	heightCM := (*p.HeightFeet*12 + inches) * cmPerInch

	bmr = 10*weightKG + 6.25*heightCM - 5*float64(*p.Age)
	switch *p.Gender {
	case "male":
		bmr += 5
	case "female":
		bmr -= 161
	default:
		return 0, 0, false
	}

	return bmr, bmr * mult, true
}

// computeGoals turns a profile into workout-day and rest-day targets.
// Returns ok=false when the profile is incomplete (see energyEstimate); callers
// treat that as "goals not yet computable", not as an error.
//
// Rest-day carbs and calories are scaled from the workout-day values and are
// not re-solved against the macro calorie equation.
func computeGoals(p *profile) (goalSet, bool) {
	_, tdee, ok := energyEstimate(p)
	if !ok {
		return goalSet{}, false
	}

	weightKG := *p.WeightLBS * kgPerLb
	deficit := tdee * deficitRatio
	target := tdee - deficit

	protein := math.Round(weightKG * proteinPerKg)
	fat := math.Round(target * fatCalorieFrac / 9)
	carbs := math.Round((target - protein*4 - fat*9) / 4)

	workout := macroGoal{
		Calories: int(math.Round(target)),
		ProteinG: int(protein),
		CarbsG:   int(carbs),
		FatG:     int(fat),
	}
	rest := macroGoal{
		Calories: int(math.Round(target * restCalsRatio)),
		ProteinG: workout.ProteinG,
		CarbsG:   int(math.Round(float64(workout.CarbsG) * restCarbsRatio)),
		FatG:     workout.FatG,
	}
	return goalSet{Workout: workout, Rest: rest}, true
}

// buildProfileResponse attaches computed goals and the BMR/TDEE breakdown to
// a stored profile. A nil profile yields an empty response.
func buildProfileResponse(p *profile) profileResponse {
	resp := profileResponse{Profile: p}
	if goals, ok := computeGoals(p); ok {
		resp.Goals = &goals
	}
	if bmr, tdee, ok := energyEstimate(p); ok {
		b, t := int(math.Round(bmr)), int(math.Round(tdee))
		resp.ComputedBMR = &b
		resp.ComputedTDEE = &t
	}
	return resp
}

// currentMonday returns the Monday of the current week at midnight UTC.
// Uses AddDate to safely handle month/year boundaries.
func currentMonday() time.Time {
	return mondayOf(time.Now().UTC())
}

// mondayOf returns the Monday (midnight UTC) of the week containing t.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	return t.AddDate(0, 0, -(weekday - 1)).Truncate(24 * time.Hour)
}
