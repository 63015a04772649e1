package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// estimateMealRequest is the request body for POST /api/ai/estimate-meal.
// At least one of Description or ImageDataURL is required.
type estimateMealRequest struct {
	Description  string `json:"description"`
	ImageDataURL string `json:"image_data_url"`
}

// mealEstimate is the structured nutrition estimate returned by the AI.
// Confidence is 1-5 indicating how accurate the estimate is.
type mealEstimate struct {
	Recognized bool    `json:"-"`
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	Confidence int     `json:"confidence"`
}

// UnmarshalJSON reads the model's "recognized" flag, which is hidden from
// API responses.
func (m *mealEstimate) UnmarshalJSON(b []byte) error {
	type alias mealEstimate
	var aux struct {
		alias
		Recognized bool `json:"recognized"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = mealEstimate(aux.alias)
	m.Recognized = aux.Recognized
	return nil
}

// workoutPlanRequest is the request body for POST /api/ai/workout-plan.
type workoutPlanRequest struct {
	Goal        string `json:"goal"`
	DaysPerWeek int    `json:"days_per_week"`
	Equipment   string `json:"equipment"`
}

// workoutPlan is the generated multi-day plan. Each day's exercises can be
// logged directly as a workoutLog.
type workoutPlan struct {
	Title string           `json:"title"`
	Days  []workoutPlanDay `json:"days"`
	Notes string           `json:"notes"`
}

type workoutPlanDay struct {
	Day       string        `json:"day"`
	Focus     string        `json:"focus"`
	Exercises []exerciseSet `json:"exercises"`
}

/* ─── Prompts and schemas ────────────────────────────────────────────── */

const mealSystemPrompt = `You are a nutrition assistant. Estimate the nutrition of the meal the user describes or photographs.
Report totals for the whole portion: calories (kcal), protein_g, carbs_g and fat_g.
"name" is a short, title-case name for the meal.
"confidence" is an integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain.
Always provide your best estimate, even for unfamiliar or vague items. Set "recognized" to false only if the input is not food at all.`

// workoutSystemPromptTemplate includes placeholders for the user's body stats
// so the plan can be scaled to them.
const workoutSystemPromptTemplate = `You are a strength and conditioning coach. The user is:
- Gender: %s
- Age: %d years
- Weight: %.0f lbs
- Activity level: %s

Write a weekly workout plan with exactly the requested number of training days.
For every exercise give sets as an integer and reps as a string (e.g. "8-10" or "30s").`

// workoutSystemPromptFallback is used when the user has no body stats saved.
const workoutSystemPromptFallback = `You are a strength and conditioning coach. No body stats are available, so plan for a healthy adult.

Write a weekly workout plan with exactly the requested number of training days.
For every exercise give sets as an integer and reps as a string (e.g. "8-10" or "30s").`

var mealEstimateSchema = responseSchema{
	Name: "meal_estimate",
	Schema: object(map[string]any{
		"recognized": typed("boolean"),
		"name":       typed("string"),
		"calories":   typed("number"),
		"protein_g":  typed("number"),
		"carbs_g":    typed("number"),
		"fat_g":      typed("number"),
		"confidence": typed("integer"),
	}),
}

var workoutPlanSchema = responseSchema{
	Name: "workout_plan",
	Schema: object(map[string]any{
		"title": typed("string"),
		"notes": typed("string"),
		"days": arrayOf(object(map[string]any{
			"day":   typed("string"),
			"focus": typed("string"),
			"exercises": arrayOf(object(map[string]any{
				"name": typed("string"),
				"sets": typed("integer"),
				"reps": typed("string"),
			})),
		})),
	}),
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// estimateMeal handles POST /api/ai/estimate-meal.
// Accepts a meal description and/or photo, asks the AI for a structured macro
// estimate, and returns it for the client to confirm and log.
func (h *Handler) estimateMeal(c *gin.Context) {
	var req estimateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" && req.ImageDataURL == "" {
		apiError(c, http.StatusBadRequest, "description or image_data_url is required")
		return
	}
	if req.ImageDataURL != "" && !strings.HasPrefix(req.ImageDataURL, "data:image/") {
		apiError(c, http.StatusBadRequest, "image_data_url must be a data:image/... URL")
		return
	}

	var content any = req.Description
	if req.ImageDataURL != "" {
		text := req.Description
		if text == "" {
			text = "Estimate the nutrition of the meal in this photo."
		}
		content = []contentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &imageURL{URL: req.ImageDataURL}},
		}
	}
	messages := []openAIMessage{
		{Role: "system", Content: mealSystemPrompt},
		{Role: "user", Content: content},
	}

	var est mealEstimate
	if err := completeInto(c.Request.Context(), h.ai, messages, mealEstimateSchema, &est); err != nil {
		h.log.Error("meal estimate failed", zap.Error(err))
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}

	// Validate that we got a usable response (at minimum, a name).
	if !est.Recognized || strings.TrimSpace(est.Name) == "" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, est)
}

// generateWorkoutPlan handles POST /api/ai/workout-plan.
func (h *Handler) generateWorkoutPlan(c *gin.Context) {
	var req workoutPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		apiError(c, http.StatusBadRequest, "goal is required")
		return
	}
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		apiError(c, http.StatusBadRequest, "days_per_week must be between 1 and 7")
		return
	}

	equipment := req.Equipment
	if strings.TrimSpace(equipment) == "" {
		equipment = "bodyweight only"
	}
	messages := []openAIMessage{
		{Role: "system", Content: h.buildWorkoutPrompt(c)},
		{Role: "user", Content: fmt.Sprintf("Goal: %s\nTraining days per week: %d\nEquipment: %s",
			req.Goal, req.DaysPerWeek, equipment)},
	}

	var plan workoutPlan
	if err := completeInto(c.Request.Context(), h.ai, messages, workoutPlanSchema, &plan); err != nil {
		h.log.Error("workout plan failed", zap.Error(err))
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}
	if len(plan.Days) == 0 {
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// buildWorkoutPrompt loads the user's profile and builds the workout system
// prompt. Falls back to a generic prompt if stats are missing.
func (h *Handler) buildWorkoutPrompt(c *gin.Context) string {
	p, err := h.store.ReadProfile(c, c.GetString("user_id"))
	if err != nil || p == nil {
		return workoutSystemPromptFallback
	}

	// Need gender, age, weight, and activity level for a personalized plan
	if p.Gender == nil || p.Age == nil || p.WeightLBS == nil || p.ActivityLevel == nil {
		return workoutSystemPromptFallback
	}

	return fmt.Sprintf(workoutSystemPromptTemplate,
		*p.Gender, *p.Age, *p.WeightLBS, strings.ReplaceAll(*p.ActivityLevel, "_", " "))
}
