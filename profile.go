package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getProfile returns the saved profile for the authenticated user along with
// the goals derived from it. Goals are null until the profile is complete.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	p, err := h.store.ReadProfile(c, userID)
	if err != nil {
		h.log.Error("read profile failed", zap.String("user_id", userID), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, buildProfileResponse(p))
}

// putProfile saves the whole profile (explicit edit-and-save) and returns it
// with recomputed goals. PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var body profile
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfile(&body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	saved, err := h.store.WriteProfile(c, userID, body)
	if err != nil {
		h.log.Error("write profile failed", zap.String("user_id", userID), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	h.hub.Publish(userID, liveEvent{Kind: "profile.updated", Profile: &saved})

	c.JSON(http.StatusOK, buildProfileResponse(&saved))
}

// validateProfile checks enum and range constraints and returns a client-facing
// message, or "" when the profile is acceptable. Missing fields are allowed;
// they only keep goals from being computed.
func validateProfile(p *profile) string {
	// An unknown activity level would silently disable goal computation.
	if p.ActivityLevel != nil {
		if _, ok := activityMultipliers[*p.ActivityLevel]; !ok {
			return "activity_level must be one of: sedentary, lightly_active, moderately_active, very_active, extra_active"
		}
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return "gender must be one of: male, female"
	}
	if p.WeightLBS != nil && (*p.WeightLBS <= 0 || *p.WeightLBS > 1500) {
		return "weight_lbs must be between 0 and 1500"
	}
	if p.HeightFeet != nil && (*p.HeightFeet <= 0 || *p.HeightFeet > 9) {
		return "height_feet must be between 0 and 9"
	}
	if p.HeightInches != nil && (*p.HeightInches < 0 || *p.HeightInches >= 12) {
		return "height_inches must be between 0 and 11"
	}
	if p.Age != nil && (*p.Age <= 0 || *p.Age > 130) {
		return "age must be between 1 and 130"
	}
	if p.BodyFatGoal != nil && (*p.BodyFatGoal <= 0 || *p.BodyFatGoal >= 100) {
		return "body_fat_goal must be a percentage between 0 and 100"
	}
	return ""
}
