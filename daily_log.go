package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// getDailyDashboard returns one day's entry with goals, consumed totals and
// the remaining budget for the day's type.
// GET /api/daily-log?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyDashboard(c *gin.Context) {
	userID := c.GetString("user_id")
	date := c.DefaultQuery("date", time.Now().Format(dateLayout))
	if _, ok := parseDate(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	// Profile and entry are independent reads; fetch them together.
	var (
		p     *profile
		entry dailyEntry
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		p, err = h.store.ReadProfile(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entry, err = h.store.ReadDailyEntry(ctx, userID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		h.log.Error("load dashboard failed", zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to fetch daily log")
		return
	}

	c.JSON(http.StatusOK, buildDashboard(date, p, entry))
}

// getDailyRange returns every logged day in [start, end] keyed by date.
// GET /api/daily-log/range?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Days with nothing logged are absent from the map.
func (h *Handler) getDailyRange(c *gin.Context) {
	userID := c.GetString("user_id")
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	entries, err := h.store.ReadDailyEntries(c, userID, start, end)
	if err != nil {
		h.log.Error("read daily entries failed", zap.String("user_id", userID), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to fetch daily log")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// patchDailyEntry merges weight, day type and workout into the day's entry.
// PATCH /api/daily-log/:date. Only fields present in the body are written.
func (h *Handler) patchDailyEntry(c *gin.Context) {
	userID := c.GetString("user_id")
	date := c.Param("date")
	if _, ok := parseDate(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var body dailyEntryPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.empty() {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}
	if body.WeightLBS != nil && (*body.WeightLBS <= 0 || *body.WeightLBS > 9999.9) {
		apiError(c, http.StatusBadRequest, "weight_lbs must be between 0 and 9999.9")
		return
	}
	if body.Workout != nil && strings.TrimSpace(body.Workout.Title) == "" {
		apiError(c, http.StatusBadRequest, "workout.title is required")
		return
	}

	entry, err := h.store.UpsertDailyEntry(c, userID, date, body)
	if err != nil {
		h.log.Error("upsert daily entry failed", zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to update daily log")
		return
	}

	h.publishEntry(userID, entry)
	c.JSON(http.StatusOK, entry)
}

// addFood appends a food to the day's ordered food list.
// POST /api/daily-log/:date/foods.
func (h *Handler) addFood(c *gin.Context) {
	userID := c.GetString("user_id")
	date := c.Param("date")
	if _, ok := parseDate(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var body foodItem
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	for _, v := range []*float64{body.Calories, body.ProteinG, body.CarbsG, body.FatG} {
		if v != nil && *v < 0 {
			apiError(c, http.StatusBadRequest, "nutrient values must not be negative")
			return
		}
	}

	entry, err := h.store.AppendFood(c, userID, date, body)
	if err != nil {
		h.log.Error("append food failed", zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to add food")
		return
	}

	h.publishEntry(userID, entry)
	c.JSON(http.StatusCreated, entry)
}

// deleteFood removes the food at :index from the day's list and returns the
// updated entry. DELETE /api/daily-log/:date/foods/:index.
func (h *Handler) deleteFood(c *gin.Context) {
	userID := c.GetString("user_id")
	date := c.Param("date")
	if _, ok := parseDate(date); !ok {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		apiError(c, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	entry, err := h.store.DeleteFood(c, userID, date, index)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apiError(c, http.StatusNotFound, "food not found")
		} else {
			h.log.Error("delete food failed", zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to delete food")
		}
		return
	}

	h.publishEntry(userID, entry)
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) publishEntry(userID string, entry dailyEntry) {
	h.hub.Publish(userID, liveEvent{Kind: "entry.updated", Date: entry.Date, Entry: &entry})
}

// dateRange reads and validates the start/end query params, writing a 400 and
// returning ok=false when they are missing or malformed.
func dateRange(c *gin.Context) (start, end string, ok bool) {
	start = c.Query("start")
	end = c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, valid := parseDate(start); !valid {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, valid := parseDate(end); !valid {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}
