package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// errNoWeekData means the user logged nothing in the requested week.
var errNoWeekData = errors.New("no entries logged for that week")

const weeklySystemPrompt = `You are an encouraging fitness coach. You receive one week of a user's nutrition log:
per day, the day type, calories and macros eaten against that day's goal, and body weight when logged.
Write "summary" as 3-5 plain sentences about adherence, trends and weight change.
Write "highlights" as 2-4 short, specific, actionable bullet points for next week.`

var weeklySummarySchema = responseSchema{
	Name: "weekly_summary",
	Schema: object(map[string]any{
		"summary":    typed("string"),
		"highlights": arrayOf(typed("string")),
	}),
}

// weekReport renders the week starting at weekStart as one line per day for
// the AI prompt. Goals come from p and may be absent.
func weekReport(weekStart time.Time, p *profile, entries map[string]dailyEntry) string {
	goals, hasGoals := computeGoals(p)

	var b strings.Builder
	fmt.Fprintf(&b, "Week of %s\n", weekStart.Format(dateLayout))
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i).Format(dateLayout)
		e, ok := entries[date]
		if !ok {
			fmt.Fprintf(&b, "%s: nothing logged\n", date)
			continue
		}

		workout := isWorkoutDay(e)
		dayType := "rest"
		if workout {
			dayType = "workout"
		}
		consumed := sumConsumed(e.Foods)
		fmt.Fprintf(&b, "%s (%s day): %d foods, %.0f kcal, protein %.0f g, carbs %.0f g, fat %.0f g",
			date, dayType, len(e.Foods), consumed.Calories, consumed.ProteinG, consumed.CarbsG, consumed.FatG)
		if hasGoals {
			g := goalForDay(goals, workout)
			fmt.Fprintf(&b, " (goal %d kcal, protein %d g, carbs %d g, fat %d g)",
				g.Calories, g.ProteinG, g.CarbsG, g.FatG)
		}
		if e.WeightLBS != nil {
			fmt.Fprintf(&b, ", weight %.1f lbs", math.Round(*e.WeightLBS*10)/10)
		}
		if e.Workout != nil {
			fmt.Fprintf(&b, ", workout %q", e.Workout.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// generateWeeklySummary asks the AI to recap the week starting at weekStart,
// stores the result and pushes it to the user's live clients.
func (h *Handler) generateWeeklySummary(ctx context.Context, userID string, weekStart time.Time) (weeklySummary, error) {
	start := weekStart.Format(dateLayout)
	end := weekStart.AddDate(0, 0, 6).Format(dateLayout)

	entries, err := h.store.ReadDailyEntries(ctx, userID, start, end)
	if err != nil {
		return weeklySummary{}, err
	}
	if len(entries) == 0 {
		return weeklySummary{}, errNoWeekData
	}
	p, err := h.store.ReadProfile(ctx, userID)
	if err != nil {
		return weeklySummary{}, err
	}

	messages := []openAIMessage{
		{Role: "system", Content: weeklySystemPrompt},
		{Role: "user", Content: weekReport(weekStart, p, entries)},
	}
	var out struct {
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
	}
	if err := completeInto(ctx, h.ai, messages, weeklySummarySchema, &out); err != nil {
		return weeklySummary{}, fmt.Errorf("weekly summary ai: %w", err)
	}
	if out.Highlights == nil {
		out.Highlights = []string{}
	}

	saved, err := h.store.SaveWeeklySummary(ctx, weeklySummary{
		UserID:     userID,
		WeekStart:  DateOnly{weekStart},
		Summary:    out.Summary,
		Highlights: out.Highlights,
	})
	if err != nil {
		return weeklySummary{}, err
	}

	h.hub.Publish(userID, liveEvent{Kind: "summary.created", Summary: &saved})
	return saved, nil
}

// createWeeklySummary handles POST /api/ai/weekly-summary.
// Body: { "week_start"?: "YYYY-MM-DD" }, any date inside the week; defaults to
// last week.
func (h *Handler) createWeeklySummary(c *gin.Context) {
	userID := c.GetString("user_id")

	var body struct {
		WeekStart string `json:"week_start"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	weekStart := currentMonday().AddDate(0, 0, -7)
	if body.WeekStart != "" {
		t, ok := parseDate(body.WeekStart)
		if !ok {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = mondayOf(t)
	}

	ws, err := h.generateWeeklySummary(c.Request.Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, errNoWeekData) {
			apiError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("weekly summary failed", zap.String("user_id", userID), zap.Error(err))
		apiError(c, http.StatusBadGateway, "ai request failed")
		return
	}

	c.JSON(http.StatusCreated, ws)
}

// getWeeklySummary returns the most recent stored summary.
// GET /api/ai/weekly-summary.
func (h *Handler) getWeeklySummary(c *gin.Context) {
	userID := c.GetString("user_id")

	ws, err := h.store.LatestWeeklySummary(c, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apiError(c, http.StatusNotFound, "no weekly summary yet")
		} else {
			h.log.Error("read weekly summary failed", zap.String("user_id", userID), zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to fetch weekly summary")
		}
		return
	}

	c.JSON(http.StatusOK, ws)
}

/* ─── Scheduled job ──────────────────────────────────────────────────── */

// runWeeklySummaries generates last week's summary for every user who logged
// something in it. Failures are logged per user and do not stop the run.
func (h *Handler) runWeeklySummaries(ctx context.Context, weekStart time.Time) (generated int) {
	start := weekStart.Format(dateLayout)
	end := weekStart.AddDate(0, 0, 6).Format(dateLayout)

	ids, err := h.store.ActiveUserIDs(ctx, start, end)
	if err != nil {
		h.log.Error("list active users failed", zap.Error(err))
		return 0
	}
	for _, id := range ids {
		if _, err := h.generateWeeklySummary(ctx, id, weekStart); err != nil {
			h.log.Warn("weekly summary skipped", zap.String("user_id", id), zap.Error(err))
			continue
		}
		generated++
	}
	h.log.Info("weekly summaries generated", zap.String("week_start", start), zap.Int("count", generated))
	return generated
}

// startWeeklySummaryJob schedules runWeeklySummaries on spec (standard 5-field
// cron syntax). The caller stops the returned scheduler on shutdown.
func (h *Handler) startWeeklySummaryJob(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		h.runWeeklySummaries(ctx, currentMonday().AddDate(0, 0, -7))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule weekly summaries: %w", err)
	}
	c.Start()
	return c, nil
}
