package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Column lists shared by SELECT and RETURNING clauses. uuid and date columns
// are cast to text so they scan straight into string fields.
const (
	userColumns    = "id::text AS id, username, password_hash, anonymous, created_at"
	profileColumns = "weight_lbs, height_feet, height_inches, age, gender, activity_level, body_fat_goal, updated_at"
	entryColumns   = "TO_CHAR(date, 'YYYY-MM-DD') AS date, weight_lbs, foods, is_workout_day, workout, updated_at"
	summaryColumns = "user_id::text AS user_id, week_start, summary, highlights, created_at"
)

// pgStore implements Store on a pgx connection pool. Foods and workouts live
// in JSONB columns so a day stays a single document.
type pgStore struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func newPGStore(pool *pgxpool.Pool, log *zap.Logger) *pgStore {
	return &pgStore{pool: pool, log: log}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("query failed", zap.String("op", "queryOne"), zap.Error(err))
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		s.log.Error("scan failed", zap.String("op", "queryOne"), zap.Error(err))
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, s *pgStore, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := s.pool.Query(ctx, sql, args)
	if err != nil {
		s.log.Error("query failed", zap.String("op", "queryMany"), zap.Error(err))
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		s.log.Error("scan failed", zap.String("op", "queryMany"), zap.Error(err))
	}
	return results, err
}

// notFound maps pgx.ErrNoRows onto ErrNotFound and wraps anything else.
func notFound(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// jsonArg marshals v for a ::jsonb parameter. The pool runs in simple
// protocol mode, so JSON goes over the wire as text.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(b), nil
}

/* ─── Users ───────────────────────────────────────────────────────────── */

func (s *pgStore) CreateUser(ctx context.Context, username, passwordHash *string) (user, error) {
	u, err := queryOne[user](ctx, s,
		`INSERT INTO users (username, password_hash, anonymous)
		 VALUES (@username, @passwordHash, @anonymous)
		 RETURNING `+userColumns,
		pgx.NamedArgs{"username": username, "passwordHash": passwordHash, "anonymous": username == nil})
	if err != nil {
		return user{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *pgStore) UserByUsername(ctx context.Context, username string) (user, error) {
	u, err := queryOne[user](ctx, s,
		"SELECT "+userColumns+" FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
	if err != nil {
		return user{}, notFound("user by username", err)
	}
	return u, nil
}

func (s *pgStore) ActiveUserIDs(ctx context.Context, start, end string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT user_id::text FROM daily_entries
		 WHERE date >= @start AND date <= @end`,
		pgx.NamedArgs{"start": start, "end": end})
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return ids, nil
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func (s *pgStore) ReadProfile(ctx context.Context, userID string) (*profile, error) {
	p, err := queryOne[profile](ctx, s,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return &p, nil
}

// WriteProfile replaces the whole profile; nil fields are stored as NULL.
func (s *pgStore) WriteProfile(ctx context.Context, userID string, p profile) (profile, error) {
	saved, err := queryOne[profile](ctx, s,
		`INSERT INTO profiles (user_id, weight_lbs, height_feet, height_inches, age, gender, activity_level, body_fat_goal)
		 VALUES (@userID, @weightLBS, @heightFeet, @heightInches, @age, @gender, @activityLevel, @bodyFatGoal)
		 ON CONFLICT (user_id) DO UPDATE SET
			weight_lbs     = EXCLUDED.weight_lbs,
			height_feet    = EXCLUDED.height_feet,
			height_inches  = EXCLUDED.height_inches,
			age            = EXCLUDED.age,
			gender         = EXCLUDED.gender,
			activity_level = EXCLUDED.activity_level,
			body_fat_goal  = EXCLUDED.body_fat_goal,
			updated_at     = now()
		 RETURNING `+profileColumns,
		pgx.NamedArgs{
			"userID": userID, "weightLBS": p.WeightLBS, "heightFeet": p.HeightFeet,
			"heightInches": p.HeightInches, "age": p.Age, "gender": p.Gender,
			"activityLevel": p.ActivityLevel, "bodyFatGoal": p.BodyFatGoal,
		})
	if err != nil {
		return profile{}, fmt.Errorf("write profile: %w", err)
	}
	return saved, nil
}

/* ─── Daily entries ───────────────────────────────────────────────────── */

func (s *pgStore) ReadDailyEntry(ctx context.Context, userID, date string) (dailyEntry, error) {
	e, err := queryOne[dailyEntry](ctx, s,
		"SELECT "+entryColumns+" FROM daily_entries WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
	if errors.Is(err, pgx.ErrNoRows) {
		return dailyEntry{Date: date, Foods: []foodItem{}}, nil
	}
	if err != nil {
		return dailyEntry{}, fmt.Errorf("read daily entry: %w", err)
	}
	return e, nil
}

func (s *pgStore) ReadDailyEntries(ctx context.Context, userID, start, end string) (map[string]dailyEntry, error) {
	entries, err := queryMany[dailyEntry](ctx, s,
		`SELECT `+entryColumns+` FROM daily_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		return nil, fmt.Errorf("read daily entries: %w", err)
	}
	byDate := make(map[string]dailyEntry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
	}
	return byDate, nil
}

// UpsertDailyEntry inserts the row if needed and overwrites only the columns
// present in patch. The column list is built dynamically, the same way as the
// SET clause of a partial UPDATE.
func (s *pgStore) UpsertDailyEntry(ctx context.Context, userID, date string, patch dailyEntryPatch) (dailyEntry, error) {
	cols := []string{"user_id", "date"}
	vals := []string{"@userID", "@date"}
	setClauses := []string{"updated_at = now()"}
	args := pgx.NamedArgs{"userID": userID, "date": date}

	if patch.WeightLBS != nil {
		cols = append(cols, "weight_lbs")
		vals = append(vals, "@weightLBS")
		setClauses = append(setClauses, "weight_lbs = EXCLUDED.weight_lbs")
		args["weightLBS"] = *patch.WeightLBS
	}
	if patch.IsWorkoutDay != nil {
		cols = append(cols, "is_workout_day")
		vals = append(vals, "@isWorkoutDay")
		setClauses = append(setClauses, "is_workout_day = EXCLUDED.is_workout_day")
		args["isWorkoutDay"] = *patch.IsWorkoutDay
	}
	if patch.Workout != nil {
		w, err := jsonArg(patch.Workout)
		if err != nil {
			return dailyEntry{}, err
		}
		cols = append(cols, "workout")
		vals = append(vals, "@workout::jsonb")
		setClauses = append(setClauses, "workout = EXCLUDED.workout")
		args["workout"] = w
	}

	query := "INSERT INTO daily_entries (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(vals, ", ") + ")" +
		" ON CONFLICT (user_id, date) DO UPDATE SET " + strings.Join(setClauses, ", ") +
		" RETURNING " + entryColumns

	e, err := queryOne[dailyEntry](ctx, s, query, args)
	if err != nil {
		return dailyEntry{}, fmt.Errorf("upsert daily entry: %w", err)
	}
	return e, nil
}

// AppendFood adds item to the end of the day's food array, creating the day
// if it does not exist yet.
func (s *pgStore) AppendFood(ctx context.Context, userID, date string, item foodItem) (dailyEntry, error) {
	foods, err := jsonArg([]foodItem{item})
	if err != nil {
		return dailyEntry{}, err
	}
	e, err := queryOne[dailyEntry](ctx, s,
		`INSERT INTO daily_entries (user_id, date, foods)
		 VALUES (@userID, @date, @foods::jsonb)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			foods      = daily_entries.foods || EXCLUDED.foods,
			updated_at = now()
		 RETURNING `+entryColumns,
		pgx.NamedArgs{"userID": userID, "date": date, "foods": foods})
	if err != nil {
		return dailyEntry{}, fmt.Errorf("append food: %w", err)
	}
	return e, nil
}

// DeleteFood removes the food at index. Returns ErrNotFound when the day does
// not exist or the index is out of range.
func (s *pgStore) DeleteFood(ctx context.Context, userID, date string, index int) (dailyEntry, error) {
	if index < 0 {
		return dailyEntry{}, ErrNotFound
	}
	e, err := queryOne[dailyEntry](ctx, s,
		`UPDATE daily_entries SET
			foods      = foods - @index::int,
			updated_at = now()
		 WHERE user_id = @userID AND date = @date AND jsonb_array_length(foods) > @index::int
		 RETURNING `+entryColumns,
		pgx.NamedArgs{"userID": userID, "date": date, "index": index})
	if err != nil {
		return dailyEntry{}, notFound("delete food", err)
	}
	return e, nil
}

/* ─── Weekly summaries ────────────────────────────────────────────────── */

func (s *pgStore) SaveWeeklySummary(ctx context.Context, ws weeklySummary) (weeklySummary, error) {
	highlights, err := jsonArg(ws.Highlights)
	if err != nil {
		return weeklySummary{}, err
	}
	saved, err := queryOne[weeklySummary](ctx, s,
		`INSERT INTO weekly_summaries (user_id, week_start, summary, highlights)
		 VALUES (@userID, @weekStart, @summary, @highlights::jsonb)
		 ON CONFLICT (user_id, week_start) DO UPDATE SET
			summary    = EXCLUDED.summary,
			highlights = EXCLUDED.highlights,
			created_at = now()
		 RETURNING `+summaryColumns,
		pgx.NamedArgs{
			"userID": ws.UserID, "weekStart": ws.WeekStart.Format(dateLayout),
			"summary": ws.Summary, "highlights": highlights,
		})
	if err != nil {
		return weeklySummary{}, fmt.Errorf("save weekly summary: %w", err)
	}
	return saved, nil
}

func (s *pgStore) LatestWeeklySummary(ctx context.Context, userID string) (weeklySummary, error) {
	ws, err := queryOne[weeklySummary](ctx, s,
		`SELECT `+summaryColumns+` FROM weekly_summaries
		 WHERE user_id = @userID
		 ORDER BY week_start DESC LIMIT 1`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return weeklySummary{}, notFound("latest weekly summary", err)
	}
	return ws, nil
}
