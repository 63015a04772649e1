package main

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store implementations when the requested row (or
// food index) does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence layer the HTTP handlers depend on. It is created
// once in main and injected into Handler; pgStore backs it with Postgres and
// memoryStore keeps everything in process.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash *string) (user, error)
	UserByUsername(ctx context.Context, username string) (user, error)
	// ActiveUserIDs returns users with at least one daily entry in [start, end].
	ActiveUserIDs(ctx context.Context, start, end string) ([]string, error)

	// ReadProfile returns nil (and no error) when the user has not saved one.
	ReadProfile(ctx context.Context, userID string) (*profile, error)
	WriteProfile(ctx context.Context, userID string, p profile) (profile, error)

	// ReadDailyEntry returns an empty entry for dates with nothing logged.
	ReadDailyEntry(ctx context.Context, userID, date string) (dailyEntry, error)
	ReadDailyEntries(ctx context.Context, userID, start, end string) (map[string]dailyEntry, error)
	UpsertDailyEntry(ctx context.Context, userID, date string, patch dailyEntryPatch) (dailyEntry, error)
	AppendFood(ctx context.Context, userID, date string, item foodItem) (dailyEntry, error)
	DeleteFood(ctx context.Context, userID, date string, index int) (dailyEntry, error)

	SaveWeeklySummary(ctx context.Context, s weeklySummary) (weeklySummary, error)
	LatestWeeklySummary(ctx context.Context, userID string) (weeklySummary, error)
}
