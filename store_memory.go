package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore implements Store in process. Used when no DB_URL is configured
// (local development) and by the handler tests.
type memoryStore struct {
	mu        sync.Mutex
	users     map[string]user
	profiles  map[string]profile
	entries   map[string]map[string]dailyEntry // user id -> date -> entry
	summaries map[string][]weeklySummary
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[string]user),
		profiles:  make(map[string]profile),
		entries:   make(map[string]map[string]dailyEntry),
		summaries: make(map[string][]weeklySummary),
	}
}

func (m *memoryStore) CreateUser(_ context.Context, username, passwordHash *string) (user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	u := user{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Anonymous:    username == nil,
		CreatedAt:    &now,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryStore) UserByUsername(_ context.Context, username string) (user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return user{}, ErrNotFound
}

func (m *memoryStore) ActiveUserIDs(_ context.Context, start, end string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, days := range m.entries {
		for date := range days {
			if date >= start && date <= end {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) ReadProfile(_ context.Context, userID string) (*profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryStore) WriteProfile(_ context.Context, userID string, p profile) (profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	p.UpdatedAt = &now
	m.profiles[userID] = p
	return p, nil
}

func (m *memoryStore) ReadDailyEntry(_ context.Context, userID, date string) (dailyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[userID][date]; ok {
		return copyEntry(e), nil
	}
	return dailyEntry{Date: date, Foods: []foodItem{}}, nil
}

func (m *memoryStore) ReadDailyEntries(_ context.Context, userID, start, end string) (map[string]dailyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDate := make(map[string]dailyEntry)
	for date, e := range m.entries[userID] {
		if date >= start && date <= end {
			byDate[date] = copyEntry(e)
		}
	}
	return byDate, nil
}

func (m *memoryStore) UpsertDailyEntry(_ context.Context, userID, date string, patch dailyEntryPatch) (dailyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entryLocked(userID, date)
	if patch.WeightLBS != nil {
		w := *patch.WeightLBS
		e.WeightLBS = &w
	}
	if patch.IsWorkoutDay != nil {
		b := *patch.IsWorkoutDay
		e.IsWorkoutDay = &b
	}
	if patch.Workout != nil {
		w := *patch.Workout
		e.Workout = &w
	}
	return m.saveLocked(userID, e), nil
}

func (m *memoryStore) AppendFood(_ context.Context, userID, date string, item foodItem) (dailyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entryLocked(userID, date)
	e.Foods = append(e.Foods, item)
	return m.saveLocked(userID, e), nil
}

func (m *memoryStore) DeleteFood(_ context.Context, userID, date string, index int) (dailyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID][date]
	if !ok || index < 0 || index >= len(e.Foods) {
		return dailyEntry{}, ErrNotFound
	}
	e = copyEntry(e)
	e.Foods = append(e.Foods[:index], e.Foods[index+1:]...)
	return m.saveLocked(userID, e), nil
}

func (m *memoryStore) SaveWeeklySummary(_ context.Context, ws weeklySummary) (weeklySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	ws.CreatedAt = &now
	list := m.summaries[ws.UserID]
	for i := range list {
		if list[i].WeekStart.Equal(ws.WeekStart.Time) {
			list[i] = ws
			return ws, nil
		}
	}
	m.summaries[ws.UserID] = append(list, ws)
	return ws, nil
}

func (m *memoryStore) LatestWeeklySummary(_ context.Context, userID string) (weeklySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.summaries[userID]
	if len(list) == 0 {
		return weeklySummary{}, ErrNotFound
	}
	latest := list[0]
	for _, ws := range list[1:] {
		if ws.WeekStart.After(latest.WeekStart.Time) {
			latest = ws
		}
	}
	return latest, nil
}

// entryLocked returns a copy of the stored entry, or a fresh one.
func (m *memoryStore) entryLocked(userID, date string) dailyEntry {
	if e, ok := m.entries[userID][date]; ok {
		return copyEntry(e)
	}
	return dailyEntry{Date: date, Foods: []foodItem{}}
}

func (m *memoryStore) saveLocked(userID string, e dailyEntry) dailyEntry {
	now := time.Now().UTC()
	e.UpdatedAt = &now
	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]dailyEntry)
	}
	m.entries[userID][e.Date] = e
	return copyEntry(e)
}

// copyEntry clones the foods slice so callers never alias stored state.
func copyEntry(e dailyEntry) dailyEntry {
	foods := make([]foodItem, len(e.Foods))
	copy(foods, e.Foods)
	e.Foods = foods
	return e
}
