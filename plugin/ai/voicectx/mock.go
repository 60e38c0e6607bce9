package voicectx

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/voxsense/voxsense/store"
)

// MockStore is an in-memory NoteStore and SummaryStore for tests. It
// counts reads per path so tests can assert which fallback sources were
// consulted, and can be told to fail reads to exercise degradation.
type MockStore struct {
	mu        sync.Mutex
	notes     []*store.VoiceNote
	summaries map[string]*store.PeriodSummary

	// Error injection.
	NotesErr  error
	GetErr    error
	ListErr   error
	UpsertErr error

	// Read counters.
	NoteReads    int
	GetReads     int
	ListReads    int
	UpsertWrites int
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{summaries: make(map[string]*store.PeriodSummary)}
}

// AddNote seeds a voice note.
func (m *MockStore) AddNote(note *store.VoiceNote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, note)
}

// AddSummary seeds a period summary under its unique key.
func (m *MockStore) AddSummary(summary *store.PeriodSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[mockKey(summary.OwnerID, summary.PeriodType, summary.PeriodStart)] = summary
}

// SummaryCount returns the number of stored summaries.
func (m *MockStore) SummaryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.summaries)
}

// GetStored returns the stored summary for a key, or nil.
func (m *MockStore) GetStored(ownerID int32, periodType store.PeriodType, periodStart time.Time) *store.PeriodSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaries[mockKey(ownerID, periodType, periodStart)]
}

func (m *MockStore) ListVoiceNotes(_ context.Context, find *store.FindVoiceNote) ([]*store.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NoteReads++
	if m.NotesErr != nil {
		return nil, m.NotesErr
	}

	var out []*store.VoiceNote
	for _, n := range m.notes {
		if find.OwnerID != nil && n.OwnerID != *find.OwnerID {
			continue
		}
		if find.Status != nil && n.Status != *find.Status {
			continue
		}
		if find.CreatedAfter != nil && n.CreatedAt.Before(*find.CreatedAfter) {
			continue
		}
		if find.CreatedBefore != nil && !n.CreatedAt.Before(*find.CreatedBefore) {
			continue
		}
		if find.OnlyWithText && !n.HasText() {
			continue
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if find.OrderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if find.Limit > 0 && len(out) > find.Limit {
		out = out[:find.Limit]
	}
	return out, nil
}

func (m *MockStore) GetPeriodSummary(_ context.Context, find *store.FindPeriodSummary) (*store.PeriodSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetReads++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if find.OwnerID == nil || find.PeriodType == nil || find.PeriodStart == nil {
		return nil, nil
	}
	return m.summaries[mockKey(*find.OwnerID, *find.PeriodType, *find.PeriodStart)], nil
}

func (m *MockStore) ListPeriodSummaries(_ context.Context, find *store.FindPeriodSummary) ([]*store.PeriodSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListReads++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []*store.PeriodSummary
	for _, s := range m.summaries {
		if find.OwnerID != nil && s.OwnerID != *find.OwnerID {
			continue
		}
		if find.PeriodType != nil && s.PeriodType != *find.PeriodType {
			continue
		}
		if find.PeriodStart != nil && !sameDate(s.PeriodStart, *find.PeriodStart) {
			continue
		}
		if find.PeriodStartFrom != nil && s.PeriodStart.Before(*find.PeriodStartFrom) {
			continue
		}
		if find.PeriodStartTo != nil && s.PeriodStart.After(*find.PeriodStartTo) {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if find.OrderDesc {
			return out[i].PeriodStart.After(out[j].PeriodStart)
		}
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	if find.Limit > 0 && len(out) > find.Limit {
		out = out[:find.Limit]
	}
	return out, nil
}

func (m *MockStore) UpsertPeriodSummary(_ context.Context, upsert *store.PeriodSummary) (*store.PeriodSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertWrites++
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	upsert.UpdatedAt = time.Now()
	m.summaries[mockKey(upsert.OwnerID, upsert.PeriodType, upsert.PeriodStart)] = upsert
	return upsert, nil
}

func mockKey(ownerID int32, periodType store.PeriodType, periodStart time.Time) string {
	return fmt.Sprintf("%d/%s/%s", ownerID, periodType, periodStart.Format("2006-01-02"))
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// FixedClock returns a constant time. Tests use it to pin "today".
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Compile-time interface checks.
var (
	_ NoteStore    = (*MockStore)(nil)
	_ SummaryStore = (*MockStore)(nil)
	_ Clock        = (FixedClock{})
)
