// Package stats provides simple local usage statistics for personal
// voice-note archives. This is a lightweight alternative to enterprise
// monitoring solutions.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/voxsense/voxsense/store"
)

// Stats represents usage statistics.
type Stats struct {
	// Note stats
	TotalNotes     int64 `json:"total_notes"`
	NotesLastWeek  int64 `json:"notes_last_week"`
	NotesLastMonth int64 `json:"notes_last_month"`

	// Summary stats
	TotalSummaries int64 `json:"total_summaries"`

	// Search stats
	TotalSearches  int64     `json:"total_searches"`
	SearchesToday  int64     `json:"searches_today"`
	LastSearchTime time.Time `json:"last_search_time"`

	// Activity stats
	ActiveDays       int64     `json:"active_days"` // Days with notes in the last 30 days
	StreakDays       int64     `json:"streak_days"` // Current consecutive days with notes
	LastActivityTime time.Time `json:"last_activity_time"`

	// Timestamp
	LastUpdated time.Time `json:"last_updated"`
}

// Collector collects and manages usage statistics.
type Collector struct {
	store *store.Store
	stats *Stats
	mu    sync.Mutex
}

// NewCollector creates a new statistics collector.
func NewCollector(st *store.Store) *Collector {
	return &Collector{
		store: st,
		stats: &Stats{
			LastUpdated: time.Now(),
		},
	}
}

// Start begins periodic statistics collection. Updates every hour
// until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	c.collect(ctx)

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// GetStats returns a copy of current statistics.
func (c *Collector) GetStats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *c.stats
	return &copied
}

// RecordSearch records a relevance search.
func (c *Collector) RecordSearch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if !sameDay(c.stats.LastSearchTime, now) {
		c.stats.SearchesToday = 0
	}
	c.stats.TotalSearches++
	c.stats.SearchesToday++
	c.stats.LastSearchTime = now
}

// collect gathers current statistics from the store.
func (c *Collector) collect(ctx context.Context) {
	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	notes, err := c.store.ListVoiceNotes(ctx, &store.FindVoiceNote{})
	if err != nil {
		return
	}
	summaries, err := c.store.ListPeriodSummaries(ctx, &store.FindPeriodSummary{})
	if err != nil {
		return
	}

	var weekCount, monthCount int64
	var lastActivity time.Time
	activeDates := make(map[string]bool)
	for _, n := range notes {
		if n.CreatedAt.After(weekAgo) {
			weekCount++
		}
		if n.CreatedAt.After(monthAgo) {
			monthCount++
			activeDates[n.CreatedAt.Format("2006-01-02")] = true
		}
		if n.CreatedAt.After(lastActivity) {
			lastActivity = n.CreatedAt
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.TotalNotes = int64(len(notes))
	c.stats.NotesLastWeek = weekCount
	c.stats.NotesLastMonth = monthCount
	c.stats.TotalSummaries = int64(len(summaries))
	c.stats.ActiveDays = int64(len(activeDates))
	c.stats.StreakDays = streakDays(activeDates, now)
	c.stats.LastActivityTime = lastActivity
	c.stats.LastUpdated = now
}

// streakDays counts consecutive active days ending today. A streak that
// ended yesterday still counts from yesterday back.
func streakDays(activeDates map[string]bool, now time.Time) int64 {
	start := now
	if !activeDates[now.Format("2006-01-02")] {
		start = now.AddDate(0, 0, -1)
	}

	var streak int64
	for i := 0; i < 30; i++ {
		day := start.AddDate(0, 0, -i)
		if !activeDates[day.Format("2006-01-02")] {
			break
		}
		streak++
	}
	return streak
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
