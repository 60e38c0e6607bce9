package store

import (
	"context"
	"fmt"
	"time"

	"github.com/voxsense/voxsense/internal/profile"
	"github.com/voxsense/voxsense/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// summaryCache holds period summaries keyed by their unique tuple.
	// Summaries change at most once per generation run, so a short TTL is
	// enough to absorb the fan-out reads of a combined context build.
	summaryCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		summaryCache: cache.New(cache.Config{
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.summaryCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateVoiceNote(ctx context.Context, create *VoiceNote) (*VoiceNote, error) {
	return s.driver.CreateVoiceNote(ctx, create)
}

func (s *Store) ListVoiceNotes(ctx context.Context, find *FindVoiceNote) ([]*VoiceNote, error) {
	return s.driver.ListVoiceNotes(ctx, find)
}

// GetPeriodSummary returns the summary for an exact key, consulting the
// cache first when the find targets a single tuple.
func (s *Store) GetPeriodSummary(ctx context.Context, find *FindPeriodSummary) (*PeriodSummary, error) {
	key := summaryCacheKey(find)
	if key != "" {
		if cached, ok := s.summaryCache.Get(ctx, key); ok {
			return cached.(*PeriodSummary), nil
		}
	}

	summary, err := s.driver.GetPeriodSummary(ctx, find)
	if err != nil {
		return nil, err
	}
	if summary != nil && key != "" {
		s.summaryCache.Set(ctx, key, summary)
	}
	return summary, nil
}

func (s *Store) ListPeriodSummaries(ctx context.Context, find *FindPeriodSummary) ([]*PeriodSummary, error) {
	return s.driver.ListPeriodSummaries(ctx, find)
}

// UpsertPeriodSummary writes the summary and invalidates its cache entry.
func (s *Store) UpsertPeriodSummary(ctx context.Context, upsert *PeriodSummary) (*PeriodSummary, error) {
	summary, err := s.driver.UpsertPeriodSummary(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.summaryCache.Delete(ctx, summaryKeyOf(summary.OwnerID, summary.PeriodType, summary.PeriodStart))
	return summary, nil
}

func (s *Store) ListActiveOwnerIDs(ctx context.Context, cutoff time.Time) ([]int32, error) {
	return s.driver.ListActiveOwnerIDs(ctx, cutoff)
}

func summaryCacheKey(find *FindPeriodSummary) string {
	if find == nil || find.OwnerID == nil || find.PeriodType == nil || find.PeriodStart == nil {
		return ""
	}
	return summaryKeyOf(*find.OwnerID, *find.PeriodType, *find.PeriodStart)
}

func summaryKeyOf(ownerID int32, periodType PeriodType, periodStart time.Time) string {
	return fmt.Sprintf("summary:%d:%s:%s", ownerID, periodType, periodStart.Format("2006-01-02"))
}
