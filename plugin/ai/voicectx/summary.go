package voicectx

import (
	"context"
	"log/slog"
	"time"

	"github.com/voxsense/voxsense/internal/errcode"
	"github.com/voxsense/voxsense/server/timezone"
	"github.com/voxsense/voxsense/store"
)

// SaveSummary upserts a fully-formed period summary, keyed by
// (owner, period type, period start). An existing key is replaced whole,
// last writer wins; the store refreshes UpdatedAt. Failures come back as
// typed errors rather than panics because the caller is typically a batch
// job that must keep processing other owners.
func (s *Service) SaveSummary(ctx context.Context, summary *store.PeriodSummary) error {
	if summary == nil {
		return errcode.New(errcode.ErrCodeInvalidArgument, "summary is nil")
	}
	if summary.OwnerID <= 0 {
		return errcode.New(errcode.ErrCodeInvalidArgument, "summary requires an owner")
	}
	switch summary.PeriodType {
	case store.PeriodTypeDaily, store.PeriodTypeWeekly, store.PeriodTypeMonthly:
	default:
		return errcode.New(errcode.ErrCodeInvalidArgument, "unknown period type")
	}
	if summary.PeriodStart.IsZero() {
		return errcode.New(errcode.ErrCodeInvalidArgument, "summary requires a period start")
	}

	// Keys are dates, not timestamps. Rebuild from the calendar components
	// of the incoming value so a UTC-parsed date is not shifted to the
	// previous local day in westward timezones.
	summary.PeriodStart = dateKey(summary.PeriodStart, s.config.Location)
	if !summary.PeriodEnd.IsZero() {
		summary.PeriodEnd = dateKey(summary.PeriodEnd, s.config.Location)
	}

	if _, err := s.summaries.UpsertPeriodSummary(ctx, summary); err != nil {
		return errcode.Wrap(err, errcode.ErrCodeStoreWriteFailed, "failed to persist period summary")
	}
	return nil
}

// dateKey pins t's calendar date to midnight in loc, ignoring t's own
// location.
func dateKey(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// StalenessReport signals whether yesterday's daily summary is missing.
type StalenessReport struct {
	OwnerID     int32            `json:"owner_id"`
	PeriodType  store.PeriodType `json:"period_type"`
	PeriodStart time.Time        `json:"period_start"`
	Missing     bool             `json:"missing"`
}

// CheckStaleness reports whether a daily summary exists for yesterday.
// It never generates one: generation needs the external summarization
// job, and keeping detection separate keeps both sides cheap to test.
// The returned report lets an external scheduler enqueue generation.
func (s *Service) CheckStaleness(ctx context.Context, ownerID int32) (*StalenessReport, error) {
	yesterday := timezone.DaysAgo(s.clock.Now(), 1, s.config.Location)
	daily := store.PeriodTypeDaily

	report := &StalenessReport{
		OwnerID:     ownerID,
		PeriodType:  daily,
		PeriodStart: yesterday,
	}

	summary, err := s.summaries.GetPeriodSummary(ctx, &store.FindPeriodSummary{
		OwnerID:     &ownerID,
		PeriodType:  &daily,
		PeriodStart: &yesterday,
	})
	if err != nil {
		return nil, errcode.Wrap(err, errcode.ErrCodeStoreReadFailed, "failed to check yesterday's summary")
	}

	if summary == nil {
		report.Missing = true
		slog.Info("daily summary missing for yesterday, generation needed",
			"owner_id", ownerID, "period_start", yesterday.Format("2006-01-02"))
	}
	return report, nil
}
