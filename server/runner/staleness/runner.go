// Package staleness sweeps owners with recent voice notes and flags
// the ones whose daily summary for yesterday has not been generated.
// The runner only detects; summary generation belongs to the external
// summarization job.
package staleness

import (
	"context"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/voxsense/voxsense/plugin/ai/voicectx"
)

// activeWindow bounds which owners a sweep looks at. Owners with no
// notes in this window have nothing to summarize.
const activeWindow = 30 * 24 * time.Hour

// OwnerLister yields owners with voice notes created after the cutoff.
type OwnerLister interface {
	ListActiveOwnerIDs(ctx context.Context, cutoff time.Time) ([]int32, error)
}

// StalenessChecker reports whether an owner's daily summary for
// yesterday is missing.
type StalenessChecker interface {
	CheckStaleness(ctx context.Context, ownerID int32) (*voicectx.StalenessReport, error)
}

type Runner struct {
	owners   OwnerLister
	checker  StalenessChecker
	interval time.Duration
}

// NewRunner creates a staleness sweep runner. Interval is clamped to
// at least one hour so a misconfigured profile cannot hammer the store.
func NewRunner(owners OwnerLister, checker StalenessChecker, interval time.Duration) *Runner {
	if interval < time.Hour {
		interval = time.Hour
	}
	return &Runner{
		owners:   owners,
		checker:  checker,
		interval: interval,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Sweep once on startup
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-ctx.Done():
			slog.Info("staleness runner stopped")
			return
		}
	}
}

// RunOnce performs a single sweep (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	r.sweep(ctx)
}

func (r *Runner) sweep(ctx context.Context) {
	sweepID := shortuuid.New()
	cutoff := time.Now().Add(-activeWindow)

	owners, err := r.owners.ListActiveOwnerIDs(ctx, cutoff)
	if err != nil {
		slog.Error("failed to list active owners", "sweep_id", sweepID, "error", err)
		return
	}
	if len(owners) == 0 {
		return
	}

	var stale int
	for _, ownerID := range owners {
		select {
		case <-ctx.Done():
			slog.Info("staleness sweep cancelled", "sweep_id", sweepID, "checked", stale)
			return
		default:
		}

		report, err := r.checker.CheckStaleness(ctx, ownerID)
		if err != nil {
			slog.Error("staleness check failed", "sweep_id", sweepID, "owner_id", ownerID, "error", err)
			continue
		}
		if report.Missing {
			stale++
			slog.Warn("daily summary stale",
				"sweep_id", sweepID,
				"owner_id", ownerID,
				"period_start", report.PeriodStart.Format("2006-01-02"))
		}
	}

	slog.Info("staleness sweep finished", "sweep_id", sweepID, "owners", len(owners), "stale", stale)
}
