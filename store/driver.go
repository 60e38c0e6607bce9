package store

import (
	"context"
	"database/sql"
	"time"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// VoiceNote model related methods. Note rows are written by the external
	// ingestion pipeline; CreateVoiceNote exists for tooling and tests.
	CreateVoiceNote(ctx context.Context, create *VoiceNote) (*VoiceNote, error)
	ListVoiceNotes(ctx context.Context, find *FindVoiceNote) ([]*VoiceNote, error)

	// PeriodSummary model related methods.
	GetPeriodSummary(ctx context.Context, find *FindPeriodSummary) (*PeriodSummary, error)
	ListPeriodSummaries(ctx context.Context, find *FindPeriodSummary) ([]*PeriodSummary, error)
	UpsertPeriodSummary(ctx context.Context, upsert *PeriodSummary) (*PeriodSummary, error)

	// ListActiveOwnerIDs returns owners with at least one voice note created
	// after the cutoff. Used by the staleness runner.
	ListActiveOwnerIDs(ctx context.Context, cutoff time.Time) ([]int32, error)
}
