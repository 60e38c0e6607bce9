// Package voicectx turns an unbounded stream of timestamped voice-note
// transcripts into a token-bounded, multi-resolution memory for AI agents.
//
// Four tiers cover widening time horizons: today (raw transcripts at full
// fidelity), the past two days, the past week, and the past month. The
// wider a tier, the stricter its data budget: the period tiers resolve
// through a fallback chain of progressively weaker sources and give up
// rather than flood the caller with raw text.
package voicectx

import (
	"context"
	"time"

	"github.com/voxsense/voxsense/store"
)

// NoteStore is the read boundary for raw voice notes. Notes are owned by
// the external ingestion pipeline; the engine never writes them.
type NoteStore interface {
	ListVoiceNotes(ctx context.Context, find *store.FindVoiceNote) ([]*store.VoiceNote, error)
}

// SummaryStore is the keyed read/upsert boundary for precomputed period
// summaries.
type SummaryStore interface {
	GetPeriodSummary(ctx context.Context, find *store.FindPeriodSummary) (*store.PeriodSummary, error)
	ListPeriodSummaries(ctx context.Context, find *store.FindPeriodSummary) ([]*store.PeriodSummary, error)
	UpsertPeriodSummary(ctx context.Context, upsert *store.PeriodSummary) (*store.PeriodSummary, error)
}

// Clock supplies "now" so window boundaries are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds the engine's tunables. The bounds are configuration
// constants, not load-bearing algorithmic choices.
type Config struct {
	// RawFallbackMaxChars caps the raw-text fallback of the 2-day tier.
	RawFallbackMaxChars int
	// RelevanceLookbackDays bounds the relevance-search candidate window.
	RelevanceLookbackDays int
	// RelevanceCandidateLimit bounds the relevance-search candidate pool.
	RelevanceCandidateLimit int
	// RelevanceTopK bounds the ranked result list.
	RelevanceTopK int
	// Location is the timezone used to derive calendar-day boundaries.
	Location *time.Location
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		RawFallbackMaxChars:     500,
		RelevanceLookbackDays:   30,
		RelevanceCandidateLimit: 100,
		RelevanceTopK:           10,
		Location:                time.UTC,
	}
}

// Service is the voice context engine. It only reads from its stores
// (except for the summary upsert path) and returns immutable result
// structures, so a single instance is safe for concurrent use.
type Service struct {
	notes     NoteStore
	summaries SummaryStore
	clock     Clock
	config    Config
}

// NewService creates a new voice context engine.
func NewService(notes NoteStore, summaries SummaryStore, cfg Config) *Service {
	if cfg.RawFallbackMaxChars <= 0 {
		cfg.RawFallbackMaxChars = 500
	}
	if cfg.RelevanceLookbackDays <= 0 {
		cfg.RelevanceLookbackDays = 30
	}
	if cfg.RelevanceCandidateLimit <= 0 {
		cfg.RelevanceCandidateLimit = 100
	}
	if cfg.RelevanceTopK <= 0 {
		cfg.RelevanceTopK = 10
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &Service{
		notes:     notes,
		summaries: summaries,
		clock:     systemClock{},
		config:    cfg,
	}
}

// WithClock overrides the engine's clock. Used by tests to pin "today".
func (s *Service) WithClock(c Clock) *Service {
	if c != nil {
		s.clock = c
	}
	return s
}

// TodayNote is one rendered entry of the today tier.
type TodayNote struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds int32     `json:"duration_seconds"`
}

// TodayContext is the full-fidelity aggregation of the current day.
type TodayContext struct {
	Notes                []TodayNote `json:"notes"`
	TotalNotes           int         `json:"total_notes"`
	TotalDurationSeconds int32       `json:"total_duration_seconds"`
	FullText             string      `json:"full_text"`
}

// PeriodContext is the resolver output for one period tier. Available
// distinguishes "no summary generated yet" from "summary says nothing":
// the absence of a summary is itself meaningful to callers.
type PeriodContext struct {
	Summary     string   `json:"summary"`
	KeyTopics   []string `json:"key_topics"`
	KeyEntities []string `json:"key_entities"`
	NoteCount   int32    `json:"note_count"`
	Available   bool     `json:"available"`
}

// VoiceContext is the combined four-tier output.
type VoiceContext struct {
	Today           *TodayContext  `json:"today"`
	PastTwoDays     *PeriodContext `json:"past_two_days"`
	PastWeek        *PeriodContext `json:"past_week"`
	PastMonth       *PeriodContext `json:"past_month"`
	CombinedContext string         `json:"combined_context"`
}
