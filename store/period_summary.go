package store

import "time"

// PeriodType identifies the calendar resolution of a period summary.
type PeriodType string

const (
	PeriodTypeDaily   PeriodType = "daily"
	PeriodTypeWeekly  PeriodType = "weekly"
	PeriodTypeMonthly PeriodType = "monthly"
)

// FinerGrain returns the next finer period type, or "" for daily.
func (p PeriodType) FinerGrain() PeriodType {
	switch p {
	case PeriodTypeMonthly:
		return PeriodTypeWeekly
	case PeriodTypeWeekly:
		return PeriodTypeDaily
	default:
		return ""
	}
}

// PeriodSummary is a precomputed digest of the voice notes inside one
// calendar window. The tuple (OwnerID, PeriodType, PeriodStart) is unique;
// writing an existing tuple replaces every field (last-writer-wins).
// Summaries are produced by the external generation job and only read by
// the context resolvers.
type PeriodSummary struct {
	OwnerID              int32
	PeriodType           PeriodType
	PeriodStart          time.Time // date, inclusive
	PeriodEnd            time.Time // date, inclusive
	Content              string
	KeyTopics            []string
	KeyEntities          []string
	Sentiment            string
	SourceNoteIDs        []string
	NoteCount            int32
	TotalDurationSeconds int32
	Language             string
	ModelUsed            string
	UpdatedAt            time.Time
}

// FindPeriodSummary specifies the conditions for finding period summaries.
// PeriodStart matches the exact date key; PeriodStartFrom/To match a date
// range, inclusive on both ends.
type FindPeriodSummary struct {
	OwnerID         *int32
	PeriodType      *PeriodType
	PeriodStart     *time.Time
	PeriodStartFrom *time.Time
	PeriodStartTo   *time.Time
	Limit           int
	OrderDesc       bool // default ascending by period start
}
