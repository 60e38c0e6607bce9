package voicectx

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/voxsense/voxsense/server/timezone"
	"github.com/voxsense/voxsense/store"
)

// tier parameterizes one instantiation of the period resolver: which
// summary types it may read and how far down the fallback chain it is
// allowed to go. Raw aggregation is permitted only for the 2-day tier,
// whose window is small enough that untruncated-ish text stays inside a
// safe token budget; a week or month of raw transcripts would blow the
// context budget of any downstream consumer, so those tiers surface
// Available=false instead.
type tier struct {
	name      string
	exactType store.PeriodType
	finerType store.PeriodType
	spanDays  int
	allowRaw  bool
}

var (
	tierPastTwoDays = tier{name: "past_two_days", exactType: store.PeriodTypeDaily, finerType: store.PeriodTypeDaily, spanDays: 2, allowRaw: true}
	tierPastWeek    = tier{name: "past_week", exactType: store.PeriodTypeWeekly, finerType: store.PeriodTypeDaily, spanDays: 7, allowRaw: false}
	tierPastMonth   = tier{name: "past_month", exactType: store.PeriodTypeMonthly, finerType: store.PeriodTypeWeekly, spanDays: 30, allowRaw: false}
)

// resolveStep is one state of the fallback chain.
type resolveStep int

const (
	tryExact resolveStep = iota
	tryFinerGrain
	tryRaw
	unavailable
)

// PastTwoDaysContext resolves the 2-day tier: exact daily summary, then
// daily summaries across the window, then truncated raw text.
func (s *Service) PastTwoDaysContext(ctx context.Context, ownerID int32) *PeriodContext {
	return s.resolvePeriod(ctx, ownerID, tierPastTwoDays)
}

// PastWeekContext resolves the week tier: exact weekly summary, then daily
// summaries inside the week. No raw fallback.
func (s *Service) PastWeekContext(ctx context.Context, ownerID int32) *PeriodContext {
	return s.resolvePeriod(ctx, ownerID, tierPastWeek)
}

// PastMonthContext resolves the month tier: exact monthly summary, then
// weekly summaries inside the month. No raw fallback.
func (s *Service) PastMonthContext(ctx context.Context, ownerID int32) *PeriodContext {
	return s.resolvePeriod(ctx, ownerID, tierPastMonth)
}

// resolvePeriod walks the ordered fallback chain and stops at the first
// source that yields data. A store read failure at any step is logged and
// treated as "no data, try next": a weaker source is strictly preferable
// to a failed tier.
func (s *Service) resolvePeriod(ctx context.Context, ownerID int32, t tier) *PeriodContext {
	windowEnd := timezone.StartOfDay(s.clock.Now(), s.config.Location)
	windowStart := windowEnd.AddDate(0, 0, -t.spanDays)

	for step := tryExact; step < unavailable; step++ {
		var (
			result *PeriodContext
			err    error
		)
		switch step {
		case tryExact:
			result, err = s.resolveExact(ctx, ownerID, t, windowStart)
		case tryFinerGrain:
			result, err = s.resolveFinerGrain(ctx, ownerID, t, windowStart, windowEnd)
		case tryRaw:
			if !t.allowRaw {
				continue
			}
			result, err = s.resolveRaw(ctx, ownerID, windowStart, windowEnd)
		}
		if err != nil {
			slog.Warn("period tier source failed, trying weaker source",
				"tier", t.name, "owner_id", ownerID, "step", int(step), "error", err)
			continue
		}
		if result != nil {
			return result
		}
	}

	return unavailableContext()
}

// resolveExact looks up the precomputed summary for the exact
// (owner, period type, window start) key.
func (s *Service) resolveExact(ctx context.Context, ownerID int32, t tier, windowStart time.Time) (*PeriodContext, error) {
	summary, err := s.summaries.GetPeriodSummary(ctx, &store.FindPeriodSummary{
		OwnerID:     &ownerID,
		PeriodType:  &t.exactType,
		PeriodStart: &windowStart,
	})
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}

	return &PeriodContext{
		Summary:     summary.Content,
		KeyTopics:   dedupe(summary.KeyTopics),
		KeyEntities: dedupe(summary.KeyEntities),
		NoteCount:   summary.NoteCount,
		Available:   true,
	}, nil
}

// resolveFinerGrain combines all summaries of the next finer period type
// whose start date falls inside the window (inclusive on both ends, dates
// not timestamps). Content is concatenated under per-period headings,
// most recent period first; topic and entity sets are unioned; counts sum.
func (s *Service) resolveFinerGrain(ctx context.Context, ownerID int32, t tier, windowStart, windowEnd time.Time) (*PeriodContext, error) {
	lastDay := windowEnd.AddDate(0, 0, -1)
	summaries, err := s.summaries.ListPeriodSummaries(ctx, &store.FindPeriodSummary{
		OwnerID:         &ownerID,
		PeriodType:      &t.finerType,
		PeriodStartFrom: &windowStart,
		PeriodStartTo:   &lastDay,
		OrderDesc:       true,
	})
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}

	result := &PeriodContext{Available: true}
	var sections []string
	for _, summary := range summaries {
		sections = append(sections, fmt.Sprintf("### %s\n%s",
			summary.PeriodStart.Format("2006-01-02"), summary.Content))
		result.KeyTopics = append(result.KeyTopics, summary.KeyTopics...)
		result.KeyEntities = append(result.KeyEntities, summary.KeyEntities...)
		result.NoteCount += summary.NoteCount
	}
	result.Summary = strings.Join(sections, "\n\n")
	result.KeyTopics = dedupe(result.KeyTopics)
	result.KeyEntities = dedupe(result.KeyEntities)
	return result, nil
}

// resolveRaw concatenates raw completed transcripts in the window
// [start, end), truncating past the configured character budget. No topic
// or entity extraction happens at this level.
func (s *Service) resolveRaw(ctx context.Context, ownerID int32, windowStart, windowEnd time.Time) (*PeriodContext, error) {
	completed := store.NoteStatusCompleted
	notes, err := s.notes.ListVoiceNotes(ctx, &store.FindVoiceNote{
		OwnerID:       &ownerID,
		Status:        &completed,
		CreatedAfter:  &windowStart,
		CreatedBefore: &windowEnd,
		OnlyWithText:  true,
	})
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, nil
	}

	var texts []string
	for _, n := range notes {
		if n.HasText() {
			texts = append(texts, *n.Text)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}

	combined := truncateRunes(strings.Join(texts, "\n\n"), s.config.RawFallbackMaxChars)

	return &PeriodContext{
		Summary:     combined,
		KeyTopics:   []string{},
		KeyEntities: []string{},
		NoteCount:   int32(len(texts)),
		Available:   true,
	}, nil
}

// truncateRunes caps s at max characters, never splitting a multibyte
// rune, and marks the cut with an ellipsis.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

func unavailableContext() *PeriodContext {
	return &PeriodContext{
		KeyTopics:   []string{},
		KeyEntities: []string{},
	}
}

// dedupe performs a case-sensitive set union preserving first-seen order.
// "Meeting" and "meeting" stay distinct on purpose: normalization here
// would silently merge entities the generation job chose to distinguish.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
