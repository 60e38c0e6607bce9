package voicectx

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/voxsense/voxsense/server/timezone"
	"github.com/voxsense/voxsense/store"
)

// TodayContext aggregates the current calendar day's completed transcripts
// at full fidelity. It never fails: a read error is logged and rendered as
// an empty day, because this tier is assembled in parallel with three
// others and one failure must not void the rest.
func (s *Service) TodayContext(ctx context.Context, ownerID int32) *TodayContext {
	todayStart := timezone.StartOfDay(s.clock.Now(), s.config.Location)

	completed := store.NoteStatusCompleted
	notes, err := s.notes.ListVoiceNotes(ctx, &store.FindVoiceNote{
		OwnerID:      &ownerID,
		Status:       &completed,
		CreatedAfter: &todayStart,
		OnlyWithText: true,
	})
	if err != nil {
		slog.Warn("failed to list today's voice notes, rendering empty day",
			"owner_id", ownerID, "error", err)
		return emptyTodayContext()
	}
	if len(notes) == 0 {
		return emptyTodayContext()
	}

	// Ascending timestamp order, regardless of insertion order.
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	result := &TodayContext{
		Notes: make([]TodayNote, 0, len(notes)),
	}
	var entries []string
	for _, n := range notes {
		if !n.HasText() {
			continue
		}
		text := *n.Text
		ts := n.CreatedAt.In(s.config.Location)
		result.Notes = append(result.Notes, TodayNote{
			ID:              n.ID,
			Text:            text,
			Timestamp:       ts,
			DurationSeconds: n.DurationSeconds,
		})
		result.TotalDurationSeconds += n.DurationSeconds
		// The per-entry timestamp lets an AI consumer reason about
		// sequencing within the day.
		entries = append(entries, fmt.Sprintf("[%s] %s", ts.Format("15:04"), text))
	}

	result.TotalNotes = len(result.Notes)
	result.FullText = strings.Join(entries, "\n\n")
	return result
}

func emptyTodayContext() *TodayContext {
	return &TodayContext{Notes: []TodayNote{}}
}
