package voicectx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRelevant(t *testing.T) {
	ctx := context.Background()
	recent := func(daysAgo int) time.Time { return testNow.AddDate(0, 0, -daysAgo) }

	t.Run("WordBoundaryOutranksSubstring", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "Let's discuss the milkshake recipe", recent(1), 10)
		addCompletedNote(mock, "n2", 1, "I need to buy milk", recent(2), 10)

		got, err := newTestService(mock).FindRelevant(ctx, "milk", 1)
		require.NoError(t, err)
		require.Len(t, got.Notes, 2)
		// Exact word match: +1 substring, +0.5 boundary. Substring only: +1.
		assert.Equal(t, "n2", got.Notes[0].Note.ID)
		assert.InDelta(t, 1.5, got.Notes[0].Score, 1e-9)
		assert.Equal(t, "n1", got.Notes[1].Note.ID)
		assert.InDelta(t, 1.0, got.Notes[1].Score, 1e-9)
	})

	t.Run("TokenLengthCountsRunesNotBytes", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "预约牙医下周复诊", recent(1), 10)

		// Two CJK characters are six bytes but still a two-character word.
		got, err := newTestService(mock).FindRelevant(ctx, "牙医", 1)
		require.NoError(t, err)
		assert.Empty(t, got.Notes)
		assert.Equal(t, NoRelevantNotes, got.Summary)

		// Three characters pass the filter and match as a substring.
		got, err = newTestService(mock).FindRelevant(ctx, "预约牙医", 1)
		require.NoError(t, err)
		require.Len(t, got.Notes, 1)
		assert.Equal(t, "n1", got.Notes[0].Note.ID)
	})

	t.Run("ShortTokensIgnored", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "go to the gym", recent(1), 10)

		// "to" and "go" are noise; only "gym" counts.
		got, err := newTestService(mock).FindRelevant(ctx, "go to gym", 1)
		require.NoError(t, err)
		require.Len(t, got.Notes, 1)
		assert.InDelta(t, 1.5, got.Notes[0].Score, 1e-9)

		// A query of nothing but noise matches nothing.
		got, err = newTestService(mock).FindRelevant(ctx, "to go it", 1)
		require.NoError(t, err)
		assert.Empty(t, got.Notes)
		assert.Equal(t, NoRelevantNotes, got.Summary)
	})

	t.Run("ZeroScoreDiscarded", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "completely unrelated", recent(1), 10)

		got, err := newTestService(mock).FindRelevant(ctx, "medication", 1)
		require.NoError(t, err)
		assert.Empty(t, got.Notes)
		assert.Equal(t, NoRelevantNotes, got.Summary)
	})

	t.Run("TruncatesToTopK", func(t *testing.T) {
		mock := NewMockStore()
		for i := 0; i < 25; i++ {
			addCompletedNote(mock, fmt.Sprintf("n%d", i), 1, "yoga session", recent(i%20+1), 10)
		}

		got, err := newTestService(mock).FindRelevant(ctx, "yoga", 1)
		require.NoError(t, err)
		assert.Len(t, got.Notes, 10)
	})

	t.Run("TiesKeepNewestFirst", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "older", 1, "yoga session", recent(5), 10)
		addCompletedNote(mock, "newer", 1, "yoga session", recent(1), 10)

		got, err := newTestService(mock).FindRelevant(ctx, "yoga", 1)
		require.NoError(t, err)
		require.Len(t, got.Notes, 2)
		assert.Equal(t, "newer", got.Notes[0].Note.ID)
	})

	t.Run("IgnoresNotesOutsideLookback", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "yoga long ago", recent(45), 10)

		got, err := newTestService(mock).FindRelevant(ctx, "yoga", 1)
		require.NoError(t, err)
		assert.Empty(t, got.Notes)
	})

	t.Run("RenderedSummaryNewestScoredFirst", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "blood pressure reading", recent(3), 10)
		addCompletedNote(mock, "n2", 1, "pressure cooker dinner", recent(1), 10)

		got, err := newTestService(mock).FindRelevant(ctx, "blood pressure", 1)
		require.NoError(t, err)
		require.Len(t, got.Notes, 2)
		assert.Equal(t, "n1", got.Notes[0].Note.ID)
		expected := fmt.Sprintf("[%s] blood pressure reading\n[%s] pressure cooker dinner",
			recent(3).Format("2006-01-02"), recent(1).Format("2006-01-02"))
		assert.Equal(t, expected, got.Summary)
	})

	t.Run("ReadFailureReturnsError", func(t *testing.T) {
		mock := NewMockStore()
		mock.NotesErr = assertAnError

		_, err := newTestService(mock).FindRelevant(ctx, "milk", 1)
		assert.Error(t, err)
	})
}
