package voicectx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxsense/voxsense/store"
)

var assertAnError = errors.New("store unavailable")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addSummary(mock *MockStore, ownerID int32, periodType store.PeriodType, start time.Time, content string, topics, entities []string, count int32) {
	mock.AddSummary(&store.PeriodSummary{
		OwnerID:     ownerID,
		PeriodType:  periodType,
		PeriodStart: start,
		PeriodEnd:   start,
		Content:     content,
		KeyTopics:   topics,
		KeyEntities: entities,
		NoteCount:   count,
	})
}

func TestPeriodResolver_ExactSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("WeeklySummaryReturnedVerbatim", func(t *testing.T) {
		mock := NewMockStore()
		// Window start for the week tier: 2025-06-08.
		addSummary(mock, 1, store.PeriodTypeWeekly, date(2025, 6, 8),
			"a busy week", []string{"health", "health", "work"}, []string{"Dr. Chen"}, 12)

		got := newTestService(mock).PastWeekContext(ctx, 1)
		require.True(t, got.Available)
		assert.Equal(t, "a busy week", got.Summary)
		assert.Equal(t, []string{"health", "work"}, got.KeyTopics)
		assert.Equal(t, []string{"Dr. Chen"}, got.KeyEntities)
		assert.Equal(t, int32(12), got.NoteCount)
	})

	t.Run("SkipsFinerGrainReadsOnExactHit", func(t *testing.T) {
		mock := NewMockStore()
		addSummary(mock, 1, store.PeriodTypeMonthly, date(2025, 5, 16), "the month", nil, nil, 40)
		// Weekly summaries exist but must not be consulted.
		addSummary(mock, 1, store.PeriodTypeWeekly, date(2025, 6, 1), "a week", nil, nil, 10)

		got := newTestService(mock).PastMonthContext(ctx, 1)
		require.True(t, got.Available)
		assert.Equal(t, "the month", got.Summary)
		assert.Equal(t, 1, mock.GetReads)
		assert.Zero(t, mock.ListReads)
		assert.Zero(t, mock.NoteReads)
	})

	t.Run("CaseSensitiveTopicDedup", func(t *testing.T) {
		mock := NewMockStore()
		addSummary(mock, 1, store.PeriodTypeWeekly, date(2025, 6, 8),
			"week", []string{"Meeting", "meeting", "Meeting"}, nil, 3)

		got := newTestService(mock).PastWeekContext(ctx, 1)
		assert.Equal(t, []string{"Meeting", "meeting"}, got.KeyTopics)
	})
}

func TestPeriodResolver_FinerGrain(t *testing.T) {
	ctx := context.Background()

	t.Run("WeekCombinesDailySummariesMostRecentFirst", func(t *testing.T) {
		mock := NewMockStore()
		addSummary(mock, 1, store.PeriodTypeDaily, date(2025, 6, 9), "monday notes", []string{"gym"}, []string{"Alex"}, 2)
		addSummary(mock, 1, store.PeriodTypeDaily, date(2025, 6, 12), "thursday notes", []string{"gym", "diet"}, nil, 3)
		// Outside the window: today and eight days ago.
		addSummary(mock, 1, store.PeriodTypeDaily, date(2025, 6, 15), "today", []string{"now"}, nil, 1)
		addSummary(mock, 1, store.PeriodTypeDaily, date(2025, 6, 7), "too old", []string{"old"}, nil, 1)

		got := newTestService(mock).PastWeekContext(ctx, 1)
		require.True(t, got.Available)
		assert.Equal(t, "### 2025-06-12\nthursday notes\n\n### 2025-06-09\nmonday notes", got.Summary)
		assert.Equal(t, []string{"gym", "diet"}, got.KeyTopics)
		assert.Equal(t, []string{"Alex"}, got.KeyEntities)
		assert.Equal(t, int32(5), got.NoteCount)
	})

	t.Run("MonthCombinesWeeklySummaries", func(t *testing.T) {
		mock := NewMockStore()
		addSummary(mock, 1, store.PeriodTypeWeekly, date(2025, 5, 18), "week one", nil, nil, 8)
		addSummary(mock, 1, store.PeriodTypeWeekly, date(2025, 6, 1), "week three", nil, nil, 6)

		got := newTestService(mock).PastMonthContext(ctx, 1)
		require.True(t, got.Available)
		assert.True(t, strings.HasPrefix(got.Summary, "### 2025-06-01"))
		assert.Equal(t, int32(14), got.NoteCount)
	})
}

func TestPeriodResolver_RawFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("TwoDayTierFallsBackToRawText", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "short note", time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC), 15)

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		require.True(t, got.Available)
		assert.Equal(t, "short note", got.Summary)
		assert.Empty(t, got.KeyTopics)
		assert.Empty(t, got.KeyEntities)
		assert.Equal(t, int32(1), got.NoteCount)
	})

	t.Run("RawTextTruncatedAtBudget", func(t *testing.T) {
		mock := NewMockStore()
		long := strings.Repeat("a", 400)
		addCompletedNote(mock, "n1", 1, long, time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC), 15)
		addCompletedNote(mock, "n2", 1, long, time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC), 15)

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		require.True(t, got.Available)
		assert.Len(t, got.Summary, 500+len("..."))
		assert.True(t, strings.HasSuffix(got.Summary, "..."))
	})

	t.Run("RawTruncationKeepsRunesIntact", func(t *testing.T) {
		mock := NewMockStore()
		long := strings.Repeat("早", 600)
		addCompletedNote(mock, "n1", 1, long, time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC), 15)

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		require.True(t, got.Available)
		assert.True(t, utf8.ValidString(got.Summary))
		assert.Equal(t, 500+len("..."), utf8.RuneCountInString(got.Summary))
		assert.True(t, strings.HasSuffix(got.Summary, "..."))
	})

	t.Run("WeekAndMonthNeverFallBackToRaw", func(t *testing.T) {
		mock := NewMockStore()
		// Raw notes all over the window, but no summaries of any kind.
		for d := 1; d <= 7; d++ {
			addCompletedNote(mock, "n", 1, "raw text", time.Date(2025, 6, d+7, 9, 0, 0, 0, time.UTC), 15)
		}
		svc := newTestService(mock)

		week := svc.PastWeekContext(ctx, 1)
		assert.False(t, week.Available)
		assert.Empty(t, week.Summary)
		assert.Zero(t, week.NoteCount)

		month := svc.PastMonthContext(ctx, 1)
		assert.False(t, month.Available)

		// The same raw records make the 2-day tier available.
		twoDays := svc.PastTwoDaysContext(ctx, 1)
		assert.True(t, twoDays.Available)
	})

	t.Run("TwoDayWindowExcludesToday", func(t *testing.T) {
		mock := NewMockStore()
		addCompletedNote(mock, "n1", 1, "from today", testNow, 15)

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		assert.False(t, got.Available)
	})
}

func TestPeriodResolver_Degradation(t *testing.T) {
	ctx := context.Background()

	t.Run("SummaryReadFailureFallsThrough", func(t *testing.T) {
		mock := NewMockStore()
		mock.GetErr = assertAnError
		mock.ListErr = assertAnError
		addCompletedNote(mock, "n1", 1, "raw survives", time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC), 15)

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		require.True(t, got.Available)
		assert.Equal(t, "raw survives", got.Summary)
	})

	t.Run("AllSourcesFailingYieldsUnavailable", func(t *testing.T) {
		mock := NewMockStore()
		mock.GetErr = assertAnError
		mock.ListErr = assertAnError
		mock.NotesErr = assertAnError

		got := newTestService(mock).PastTwoDaysContext(ctx, 1)
		require.NotNil(t, got)
		assert.False(t, got.Available)
		assert.NotNil(t, got.KeyTopics)
	})
}
