package voicectx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxsense/voxsense/internal/errcode"
	"github.com/voxsense/voxsense/store"
)

func TestSaveSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("UpsertIsIdempotent", func(t *testing.T) {
		mock := NewMockStore()
		svc := newTestService(mock)
		key := date(2025, 6, 14)

		first := &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily,
			PeriodStart: key, PeriodEnd: key, Content: "first draft",
		}
		require.NoError(t, svc.SaveSummary(ctx, first))

		second := &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily,
			PeriodStart: key, PeriodEnd: key, Content: "second draft",
		}
		require.NoError(t, svc.SaveSummary(ctx, second))

		// One record for the key, holding the second call's content.
		assert.Equal(t, 1, mock.SummaryCount())
		stored := mock.GetStored(1, store.PeriodTypeDaily, key)
		require.NotNil(t, stored)
		assert.Equal(t, "second draft", stored.Content)
		assert.False(t, stored.UpdatedAt.IsZero())
	})

	t.Run("DateKeyStableInWestwardTimezone", func(t *testing.T) {
		// A date parsed as UTC midnight must not shift to the previous
		// local day when the engine runs west of UTC.
		loc := time.FixedZone("UTC-5", -5*60*60)
		mock := NewMockStore()
		cfg := DefaultConfig()
		cfg.Location = loc
		svc := NewService(mock, mock, cfg).WithClock(FixedClock{T: testNow})

		utcMidnight := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
		require.NoError(t, svc.SaveSummary(ctx, &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily,
			PeriodStart: utcMidnight, PeriodEnd: utcMidnight, Content: "kept",
		}))

		stored := mock.GetStored(1, store.PeriodTypeDaily, time.Date(2025, 6, 14, 0, 0, 0, 0, loc))
		require.NotNil(t, stored)
		assert.Equal(t, "2025-06-14", stored.PeriodStart.Format("2006-01-02"))

		// Yesterday in UTC-5 is the stored date, so nothing is stale.
		report, err := svc.CheckStaleness(ctx, 1)
		require.NoError(t, err)
		assert.False(t, report.Missing)
	})

	t.Run("PeriodStartNormalizedToDate", func(t *testing.T) {
		mock := NewMockStore()
		svc := newTestService(mock)

		summary := &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily,
			PeriodStart: time.Date(2025, 6, 14, 13, 45, 0, 0, time.UTC),
		}
		require.NoError(t, svc.SaveSummary(ctx, summary))
		assert.NotNil(t, mock.GetStored(1, store.PeriodTypeDaily, date(2025, 6, 14)))
	})

	t.Run("RejectsInvalidPayloads", func(t *testing.T) {
		svc := newTestService(NewMockStore())

		assert.Error(t, svc.SaveSummary(ctx, nil))
		assert.Error(t, svc.SaveSummary(ctx, &store.PeriodSummary{
			PeriodType: store.PeriodTypeDaily, PeriodStart: date(2025, 6, 14),
		}))
		assert.Error(t, svc.SaveSummary(ctx, &store.PeriodSummary{
			OwnerID: 1, PeriodType: "hourly", PeriodStart: date(2025, 6, 14),
		}))
		assert.Error(t, svc.SaveSummary(ctx, &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily,
		}))
	})

	t.Run("WriteFailureReturnsTypedError", func(t *testing.T) {
		mock := NewMockStore()
		mock.UpsertErr = assertAnError
		svc := newTestService(mock)

		err := svc.SaveSummary(ctx, &store.PeriodSummary{
			OwnerID: 1, PeriodType: store.PeriodTypeDaily, PeriodStart: date(2025, 6, 14),
		})
		require.Error(t, err)
		assert.True(t, errcode.IsWriteFailure(err))
	})
}

func TestCheckStaleness(t *testing.T) {
	ctx := context.Background()
	yesterday := date(2025, 6, 14)

	t.Run("MissingSummarySignalsStaleness", func(t *testing.T) {
		svc := newTestService(NewMockStore())

		report, err := svc.CheckStaleness(ctx, 1)
		require.NoError(t, err)
		assert.True(t, report.Missing)
		assert.Equal(t, store.PeriodTypeDaily, report.PeriodType)
		assert.Equal(t, yesterday, report.PeriodStart)
	})

	t.Run("PresentSummaryIsFresh", func(t *testing.T) {
		mock := NewMockStore()
		addSummary(mock, 1, store.PeriodTypeDaily, yesterday, "done", nil, nil, 4)

		report, err := newTestService(mock).CheckStaleness(ctx, 1)
		require.NoError(t, err)
		assert.False(t, report.Missing)
	})

	t.Run("ReadFailurePropagates", func(t *testing.T) {
		mock := NewMockStore()
		mock.GetErr = assertAnError

		_, err := newTestService(mock).CheckStaleness(ctx, 1)
		require.Error(t, err)
		assert.Equal(t, errcode.ErrCodeStoreReadFailed, errcode.CodeOf(err))
	})
}
