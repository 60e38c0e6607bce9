package staleness

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voxsense/voxsense/plugin/ai/voicectx"
	"github.com/voxsense/voxsense/store"
)

type mockOwnerLister struct {
	owners []int32
	err    error
	calls  atomic.Int32
}

func (m *mockOwnerLister) ListActiveOwnerIDs(_ context.Context, _ time.Time) ([]int32, error) {
	m.calls.Add(1)
	return m.owners, m.err
}

type mockChecker struct {
	missing map[int32]bool
	err     error
	checked atomic.Int32
}

func (m *mockChecker) CheckStaleness(_ context.Context, ownerID int32) (*voicectx.StalenessReport, error) {
	m.checked.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &voicectx.StalenessReport{
		OwnerID:    ownerID,
		PeriodType: store.PeriodTypeDaily,
		Missing:    m.missing[ownerID],
	}, nil
}

func TestNewRunner(t *testing.T) {
	owners := &mockOwnerLister{}
	checker := &mockChecker{}

	runner := NewRunner(owners, checker, 6*time.Hour)
	assert.Equal(t, 6*time.Hour, runner.interval)

	// Sub-hour intervals are clamped.
	runner = NewRunner(owners, checker, time.Minute)
	assert.Equal(t, time.Hour, runner.interval)
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("ChecksEveryActiveOwner", func(t *testing.T) {
		owners := &mockOwnerLister{owners: []int32{1, 2, 3}}
		checker := &mockChecker{missing: map[int32]bool{2: true}}

		NewRunner(owners, checker, time.Hour).RunOnce(ctx)
		assert.Equal(t, int32(3), checker.checked.Load())
	})

	t.Run("NoActiveOwners", func(t *testing.T) {
		owners := &mockOwnerLister{}
		checker := &mockChecker{}

		NewRunner(owners, checker, time.Hour).RunOnce(ctx)
		assert.Equal(t, int32(0), checker.checked.Load())
	})

	t.Run("ListFailureSkipsSweep", func(t *testing.T) {
		owners := &mockOwnerLister{err: errors.New("store down")}
		checker := &mockChecker{}

		NewRunner(owners, checker, time.Hour).RunOnce(ctx)
		assert.Equal(t, int32(0), checker.checked.Load())
	})

	t.Run("CheckFailureContinuesWithNextOwner", func(t *testing.T) {
		owners := &mockOwnerLister{owners: []int32{1, 2}}
		checker := &mockChecker{err: errors.New("store down")}

		NewRunner(owners, checker, time.Hour).RunOnce(ctx)
		assert.Equal(t, int32(2), checker.checked.Load())
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	owners := &mockOwnerLister{owners: []int32{1}}
	checker := &mockChecker{}
	runner := NewRunner(owners, checker, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	// The startup sweep ran before the ticker loop exited.
	assert.Equal(t, int32(1), owners.calls.Load())
}
