// internal/poller/poller_test.go
package poller

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"commit-watcher/internal/model"
)

// MockFetcher is a mock of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetCommits(ctx context.Context, page int) []model.Commit {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Commit)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func commitsWithIDs(ids ...int) []model.Commit {
	out := make([]model.Commit, len(ids))
	for i, id := range ids {
		out[i] = model.Commit{ID: id, Branch: "master", Message: "msg"}
	}
	return out
}

func idsOf(commits []model.Commit) []int {
	out := make([]int, len(commits))
	for i, c := range commits {
		out[i] = c.ID
	}
	return out
}

func TestPoller_CycleSemantics(t *testing.T) {
	ctx := context.Background()
	mockF := new(MockFetcher)
	p := New(mockF, time.Minute, newTestLogger())

	var notified [][]model.Commit
	p.Subscribe(func(commits []model.Commit) {
		notified = append(notified, commits)
	})

	t.Run("first cycle populates the cache without notifying", func(t *testing.T) {
		mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2, 3)).Once()

		p.runCycle(ctx)

		assert.Empty(t, notified)
		assert.Equal(t, []int{1, 2, 3}, idsOf(p.Latest()))
	})

	t.Run("second cycle notifies only the newly appeared commit", func(t *testing.T) {
		mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2, 3, 4)).Once()

		p.runCycle(ctx)

		require.Len(t, notified, 1)
		assert.Equal(t, []int{4}, idsOf(notified[0]))
		assert.Equal(t, []int{1, 2, 3, 4}, idsOf(p.Latest()))
	})

	t.Run("unchanged page produces no notification", func(t *testing.T) {
		mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2, 3, 4)).Once()

		p.runCycle(ctx)

		assert.Len(t, notified, 1)
		assert.Equal(t, []int{1, 2, 3, 4}, idsOf(p.Latest()))
	})

	mockF.AssertExpectations(t)
}

func TestPoller_FailedFetchResetsCache(t *testing.T) {
	ctx := context.Background()
	mockF := new(MockFetcher)
	p := New(mockF, time.Minute, newTestLogger())

	var notified [][]model.Commit
	p.Subscribe(func(commits []model.Commit) {
		notified = append(notified, commits)
	})

	mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2)).Once()
	p.runCycle(ctx)
	require.Empty(t, notified)

	// A failed fetch surfaces as an empty list and replaces the cache.
	mockF.On("GetCommits", mock.Anything, 1).Return(nil).Once()
	p.runCycle(ctx)
	assert.Empty(t, notified)
	assert.Empty(t, p.Latest())

	// The cache is now empty, so the next cycle behaves like a first poll.
	mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2, 3)).Once()
	p.runCycle(ctx)
	assert.Empty(t, notified)
	assert.Equal(t, []int{1, 2, 3}, idsOf(p.Latest()))

	mockF.AssertExpectations(t)
}

func TestPoller_NewObserverSeesOnlyLaterCycles(t *testing.T) {
	ctx := context.Background()
	mockF := new(MockFetcher)
	p := New(mockF, time.Minute, newTestLogger())

	mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1)).Once()
	p.runCycle(ctx)

	var notified [][]model.Commit
	p.Subscribe(func(commits []model.Commit) {
		notified = append(notified, commits)
	})

	mockF.On("GetCommits", mock.Anything, 1).Return(commitsWithIDs(1, 2)).Once()
	p.runCycle(ctx)

	require.Len(t, notified, 1)
	assert.Equal(t, []int{2}, idsOf(notified[0]))
	mockF.AssertExpectations(t)
}

// countingFetcher counts calls so loop tests can observe network activity.
type countingFetcher struct {
	calls  atomic.Int32
	closed atomic.Bool
}

func (f *countingFetcher) GetCommits(ctx context.Context, page int) []model.Commit {
	f.calls.Add(1)
	return commitsWithIDs(1)
}

func (f *countingFetcher) Close() {
	f.closed.Store(true)
}

func TestPoller_StartAndClose(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, 10*time.Millisecond, newTestLogger())

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 2
	}, time.Second, time.Millisecond, "loop should keep polling at the configured interval")

	p.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after Close")
	}

	assert.True(t, fetcher.closed.Load(), "Close should release the fetcher's network client")

	// No further fetches once the loop has stopped.
	n := fetcher.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, fetcher.calls.Load())

	// Close is idempotent.
	p.Close()
}

func TestPoller_CloseBeforeStart(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, 10*time.Millisecond, newTestLogger())

	p.Close()
	p.Start(context.Background()) // Returns immediately.

	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestPoller_StartStopsOnContextCancel(t *testing.T) {
	fetcher := &countingFetcher{}
	p := New(fetcher, 10*time.Millisecond, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 1
	}, time.Second, time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after context cancellation")
	}
}
