package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanimals-checkout/internal/domain"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestDashboard_Lifecycle(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC)}
	d := NewDashboard(&fakeFeed{}, clock.Now)

	view := d.View()
	assert.True(t, view.Loading)
	assert.Empty(t, view.CheckedOut)

	morning := []domain.CheckoutRecord{
		{ID: "a", Name: "Giraffe plush", CheckedOutBy: "Sam", CheckoutTime: ptr(time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC))},
		{ID: "b", Name: "Lion mask", CheckedOutBy: "Jo", Override: domain.OverrideOverdue},
	}

	t.Run("Snapshot populates the view", func(t *testing.T) {
		d.ApplySnapshot(morning)
		view := d.View()
		assert.False(t, view.Loading)
		require.Len(t, view.CheckedOut, 2)
		assert.Equal(t, domain.StatusActive, view.CheckedOut[0].Status)
		assert.Equal(t, "6 hours", view.CheckedOut[0].HeldFor)
		assert.Equal(t, "6/10/2025, 10:00:00 AM", view.CheckedOut[0].CheckedOutAt)
		assert.Equal(t, "overdue", view.CheckedOut[1].Override)
		assert.Empty(t, view.CheckedOut[1].HeldFor)
		require.Len(t, view.Overdue, 1)
		assert.Equal(t, "b", view.Overdue[0].Record.ID)
	})

	t.Run("Tick reclassifies with a fresh clock", func(t *testing.T) {
		clock.Set(time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC))
		d.Tick()
		view := d.View()
		assert.Len(t, view.Overdue, 2)
		assert.Equal(t, clock.Now(), view.Now)
	})

	t.Run("Snapshot fully replaces the working set", func(t *testing.T) {
		d.ApplySnapshot([]domain.CheckoutRecord{{ID: "c", Name: "Otter sticker"}})
		view := d.View()
		require.Len(t, view.CheckedOut, 1)
		assert.Equal(t, "c", view.CheckedOut[0].Record.ID)
		assert.Empty(t, view.Overdue)

		records, err := d.ListCheckouts(context.Background())
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("Feed failure keeps stale data", func(t *testing.T) {
		d.FeedFailed(errors.New("permission denied"))
		view := d.View()
		assert.False(t, view.Loading)
		assert.Equal(t, "permission denied", view.Error)
		assert.Len(t, view.CheckedOut, 1)
	})

	t.Run("Next snapshot clears the error", func(t *testing.T) {
		d.ApplySnapshot(morning)
		assert.Empty(t, d.View().Error)
	})
}

func TestDashboard_Run(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)}
	snapshot := []domain.CheckoutRecord{{ID: "a", Name: "Giraffe plush", CheckoutTime: ptr(time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC))}}

	t.Run("Stream failure", func(t *testing.T) {
		d := NewDashboard(&fakeFeed{snapshots: [][]domain.CheckoutRecord{snapshot}, err: errors.New("stream reset")}, clock.Now)

		err := d.Run(context.Background())
		assert.EqualError(t, err, "stream reset")

		view := d.View()
		assert.False(t, view.Loading)
		assert.Equal(t, "stream reset", view.Error)
		assert.Len(t, view.Overdue, 1)
	})

	t.Run("Cancellation is a clean stop", func(t *testing.T) {
		d := NewDashboard(&fakeFeed{snapshots: [][]domain.CheckoutRecord{snapshot}}, clock.Now)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, d.Run(ctx))
		assert.Empty(t, d.View().Error)
		assert.Len(t, d.View().CheckedOut, 1)
	})

	t.Run("Feed failure before any snapshot shows an empty list", func(t *testing.T) {
		d := NewDashboard(&fakeFeed{err: errors.New("unavailable")}, clock.Now)
		assert.Error(t, d.Run(context.Background()))

		view := d.View()
		assert.False(t, view.Loading)
		assert.NotNil(t, view.CheckedOut)
		assert.Empty(t, view.CheckedOut)
	})
}

func TestDashboard_ConcurrentReaders(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)}
	d := NewDashboard(&fakeFeed{}, clock.Now)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.ApplySnapshot([]domain.CheckoutRecord{{ID: "a"}})
			d.Tick()
		}()
		go func() {
			defer wg.Done()
			_ = d.View()
			_, _ = d.ListCheckouts(context.Background())
		}()
	}
	wg.Wait()
	assert.Len(t, d.View().CheckedOut, 1)
}

func TestBuildView_LocalClock(t *testing.T) {
	mdt := time.FixedZone("MDT", -6*3600)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, mdt)
	records := []domain.CheckoutRecord{
		{ID: "r", Name: "Radio", CheckedOutBy: "Unknown", CheckoutTime: ptr(time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC))},
	}

	view := BuildView(records, now, false, "")
	require.Len(t, view.CheckedOut, 1)
	assert.Equal(t, "6/10/2025, 10:00:00 AM", view.CheckedOut[0].CheckedOutAt)
	assert.Equal(t, domain.StatusActive, view.CheckedOut[0].Status)
	assert.Equal(t, "2 hours", view.CheckedOut[0].HeldFor)
	assert.Empty(t, view.Overdue)
}
