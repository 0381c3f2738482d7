package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScheduler_ScheduleArmsThreeTimers(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	draw := time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)

	require.NoError(t, s.Schedule("l1", draw, time.Monday, 19, 0))

	assert.Equal(t, 3, s.Pending("l1"))
	assert.Equal(t, 3, clock.PendingTimers())
	assert.Equal(t, []string{"l1"}, s.PendingIDs())

	next := s.NextFires("l1")
	assert.Equal(t, draw.Add(-90*time.Minute), next[entities.TimerFinalWarning])
	assert.Equal(t, draw.Add(-30*time.Minute), next[entities.TimerClosingWarning])
	assert.Equal(t, draw, next[entities.TimerDraw])
}

func TestScheduler_FiresInOrderAndRearmsWeekly(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	draw := time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Schedule("l1", draw, time.Monday, 19, 0))

	clock.AdvanceTo(draw)

	fires := drainFires(s)
	require.Len(t, fires, 3)
	assert.Equal(t, entities.TimerFinalWarning, fires[0].Kind)
	assert.Equal(t, entities.TimerClosingWarning, fires[1].Kind)
	assert.Equal(t, entities.TimerDraw, fires[2].Kind)
	assert.Equal(t, draw, fires[2].At)

	assert.Equal(t, 3, s.Pending("l1"))
	assert.Equal(t, draw.AddDate(0, 0, 7), s.NextFires("l1")[entities.TimerDraw])
}

func TestScheduler_FirstFireHonoursFutureNextDrawAt(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	draw := time.Date(2024, 3, 18, 19, 0, 0, 0, time.UTC)

	require.NoError(t, s.Schedule("l1", draw, time.Monday, 19, 0))

	next := s.NextFires("l1")
	assert.Equal(t, draw, next[entities.TimerDraw])
	assert.Equal(t, draw.Add(-90*time.Minute), next[entities.TimerFinalWarning])
}

func TestScheduler_ElapsedNextDrawAtUsesNextFutureSlot(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	past := time.Date(2024, 2, 26, 19, 0, 0, 0, time.UTC)

	require.NoError(t, s.Schedule("l1", past, time.Monday, 19, 0))
	assert.Equal(t, time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC), s.NextFires("l1")[entities.TimerDraw])
}

func TestScheduler_InvalidSlotCreatesNoTimers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		day    time.Weekday
		hour   int
		minute int
	}{
		{"hour", time.Monday, 24, 0},
		{"minute", time.Monday, 19, 60},
		{"weekday", time.Weekday(9), 19, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := NewManualClock(testMonday)
			s := NewScheduler(clock, time.UTC)

			err := s.Schedule("l1", testMonday, tt.day, tt.hour, tt.minute)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			assert.Zero(t, s.Pending("l1"))
			assert.Zero(t, clock.PendingTimers())
		})
	}
}

func TestScheduler_CancelDropsQueuedFires(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	draw := time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Schedule("l1", draw, time.Monday, 19, 0))

	clock.AdvanceTo(draw)
	s.Cancel("l1")
	s.Cancel("l1")

	handled := 0
	for _, fire := range drainFires(s) {
		if s.Dispatch(context.Background(), fire, func(context.Context, TimerFire) { handled++ }) {
			t.Fatalf("stale fire %v dispatched", fire.Kind)
		}
	}
	assert.Zero(t, handled)
	assert.Zero(t, s.Pending("l1"))
	assert.Zero(t, clock.PendingTimers())
}

func TestScheduler_RescheduleReplacesSet(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	draw := time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC)
	require.NoError(t, s.Schedule("l1", draw, time.Monday, 19, 0))

	clock.AdvanceTo(draw)
	queued := drainFires(s)
	require.NoError(t, s.Reschedule("l1", draw.AddDate(0, 0, 7), time.Monday, 19, 0))

	for _, fire := range queued {
		assert.False(t, s.Dispatch(context.Background(), fire, func(context.Context, TimerFire) {}))
	}
	assert.Equal(t, 3, s.Pending("l1"))
	assert.Equal(t, 3, clock.PendingTimers())
}

func TestScheduler_ScheduleThenCancelLeavesNothingPending(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		clock := NewManualClock(testMonday)
		s := NewScheduler(clock, time.UTC)

		n := rapid.IntRange(1, 10).Draw(t, "lotteries")
		ids := make([]string, n)
		for i := range ids {
			ids[i] = rapid.StringMatching(`l[0-9]{1,3}`).Draw(t, "id")
			day := time.Weekday(rapid.IntRange(0, 6).Draw(t, "day"))
			hour := rapid.IntRange(0, 23).Draw(t, "hour")
			minute := rapid.IntRange(0, 59).Draw(t, "minute")
			require.NoError(t, s.Schedule(ids[i], testMonday, day, hour, minute))
		}
		for _, id := range ids {
			s.Cancel(id)
		}

		assert.Empty(t, s.PendingIDs())
		assert.Zero(t, clock.PendingTimers())
	})
}

func TestScheduler_RunDispatchesSequentially(t *testing.T) {
	t.Parallel()

	clock := NewManualClock(testMonday)
	s := NewScheduler(clock, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Schedule(id, testMonday, time.Monday, 19, 0))
	}

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
		handled  int
	)
	handler := func(ctx context.Context, fire TimerFire) {
		mu.Lock()
		inFlight++
		if inFlight > maxSeen {
			maxSeen = inFlight
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		handled++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, handler)

	clock.AdvanceTo(time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled == 9
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, maxSeen)
	mu.Unlock()

	s.Stop()
	assert.Empty(t, s.PendingIDs())
}
