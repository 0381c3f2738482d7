package application

import (
	"context"
	"testing"
	"time"

	"drawbot/domain/entities"
	"drawbot/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// 2024-03-04 is a Monday
var testMonday = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type resolverFunc func(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error)

func (f resolverFunc) Resolve(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error) {
	return f(ctx, lottery)
}

func staticPool(pool []entities.Candidate) resolverFunc {
	return func(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error) {
		return pool, nil
	}
}

type controllerFixture struct {
	clock     *ManualClock
	store     *testhelpers.MemoryStore
	scheduler *Scheduler
	notifier  *testhelpers.MockNotifier
	publisher *testhelpers.MockEventPublisher
	metrics   *testhelpers.MockDrawMetrics
	resolved  int
	pool      []entities.Candidate
	ctrl      *LifecycleController
}

func newControllerFixture(t *testing.T, pool []entities.Candidate) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		clock:     NewManualClock(testMonday),
		store:     testhelpers.NewMemoryStore(),
		notifier:  new(testhelpers.MockNotifier),
		publisher: new(testhelpers.MockEventPublisher),
		metrics:   new(testhelpers.MockDrawMetrics),
		pool:      pool,
	}
	f.scheduler = NewScheduler(f.clock, time.UTC)

	f.notifier.On("SendNotification", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.publisher.On("Publish", mock.Anything).Return(nil).Maybe()
	f.metrics.On("RecordDraw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	f.metrics.On("RecordReroll", mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	f.metrics.On("RecordTimerFire", mock.Anything, mock.Anything).Return().Maybe()
	f.metrics.On("RecordMembershipDegraded", mock.Anything, mock.Anything).Return().Maybe()
	f.metrics.On("SetActiveLotteries", mock.Anything).Return().Maybe()

	resolver := resolverFunc(func(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error) {
		f.resolved++
		return f.pool, nil
	})

	f.ctrl = NewLifecycleController(f.store, f.scheduler, resolver, f.notifier, f.publisher, f.metrics, f.clock, LifecycleConfig{
		ClanRoles: map[string]string{"Red": "role-red", "blue": "role-blue"},
	})
	return f
}

// dispatchAll drains queued fires through the controller, as Run would
func (f *controllerFixture) dispatchAll(ctx context.Context) int {
	handled := 0
	for {
		select {
		case fire := <-f.scheduler.Fires():
			if f.scheduler.Dispatch(ctx, fire, f.ctrl.HandleTimer) {
				handled++
			}
		default:
			return handled
		}
	}
}

func drainFires(s *Scheduler) []TimerFire {
	var out []TimerFire
	for {
		select {
		case fire := <-s.Fires():
			out = append(out, fire)
		default:
			return out
		}
	}
}

func weeklyRequest() CreateLotteryRequest {
	return CreateLotteryRequest{
		TargetRoleID:  "role-target",
		FrequencyDays: 7,
		DayOfWeek:     "Monday",
		Hour:          19,
		Minute:        0,
		WinnersCount:  2,
		ChannelID:     "channel-1",
		CreatedBy:     "admin",
	}
}
