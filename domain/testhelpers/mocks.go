package testhelpers

import (
	"context"

	"drawbot/domain/entities"
	"drawbot/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockMembershipSource is a mock implementation of MembershipSource
type MockMembershipSource struct {
	mock.Mock
}

func (m *MockMembershipSource) FetchMembersWithRole(ctx context.Context, roleID string) ([]entities.Candidate, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Candidate), args.Error(1)
}

func (m *MockMembershipSource) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendNotification(ctx context.Context, channelID string, notification entities.Notification) error {
	args := m.Called(ctx, channelID, notification)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockDrawMetrics is a mock implementation of DrawMetrics
type MockDrawMetrics struct {
	mock.Mock
}

func (m *MockDrawMetrics) RecordDraw(ctx context.Context, lotteryID string, participants, winners int) {
	m.Called(ctx, lotteryID, participants, winners)
}

func (m *MockDrawMetrics) RecordReroll(ctx context.Context, lotteryID string, winners int) {
	m.Called(ctx, lotteryID, winners)
}

func (m *MockDrawMetrics) RecordTimerFire(ctx context.Context, kind string) {
	m.Called(ctx, kind)
}

func (m *MockDrawMetrics) RecordMembershipDegraded(ctx context.Context, reason string) {
	m.Called(ctx, reason)
}

func (m *MockDrawMetrics) SetActiveLotteries(count int) {
	m.Called(count)
}
