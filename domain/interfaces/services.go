package interfaces

import (
	"context"

	"drawbot/domain/entities"
)

// MembershipSource provides guild members for eligibility resolution
type MembershipSource interface {
	// FetchMembersWithRole returns the members currently known to hold roleID.
	// The result may be incomplete until Refresh has succeeded.
	FetchMembersWithRole(ctx context.Context, roleID string) ([]entities.Candidate, error)

	// Refresh performs a full member fetch from the platform
	Refresh(ctx context.Context) error
}

// Notifier delivers lottery announcements to a channel
type Notifier interface {
	SendNotification(ctx context.Context, channelID string, notification entities.Notification) error
}

// DrawMetrics receives lottery telemetry. Implementations must be safe to call when
// metrics are disabled.
type DrawMetrics interface {
	RecordDraw(ctx context.Context, lotteryID string, participants, winners int)
	RecordReroll(ctx context.Context, lotteryID string, winners int)
	RecordTimerFire(ctx context.Context, kind string)
	RecordMembershipDegraded(ctx context.Context, reason string)
	SetActiveLotteries(count int)
}
