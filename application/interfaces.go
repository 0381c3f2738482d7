package application

import (
	"context"

	"drawbot/domain/entities"
)

// CandidateResolver builds the eligible pool of a lottery at draw time
type CandidateResolver interface {
	Resolve(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error)
}

// Phase is the in-memory progress of a lottery through its weekly cycle
type Phase string

const (
	PhaseScheduled          Phase = "scheduled"
	PhaseFinalWarningSent   Phase = "final_warning_sent"
	PhaseClosingWarningSent Phase = "closing_warning_sent"
	PhaseDrawing            Phase = "drawing"
	PhaseUnknown            Phase = ""
)

// CreateLotteryRequest carries the raw values of a create command
type CreateLotteryRequest struct {
	Name          string
	TargetRoleID  string
	ClanKey       string // empty for a server-wide lottery
	FrequencyDays int    // 0 for a one-shot lottery
	DayOfWeek     string
	Hour          int
	Minute        int
	WinnersCount  int
	ChannelID     string
	CreatedBy     string
}

// RerollRequest asks for additional winners on a history entry (0 is the newest)
type RerollRequest struct {
	Index             int
	AdditionalWinners int
	RequestedBy       string
}
