package events

import "time"

// EventType represents different types of lottery events
type EventType string

const (
	EventTypeLotteryCreated    EventType = "lottery_created"
	EventTypeLotteryRemoved    EventType = "lottery_removed"
	EventTypeDrawCompleted     EventType = "draw_completed"
	EventTypeRerollCreated     EventType = "reroll_created"
	EventTypeMissedDrawSkipped EventType = "missed_draw_skipped"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LotteryCreatedEvent is published after a new lottery is persisted and scheduled
type LotteryCreatedEvent struct {
	LotteryID    string    `json:"lottery_id"`
	TargetRoleID string    `json:"target_role_id"`
	ClanKey      string    `json:"clan_key"`
	NextDrawAt   time.Time `json:"next_draw_at"`
	CreatedBy    string    `json:"created_by"`
}

func (e LotteryCreatedEvent) Type() EventType {
	return EventTypeLotteryCreated
}

// LotteryRemovedEvent is published when a lottery leaves the active set, either by
// operator removal or after a one-shot draw
type LotteryRemovedEvent struct {
	LotteryID string `json:"lottery_id"`
	Completed bool   `json:"completed"`
}

func (e LotteryRemovedEvent) Type() EventType {
	return EventTypeLotteryRemoved
}

// DrawCompletedEvent represents an executed draw
type DrawCompletedEvent struct {
	ResultID         string    `json:"result_id"`
	LotteryID        string    `json:"lottery_id"`
	ParticipantCount int       `json:"participant_count"`
	WinnerIDs        []string  `json:"winner_ids"`
	DrawnAt          time.Time `json:"drawn_at"`
}

func (e DrawCompletedEvent) Type() EventType {
	return EventTypeDrawCompleted
}

// RerollCreatedEvent represents a supplementary draw on an existing result
type RerollCreatedEvent struct {
	RerollID    string   `json:"reroll_id"`
	BaseID      string   `json:"base_id"`
	LotteryID   string   `json:"lottery_id"`
	WinnerIDs   []string `json:"winner_ids"`
	RequestedBy string   `json:"requested_by"`
}

func (e RerollCreatedEvent) Type() EventType {
	return EventTypeRerollCreated
}

// MissedDrawSkippedEvent is published by recovery when a draw time elapsed while
// the process was down
type MissedDrawSkippedEvent struct {
	LotteryID  string    `json:"lottery_id"`
	MissedAt   time.Time `json:"missed_at"`
	NextDrawAt time.Time `json:"next_draw_at"`
}

func (e MissedDrawSkippedEvent) Type() EventType {
	return EventTypeMissedDrawSkipped
}
