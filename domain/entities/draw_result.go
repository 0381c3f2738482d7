package entities

import (
	"fmt"
	"time"
)

// DrawResult is the immutable record of one executed draw
type DrawResult struct {
	ID               string        `json:"id"`
	LotteryID        string        `json:"lotteryId"`
	LotteryName      string        `json:"lotteryName"`
	Timestamp        time.Time     `json:"timestamp"`
	Participants     []Participant `json:"participants"`
	ParticipantCount int           `json:"participantCount"`
	Winners          []Participant `json:"winners"`
	TargetRoleID     string        `json:"targetRoleId"`
	ClanKey          *string       `json:"clanKey"`
	ClanRoleID       *string       `json:"clanRoleId"`
	ChannelID        string        `json:"destinationChannelId"`
}

// NewDrawResult snapshots the pool and winners of a draw for the given lottery
func NewDrawResult(lottery *Lottery, pool, winners []Candidate, at time.Time) *DrawResult {
	return &DrawResult{
		ID:               DrawResultID(lottery.ID, at),
		LotteryID:        lottery.ID,
		LotteryName:      lottery.Name,
		Timestamp:        at,
		Participants:     ToParticipants(pool),
		ParticipantCount: len(pool),
		Winners:          ToParticipants(winners),
		TargetRoleID:     lottery.TargetRoleID,
		ClanKey:          lottery.ClanKey,
		ClanRoleID:       lottery.ClanRoleID,
		ChannelID:        lottery.ChannelID,
	}
}

// DrawResultID derives the base id used for reroll lineage
func DrawResultID(lotteryID string, at time.Time) string {
	return fmt.Sprintf("%s_%d", lotteryID, at.Unix())
}

// HasWinners returns false for a "no winners" outcome
func (r *DrawResult) HasWinners() bool {
	return len(r.Winners) > 0
}
