package services

import (
	"fmt"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"
)

// Reroll draws additional winners for the history entry at resultIndex (0 is the newest)
// from participants who have not yet won anywhere in that result's lineage.
//
// The returned record is not appended to state; the caller persists it.
func Reroll(state *entities.State, resultIndex, additionalWinners int, requestedBy string, now time.Time) (*entities.RerollRecord, error) {
	result, err := state.ResultAt(resultIndex)
	if err != nil {
		return nil, err
	}
	if additionalWinners <= 0 {
		return nil, domain.NewConfigurationError("additionalWinners", additionalWinners, "must be at least 1")
	}

	previous := LineageWinners(result, state.Rerolls)
	excluded := make(map[string]bool, len(previous))
	for _, p := range previous {
		excluded[p.ID] = true
	}

	remaining := make([]entities.Participant, 0, len(result.Participants))
	for _, p := range result.Participants {
		if !excluded[p.ID] {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == 0 {
		return nil, fmt.Errorf("failed to reroll %s: %w", result.ID, domain.ErrEmptyPool)
	}

	winners, err := Draw(entities.ToCandidates(remaining), additionalWinners)
	if err != nil {
		return nil, fmt.Errorf("failed to draw reroll winners: %w", err)
	}

	return &entities.RerollRecord{
		ID:              entities.NextLineageID(result.ID, state.Rerolls),
		BaseID:          result.ID,
		LotteryID:       result.LotteryID,
		LotteryName:     result.LotteryName,
		Timestamp:       now,
		PreviousWinners: previous,
		NewWinners:      entities.ToParticipants(winners),
		RequestedBy:     requestedBy,
	}, nil
}

// LineageWinners returns the original winners of result followed by the new winners of every
// reroll in its lineage, without duplicates
func LineageWinners(result *entities.DrawResult, rerolls []*entities.RerollRecord) []entities.Participant {
	seen := make(map[string]bool)
	var union []entities.Participant

	add := func(ps []entities.Participant) {
		for _, p := range ps {
			if !seen[p.ID] {
				seen[p.ID] = true
				union = append(union, p)
			}
		}
	}

	add(result.Winners)
	for _, r := range rerolls {
		if r.BaseID == result.ID {
			add(r.NewWinners)
		}
	}
	if union == nil {
		union = []entities.Participant{}
	}
	return union
}
