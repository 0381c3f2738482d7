package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RerollRecord is a supplementary draw derived from a DrawResult lineage
type RerollRecord struct {
	ID              string        `json:"id"`
	BaseID          string        `json:"baseId"`
	LotteryID       string        `json:"lotteryId"`
	LotteryName     string        `json:"lotteryName"`
	Timestamp       time.Time     `json:"timestamp"`
	PreviousWinners []Participant `json:"previousWinners"`
	NewWinners      []Participant `json:"newWinners"`
	RequestedBy     string        `json:"requestedBy"`
}

const rerollSuffix = "_reroll"

// LineageSuffix returns the numeric position of a reroll id within its lineage:
// baseID_reroll is 1, baseID_reroll2 is 2 and so on. ok is false if id does not
// belong to the lineage of baseID.
func LineageSuffix(baseID, id string) (n int, ok bool) {
	prefix := baseID + rerollSuffix
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	rest := id[len(prefix):]
	if rest == "" {
		return 1, true
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 2 {
		return 0, false
	}
	return n, true
}

// NextLineageID returns the first unused reroll id for baseID
func NextLineageID(baseID string, rerolls []*RerollRecord) string {
	used := make(map[int]bool)
	for _, r := range rerolls {
		if r.BaseID != baseID {
			continue
		}
		if n, ok := LineageSuffix(baseID, r.ID); ok {
			used[n] = true
		}
	}

	n := 1
	for used[n] {
		n++
	}
	if n == 1 {
		return baseID + rerollSuffix
	}
	return fmt.Sprintf("%s%s%d", baseID, rerollSuffix, n)
}
