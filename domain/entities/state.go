package entities

import (
	"fmt"
	"time"

	"drawbot/domain"
)

// MaxResults bounds the stored draw history. Older results are evicted first.
const MaxResults = 50

// State is the single persisted lottery document
type State struct {
	ActiveLotteries map[string]*Lottery `json:"activeLotteries"`
	Results         []*DrawResult       `json:"results"` // newest first
	Rerolls         []*RerollRecord     `json:"rerolls"` // append order
	LastUpdated     time.Time           `json:"lastUpdated"`
}

// NewState returns an empty document
func NewState() *State {
	return &State{
		ActiveLotteries: make(map[string]*Lottery),
		Results:         []*DrawResult{},
		Rerolls:         []*RerollRecord{},
	}
}

// Normalize replaces nil collections left behind by a sparse or legacy document
func (s *State) Normalize() {
	if s.ActiveLotteries == nil {
		s.ActiveLotteries = make(map[string]*Lottery)
	}
	if s.Results == nil {
		s.Results = []*DrawResult{}
	}
	if s.Rerolls == nil {
		s.Rerolls = []*RerollRecord{}
	}
}

// AppendResult records a draw as the newest history entry and evicts beyond MaxResults.
// A result whose id is already used by a stored result or reroll lineage gets a numeric
// suffix so that lineages never merge.
func (s *State) AppendResult(result *DrawResult) {
	result.ID = s.uniqueResultID(result.ID)
	s.Results = append([]*DrawResult{result}, s.Results...)
	if len(s.Results) > MaxResults {
		s.Results = s.Results[:MaxResults]
	}
}

func (s *State) uniqueResultID(id string) string {
	taken := make(map[string]bool, len(s.Results)+len(s.Rerolls))
	for _, r := range s.Results {
		taken[r.ID] = true
	}
	for _, r := range s.Rerolls {
		taken[r.BaseID] = true
	}
	if !taken[id] {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", id, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// AppendReroll records a reroll. Rerolls are never evicted.
func (s *State) AppendReroll(record *RerollRecord) {
	s.Rerolls = append(s.Rerolls, record)
}

// ResultAt returns the history entry at index, where 0 is the newest
func (s *State) ResultAt(index int) (*DrawResult, error) {
	if index < 0 || index >= len(s.Results) {
		return nil, &domain.IndexError{Index: index, Len: len(s.Results)}
	}
	return s.Results[index], nil
}

// RemoveResult deletes the history entry at index. Rerolls of that result are kept.
func (s *State) RemoveResult(index int) (*DrawResult, error) {
	removed, err := s.ResultAt(index)
	if err != nil {
		return nil, err
	}
	s.Results = append(s.Results[:index:index], s.Results[index+1:]...)
	return removed, nil
}

// RerollsFor returns the rerolls in the lineage of baseID, oldest first
func (s *State) RerollsFor(baseID string) []*RerollRecord {
	var lineage []*RerollRecord
	for _, r := range s.Rerolls {
		if r.BaseID == baseID {
			lineage = append(lineage, r)
		}
	}
	return lineage
}
