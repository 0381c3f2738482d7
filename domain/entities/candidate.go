package entities

// Candidate is a guild member as seen by the membership source at draw time
type Candidate struct {
	ID          string
	DisplayName string
	RoleIDs     []string
	IsBot       bool
}

// HasRole reports whether the candidate holds the given role
func (c Candidate) HasRole(roleID string) bool {
	for _, id := range c.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Participant returns the persisted snapshot form of the candidate
func (c Candidate) Participant() Participant {
	return Participant{ID: c.ID, DisplayName: c.DisplayName}
}

// Participant is a candidate frozen into a draw result
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ToParticipants converts candidates to their snapshot form, preserving order
func ToParticipants(candidates []Candidate) []Participant {
	participants := make([]Participant, len(candidates))
	for i, c := range candidates {
		participants[i] = c.Participant()
	}
	return participants
}

// ToCandidates converts snapshot participants back into role-less candidates.
// Used by rerolls, which draw from a frozen participant list.
func ToCandidates(participants []Participant) []Candidate {
	candidates := make([]Candidate, len(participants))
	for i, p := range participants {
		candidates[i] = Candidate{ID: p.ID, DisplayName: p.DisplayName}
	}
	return candidates
}
