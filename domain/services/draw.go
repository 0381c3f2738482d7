package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"drawbot/domain/entities"
)

// Draw selects min(count, unique pool size) distinct candidates uniformly at random.
// The pool is never modified. Duplicate IDs in pool are collapsed before drawing, keeping
// the first occurrence. A count of zero or less yields an empty selection.
func Draw(pool []entities.Candidate, count int) ([]entities.Candidate, error) {
	if count <= 0 || len(pool) == 0 {
		return []entities.Candidate{}, nil
	}

	seen := make(map[string]bool, len(pool))
	candidates := make([]entities.Candidate, 0, len(pool))
	for _, c := range pool {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		candidates = append(candidates, c)
	}

	if count > len(candidates) {
		count = len(candidates)
	}

	// Partial Fisher-Yates: only the first count positions need to be settled
	for i := 0; i < count; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates)-i)))
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		j := i + int(n.Int64())
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	return candidates[:count:count], nil
}
