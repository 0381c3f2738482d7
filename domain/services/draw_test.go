package services

import (
	"fmt"
	"testing"

	"drawbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pool(n int) []entities.Candidate {
	out := make([]entities.Candidate, n)
	for i := range out {
		out[i] = entities.Candidate{ID: fmt.Sprintf("u%d", i), DisplayName: fmt.Sprintf("User %d", i)}
	}
	return out
}

func TestDraw_EdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pool     []entities.Candidate
		count    int
		expected int
	}{
		{"empty pool", nil, 3, 0},
		{"zero count", pool(5), 0, 0},
		{"negative count", pool(5), -2, 0},
		{"count larger than pool", pool(3), 10, 3},
		{"count equals pool", pool(4), 4, 4},
		{"duplicates collapsed", append(pool(2), pool(2)...), 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			winners, err := Draw(tt.pool, tt.count)
			require.NoError(t, err)
			assert.NotNil(t, winners)
			assert.Len(t, winners, tt.expected)
		})
	}
}

func TestDraw_DoesNotMutatePool(t *testing.T) {
	t.Parallel()

	input := pool(10)
	snapshot := append([]entities.Candidate(nil), input...)

	_, err := Draw(input, 5)
	require.NoError(t, err)
	assert.Equal(t, snapshot, input)
}

func TestDraw_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(0, 60).Draw(t, "size")
		count := rapid.IntRange(-3, 80).Draw(t, "count")
		candidates := pool(size)

		winners, err := Draw(candidates, count)
		require.NoError(t, err)

		want := count
		if want < 0 {
			want = 0
		}
		if want > size {
			want = size
		}
		assert.Len(t, winners, want)

		seen := make(map[string]bool)
		inPool := make(map[string]bool)
		for _, c := range candidates {
			inPool[c.ID] = true
		}
		for _, w := range winners {
			assert.False(t, seen[w.ID], "duplicate winner %s", w.ID)
			assert.True(t, inPool[w.ID], "winner %s not from pool", w.ID)
			seen[w.ID] = true
		}
	})
}

func TestDraw_EveryCandidateCanWin(t *testing.T) {
	t.Parallel()

	candidates := pool(5)
	wins := make(map[string]int)
	for i := 0; i < 2000; i++ {
		winners, err := Draw(candidates, 1)
		require.NoError(t, err)
		wins[winners[0].ID]++
	}

	for _, c := range candidates {
		// Expected ~400 each; a candidate never winning would indicate a biased shuffle
		assert.Greater(t, wins[c.ID], 250, "candidate %s won %d times", c.ID, wins[c.ID])
	}
}
