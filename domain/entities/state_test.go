package entities

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"drawbot/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult(n int) *DrawResult {
	return &DrawResult{
		ID:        fmt.Sprintf("lottery_x_%d", n),
		LotteryID: "lottery_x",
		Timestamp: time.Unix(int64(n), 0).UTC(),
	}
}

func TestState_AppendResultNewestFirst(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.AppendResult(testResult(1))
	state.AppendResult(testResult(2))

	require.Len(t, state.Results, 2)
	assert.Equal(t, "lottery_x_2", state.Results[0].ID)
	assert.Equal(t, "lottery_x_1", state.Results[1].ID)
}

func TestState_AppendResultEvictsOldest(t *testing.T) {
	t.Parallel()

	state := NewState()
	for i := 1; i <= MaxResults+5; i++ {
		state.AppendResult(testResult(i))
	}

	require.Len(t, state.Results, MaxResults)
	assert.Equal(t, fmt.Sprintf("lottery_x_%d", MaxResults+5), state.Results[0].ID)
	assert.Equal(t, "lottery_x_6", state.Results[MaxResults-1].ID)
}

func TestState_AppendResultSuffixesTakenIDs(t *testing.T) {
	t.Parallel()

	state := NewState()
	state.AppendResult(testResult(1))
	state.AppendResult(testResult(1))
	state.AppendResult(testResult(1))

	require.Len(t, state.Results, 3)
	assert.Equal(t, "lottery_x_1_3", state.Results[0].ID)
	assert.Equal(t, "lottery_x_1_2", state.Results[1].ID)
	assert.Equal(t, "lottery_x_1", state.Results[2].ID)

	// a lineage outlives its evicted base result
	evicted := NewState()
	evicted.AppendReroll(&RerollRecord{ID: "lottery_x_9_reroll", BaseID: "lottery_x_9"})
	evicted.AppendResult(testResult(9))
	assert.Equal(t, "lottery_x_9_2", evicted.Results[0].ID)
}

func TestState_AppendRerollIsUnbounded(t *testing.T) {
	t.Parallel()

	state := NewState()
	for i := 0; i < MaxResults+10; i++ {
		state.AppendReroll(&RerollRecord{ID: fmt.Sprintf("r%d", i), BaseID: "base"})
	}

	assert.Len(t, state.Rerolls, MaxResults+10)
	assert.Equal(t, "r0", state.Rerolls[0].ID)
	assert.Len(t, state.RerollsFor("base"), MaxResults+10)
	assert.Empty(t, state.RerollsFor("other"))
}

func TestState_RemoveResult(t *testing.T) {
	t.Parallel()

	t.Run("removes entry at index", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		state.AppendResult(testResult(1))
		state.AppendResult(testResult(2))
		state.AppendResult(testResult(3))
		original := state.Results

		removed, err := state.RemoveResult(1)
		require.NoError(t, err)
		assert.Equal(t, "lottery_x_2", removed.ID)
		require.Len(t, state.Results, 2)
		assert.Equal(t, "lottery_x_3", state.Results[0].ID)
		assert.Equal(t, "lottery_x_1", state.Results[1].ID)
		assert.Equal(t, "lottery_x_2", original[1].ID, "previous slice must not be overwritten")
	})

	t.Run("out of range leaves state untouched", func(t *testing.T) {
		t.Parallel()

		state := NewState()
		state.AppendResult(testResult(1))

		for _, idx := range []int{-1, 1, 10} {
			_, err := state.RemoveResult(idx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrIndexOutOfRange))
			var idxErr *domain.IndexError
			require.True(t, errors.As(err, &idxErr))
			assert.Equal(t, idx, idxErr.Index)
			assert.Equal(t, 1, idxErr.Len)
		}
		assert.Len(t, state.Results, 1)
	})
}

func TestState_Normalize(t *testing.T) {
	t.Parallel()

	state := &State{}
	state.Normalize()

	assert.NotNil(t, state.ActiveLotteries)
	assert.NotNil(t, state.Results)
	assert.NotNil(t, state.Rerolls)
}
