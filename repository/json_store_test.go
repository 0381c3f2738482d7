package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"
	"drawbot/repository/testutil"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "lotteries.json")
	store, err := NewJSONStore(path, WithClock(func() time.Time {
		return testutil.FixedTime.Add(2 * time.Hour)
	}))
	require.NoError(t, err)
	return store
}

func TestJSONStore_MissingFileIsEmptyState(t *testing.T) {
	t.Parallel()

	store := newTestJSONStore(t)
	state, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, state.ActiveLotteries)
	assert.Empty(t, state.Results)
	assert.Empty(t, state.Rerolls)
}

func TestJSONStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestJSONStore(t)
	expected := testutil.CreateTestState()

	require.NoError(t, store.Update(ctx, func(state *entities.State) error {
		*state = *testutil.CreateTestState()
		return nil
	}))

	reopened, err := NewJSONStore(store.Path())
	require.NoError(t, err)
	state, err := reopened.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.ActiveLotteries, 1)
	for id, want := range expected.ActiveLotteries {
		assert.Equal(t, want, state.ActiveLotteries[id])
	}
	assert.Equal(t, expected.Results, state.Results)
	assert.Equal(t, expected.Rerolls, state.Rerolls)
	assert.Equal(t, testutil.FixedTime.Add(2*time.Hour), state.LastUpdated)
}

func TestJSONStore_GoldenDocument(t *testing.T) {
	t.Parallel()

	store := newTestJSONStore(t)
	require.NoError(t, store.Update(context.Background(), func(state *entities.State) error {
		*state = *testutil.CreateTestState()
		return nil
	}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lottery_state", data)
}

func TestJSONStore_UpdateErrorWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestJSONStore(t)
	boom := errors.New("boom")

	err := store.Update(ctx, func(state *entities.State) error {
		state.ActiveLotteries["x"] = testutil.CreateTestLottery()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestJSONStore_NoTempFilesLeftBehind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestJSONStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Update(ctx, func(state *entities.State) error {
			state.AppendResult(&entities.DrawResult{ID: "r"})
			return nil
		}))
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lotteries.json", entries[0].Name())
}

func TestJSONStore_CorruptDocument(t *testing.T) {
	t.Parallel()

	store := newTestJSONStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrPersistence))

	err = store.Update(context.Background(), func(*entities.State) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}

func TestJSONStore_WriteFailureIsPersistenceError(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	store := newTestJSONStore(t)
	dir := filepath.Dir(store.Path())
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := store.Update(context.Background(), func(state *entities.State) error { return nil })
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}

func TestJSONStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestJSONStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Update(ctx, func(state *entities.State) error {
				state.AppendReroll(&entities.RerollRecord{ID: "r"})
				return nil
			}))
		}()
	}
	wg.Wait()

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Rerolls, 20)
}
