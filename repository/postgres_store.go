package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawbot/database"
	"drawbot/domain"
	"drawbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// stateRowID is the primary key of the single lottery_state row
const stateRowID = 1

// PostgresStore keeps the lottery document in a single jsonb row. Update locks the row for
// the duration of the read-modify-write, so concurrent writers are serialized by the database.
type PostgresStore struct {
	db  *database.DB
	now func() time.Time
}

// NewPostgresStore creates a store on an open connection pool
func NewPostgresStore(db *database.DB, opts ...StoreOption) *PostgresStore {
	o := applyOptions(opts)
	return &PostgresStore{db: db, now: o.now}
}

// Load returns the stored document, or an empty state if none has been written
func (s *PostgresStore) Load(ctx context.Context) (*entities.State, error) {
	query := `SELECT document FROM lottery_state WHERE id = $1`

	var document []byte
	err := s.db.QueryRow(ctx, query, stateRowID).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.NewState(), nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Err: err}
	}

	state, err := decodeState(document)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "decode", Err: err}
	}
	return state, nil
}

// Update applies fn to the locked document and writes the result in the same transaction
func (s *PostgresStore) Update(ctx context.Context, fn func(state *entities.State) error) error {
	var fnErr error

	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		ensure := `
			INSERT INTO lottery_state (id, document)
			VALUES ($1, '{}'::jsonb)
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, ensure, stateRowID); err != nil {
			return fmt.Errorf("failed to initialize state row: %w", err)
		}

		var document []byte
		if err := tx.QueryRow(ctx, `SELECT document FROM lottery_state WHERE id = $1 FOR UPDATE`, stateRowID).Scan(&document); err != nil {
			return fmt.Errorf("failed to lock state row: %w", err)
		}

		state, err := decodeState(document)
		if err != nil {
			return fmt.Errorf("failed to decode state: %w", err)
		}

		if err := fn(state); err != nil {
			fnErr = err
			return err
		}

		state.LastUpdated = s.now().UTC()
		data, err := encodeState(state)
		if err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}

		update := `
			UPDATE lottery_state
			SET document = $2, updated_at = $3
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, update, stateRowID, string(data), state.LastUpdated); err != nil {
			return fmt.Errorf("failed to write state: %w", err)
		}
		return nil
	})

	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
