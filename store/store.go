// Package store persists SplitRollUp accumulators in sqlite. A record holds
// the four checkpoint scalars, the mergedLeaves digest and, for the
// sibling-cached variant, the current frontier; nothing else.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"

	"github.com/optimistiq/go-rolluptree/db"
	"github.com/optimistiq/go-rolluptree/log"
	"github.com/optimistiq/go-rolluptree/splitrollup"
	"github.com/optimistiq/go-rolluptree/store/migrations"
	"github.com/optimistiq/go-rolluptree/tree/types"
)

var (
	// ErrNotFound is returned when no accumulator is stored under a name
	ErrNotFound = db.ErrNotFound
)

// record is the persisted row layout
type record struct {
	Name         string         `meddler:"name"`
	StartRoot    common.Hash    `meddler:"start_root,hash"`
	StartIndex   uint64         `meddler:"start_position"`
	ResultRoot   common.Hash    `meddler:"result_root,hash"`
	ResultIndex  uint64         `meddler:"result_position"`
	MergedLeaves common.Hash    `meddler:"merged_leaves,hash"`
	Siblings     types.Siblings `meddler:"siblings,siblings"`
}

func newRecord(name string, s *splitrollup.SplitRollUp) *record {
	return &record{
		Name:         name,
		StartRoot:    s.Start.Root,
		StartIndex:   s.Start.Index,
		ResultRoot:   s.Result.Root,
		ResultIndex:  s.Result.Index,
		MergedLeaves: s.MergedLeaves,
		Siblings:     s.Siblings.Clone(),
	}
}

func (r *record) splitRollUp() *splitrollup.SplitRollUp {
	return &splitrollup.SplitRollUp{
		Start:        types.Checkpoint{Root: r.StartRoot, Index: r.StartIndex},
		Result:       types.Checkpoint{Root: r.ResultRoot, Index: r.ResultIndex},
		MergedLeaves: r.MergedLeaves,
		Siblings:     r.Siblings.Clone(),
	}
}

// Store keeps named SplitRollUp records in a sqlite file
type Store struct {
	db *sql.DB
}

// New runs the migrations on dbPath and opens the store
func New(dbPath string) (*Store, error) {
	if err := migrations.RunMigrations(dbPath); err != nil {
		return nil, err
	}
	sqlDB, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: sqlDB}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the accumulator under name, replacing any previous record
func (s *Store) Save(ctx context.Context, name string, split *splitrollup.SplitRollUp) error {
	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil && !errors.Is(errRllbck, sql.ErrTxDone) {
				log.Errorf("error while rolling back tx %v", errRllbck)
			}
		}
	}()

	if _, err = tx.Exec(`DELETE FROM split_rollup WHERE name = $1`, name); err != nil {
		return err
	}
	if err = meddler.Insert(tx, "split_rollup", newRecord(name, split)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	log.Debugf("saved split roll-up %s at index %d", name, split.Result.Index)
	return nil
}

// Load reads the accumulator stored under name
func (s *Store) Load(ctx context.Context, name string) (*splitrollup.SplitRollUp, error) {
	return load(s.db, name)
}

func load(q db.Querier, name string) (*splitrollup.SplitRollUp, error) {
	r := &record{}
	if err := meddler.QueryRow(q, r, `SELECT * FROM split_rollup WHERE name = $1`, name); err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return r.splitRollUp(), nil
}

// Delete removes the record stored under name, if any
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.Exec(`DELETE FROM split_rollup WHERE name = $1`, name)
	return err
}

// Update loads the accumulator under name, applies fn and persists the
// outcome in one transaction. When fn fails nothing is written, so an invalid
// proof never advances the stored state.
func (s *Store) Update(
	ctx context.Context, name string, fn func(*splitrollup.SplitRollUp) error,
) error {
	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if errRllbck := tx.Rollback(); errRllbck != nil && !errors.Is(errRllbck, sql.ErrTxDone) {
				log.Errorf("error while rolling back tx %v", errRllbck)
			}
		}
	}()

	split, err := load(tx, name)
	if err != nil {
		return err
	}
	if err = fn(split); err != nil {
		return fmt.Errorf("updating split roll-up %s: %w", name, err)
	}
	if _, err = tx.Exec(`DELETE FROM split_rollup WHERE name = $1`, name); err != nil {
		return err
	}
	if err = meddler.Insert(tx, "split_rollup", newRecord(name, split)); err != nil {
		return err
	}
	return tx.Commit()
}
