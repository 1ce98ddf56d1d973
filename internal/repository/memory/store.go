// Package memory keeps deals, nodes and requirements in process memory as an
// arena of records keyed by id. It backs dev mode and the service tests and
// mirrors the postgres repositories' semantics, including transactions.
package memory

import (
	"context"
	"maps"
	"sync"

	"dealdesk/internal/domain/models"
	"dealdesk/internal/domain/models/docsystem"
	"dealdesk/internal/domain/repositories"
)

type txMarker struct{}

// Store owns all in-memory state. A single mutex guards it; a transaction
// holds the mutex for its whole duration, which serializes writers.
type Store struct {
	mu           sync.Mutex
	deals        map[string]models.Deal
	investors    map[string]map[string]struct{} // deal id -> investor org ids
	nodes        map[string]docsystem.Node
	requirements map[string]docsystem.Requirement
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		deals:        make(map[string]models.Deal),
		investors:    make(map[string]map[string]struct{}),
		nodes:        make(map[string]docsystem.Node),
		requirements: make(map[string]docsystem.Requirement),
	}
}

// lock acquires the store mutex unless ctx already runs inside ExecTx
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txMarker{}).(bool)
	return ok
}

type snapshot struct {
	deals        map[string]models.Deal
	investors    map[string]map[string]struct{}
	nodes        map[string]docsystem.Node
	requirements map[string]docsystem.Requirement
}

func (s *Store) snapshot() snapshot {
	investors := make(map[string]map[string]struct{}, len(s.investors))
	for dealID, set := range s.investors {
		investors[dealID] = maps.Clone(set)
	}
	return snapshot{
		deals:        maps.Clone(s.deals),
		investors:    investors,
		nodes:        maps.Clone(s.nodes),
		requirements: maps.Clone(s.requirements),
	}
}

func (s *Store) restore(snap snapshot) {
	s.deals = snap.deals
	s.investors = snap.investors
	s.nodes = snap.nodes
	s.requirements = snap.requirements
}

// TransactionManager runs functions atomically against a Store
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn while holding the store lock and restores the previous
// state if fn returns an error or panics
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	snap := tm.store.snapshot()
	committed := false
	defer func() {
		if !committed {
			tm.store.restore(snap)
		}
	}()

	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}
