// Package store owns the four entity collections for the active session.
// It manages the subscription lifecycle against the document store,
// tracks per-collection readiness, and publishes immutable versioned
// snapshots to consumers.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nestfinance/nest-core/internal/docstore"
	"github.com/nestfinance/nest-core/internal/domain"
)

// State is the store's connection lifecycle state.
type State string

const (
	// StateDisconnected means no session: all collections empty, no
	// subscriptions.
	StateDisconnected State = "disconnected"
	// StateConnecting means subscriptions are live but not every
	// collection has delivered its first snapshot.
	StateConnecting State = "connecting"
	// StateReady means every collection has delivered at least one
	// snapshot. Incremental updates keep arriving in this state.
	StateReady State = "ready"
)

// entityCollections are the collections whose first snapshots gate the
// loading flag. The profile subscription is tracked separately and does
// not gate readiness.
var entityCollections = []string{
	docstore.CollectionTransactions,
	docstore.CollectionGoals,
	docstore.CollectionBudgets,
	docstore.CollectionAccounts,
}

// Snapshot is an immutable view of the store's state. Slices must not be
// mutated by consumers; every state change produces a fresh snapshot with
// a higher revision.
type Snapshot struct {
	UserID       string
	Revision     uint64
	State        State
	Loading      bool
	Healthy      bool
	Transactions []*domain.Transaction
	Goals        []*domain.Goal
	Budgets      []*domain.Budget
	Accounts     []*domain.Account
	Profile      *domain.UserProfile
}

// Store aggregates the per-user collection subscriptions into a single
// consistent, versioned state. It is safe for concurrent use: snapshot
// callbacks from the document store and consumer reads are serialized by
// one mutex, the analog of the single-threaded event loop this design
// comes from.
type Store struct {
	docs docstore.Store

	mu          sync.Mutex
	userID      string
	state       State
	revision    uint64
	loading     bool
	epoch       uint64
	ready       map[string]bool
	unhealthy   map[string]error
	cancels     []docstore.CancelFunc
	watchers    map[int64]chan struct{}
	nextWatcher int64

	transactions []*domain.Transaction
	goals        []*domain.Goal
	budgets      []*domain.Budget
	accounts     []*domain.Account
	profile      *domain.UserProfile
}

// New creates a disconnected store backed by the given document store.
func New(docs docstore.Store) *Store {
	return &Store{
		docs:      docs,
		state:     StateDisconnected,
		ready:     make(map[string]bool),
		unhealthy: make(map[string]error),
		watchers:  make(map[int64]chan struct{}),
	}
}

// Connect scopes the store to the given user and starts the collection
// subscriptions. Calling Connect again with the same identifier while
// connected is a no-op; a different identifier tears everything down
// first, so stale cross-user data is never visible, even momentarily.
func (s *Store) Connect(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == s.userID && s.state != StateDisconnected {
		return
	}

	s.teardownLocked()

	if userID == "" {
		s.bumpLocked()
		return
	}

	s.userID = userID
	s.state = StateConnecting
	s.loading = true
	epoch := s.epoch
	s.bumpLocked()

	for _, collection := range entityCollections {
		s.subscribeLocked(ctx, epoch, collection)
	}
	s.subscribeLocked(ctx, epoch, docstore.CollectionProfiles)
}

// Disconnect clears the session: all subscriptions are cancelled and the
// collections reset to empty.
func (s *Store) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	s.bumpLocked()
}

// teardownLocked cancels every live subscription and resets all state.
// The epoch bump makes any in-flight callback from the old subscriptions
// a no-op.
func (s *Store) teardownLocked() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.epoch++
	s.userID = ""
	s.state = StateDisconnected
	s.loading = false
	s.ready = make(map[string]bool)
	s.unhealthy = make(map[string]error)
	s.transactions = nil
	s.goals = nil
	s.budgets = nil
	s.accounts = nil
	s.profile = nil
}

func (s *Store) subscribeLocked(ctx context.Context, epoch uint64, collection string) {
	userID := s.userID
	cancel, err := s.docs.Subscribe(ctx, userID, collection,
		func(docs []docstore.Document) { s.apply(epoch, collection, docs) },
		func(err error) { s.fail(epoch, collection, err) },
	)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Str("user_id", userID).Msg("Subscription failed to start")
		s.unhealthy[collection] = err
		return
	}
	s.cancels = append(s.cancels, cancel)
}

// apply is the single update entry point: every subscription delivers its
// full snapshot here. Stale deliveries from a superseded session are
// discarded by the epoch check.
func (s *Store) apply(epoch uint64, collection string, docs []docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}

	switch collection {
	case docstore.CollectionTransactions:
		s.transactions = decodeTransactions(docs)
	case docstore.CollectionGoals:
		s.goals = decodeGoals(docs)
	case docstore.CollectionBudgets:
		s.budgets = decodeBudgets(docs)
	case docstore.CollectionAccounts:
		s.accounts = decodeAccounts(docs)
	case docstore.CollectionProfiles:
		s.profile = decodeProfile(s.userID, docs)
	}

	if collection != docstore.CollectionProfiles {
		s.ready[collection] = true
		delete(s.unhealthy, collection)
		if s.loading && s.allReadyLocked() {
			s.loading = false
			s.state = StateReady
			log.Debug().Str("user_id", s.userID).Msg("All collections ready")
		}
	}

	s.bumpLocked()
}

// fail marks a collection's subscription as broken. The data already held
// stays visible but the snapshot reports the store as unhealthy, so
// consumers can surface staleness instead of freezing silently.
func (s *Store) fail(epoch uint64, collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return
	}

	log.Warn().Err(err).Str("collection", collection).Str("user_id", s.userID).Msg("Subscription terminated")
	s.unhealthy[collection] = err
	s.bumpLocked()
}

func (s *Store) allReadyLocked() bool {
	for _, collection := range entityCollections {
		if !s.ready[collection] {
			return false
		}
	}
	return true
}

// bumpLocked increments the revision and wakes watchers.
func (s *Store) bumpLocked() {
	s.revision++
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns the current immutable state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		UserID:       s.userID,
		Revision:     s.revision,
		State:        s.state,
		Loading:      s.loading,
		Healthy:      len(s.unhealthy) == 0,
		Transactions: s.transactions,
		Goals:        s.goals,
		Budgets:      s.budgets,
		Accounts:     s.accounts,
		Profile:      s.profile,
	}
}

// Loading reports whether any collection is still waiting for its first
// snapshot of the current session.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Revision returns the monotonic state version.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Health returns the subscription errors per collection, if any.
func (s *Store) Health() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	health := make(map[string]error, len(s.unhealthy))
	for collection, err := range s.unhealthy {
		health[collection] = err
	}
	return health
}

// Watch registers a revision watcher. The returned channel receives a
// (coalesced) signal after every state change; cancel unregisters it.
func (s *Store) Watch() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextWatcher++
	id := s.nextWatcher
	ch := make(chan struct{}, 1)
	s.watchers[id] = ch

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

// sessionUser returns the active identifier or ErrNoSession. Mutations
// call this before touching the document store, so a missing session
// fails synchronously with no network call.
func (s *Store) sessionUser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return "", domain.ErrNoSession
	}
	return s.userID, nil
}

// AddTransaction creates a transaction. The occurrence date and the
// identifier are assigned at write time by the document store; the local
// collection is reconciled through the subscription, never optimistically.
func (s *Store) AddTransaction(ctx context.Context, input *domain.TransactionInput) (string, error) {
	userID, err := s.sessionUser()
	if err != nil {
		return "", err
	}
	if err := input.Validate(); err != nil {
		return "", err
	}
	fields := input.Fields()
	fields["date"] = docstore.ServerTimestamp
	return s.docs.Create(ctx, userID, docstore.CollectionTransactions, fields)
}

// UpdateTransaction merges the patch into an existing transaction.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch *domain.TransactionPatch) error {
	userID, err := s.sessionUser()
	if err != nil {
		return err
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return domain.ErrAmountNegative
	}
	return s.docs.Update(ctx, userID, docstore.CollectionTransactions, id, patch.Fields())
}

// DeleteTransaction removes a transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	userID, err := s.sessionUser()
	if err != nil {
		return err
	}
	return s.docs.Delete(ctx, userID, docstore.CollectionTransactions, id)
}

// AddGoal creates a goal.
func (s *Store) AddGoal(ctx context.Context, input *domain.GoalInput) (string, error) {
	userID, err := s.sessionUser()
	if err != nil {
		return "", err
	}
	if err := input.Validate(); err != nil {
		return "", err
	}
	return s.docs.Create(ctx, userID, docstore.CollectionGoals, input.Fields())
}

// ContributeToGoal adds amount (which may be negative) to the goal's
// current amount via the document store's atomic increment, so concurrent
// contributions from multiple sessions all land.
func (s *Store) ContributeToGoal(ctx context.Context, id string, amount decimal.Decimal) error {
	userID, err := s.sessionUser()
	if err != nil {
		return err
	}
	return s.docs.Increment(ctx, userID, docstore.CollectionGoals, id, "currentAmount", amount)
}

// UpsertBudget merges into the budget named by the payload's ID, or
// creates a new budget keyed by category when the ID is absent. Returns
// the budget's identifier.
func (s *Store) UpsertBudget(ctx context.Context, input *domain.BudgetInput) (string, error) {
	userID, err := s.sessionUser()
	if err != nil {
		return "", err
	}
	if err := input.Validate(); err != nil {
		return "", err
	}
	if input.ID != "" {
		if err := s.docs.Update(ctx, userID, docstore.CollectionBudgets, input.ID, input.Fields()); err != nil {
			return "", err
		}
		return input.ID, nil
	}
	return s.docs.Create(ctx, userID, docstore.CollectionBudgets, input.Fields())
}

// UpsertAccount follows the same upsert contract as budgets.
func (s *Store) UpsertAccount(ctx context.Context, input *domain.AccountInput) (string, error) {
	userID, err := s.sessionUser()
	if err != nil {
		return "", err
	}
	if err := input.Validate(); err != nil {
		return "", err
	}
	if input.ID != "" {
		if err := s.docs.Update(ctx, userID, docstore.CollectionAccounts, input.ID, input.Fields()); err != nil {
			return "", err
		}
		return input.ID, nil
	}
	return s.docs.Create(ctx, userID, docstore.CollectionAccounts, input.Fields())
}

// UpdateUserProfile merges the patch into the session's profile document.
func (s *Store) UpdateUserProfile(ctx context.Context, patch *domain.ProfilePatch) error {
	userID, err := s.sessionUser()
	if err != nil {
		return err
	}
	return s.docs.Set(ctx, userID, docstore.CollectionProfiles, userID, patch.Fields())
}

func decodeTransactions(docs []docstore.Document) []*domain.Transaction {
	transactions := make([]*domain.Transaction, 0, len(docs))
	for _, doc := range docs {
		tx, err := domain.TransactionFromDocument(doc.ID, doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("doc_id", doc.ID).Msg("Dropping invalid transaction document")
			continue
		}
		transactions = append(transactions, tx)
	}
	// Most recent first; stable so same-instant entries keep snapshot
	// order.
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	return transactions
}

func decodeGoals(docs []docstore.Document) []*domain.Goal {
	goals := make([]*domain.Goal, 0, len(docs))
	for _, doc := range docs {
		goal, err := domain.GoalFromDocument(doc.ID, doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("doc_id", doc.ID).Msg("Dropping invalid goal document")
			continue
		}
		goals = append(goals, goal)
	}
	return goals
}

func decodeBudgets(docs []docstore.Document) []*domain.Budget {
	budgets := make([]*domain.Budget, 0, len(docs))
	for _, doc := range docs {
		budget, err := domain.BudgetFromDocument(doc.ID, doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("doc_id", doc.ID).Msg("Dropping invalid budget document")
			continue
		}
		budgets = append(budgets, budget)
	}
	return budgets
}

func decodeAccounts(docs []docstore.Document) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		account, err := domain.AccountFromDocument(doc.ID, doc.Data)
		if err != nil {
			log.Warn().Err(err).Str("doc_id", doc.ID).Msg("Dropping invalid account document")
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts
}

func decodeProfile(userID string, docs []docstore.Document) *domain.UserProfile {
	for _, doc := range docs {
		if doc.ID == userID {
			return domain.ProfileFromDocument(doc.Data)
		}
	}
	return nil
}
