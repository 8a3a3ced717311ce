// Package testsupport provides in-memory implementations of the persistence
// and core ports for usecase tests. The store stages writes per transaction
// and applies them on commit, so rollback semantics match the real database.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

type txKeyType struct{}

var txKey txKeyType

// Store is an in-memory ledger store implementing the persistence ports
type Store struct {
	mu sync.Mutex

	ledgers  map[uint64]entity.Ledger
	payments []entity.Payment
	audits   []entity.AuditEntry

	nextLedgerID  uint64
	nextPaymentID uint64
	nextAuditID   uint64

	unitPrice int64

	// FailCommit makes the next Commit fail once, simulating a transaction
	// that could not commit
	FailCommit bool
}

// NewStore creates an empty store with the given unit price in cents
func NewStore(unitPrice int64) *Store {
	return &Store{
		ledgers:   make(map[uint64]entity.Ledger),
		unitPrice: unitPrice,
	}
}

type txState struct {
	// overlay of staged ledger writes, visible to reads inside the tx
	ledgers        map[uint64]*entity.Ledger
	deletedLedgers map[uint64]bool
	payments       []entity.Payment
	audits         []entity.AuditEntry
	purgedPayments map[uint64]bool
	purgedAudits   map[uint64]bool
}

func newTxState() *txState {
	return &txState{
		ledgers:        make(map[uint64]*entity.Ledger),
		deletedLedgers: make(map[uint64]bool),
		purgedPayments: make(map[uint64]bool),
		purgedAudits:   make(map[uint64]bool),
	}
}

func txFromContext(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey).(*txState)
	return tx
}

// Begin implements persistence.UnitOfWork
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	return context.WithValue(ctx, txKey, newTxState()), nil
}

// Commit applies all staged writes
func (s *Store) Commit(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return errs.ErrStorageFailure
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCommit {
		s.FailCommit = false
		return errs.ErrStorageFailure
	}

	for id := range tx.purgedPayments {
		s.payments = discardByLedger(s.payments, id, func(p entity.Payment) uint64 { return p.LedgerID })
	}
	for id := range tx.purgedAudits {
		s.audits = discardByLedger(s.audits, id, func(a entity.AuditEntry) uint64 { return a.LedgerID })
	}
	for id, l := range tx.ledgers {
		s.ledgers[id] = *l
	}
	for id := range tx.deletedLedgers {
		delete(s.ledgers, id)
	}
	s.payments = append(s.payments, tx.payments...)
	s.audits = append(s.audits, tx.audits...)
	return nil
}

// Rollback discards all staged writes
func (s *Store) Rollback(ctx context.Context) error {
	return nil
}

func discardByLedger[T any](items []T, ledgerID uint64, key func(T) uint64) []T {
	kept := items[:0]
	for _, it := range items {
		if key(it) != ledgerID {
			kept = append(kept, it)
		}
	}
	return kept
}

// GetLedgerRepository implements persistence.UnitOfWork
func (s *Store) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return &memLedgerRepo{store: s}
}

// GetPaymentRepository implements persistence.UnitOfWork
func (s *Store) GetPaymentRepository(ctx context.Context) persistence.PaymentRepository {
	return &memPaymentRepo{store: s}
}

// GetAuditRepository implements persistence.UnitOfWork
func (s *Store) GetAuditRepository(ctx context.Context) persistence.AuditRepository {
	return &memAuditRepo{store: s}
}

// LedgerRepo returns a repository for use outside any transaction
func (s *Store) LedgerRepo() persistence.LedgerRepository { return &memLedgerRepo{store: s} }

// PaymentRepo returns a repository for use outside any transaction
func (s *Store) PaymentRepo() persistence.PaymentRepository { return &memPaymentRepo{store: s} }

// AuditRepo returns a repository for use outside any transaction
func (s *Store) AuditRepo() persistence.AuditRepository { return &memAuditRepo{store: s} }

// UnitPrice implements core.PriceProvider
func (s *Store) UnitPrice(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unitPrice, nil
}

// SetUnitPrice changes the live unit price
func (s *Store) SetUnitPrice(ctx context.Context, cents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unitPrice = cents
	return nil
}

// SeedLedger inserts a ledger directly, returning its assigned ID
func (s *Store) SeedLedger(l entity.Ledger) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLedgerID++
	l.ID = s.nextLedgerID
	if l.Status == "" {
		l.Status = entity.LedgerActive
	}
	s.ledgers[l.ID] = l
	return l.ID
}

// Payments returns a snapshot of all payment records
func (s *Store) Payments() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Payment, len(s.payments))
	copy(out, s.payments)
	return out
}

// Audits returns a snapshot of all audit entries
func (s *Store) Audits() []entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.AuditEntry, len(s.audits))
	copy(out, s.audits)
	return out
}

// Ledger returns a snapshot of one ledger and whether it exists
func (s *Store) Ledger(id uint64) (entity.Ledger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[id]
	return l, ok
}

type memLedgerRepo struct {
	store *Store
}

func (r *memLedgerRepo) get(ctx context.Context, id uint64) (*entity.Ledger, error) {
	if tx := txFromContext(ctx); tx != nil {
		if tx.deletedLedgers[id] {
			return nil, errs.ErrLedgerNotFound
		}
		if l, ok := tx.ledgers[id]; ok {
			cp := *l
			return &cp, nil
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.ledgers[id]
	if !ok {
		return nil, errs.ErrLedgerNotFound
	}
	cp := l
	return &cp, nil
}

func (r *memLedgerRepo) GetByID(ctx context.Context, id uint64) (*entity.Ledger, error) {
	return r.get(ctx, id)
}

func (r *memLedgerRepo) GetForUpdate(ctx context.Context, id uint64) (*entity.Ledger, error) {
	return r.get(ctx, id)
}

func (r *memLedgerRepo) Create(ctx context.Context, ledger *entity.Ledger) error {
	r.store.mu.Lock()
	r.store.nextLedgerID++
	ledger.ID = r.store.nextLedgerID
	r.store.mu.Unlock()

	if tx := txFromContext(ctx); tx != nil {
		cp := *ledger
		tx.ledgers[ledger.ID] = &cp
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.ledgers[ledger.ID] = *ledger
	return nil
}

func (r *memLedgerRepo) Update(ctx context.Context, ledger *entity.Ledger) error {
	if tx := txFromContext(ctx); tx != nil {
		cp := *ledger
		tx.ledgers[ledger.ID] = &cp
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.ledgers[ledger.ID]; !ok {
		return errs.ErrLedgerNotFound
	}
	r.store.ledgers[ledger.ID] = *ledger
	return nil
}

func (r *memLedgerRepo) Delete(ctx context.Context, id uint64) error {
	if tx := txFromContext(ctx); tx != nil {
		delete(tx.ledgers, id)
		tx.deletedLedgers[id] = true
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.ledgers, id)
	return nil
}

func (r *memLedgerRepo) List(ctx context.Context, includeDeleted bool) ([]*entity.Ledger, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Ledger
	for _, l := range r.store.ledgers {
		if l.IsDeleted() && !includeDeleted {
			continue
		}
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *memLedgerRepo) Totals(ctx context.Context) (*persistence.LedgerTotals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	totals := &persistence.LedgerTotals{}
	for _, l := range r.store.ledgers {
		if l.IsDeleted() {
			continue
		}
		totals.ActiveCount++
		totals.OutstandingTab += l.CurrentTab
		totals.OutstandingPending += l.PendingPayment
		if l.AccountBalance > 0 {
			totals.TotalCredit += l.AccountBalance
		}
	}
	return totals, nil
}

type memPaymentRepo struct {
	store *Store
}

func (r *memPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.IdempotencyKey != "" {
		if existing, _ := r.GetByIdempotencyKey(ctx, payment.IdempotencyKey); existing != nil {
			return errs.ErrDuplicatePayment
		}
	}

	r.store.mu.Lock()
	r.store.nextPaymentID++
	payment.ID = r.store.nextPaymentID
	r.store.mu.Unlock()

	if tx := txFromContext(ctx); tx != nil {
		tx.payments = append(tx.payments, *payment)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.payments = append(r.store.payments, *payment)
	return nil
}

func (r *memPaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Payment, error) {
	if tx := txFromContext(ctx); tx != nil {
		for i := range tx.payments {
			if tx.payments[i].IdempotencyKey == key {
				cp := tx.payments[i]
				return &cp, nil
			}
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.payments {
		if r.store.payments[i].IdempotencyKey == key {
			cp := r.store.payments[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) List(ctx context.Context, filter persistence.PaymentFilter) ([]*entity.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Payment
	for i := len(r.store.payments) - 1; i >= 0; i-- {
		p := r.store.payments[i]
		if !matches(p, filter) {
			continue
		}
		cp := p
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(p entity.Payment, f persistence.PaymentFilter) bool {
	if f.LedgerID != nil && p.LedgerID != *f.LedgerID {
		return false
	}
	if f.Kind != nil && p.Kind != *f.Kind {
		return false
	}
	if f.ConfirmedOnly && !p.ConfirmedByAdmin {
		return false
	}
	if f.Since != nil && p.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && p.CreatedAt.After(*f.Until) {
		return false
	}
	return true
}

func (r *memPaymentRepo) Totals(ctx context.Context) (*persistence.PaymentTotals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	totals := &persistence.PaymentTotals{}
	for _, p := range r.store.payments {
		switch p.Kind {
		case entity.PaymentRequest:
			totals.Requested += p.Amount
		case entity.PaymentReceived:
			totals.Received += p.Amount
		}
	}
	return totals, nil
}

func (r *memPaymentRepo) DeleteByLedgerID(ctx context.Context, ledgerID uint64) error {
	if tx := txFromContext(ctx); tx != nil {
		tx.purgedPayments[ledgerID] = true
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.payments = discardByLedger(r.store.payments, ledgerID, func(p entity.Payment) uint64 { return p.LedgerID })
	return nil
}

type memAuditRepo struct {
	store *Store
}

func (r *memAuditRepo) Append(ctx context.Context, entry *entity.AuditEntry) error {
	r.store.mu.Lock()
	r.store.nextAuditID++
	entry.ID = r.store.nextAuditID
	r.store.mu.Unlock()

	if tx := txFromContext(ctx); tx != nil {
		tx.audits = append(tx.audits, *entry)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *memAuditRepo) ListByLedger(ctx context.Context, ledgerID uint64, limit int) ([]*entity.AuditEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.AuditEntry
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		if r.store.audits[i].LedgerID != ledgerID {
			continue
		}
		cp := r.store.audits[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memAuditRepo) DeleteByLedgerID(ctx context.Context, ledgerID uint64) error {
	if tx := txFromContext(ctx); tx != nil {
		tx.purgedAudits[ledgerID] = true
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = discardByLedger(r.store.audits, ledgerID, func(a entity.AuditEntry) uint64 { return a.LedgerID })
	return nil
}

// compile-time interface checks
var (
	_ persistence.UnitOfWork        = (*Store)(nil)
	_ persistence.LedgerRepository  = (*memLedgerRepo)(nil)
	_ persistence.PaymentRepository = (*memPaymentRepo)(nil)
	_ persistence.AuditRepository   = (*memAuditRepo)(nil)
)
