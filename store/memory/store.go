// Package memory provides an in-memory store for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/billing"
	"github.com/xraph/billing/account"
	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/eventlog"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/transaction"
)

// Store keeps all entities in maps under one mutex, so the compound
// operations are naturally atomic. Entities are copied on the way in
// and out; callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]*account.Account
	charges      map[string]*charge.Charge
	invoices     map[string]*invoice.Invoice
	transactions map[string]*transaction.Transaction
	cards        map[string]*card.Card
	events       []*eventlog.EventLog

	closed bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:     make(map[string]*account.Account),
		charges:      make(map[string]*charge.Charge),
		invoices:     make(map[string]*invoice.Invoice),
		transactions: make(map[string]*transaction.Transaction),
		cards:        make(map[string]*card.Card),
	}
}

// ==================== Account methods ====================

func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.accounts[a.ID.String()] = cloneAccount(a)
	return nil
}

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID.String()]
	if !ok {
		return nil, billing.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (s *Store) ListAccounts(_ context.Context, opts account.ListOpts) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*account.Account
	for _, a := range s.accounts {
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		if opts.Delinquent != nil && a.Delinquent != *opts.Delinquent {
			continue
		}
		result = append(result, cloneAccount(a))
	}
	sortByCreated(result, func(a *account.Account) (time.Time, string) { return a.CreatedAt, a.ID.String() })
	return paginate(result, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID.String()]; !ok {
		return billing.ErrAccountNotFound
	}
	s.accounts[a.ID.String()] = cloneAccount(a)
	return nil
}

func (s *Store) SetAccountDelinquent(_ context.Context, accountID id.AccountID, delinquent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID.String()]
	if !ok {
		return billing.ErrAccountNotFound
	}
	a.Delinquent = delinquent
	a.Touch()
	return nil
}

// ==================== Charge methods ====================

func (s *Store) CreateCharge(_ context.Context, c *charge.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.charges[c.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.charges[c.ID.String()] = cloneCharge(c)
	return nil
}

func (s *Store) GetCharge(_ context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.charges[chargeID.String()]
	if !ok || c.Deleted {
		return nil, billing.ErrChargeNotFound
	}
	return cloneCharge(c), nil
}

func (s *Store) GetChargeIncludingDeleted(_ context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.charges[chargeID.String()]
	if !ok {
		return nil, billing.ErrChargeNotFound
	}
	return cloneCharge(c), nil
}

func (s *Store) ListUninvoicedCharges(_ context.Context, accountID id.AccountID, opts charge.ListOpts) ([]*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*charge.Charge
	for _, c := range s.charges {
		if c.Deleted || c.AccountID != accountID || c.IsInvoiced() {
			continue
		}
		if opts.Currency != "" && c.Amount.Currency != opts.Currency {
			continue
		}
		if opts.Sign == charge.Positive && !c.Amount.IsPositive() {
			continue
		}
		if opts.Sign == charge.Negative && !c.Amount.IsNegative() {
			continue
		}
		result = append(result, cloneCharge(c))
	}
	sortByCreated(result, func(c *charge.Charge) (time.Time, string) { return c.CreatedAt, c.ID.String() })
	return result, nil
}

func (s *Store) ListChargesByInvoice(_ context.Context, invoiceID id.InvoiceID) ([]*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*charge.Charge
	for _, c := range s.charges {
		if c.Deleted || c.InvoiceID != invoiceID {
			continue
		}
		result = append(result, cloneCharge(c))
	}
	sortByCreated(result, func(c *charge.Charge) (time.Time, string) { return c.CreatedAt, c.ID.String() })
	return result, nil
}

func (s *Store) ListChargesByAccount(_ context.Context, accountID id.AccountID) ([]*charge.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*charge.Charge
	for _, c := range s.charges {
		if c.Deleted || c.AccountID != accountID {
			continue
		}
		result = append(result, cloneCharge(c))
	}
	sortByCreated(result, func(c *charge.Charge) (time.Time, string) { return c.CreatedAt, c.ID.String() })
	return result, nil
}

func (s *Store) ChargeHasReversal(_ context.Context, chargeID id.ChargeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.charges {
		if c.Reverses == chargeID && !c.Reverses.IsNil() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) MarkChargeDeleted(_ context.Context, chargeID id.ChargeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.charges[chargeID.String()]
	if !ok {
		return billing.ErrChargeNotFound
	}
	c.Deleted = true
	c.Touch()
	return nil
}

func (s *Store) AssignChargeToInvoice(_ context.Context, chargeID id.ChargeID, invoiceID id.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.assignChargeLocked(chargeID, invoiceID)
}

func (s *Store) assignChargeLocked(chargeID id.ChargeID, invoiceID id.InvoiceID) error {
	c, ok := s.charges[chargeID.String()]
	if !ok || c.Deleted {
		return billing.ErrChargeNotFound
	}
	if c.IsInvoiced() {
		return billing.ErrFundAssigned
	}
	if _, ok := s.invoices[invoiceID.String()]; !ok {
		return billing.ErrInvoiceNotFound
	}
	c.InvoiceID = invoiceID
	c.Touch()
	return nil
}

// ==================== Invoice methods ====================

func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.invoices[inv.ID.String()] = cloneInvoice(inv)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[invoiceID.String()]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (s *Store) ListInvoices(_ context.Context, accountID id.AccountID, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.AccountID != accountID {
			continue
		}
		if opts.Status != "" && inv.Status != opts.Status {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	sortByCreated(result, func(inv *invoice.Invoice) (time.Time, string) { return inv.CreatedAt, inv.ID.String() })
	return paginate(result, opts.Limit, opts.Offset), nil
}

func (s *Store) ListPendingInvoices(_ context.Context, accountID id.AccountID) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.AccountID != accountID || inv.Status != invoice.StatusPending {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	// Ordered by due date; creation order breaks ties.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (s *Store) ListClosedInvoices(_ context.Context) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.Status == invoice.StatusPending {
			continue
		}
		result = append(result, cloneInvoice(inv))
	}
	sortByCreated(result, func(inv *invoice.Invoice) (time.Time, string) { return inv.CreatedAt, inv.ID.String() })
	return result, nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, invoiceID id.InvoiceID, from, to invoice.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateInvoiceStatusLocked(invoiceID, from, to)
}

func (s *Store) updateInvoiceStatusLocked(invoiceID id.InvoiceID, from, to invoice.Status) error {
	inv, ok := s.invoices[invoiceID.String()]
	if !ok {
		return billing.ErrInvoiceNotFound
	}
	if inv.Status != from {
		return billing.ErrStatusConflict
	}
	inv.Status = to
	inv.Touch()
	return nil
}

// ==================== Transaction methods ====================

func (s *Store) CreateTransaction(_ context.Context, t *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[t.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.transactions[t.ID.String()] = cloneTransaction(t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[txnID.String()]
	if !ok {
		return nil, billing.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

func (s *Store) ListUninvoicedPayments(_ context.Context, accountID id.AccountID, currency string) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*transaction.Transaction
	for _, t := range s.transactions {
		if !t.Success || t.AccountID != accountID || !t.InvoiceID.IsNil() {
			continue
		}
		if !t.Amount.IsPositive() || t.Amount.Currency != currency {
			continue
		}
		result = append(result, cloneTransaction(t))
	}
	sortByCreated(result, func(t *transaction.Transaction) (time.Time, string) { return t.CreatedAt, t.ID.String() })
	return result, nil
}

func (s *Store) ListTransactionsByInvoice(_ context.Context, invoiceID id.InvoiceID) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*transaction.Transaction
	for _, t := range s.transactions {
		if !t.Success || t.InvoiceID != invoiceID {
			continue
		}
		result = append(result, cloneTransaction(t))
	}
	sortByCreated(result, func(t *transaction.Transaction) (time.Time, string) { return t.CreatedAt, t.ID.String() })
	return result, nil
}

func (s *Store) ListTransactionsByAccount(_ context.Context, accountID id.AccountID) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*transaction.Transaction
	for _, t := range s.transactions {
		if !t.Success || t.AccountID != accountID {
			continue
		}
		result = append(result, cloneTransaction(t))
	}
	sortByCreated(result, func(t *transaction.Transaction) (time.Time, string) { return t.CreatedAt, t.ID.String() })
	return result, nil
}

func (s *Store) AssignTransactionToInvoice(_ context.Context, txnID id.TransactionID, invoiceID id.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.assignTransactionLocked(txnID, invoiceID)
}

func (s *Store) assignTransactionLocked(txnID id.TransactionID, invoiceID id.InvoiceID) error {
	t, ok := s.transactions[txnID.String()]
	if !ok {
		return billing.ErrTransactionNotFound
	}
	if !t.InvoiceID.IsNil() {
		return billing.ErrFundAssigned
	}
	if _, ok := s.invoices[invoiceID.String()]; !ok {
		return billing.ErrInvoiceNotFound
	}
	t.InvoiceID = invoiceID
	t.Touch()
	return nil
}

// ==================== Card methods ====================

func (s *Store) CreateCard(_ context.Context, c *card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[c.ID.String()]; exists {
		return billing.ErrAlreadyExists
	}
	s.cards[c.ID.String()] = cloneCard(c)
	return nil
}

func (s *Store) GetCard(_ context.Context, cardID id.CardID) (*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[cardID.String()]
	if !ok {
		return nil, billing.ErrCardNotFound
	}
	return cloneCard(c), nil
}

func (s *Store) ListCards(_ context.Context, accountID id.AccountID) ([]*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*card.Card
	for _, c := range s.cards {
		if c.AccountID != accountID {
			continue
		}
		result = append(result, cloneCard(c))
	}
	sortByCreated(result, func(c *card.Card) (time.Time, string) { return c.CreatedAt, c.ID.String() })
	return result, nil
}

func (s *Store) UpdateCard(_ context.Context, c *card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[c.ID.String()]; !ok {
		return billing.ErrCardNotFound
	}
	s.cards[c.ID.String()] = cloneCard(c)
	return nil
}

func (s *Store) ListValidCards(_ context.Context, accountID id.AccountID, asOf time.Time) ([]*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*card.Card
	for _, c := range s.cards {
		if c.AccountID != accountID || !c.IsValid(asOf) {
			continue
		}
		result = append(result, cloneCard(c))
	}
	// Active cards first; creation order within each group.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Status != result[j].Status {
			return result[i].Status == card.StatusActive
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// ==================== Event log methods ====================

func (s *Store) CreateEventLog(_ context.Context, e *eventlog.EventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, cloneEventLog(e))
	return nil
}

func (s *Store) ListEventLogs(_ context.Context, accountID id.AccountID, opts eventlog.ListOpts) ([]*eventlog.EventLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*eventlog.EventLog
	for _, e := range s.events {
		if e.AccountID != accountID {
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		result = append(result, cloneEventLog(e))
	}
	return paginate(result, opts.Limit, opts.Offset), nil
}

// ==================== Compound methods ====================

// ApplyInvoiceGeneration creates the invoices and assigns their charges
// under one lock. Every assignment is validated before anything is
// written, so a conflicting concurrent pass leaves the store untouched.
func (s *Store) ApplyInvoiceGeneration(_ context.Context, gen store.InvoiceGeneration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range gen.Invoices {
		if _, exists := s.invoices[inv.ID.String()]; exists {
			return billing.ErrAlreadyExists
		}
	}
	for _, chargeIDs := range gen.Assignments {
		for _, chargeID := range chargeIDs {
			c, ok := s.charges[chargeID.String()]
			if !ok || c.Deleted {
				return billing.ErrChargeNotFound
			}
			if c.IsInvoiced() {
				return billing.ErrFundAssigned
			}
		}
	}

	for _, inv := range gen.Invoices {
		s.invoices[inv.ID.String()] = cloneInvoice(inv)
	}
	for invoiceID, chargeIDs := range gen.Assignments {
		for _, chargeID := range chargeIDs {
			if err := s.assignChargeLocked(chargeID, invoiceID); err != nil {
				return fmt.Errorf("assign charge %s: %w", chargeID, err)
			}
		}
	}
	return nil
}

// ApplyFundMatching assigns the matched funds, flips the invoice to
// paid, and creates the carry-forward charges under one lock. The write
// set is validated up front so a conflicting concurrent pass leaves the
// store untouched.
func (s *Store) ApplyFundMatching(_ context.Context, match store.FundMatching) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[match.InvoiceID.String()]
	if !ok {
		return billing.ErrInvoiceNotFound
	}
	if inv.Status != invoice.StatusPending {
		return billing.ErrStatusConflict
	}
	for _, chargeID := range match.ChargeIDs {
		c, ok := s.charges[chargeID.String()]
		if !ok || c.Deleted {
			return billing.ErrChargeNotFound
		}
		if c.IsInvoiced() {
			return billing.ErrFundAssigned
		}
	}
	for _, txnID := range match.TransactionIDs {
		t, ok := s.transactions[txnID.String()]
		if !ok {
			return billing.ErrTransactionNotFound
		}
		if !t.InvoiceID.IsNil() {
			return billing.ErrFundAssigned
		}
	}
	for _, c := range match.NewCharges {
		if _, exists := s.charges[c.ID.String()]; exists {
			return billing.ErrAlreadyExists
		}
	}

	for _, chargeID := range match.ChargeIDs {
		if err := s.assignChargeLocked(chargeID, match.InvoiceID); err != nil {
			return fmt.Errorf("assign charge %s: %w", chargeID, err)
		}
	}
	for _, txnID := range match.TransactionIDs {
		if err := s.assignTransactionLocked(txnID, match.InvoiceID); err != nil {
			return fmt.Errorf("assign transaction %s: %w", txnID, err)
		}
	}
	if match.MarkPaid {
		if err := s.updateInvoiceStatusLocked(match.InvoiceID, invoice.StatusPending, invoice.StatusPaid); err != nil {
			return err
		}
	}
	for _, c := range match.NewCharges {
		s.charges[c.ID.String()] = cloneCharge(c)
	}
	return nil
}

// ==================== Core methods ====================

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return billing.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// ==================== Helpers ====================

func cloneAccount(a *account.Account) *account.Account {
	clone := *a
	return &clone
}

func cloneCharge(c *charge.Charge) *charge.Charge {
	clone := *c
	if c.Properties != nil {
		clone.Properties = make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			clone.Properties[k] = v
		}
	}
	return &clone
}

func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	clone := *inv
	return &clone
}

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	clone := *t
	return &clone
}

func cloneCard(c *card.Card) *card.Card {
	clone := *c
	return &clone
}

func cloneEventLog(e *eventlog.EventLog) *eventlog.EventLog {
	clone := *e
	return &clone
}

func sortByCreated[T any](items []*T, key func(*T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
