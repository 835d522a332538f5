package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	billing "github.com/xraph/billing"
	"github.com/xraph/billing/account"
	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/eventlog"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	billingstore "github.com/xraph/billing/store"
	"github.com/xraph/billing/transaction"
)

// compile-time interface check
var _ billingstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
//
// The guarded writes (fund assignment, status transitions) are expressed
// as conditional UPDATEs, so two concurrent matching passes cannot both
// claim the same charge or close the same invoice. The compound
// operations apply their statements in guarded sequence: a conflicting
// statement aborts the pass part-way, which the caller's retry resolves.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("billing/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("billing/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	m := new(accountModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", accountID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel
	q := s.pg.NewSelect(&models)

	argIdx := 0
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Delinquent != nil {
		argIdx++
		q = q.Where(fmt.Sprintf("delinquent = $%d", argIdx), *opts.Delinquent)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

func (s *Store) SetAccountDelinquent(ctx context.Context, accountID id.AccountID, delinquent bool) error {
	res, err := s.pg.NewUpdate((*accountModel)(nil)).
		Set("delinquent = $1", delinquent).
		Set("updated_at = $2", now()).
		Where("id = $3", accountID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return billing.ErrAccountNotFound
	}
	return nil
}

// ==================== Charge Store ====================

func (s *Store) CreateCharge(ctx context.Context, c *charge.Charge) error {
	m := toChargeModel(c)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCharge(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	m := new(chargeModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", chargeID.String()).
		Where("deleted = FALSE").
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrChargeNotFound
		}
		return nil, err
	}
	return fromChargeModel(m)
}

func (s *Store) GetChargeIncludingDeleted(ctx context.Context, chargeID id.ChargeID) (*charge.Charge, error) {
	m := new(chargeModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", chargeID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrChargeNotFound
		}
		return nil, err
	}
	return fromChargeModel(m)
}

func (s *Store) ListUninvoicedCharges(ctx context.Context, accountID id.AccountID, opts charge.ListOpts) ([]*charge.Charge, error) {
	var models []chargeModel
	q := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("invoice_id = ''").
		Where("deleted = FALSE")

	argIdx := 1
	if opts.Currency != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("currency = $%d", argIdx), opts.Currency)
	}
	switch opts.Sign {
	case charge.Positive:
		q = q.Where("amount > 0")
	case charge.Negative:
		q = q.Where("amount < 0")
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return chargesFromModels(models)
}

func (s *Store) ListChargesByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*charge.Charge, error) {
	var models []chargeModel
	err := s.pg.NewSelect(&models).
		Where("invoice_id = $1", invoiceID.String()).
		Where("deleted = FALSE").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return chargesFromModels(models)
}

func (s *Store) ListChargesByAccount(ctx context.Context, accountID id.AccountID) ([]*charge.Charge, error) {
	var models []chargeModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("deleted = FALSE").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return chargesFromModels(models)
}

// ChargeHasReversal counts soft-deleted reversals too; a reversal that
// was later removed still means the charge has been reversed once.
func (s *Store) ChargeHasReversal(ctx context.Context, chargeID id.ChargeID) (bool, error) {
	var exists bool
	err := s.pg.NewRaw(`
		SELECT EXISTS (SELECT 1 FROM billing_charges WHERE reverses = $1)
	`, chargeID.String()).Scan(ctx, &exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) MarkChargeDeleted(ctx context.Context, chargeID id.ChargeID) error {
	res, err := s.pg.NewUpdate((*chargeModel)(nil)).
		Set("deleted = TRUE").
		Set("updated_at = $1", now()).
		Where("id = $2", chargeID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return billing.ErrChargeNotFound
	}
	return nil
}

func (s *Store) AssignChargeToInvoice(ctx context.Context, chargeID id.ChargeID, invoiceID id.InvoiceID) error {
	res, err := s.pg.NewUpdate((*chargeModel)(nil)).
		Set("invoice_id = $1", invoiceID.String()).
		Set("updated_at = $2", now()).
		Where("id = $3", chargeID.String()).
		Where("invoice_id = ''").
		Where("deleted = FALSE").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.GetCharge(ctx, chargeID); err != nil {
			return err
		}
		return billing.ErrFundAssigned
	}
	return nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID id.InvoiceID) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", invoiceID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(m)
}

func (s *Store) ListInvoices(ctx context.Context, accountID id.AccountID, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String())

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return invoicesFromModels(models)
}

func (s *Store) ListPendingInvoices(ctx context.Context, accountID id.AccountID) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("status = $2", string(invoice.StatusPending)).
		OrderExpr("due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoicesFromModels(models)
}

func (s *Store) ListClosedInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("status != $1", string(invoice.StatusPending)).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return invoicesFromModels(models)
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, invoiceID id.InvoiceID, from, to invoice.Status) error {
	res, err := s.pg.NewUpdate((*invoiceModel)(nil)).
		Set("status = $1", string(to)).
		Set("updated_at = $2", now()).
		Where("id = $3", invoiceID.String()).
		Where("status = $4", string(from)).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
			return err
		}
		return billing.ErrStatusConflict
	}
	return nil
}

// ==================== Transaction Store ====================

func (s *Store) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	m := toTransactionModel(t)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	m := new(transactionModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", txnID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrTransactionNotFound
		}
		return nil, err
	}
	return fromTransactionModel(m)
}

func (s *Store) ListUninvoicedPayments(ctx context.Context, accountID id.AccountID, currency string) ([]*transaction.Transaction, error) {
	var models []transactionModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("currency = $2", currency).
		Where("success = TRUE").
		Where("invoice_id = ''").
		Where("amount > 0").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return transactionsFromModels(models)
}

func (s *Store) ListTransactionsByInvoice(ctx context.Context, invoiceID id.InvoiceID) ([]*transaction.Transaction, error) {
	var models []transactionModel
	err := s.pg.NewSelect(&models).
		Where("invoice_id = $1", invoiceID.String()).
		Where("success = TRUE").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return transactionsFromModels(models)
}

func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID id.AccountID) ([]*transaction.Transaction, error) {
	var models []transactionModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("success = TRUE").
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return transactionsFromModels(models)
}

func (s *Store) AssignTransactionToInvoice(ctx context.Context, txnID id.TransactionID, invoiceID id.InvoiceID) error {
	res, err := s.pg.NewUpdate((*transactionModel)(nil)).
		Set("invoice_id = $1", invoiceID.String()).
		Set("updated_at = $2", now()).
		Where("id = $3", txnID.String()).
		Where("invoice_id = ''").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.GetTransaction(ctx, txnID); err != nil {
			return err
		}
		return billing.ErrFundAssigned
	}
	return nil
}

// ==================== Card Store ====================

func (s *Store) CreateCard(ctx context.Context, c *card.Card) error {
	m := toCardModel(c)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetCard(ctx context.Context, cardID id.CardID) (*card.Card, error) {
	m := new(cardModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", cardID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, billing.ErrCardNotFound
		}
		return nil, err
	}
	return fromCardModel(m)
}

func (s *Store) ListCards(ctx context.Context, accountID id.AccountID) ([]*card.Card, error) {
	var models []cardModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return cardsFromModels(models)
}

func (s *Store) UpdateCard(ctx context.Context, c *card.Card) error {
	m := toCardModel(c)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return billing.ErrCardNotFound
	}
	return nil
}

func (s *Store) ListValidCards(ctx context.Context, accountID id.AccountID, asOf time.Time) ([]*card.Card, error) {
	if asOf.IsZero() {
		asOf = now()
	}
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	// "active" sorts before "inactive", which keeps live cards at the
	// front of the payment trial order.
	var models []cardModel
	err := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String()).
		Where("expiry_date >= $2", day).
		OrderExpr("status ASC, created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return cardsFromModels(models)
}

// ==================== Event Log Store ====================

func (s *Store) CreateEventLog(ctx context.Context, e *eventlog.EventLog) error {
	m := toEventLogModel(e)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListEventLogs(ctx context.Context, accountID id.AccountID, opts eventlog.ListOpts) ([]*eventlog.EventLog, error) {
	var models []eventLogModel
	q := s.pg.NewSelect(&models).
		Where("account_id = $1", accountID.String())

	argIdx := 1
	if opts.Type != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("type = $%d", argIdx), string(opts.Type))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*eventlog.EventLog, len(models))
	for i := range models {
		e, err := fromEventLogModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

// ==================== Compound operations ====================

func (s *Store) ApplyInvoiceGeneration(ctx context.Context, gen billingstore.InvoiceGeneration) error {
	created := make([]string, 0, len(gen.Invoices))
	for _, inv := range gen.Invoices {
		if err := s.CreateInvoice(ctx, inv); err != nil {
			s.removeInvoices(ctx, created)
			return fmt.Errorf("billing/postgres: create invoice %s: %w", inv.ID, err)
		}
		created = append(created, inv.ID.String())
	}
	for invoiceID, chargeIDs := range gen.Assignments {
		for _, chargeID := range chargeIDs {
			if err := s.AssignChargeToInvoice(ctx, chargeID, invoiceID); err != nil {
				s.removeInvoices(ctx, created)
				return fmt.Errorf("billing/postgres: assign charge %s: %w", chargeID, err)
			}
		}
	}
	return nil
}

// removeInvoices undoes a failed invoice generation: charges already
// attached to the new invoices go back to uninvoiced and the invoice
// rows are dropped. An empty pending invoice left behind would block
// the account's fund cascade, since nothing ever pays it.
func (s *Store) removeInvoices(ctx context.Context, invoiceIDs []string) {
	for _, invoiceID := range invoiceIDs {
		if _, err := s.pg.NewUpdate((*chargeModel)(nil)).
			Set("invoice_id = ''").
			Set("updated_at = $1", now()).
			Where("invoice_id = $2", invoiceID).
			Exec(ctx); err != nil {
			continue
		}
		_, _ = s.pg.NewDelete((*invoiceModel)(nil)).
			Where("id = $1", invoiceID).
			Exec(ctx)
	}
}

func (s *Store) ApplyFundMatching(ctx context.Context, match billingstore.FundMatching) error {
	for _, chargeID := range match.ChargeIDs {
		if err := s.AssignChargeToInvoice(ctx, chargeID, match.InvoiceID); err != nil {
			return fmt.Errorf("billing/postgres: assign charge %s: %w", chargeID, err)
		}
	}
	for _, txnID := range match.TransactionIDs {
		if err := s.AssignTransactionToInvoice(ctx, txnID, match.InvoiceID); err != nil {
			return fmt.Errorf("billing/postgres: assign transaction %s: %w", txnID, err)
		}
	}
	// The new charges go in before the status flip. If the sequence is
	// interrupted after the inserts the invoice is still pending with a
	// recomputed due of zero, and a retried matching marks it paid; the
	// reverse order would strand the overpaid remainder on a paid
	// invoice that no retry revisits.
	for _, c := range match.NewCharges {
		if err := s.CreateCharge(ctx, c); err != nil {
			return fmt.Errorf("billing/postgres: create charge %s: %w", c.ID, err)
		}
	}
	if match.MarkPaid {
		if err := s.UpdateInvoiceStatus(ctx, match.InvoiceID, invoice.StatusPending, invoice.StatusPaid); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Helpers ====================

func chargesFromModels(models []chargeModel) ([]*charge.Charge, error) {
	result := make([]*charge.Charge, len(models))
	for i := range models {
		c, err := fromChargeModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func invoicesFromModels(models []invoiceModel) ([]*invoice.Invoice, error) {
	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		inv, err := fromInvoiceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = inv
	}
	return result, nil
}

func transactionsFromModels(models []transactionModel) ([]*transaction.Transaction, error) {
	result := make([]*transaction.Transaction, len(models))
	for i := range models {
		t, err := fromTransactionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func cardsFromModels(models []cardModel) ([]*card.Card, error) {
	result := make([]*card.Card, len(models))
	for i := range models {
		c, err := fromCardModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
