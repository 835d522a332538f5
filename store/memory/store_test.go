package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/billing"
	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/store"
	"github.com/xraph/billing/store/memory"
	"github.com/xraph/billing/transaction"
	"github.com/xraph/billing/types"
)

// mkInvoice creates a pending invoice for assignment targets.
func mkInvoice(t *testing.T, s *memory.Store, accountID id.AccountID) id.InvoiceID {
	t.Helper()
	inv := invoice.New(accountID, time.Now().UTC().AddDate(0, 0, 30))
	if err := s.CreateInvoice(context.Background(), inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return inv.ID
}

func TestChargeCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	c := charge.New(accountID, types.CHF("40.00"))
	c.ProductCode = "HOSTING"
	if err := s.CreateCharge(ctx, c); err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}
	if err := s.CreateCharge(ctx, c); !errors.Is(err, billing.ErrAlreadyExists) {
		t.Errorf("duplicate CreateCharge error = %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetCharge(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCharge: %v", err)
	}
	if !got.Amount.Equal(c.Amount) || got.ProductCode != c.ProductCode {
		t.Errorf("GetCharge returned %+v, want %+v", got, c)
	}

	// The store hands out copies, not aliases.
	got.ProductCode = "MUTATED"
	again, err := s.GetCharge(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCharge: %v", err)
	}
	if again.ProductCode != "HOSTING" {
		t.Errorf("mutation through a returned charge leaked into the store")
	}

	if _, err := s.GetCharge(ctx, id.NewChargeID()); !errors.Is(err, billing.ErrChargeNotFound) {
		t.Errorf("GetCharge unknown error = %v, want ErrChargeNotFound", err)
	}
}

func TestMarkChargeDeleted(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	c := charge.New(id.NewAccountID(), types.CHF("10.00"))
	c.ProductCode = "HOSTING"
	if err := s.CreateCharge(ctx, c); err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}
	if err := s.MarkChargeDeleted(ctx, c.ID); err != nil {
		t.Fatalf("MarkChargeDeleted: %v", err)
	}

	if _, err := s.GetCharge(ctx, c.ID); !errors.Is(err, billing.ErrChargeNotFound) {
		t.Errorf("GetCharge after delete error = %v, want ErrChargeNotFound", err)
	}
	got, err := s.GetChargeIncludingDeleted(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetChargeIncludingDeleted: %v", err)
	}
	if !got.Deleted {
		t.Error("deleted charge is not flagged deleted")
	}
}

func TestChargeHasReversalCountsDeleted(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	original := charge.New(accountID, types.CHF("40.00"))
	original.ProductCode = "HOSTING"
	if err := s.CreateCharge(ctx, original); err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}

	has, err := s.ChargeHasReversal(ctx, original.ID)
	if err != nil {
		t.Fatalf("ChargeHasReversal: %v", err)
	}
	if has {
		t.Fatal("charge without reversal reported as reversed")
	}

	reversal := charge.New(accountID, types.CHF("-40.00"))
	reversal.ProductCode = charge.Reversal
	reversal.Reverses = original.ID
	if err := s.CreateCharge(ctx, reversal); err != nil {
		t.Fatalf("CreateCharge reversal: %v", err)
	}
	if err := s.MarkChargeDeleted(ctx, reversal.ID); err != nil {
		t.Fatalf("MarkChargeDeleted: %v", err)
	}

	// A soft-deleted reversal still counts; the charge was reversed once.
	has, err = s.ChargeHasReversal(ctx, original.ID)
	if err != nil {
		t.Fatalf("ChargeHasReversal: %v", err)
	}
	if !has {
		t.Error("deleted reversal not counted by ChargeHasReversal")
	}
}

func TestListUninvoicedChargesFilters(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	mk := func(amount types.Money) *charge.Charge {
		c := charge.New(accountID, amount)
		c.AdHocLabel = "test"
		if err := s.CreateCharge(ctx, c); err != nil {
			t.Fatalf("CreateCharge: %v", err)
		}
		return c
	}
	chfDebt := mk(types.CHF("40.00"))
	chfCredit := mk(types.CHF("-10.00"))
	mk(types.EUR("5.00"))

	invoiced := mk(types.CHF("7.00"))
	if err := s.AssignChargeToInvoice(ctx, invoiced.ID, mkInvoice(t, s, accountID)); err != nil {
		t.Fatalf("AssignChargeToInvoice: %v", err)
	}

	tests := []struct {
		name string
		opts charge.ListOpts
		want []id.ChargeID
	}{
		{"chf both signs", charge.ListOpts{Currency: "CHF"}, []id.ChargeID{chfDebt.ID, chfCredit.ID}},
		{"chf debts only", charge.ListOpts{Currency: "CHF", Sign: charge.Positive}, []id.ChargeID{chfDebt.ID}},
		{"chf credits only", charge.ListOpts{Currency: "CHF", Sign: charge.Negative}, []id.ChargeID{chfCredit.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListUninvoicedCharges(ctx, accountID, tt.opts)
			if err != nil {
				t.Fatalf("ListUninvoicedCharges: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("returned %d charges, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].ID != want {
					t.Errorf("charge[%d] = %s, want %s", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestAssignChargeToInvoiceGuard(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()
	c := charge.New(accountID, types.CHF("40.00"))
	c.AdHocLabel = "test"
	if err := s.CreateCharge(ctx, c); err != nil {
		t.Fatalf("CreateCharge: %v", err)
	}

	first := mkInvoice(t, s, accountID)
	if err := s.AssignChargeToInvoice(ctx, c.ID, first); err != nil {
		t.Fatalf("AssignChargeToInvoice: %v", err)
	}
	err := s.AssignChargeToInvoice(ctx, c.ID, mkInvoice(t, s, accountID))
	if !errors.Is(err, billing.ErrFundAssigned) {
		t.Errorf("second assignment error = %v, want ErrFundAssigned", err)
	}

	got, err := s.GetCharge(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCharge: %v", err)
	}
	if got.InvoiceID != first {
		t.Errorf("charge invoice = %s, want the first winner %s", got.InvoiceID, first)
	}

	if err := s.AssignChargeToInvoice(ctx, id.NewChargeID(), first); !errors.Is(err, billing.ErrChargeNotFound) {
		t.Errorf("assigning an unknown charge error = %v, want ErrChargeNotFound", err)
	}
}

func TestUpdateInvoiceStatusGuard(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	inv := invoice.New(id.NewAccountID(), time.Now().UTC().AddDate(0, 0, 30))
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	if err := s.UpdateInvoiceStatus(ctx, inv.ID, invoice.StatusPending, invoice.StatusPaid); err != nil {
		t.Fatalf("UpdateInvoiceStatus: %v", err)
	}
	err := s.UpdateInvoiceStatus(ctx, inv.ID, invoice.StatusPending, invoice.StatusCancelled)
	if !errors.Is(err, billing.ErrStatusConflict) {
		t.Errorf("stale transition error = %v, want ErrStatusConflict", err)
	}

	got, err := s.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Status != invoice.StatusPaid {
		t.Errorf("invoice status = %s, want paid", got.Status)
	}
}

func TestListPendingInvoicesOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()
	base := time.Now().UTC()

	later := invoice.New(accountID, base.AddDate(0, 0, 60))
	sooner := invoice.New(accountID, base.AddDate(0, 0, 30))
	paid := invoice.New(accountID, base.AddDate(0, 0, 10))
	for _, inv := range []*invoice.Invoice{later, sooner, paid} {
		if err := s.CreateInvoice(ctx, inv); err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
	}
	if err := s.UpdateInvoiceStatus(ctx, paid.ID, invoice.StatusPending, invoice.StatusPaid); err != nil {
		t.Fatalf("UpdateInvoiceStatus: %v", err)
	}

	got, err := s.ListPendingInvoices(ctx, accountID)
	if err != nil {
		t.Fatalf("ListPendingInvoices: %v", err)
	}
	if len(got) != 2 || got[0].ID != sooner.ID || got[1].ID != later.ID {
		t.Errorf("pending invoices not ordered by due date: %v", invoiceIDs(got))
	}
}

func TestListUninvoicedPayments(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	payment := transaction.New(accountID, types.CHF("50.00"), true)
	failed := transaction.New(accountID, types.CHF("50.00"), false)
	refund := transaction.New(accountID, types.CHF("-20.00"), true)
	eur := transaction.New(accountID, types.EUR("50.00"), true)
	assigned := transaction.New(accountID, types.CHF("30.00"), true)
	for _, txn := range []*transaction.Transaction{payment, failed, refund, eur, assigned} {
		if err := s.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
	if err := s.AssignTransactionToInvoice(ctx, assigned.ID, mkInvoice(t, s, accountID)); err != nil {
		t.Fatalf("AssignTransactionToInvoice: %v", err)
	}

	got, err := s.ListUninvoicedPayments(ctx, accountID, "CHF")
	if err != nil {
		t.Fatalf("ListUninvoicedPayments: %v", err)
	}
	if len(got) != 1 || got[0].ID != payment.ID {
		t.Errorf("ListUninvoicedPayments returned %d transactions, want just the successful unassigned payment", len(got))
	}
}

func TestListValidCardsActiveFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()
	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	inactive := card.New(accountID, "VIS", "4242XXXXXXXX4242", 6, 30, "fake:card-1")
	if err := inactive.Deactivate(); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	active := card.New(accountID, "ECA", "5500XXXXXXXX0004", 6, 30, "fake:card-2")
	expired := card.New(accountID, "VIS", "4000XXXXXXXX0002", 1, 20, "fake:card-3")
	for _, c := range []*card.Card{inactive, active, expired} {
		if err := s.CreateCard(ctx, c); err != nil {
			t.Fatalf("CreateCard: %v", err)
		}
	}

	got, err := s.ListValidCards(ctx, accountID, asOf)
	if err != nil {
		t.Fatalf("ListValidCards: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListValidCards returned %d cards, want 2", len(got))
	}
	if got[0].ID != active.ID || got[1].ID != inactive.ID {
		t.Errorf("valid cards not ordered active-first: got %s then %s", got[0].Status, got[1].Status)
	}
}

func TestApplyInvoiceGenerationAtomic(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	free := charge.New(accountID, types.CHF("40.00"))
	free.AdHocLabel = "test"
	taken := charge.New(accountID, types.CHF("10.00"))
	taken.AdHocLabel = "test"
	for _, c := range []*charge.Charge{free, taken} {
		if err := s.CreateCharge(ctx, c); err != nil {
			t.Fatalf("CreateCharge: %v", err)
		}
	}
	if err := s.AssignChargeToInvoice(ctx, taken.ID, mkInvoice(t, s, accountID)); err != nil {
		t.Fatalf("AssignChargeToInvoice: %v", err)
	}

	inv := invoice.New(accountID, time.Now().UTC().AddDate(0, 0, 30))
	gen := store.InvoiceGeneration{
		Invoices:    []*invoice.Invoice{inv},
		Assignments: map[id.InvoiceID][]id.ChargeID{inv.ID: {free.ID, taken.ID}},
	}
	if err := s.ApplyInvoiceGeneration(ctx, gen); !errors.Is(err, billing.ErrFundAssigned) {
		t.Fatalf("ApplyInvoiceGeneration error = %v, want ErrFundAssigned", err)
	}

	// A failed pass writes nothing: no invoice, no partial assignment.
	if _, err := s.GetInvoice(ctx, inv.ID); !errors.Is(err, billing.ErrInvoiceNotFound) {
		t.Errorf("invoice exists after a failed pass (err = %v)", err)
	}
	got, err := s.GetCharge(ctx, free.ID)
	if err != nil {
		t.Fatalf("GetCharge: %v", err)
	}
	if !got.InvoiceID.IsNil() {
		t.Error("charge was partially assigned by a failed pass")
	}

	// Without the conflicting charge the same pass applies cleanly.
	gen.Assignments[inv.ID] = []id.ChargeID{free.ID}
	if err := s.ApplyInvoiceGeneration(ctx, gen); err != nil {
		t.Fatalf("ApplyInvoiceGeneration: %v", err)
	}
	got, err = s.GetCharge(ctx, free.ID)
	if err != nil {
		t.Fatalf("GetCharge: %v", err)
	}
	if got.InvoiceID != inv.ID {
		t.Errorf("charge invoice = %s, want %s", got.InvoiceID, inv.ID)
	}
}

func TestApplyFundMatchingAtomic(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	accountID := id.NewAccountID()

	inv := invoice.New(accountID, time.Now().UTC().AddDate(0, 0, 30))
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	payment := transaction.New(accountID, types.CHF("50.00"), true)
	if err := s.CreateTransaction(ctx, payment); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	carried := charge.New(accountID, types.CHF("10.00"))
	carried.ProductCode = charge.CarriedForward
	carried.InvoiceID = inv.ID
	remaining := charge.New(accountID, types.CHF("-10.00"))
	remaining.ProductCode = charge.CreditRemaining

	match := store.FundMatching{
		InvoiceID:      inv.ID,
		TransactionIDs: []id.TransactionID{payment.ID},
		MarkPaid:       true,
		NewCharges:     []*charge.Charge{carried, remaining},
	}
	if err := s.ApplyFundMatching(ctx, match); err != nil {
		t.Fatalf("ApplyFundMatching: %v", err)
	}

	got, err := s.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Status != invoice.StatusPaid {
		t.Errorf("invoice status = %s, want paid", got.Status)
	}
	txn, err := s.GetTransaction(ctx, payment.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if txn.InvoiceID != inv.ID {
		t.Error("payment was not assigned to the invoice")
	}
	if _, err := s.GetCharge(ctx, carried.ID); err != nil {
		t.Errorf("carry-forward charge missing: %v", err)
	}

	// A second identical pass hits the paid invoice and writes nothing.
	dup := charge.New(accountID, types.CHF("-10.00"))
	dup.ProductCode = charge.CreditRemaining
	match.NewCharges = []*charge.Charge{dup}
	if err := s.ApplyFundMatching(ctx, match); !errors.Is(err, billing.ErrStatusConflict) {
		t.Fatalf("repeat ApplyFundMatching error = %v, want ErrStatusConflict", err)
	}
	if _, err := s.GetCharge(ctx, dup.ID); !errors.Is(err, billing.ErrChargeNotFound) {
		t.Error("failed pass still created its new charges")
	}
}

func TestPingAfterClose(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, billing.ErrStoreClosed) {
		t.Errorf("Ping after Close error = %v, want ErrStoreClosed", err)
	}
}

func invoiceIDs(invoices []*invoice.Invoice) []string {
	out := make([]string, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.ID.String()
	}
	return out
}
