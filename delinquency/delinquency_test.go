package delinquency

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/id"
	"github.com/xraph/billing/types"
)

func intPtr(n int) *int { return &n }

func TestSimpleEvaluate(t *testing.T) {
	invoice := InvoiceInfo{ID: id.NewInvoiceID()}

	tests := []struct {
		name        string
		snapshot    AccountSnapshot
		wantReasons int
	}{
		{
			name:        "compliant account",
			snapshot:    AccountSnapshot{HasValidCard: true},
			wantReasons: 0,
		},
		{
			name:        "pending invoices with a card",
			snapshot:    AccountSnapshot{PendingInvoices: []InvoiceInfo{invoice}, HasValidCard: true},
			wantReasons: 1,
		},
		{
			name:        "no card without invoices",
			snapshot:    AccountSnapshot{HasValidCard: false},
			wantReasons: 1,
		},
		{
			name:        "pending invoices and no card",
			snapshot:    AccountSnapshot{PendingInvoices: []InvoiceInfo{invoice}, HasValidCard: false},
			wantReasons: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons := Simple{}.Evaluate(tt.snapshot)
			if len(reasons) != tt.wantReasons {
				t.Errorf("Evaluate returned %d reasons %v, want %d", len(reasons), reasons, tt.wantReasons)
			}
		})
	}
}

func TestThresholdsUnpaidInvoices(t *testing.T) {
	invoices := []InvoiceInfo{{ID: id.NewInvoiceID()}, {ID: id.NewInvoiceID()}}

	criteria := Thresholds{UnpaidInvoices: intPtr(3)}
	if reasons := criteria.Evaluate(AccountSnapshot{PendingInvoices: invoices}); len(reasons) != 0 {
		t.Errorf("below threshold returned reasons %v", reasons)
	}

	criteria = Thresholds{UnpaidInvoices: intPtr(2)}
	reasons := criteria.Evaluate(AccountSnapshot{PendingInvoices: invoices})
	if len(reasons) != 1 {
		t.Fatalf("at threshold returned %d reasons, want 1", len(reasons))
	}
	if !strings.Contains(reasons[0], "2 pending invoices") {
		t.Errorf("reason = %q, want pending invoice count", reasons[0])
	}
}

func TestThresholdsDaysSinceLastUnpaid(t *testing.T) {
	asOf := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	invoices := []InvoiceInfo{
		{ID: id.NewInvoiceID(), CreatedAt: asOf.AddDate(0, 0, -90)},
		{ID: id.NewInvoiceID(), CreatedAt: asOf.AddDate(0, 0, -10)},
	}

	// The most recent pending invoice decides, not the oldest.
	criteria := Thresholds{DaysSinceLastUnpaid: intPtr(30)}
	if reasons := criteria.Evaluate(AccountSnapshot{PendingInvoices: invoices, AsOf: asOf}); len(reasons) != 0 {
		t.Errorf("recent invoice within threshold returned reasons %v", reasons)
	}

	criteria = Thresholds{DaysSinceLastUnpaid: intPtr(10)}
	reasons := criteria.Evaluate(AccountSnapshot{PendingInvoices: invoices, AsOf: asOf})
	if len(reasons) != 1 {
		t.Fatalf("stale invoice returned %d reasons, want 1", len(reasons))
	}
	if !strings.Contains(reasons[0], "10 days old") {
		t.Errorf("reason = %q, want invoice age", reasons[0])
	}

	// No pending invoices means no age to measure.
	if reasons := criteria.Evaluate(AccountSnapshot{AsOf: asOf}); len(reasons) != 0 {
		t.Errorf("empty snapshot returned reasons %v", reasons)
	}
}

func TestThresholdsAmount(t *testing.T) {
	criteria := Thresholds{AmountThresholds: map[string]decimal.Decimal{
		"CHF": decimal.RequireFromString("100"),
	}}

	tests := []struct {
		name        string
		balance     types.Total
		wantReasons int
	}{
		{"no debt", types.MustTotal(types.CHF("50.00")), 0},
		{"debt below threshold", types.MustTotal(types.CHF("-100.00")), 0},
		{"debt above threshold", types.MustTotal(types.CHF("-100.01")), 1},
		{"debt in another currency", types.MustTotal(types.EUR("-500.00")), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasons := criteria.Evaluate(AccountSnapshot{Balance: tt.balance})
			if len(reasons) != tt.wantReasons {
				t.Errorf("Evaluate returned %d reasons %v, want %d", len(reasons), reasons, tt.wantReasons)
			}
		})
	}
}

func TestThresholdsNilChecksSkipped(t *testing.T) {
	snapshot := AccountSnapshot{
		PendingInvoices: []InvoiceInfo{{ID: id.NewInvoiceID(), CreatedAt: time.Now().UTC().AddDate(-1, 0, 0)}},
		Balance:         types.MustTotal(types.CHF("-1000.00")),
	}
	if reasons := (Thresholds{}).Evaluate(snapshot); len(reasons) != 0 {
		t.Errorf("empty Thresholds returned reasons %v", reasons)
	}
}

func TestEvaluateBucketsEdges(t *testing.T) {
	flipDown := id.NewAccountID()   // compliant, now violating
	flipUp := id.NewAccountID()     // delinquent, now clean
	stayBad := id.NewAccountID()    // delinquent, still violating
	stayClean := id.NewAccountID()  // compliant, still clean
	invoice := InvoiceInfo{ID: id.NewInvoiceID()}

	snapshots := []AccountSnapshot{
		{AccountID: flipDown, Delinquent: false, PendingInvoices: []InvoiceInfo{invoice}, HasValidCard: false},
		{AccountID: flipUp, Delinquent: true, HasValidCard: true},
		{AccountID: stayBad, Delinquent: true, HasValidCard: false},
		{AccountID: stayClean, Delinquent: false, HasValidCard: true},
	}

	report := Evaluate(Simple{}, snapshots)

	if len(report.NewDelinquent) != 1 {
		t.Fatalf("NewDelinquent has %d accounts, want 1", len(report.NewDelinquent))
	}
	reasons, ok := report.NewDelinquent[flipDown]
	if !ok {
		t.Fatal("NewDelinquent is missing the flipping account")
	}
	if len(reasons) != 2 {
		t.Errorf("flipping account has %d reasons %v, want 2", len(reasons), reasons)
	}

	if len(report.NewCompliant) != 1 || report.NewCompliant[0] != flipUp {
		t.Errorf("NewCompliant = %v, want [%s]", report.NewCompliant, flipUp)
	}
}
