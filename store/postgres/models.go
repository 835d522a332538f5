package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/billing/account"
	"github.com/xraph/billing/card"
	"github.com/xraph/billing/charge"
	"github.com/xraph/billing/eventlog"
	"github.com/xraph/billing/id"
	"github.com/xraph/billing/invoice"
	"github.com/xraph/billing/transaction"
	"github.com/xraph/billing/types"
)

// Monetary amounts travel as decimal strings and live in NUMERIC
// columns, so no precision is lost between the store and types.Money.

// ==================== Account models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:billing_accounts"`

	ID         string    `grove:"id,pk"`
	Owner      string    `grove:"owner"`
	Currency   string    `grove:"currency"`
	Status     string    `grove:"status"`
	Delinquent bool      `grove:"delinquent"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:         a.ID.String(),
		Owner:      a.Owner,
		Currency:   a.Currency,
		Status:     string(a.Status),
		Delinquent: a.Delinquent,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	accountID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}

	return &account.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         accountID,
		Owner:      m.Owner,
		Currency:   m.Currency,
		Status:     account.Status(m.Status),
		Delinquent: m.Delinquent,
	}, nil
}

// ==================== Charge models ====================

type chargeModel struct {
	grove.BaseModel `grove:"table:billing_charges"`

	ID          string            `grove:"id,pk"`
	AccountID   string            `grove:"account_id"`
	InvoiceID   string            `grove:"invoice_id"`
	Amount      string            `grove:"amount,type:numeric"`
	Currency    string            `grove:"currency"`
	ProductCode string            `grove:"product_code"`
	AdHocLabel  string            `grove:"ad_hoc_label"`
	Reverses    string            `grove:"reverses"`
	Deleted     bool              `grove:"deleted"`
	Properties  map[string]string `grove:"properties,type:jsonb"`
	CreatedAt   time.Time         `grove:"created_at"`
	UpdatedAt   time.Time         `grove:"updated_at"`
}

func toChargeModel(c *charge.Charge) *chargeModel {
	m := &chargeModel{
		ID:          c.ID.String(),
		AccountID:   c.AccountID.String(),
		Amount:      c.Amount.Amount.String(),
		Currency:    c.Amount.Currency,
		ProductCode: c.ProductCode,
		AdHocLabel:  c.AdHocLabel,
		Deleted:     c.Deleted,
		Properties:  c.Properties,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if !c.InvoiceID.IsNil() {
		m.InvoiceID = c.InvoiceID.String()
	}
	if !c.Reverses.IsNil() {
		m.Reverses = c.Reverses.String()
	}
	return m
}

func fromChargeModel(m *chargeModel) (*charge.Charge, error) {
	chargeID, err := id.ParseChargeID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, err
	}

	invoiceID := id.Nil
	if m.InvoiceID != "" {
		invoiceID, err = id.ParseInvoiceID(m.InvoiceID)
		if err != nil {
			return nil, err
		}
	}
	reverses := id.Nil
	if m.Reverses != "" {
		reverses, err = id.ParseChargeID(m.Reverses)
		if err != nil {
			return nil, err
		}
	}

	return &charge.Charge{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          chargeID,
		AccountID:   accountID,
		InvoiceID:   invoiceID,
		Amount:      types.NewMoney(amount, m.Currency),
		ProductCode: m.ProductCode,
		AdHocLabel:  m.AdHocLabel,
		Reverses:    reverses,
		Deleted:     m.Deleted,
		Properties:  m.Properties,
	}, nil
}

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:billing_invoices"`

	ID        string    `grove:"id,pk"`
	AccountID string    `grove:"account_id"`
	DueDate   time.Time `grove:"due_date"`
	Status    string    `grove:"status"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	return &invoiceModel{
		ID:        inv.ID.String(),
		AccountID: inv.AccountID.String(),
		DueDate:   inv.DueDate,
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invoiceID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        invoiceID,
		AccountID: accountID,
		DueDate:   m.DueDate,
		Status:    invoice.Status(m.Status),
	}, nil
}

// ==================== Transaction models ====================

type transactionModel struct {
	grove.BaseModel `grove:"table:billing_transactions"`

	ID            string    `grove:"id,pk"`
	AccountID     string    `grove:"account_id"`
	InvoiceID     string    `grove:"invoice_id"`
	Amount        string    `grove:"amount,type:numeric"`
	Currency      string    `grove:"currency"`
	Success       bool      `grove:"success"`
	PaymentMethod string    `grove:"payment_method"`
	CardNumber    string    `grove:"card_number"`
	CardID        string    `grove:"card_id"`
	PSPReference  string    `grove:"psp_reference"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toTransactionModel(t *transaction.Transaction) *transactionModel {
	m := &transactionModel{
		ID:            t.ID.String(),
		AccountID:     t.AccountID.String(),
		Amount:        t.Amount.Amount.String(),
		Currency:      t.Amount.Currency,
		Success:       t.Success,
		PaymentMethod: t.PaymentMethod,
		CardNumber:    t.CardNumber,
		PSPReference:  t.PSPReference,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if !t.InvoiceID.IsNil() {
		m.InvoiceID = t.InvoiceID.String()
	}
	if !t.CardID.IsNil() {
		m.CardID = t.CardID.String()
	}
	return m
}

func fromTransactionModel(m *transactionModel) (*transaction.Transaction, error) {
	txnID, err := id.ParseTransactionID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, err
	}

	invoiceID := id.Nil
	if m.InvoiceID != "" {
		invoiceID, err = id.ParseInvoiceID(m.InvoiceID)
		if err != nil {
			return nil, err
		}
	}
	cardID := id.Nil
	if m.CardID != "" {
		cardID, err = id.ParseCardID(m.CardID)
		if err != nil {
			return nil, err
		}
	}

	return &transaction.Transaction{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            txnID,
		AccountID:     accountID,
		InvoiceID:     invoiceID,
		Amount:        types.NewMoney(amount, m.Currency),
		Success:       m.Success,
		PaymentMethod: m.PaymentMethod,
		CardNumber:    m.CardNumber,
		CardID:        cardID,
		PSPReference:  m.PSPReference,
	}, nil
}

// ==================== Card models ====================

type cardModel struct {
	grove.BaseModel `grove:"table:billing_cards"`

	ID           string    `grove:"id,pk"`
	AccountID    string    `grove:"account_id"`
	Type         string    `grove:"type"`
	Number       string    `grove:"number"`
	ExpiryMonth  int       `grove:"expiry_month"`
	ExpiryYear   int       `grove:"expiry_year"`
	ExpiryDate   time.Time `grove:"expiry_date"`
	Status       string    `grove:"status"`
	PSPReference string    `grove:"psp_reference"`
	CreatedAt    time.Time `grove:"created_at"`
	UpdatedAt    time.Time `grove:"updated_at"`
}

func toCardModel(c *card.Card) *cardModel {
	return &cardModel{
		ID:           c.ID.String(),
		AccountID:    c.AccountID.String(),
		Type:         c.Type,
		Number:       c.Number,
		ExpiryMonth:  c.ExpiryMonth,
		ExpiryYear:   c.ExpiryYear,
		ExpiryDate:   c.ExpiryDate,
		Status:       string(c.Status),
		PSPReference: c.PSPReference,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func fromCardModel(m *cardModel) (*card.Card, error) {
	cardID, err := id.ParseCardID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	return &card.Card{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           cardID,
		AccountID:    accountID,
		Type:         m.Type,
		Number:       m.Number,
		ExpiryMonth:  m.ExpiryMonth,
		ExpiryYear:   m.ExpiryYear,
		ExpiryDate:   m.ExpiryDate,
		Status:       card.Status(m.Status),
		PSPReference: m.PSPReference,
	}, nil
}

// ==================== Event log models ====================

type eventLogModel struct {
	grove.BaseModel `grove:"table:billing_event_logs"`

	ID        string    `grove:"id,pk"`
	AccountID string    `grove:"account_id"`
	Type      string    `grove:"type"`
	Text      string    `grove:"text"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toEventLogModel(e *eventlog.EventLog) *eventLogModel {
	return &eventLogModel{
		ID:        e.ID.String(),
		AccountID: e.AccountID.String(),
		Type:      string(e.Type),
		Text:      e.Text,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromEventLogModel(m *eventLogModel) (*eventlog.EventLog, error) {
	eventID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(m.AccountID)
	if err != nil {
		return nil, err
	}

	return &eventlog.EventLog{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        eventID,
		AccountID: accountID,
		Type:      eventlog.Type(m.Type),
		Text:      m.Text,
	}, nil
}
