package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Billing store (SQLite).
var Migrations = migrate.NewGroup("billing")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_billing_accounts",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_accounts (
    id         TEXT PRIMARY KEY,
    owner      TEXT NOT NULL DEFAULT '',
    currency   TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'open',
    delinquent INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_accounts_status ON billing_accounts (status);
CREATE INDEX IF NOT EXISTS idx_billing_accounts_delinquent ON billing_accounts (delinquent);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_accounts`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_invoices",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_invoices (
    id         TEXT PRIMARY KEY,
    account_id TEXT NOT NULL DEFAULT '',
    due_date   TEXT NOT NULL DEFAULT (datetime('now')),
    status     TEXT NOT NULL DEFAULT 'pending',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_invoices_account ON billing_invoices (account_id);
CREATE INDEX IF NOT EXISTS idx_billing_invoices_status ON billing_invoices (account_id, status);
CREATE INDEX IF NOT EXISTS idx_billing_invoices_due ON billing_invoices (account_id, due_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_invoices`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_charges",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_charges (
    id           TEXT PRIMARY KEY,
    account_id   TEXT NOT NULL DEFAULT '',
    invoice_id   TEXT NOT NULL DEFAULT '',
    amount       TEXT NOT NULL DEFAULT '0',
    currency     TEXT NOT NULL DEFAULT '',
    product_code TEXT NOT NULL DEFAULT '',
    ad_hoc_label TEXT NOT NULL DEFAULT '',
    reverses     TEXT NOT NULL DEFAULT '',
    deleted      INTEGER NOT NULL DEFAULT 0,
    properties   TEXT NOT NULL DEFAULT '{}',
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_charges_account ON billing_charges (account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_billing_charges_invoice ON billing_charges (invoice_id);
CREATE INDEX IF NOT EXISTS idx_billing_charges_reverses ON billing_charges (reverses);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_charges`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_transactions",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_transactions (
    id             TEXT PRIMARY KEY,
    account_id     TEXT NOT NULL DEFAULT '',
    invoice_id     TEXT NOT NULL DEFAULT '',
    amount         TEXT NOT NULL DEFAULT '0',
    currency       TEXT NOT NULL DEFAULT '',
    success        INTEGER NOT NULL DEFAULT 0,
    payment_method TEXT NOT NULL DEFAULT '',
    card_number    TEXT NOT NULL DEFAULT '',
    card_id        TEXT NOT NULL DEFAULT '',
    psp_reference  TEXT NOT NULL DEFAULT '',
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_txns_account ON billing_transactions (account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_billing_txns_invoice ON billing_transactions (invoice_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_transactions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_cards",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_cards (
    id            TEXT PRIMARY KEY,
    account_id    TEXT NOT NULL DEFAULT '',
    type          TEXT NOT NULL DEFAULT '',
    number        TEXT NOT NULL DEFAULT '',
    expiry_month  INTEGER NOT NULL DEFAULT 0,
    expiry_year   INTEGER NOT NULL DEFAULT 0,
    expiry_date   TEXT NOT NULL DEFAULT (datetime('now')),
    status        TEXT NOT NULL DEFAULT 'active',
    psp_reference TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_cards_account ON billing_cards (account_id);
CREATE INDEX IF NOT EXISTS idx_billing_cards_expiry ON billing_cards (account_id, expiry_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_cards`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_billing_event_logs",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS billing_event_logs (
    id         TEXT PRIMARY KEY,
    account_id TEXT NOT NULL DEFAULT '',
    type       TEXT NOT NULL DEFAULT '',
    text       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_billing_events_account ON billing_event_logs (account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_billing_events_type ON billing_event_logs (account_id, type);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS billing_event_logs`)
				return err
			},
		},
	)
}
