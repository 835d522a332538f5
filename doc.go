// Package billing provides the ledger core of a subscription commerce
// platform for Go applications.
//
// Billing is designed as a library, not a service. It tracks
// per-account monetary obligations (charges and credits), groups them
// into invoices, matches incoming funds against invoices, charges
// credit cards through pluggable payment providers, and maintains a
// delinquency status derived from unpaid-invoice and card-validity
// signals.
//
// # Quick Start
//
// Create a billing instance with your preferred store. The postgres
// and sqlite stores wrap an existing grove.DB; the memory store needs
// nothing:
//
//	import (
//	    "github.com/xraph/billing"
//	    "github.com/xraph/billing/store/memory"
//	)
//
//	// Create the engine
//	b := billing.New(memory.New())
//
//	// Start (runs migrations, initializes plugins)
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Stop()
//
// # Core Concepts
//
// Charges are signed ledger entries. A positive charge is money owed;
// a negative charge is a credit available to offset debt:
//
//	b.AddCharge(ctx, accountID, billing.CHF("12.50"),
//	    billing.WithProductCode("SUBSCR"))
//
// Invoices group an account's due charges by currency:
//
//	invoices, err := b.CreateInvoices(ctx, accountID, dueDate)
//
// Fund matching applies available credits and payments to pending
// invoices, oldest first, carrying forward any overpaid remainder:
//
//	paid, err := b.AssignFundsToInvoice(ctx, invoiceID)
//
// Card payments settle an invoice through a payment provider, trying
// the account's cards in priority order:
//
//	txn, err := b.PayInvoiceWithCards(ctx, invoiceID)
//
// # Money
//
// All monetary amounts are exact decimals; currencies never convert.
// The Total type aggregates per-currency sums and is the sole
// aggregation primitive, so distinct currencies can never be silently
// merged or lost.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	chrg_01h2xcejqtf2nbrexx3vqjhp41  // Charge ID
//	inv_01h455vb4pex5vsknk084sn02q   // Invoice ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package billing
