package billing

import "github.com/xraph/billing/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Total is re-exported from types package.
type Total = types.Total

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	CHF       = types.CHF
	EUR       = types.EUR
	NOK       = types.NOK
	USD       = types.USD
	ZeroMoney = types.ZeroMoney
	MustMoney = types.MustMoney
	SumTotal  = types.SumTotal
	NewTotal  = types.NewTotal
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
