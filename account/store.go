package account

import (
	"context"

	"github.com/xraph/billing/id"
)

type Store interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, accountID id.AccountID) (*Account, error)
	List(ctx context.Context, opts ListOpts) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	SetDelinquent(ctx context.Context, accountID id.AccountID, delinquent bool) error
}

type ListOpts struct {
	Status     Status
	Delinquent *bool
	Limit      int
	Offset     int
}
