package eventlog

import (
	"context"

	"github.com/xraph/billing/id"
)

type Store interface {
	Create(ctx context.Context, e *EventLog) error
	List(ctx context.Context, accountID id.AccountID, opts ListOpts) ([]*EventLog, error)
}

type ListOpts struct {
	Type   Type
	Limit  int
	Offset int
}
