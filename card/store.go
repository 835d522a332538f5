package card

import (
	"context"
	"time"

	"github.com/xraph/billing/id"
)

type Store interface {
	Create(ctx context.Context, c *Card) error
	Get(ctx context.Context, cardID id.CardID) (*Card, error)
	List(ctx context.Context, accountID id.AccountID) ([]*Card, error)
	Update(ctx context.Context, c *Card) error

	// ListValid returns the account's unexpired cards as of the given
	// date (zero means today), active cards first.
	ListValid(ctx context.Context, accountID id.AccountID, asOf time.Time) ([]*Card, error)
}
