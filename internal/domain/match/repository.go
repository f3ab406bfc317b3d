package match

import "context"

// Filter narrows a match listing. Zero values match everything.
type Filter struct {
	Week int
}

// Update carries the fields to change; nil fields are left untouched.
type Update struct {
	Result *Result
	Locked *bool
}

// Repository exposes match persistence.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Match, error)
	Get(ctx context.Context, id int64) (Match, bool, error)
	Update(ctx context.Context, id int64, update Update) (Match, error)
	Create(ctx context.Context, items []Match) ([]Match, error)
}
