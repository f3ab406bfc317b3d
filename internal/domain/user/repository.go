package user

import "context"

// Update carries the fields to change; nil fields are left untouched.
type Update struct {
	Points           *int
	CorrectResults   *int
	IncorrectResults *int
	FullHouses       *int
	Blanks           *int
	CurrentWeek      *int
}

// Repository exposes user persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (User, bool, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, update Update) (User, error)
}
