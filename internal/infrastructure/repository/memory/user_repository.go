package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[int64]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	r := &UserRepository{byID: make(map[int64]user.User, len(users))}
	for _, item := range users {
		r.byID[item.ID] = item
	}
	return r
}

func (r *UserRepository) Get(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	return item, ok, nil
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.byID))
	for _, item := range r.byID {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id int64, update user.Update) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return user.User{}, fmt.Errorf("%w: user id=%d", user.ErrNotFound, id)
	}
	assign(&item.Points, update.Points)
	assign(&item.CorrectResults, update.CorrectResults)
	assign(&item.IncorrectResults, update.IncorrectResults)
	assign(&item.FullHouses, update.FullHouses)
	assign(&item.Blanks, update.Blanks)
	assign(&item.CurrentWeek, update.CurrentWeek)
	r.byID[id] = item
	return item, nil
}

func assign(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}
