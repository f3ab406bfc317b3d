package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	byID   map[int64]match.Match
	nextID int64
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	r := &MatchRepository{byID: make(map[int64]match.Match, len(matches))}
	for _, item := range matches {
		r.byID[item.ID] = item
		r.nextID = max(r.nextID, item.ID)
	}
	return r
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.byID))
	for _, item := range r.byID {
		if filter.Week > 0 && item.Week != filter.Week {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MatchRepository) Get(_ context.Context, id int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	return item, ok, nil
}

func (r *MatchRepository) Update(_ context.Context, id int64, update match.Update) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match id=%d", match.ErrNotFound, id)
	}
	if update.Result != nil {
		item.Result = *update.Result
	}
	if update.Locked != nil {
		item.Locked = *update.Locked
	}
	r.byID[id] = item
	return item, nil
}

func (r *MatchRepository) Create(_ context.Context, items []match.Match) ([]match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		r.nextID++
		item.ID = r.nextID
		r.byID[item.ID] = item
		out = append(out, item)
	}
	return out, nil
}
