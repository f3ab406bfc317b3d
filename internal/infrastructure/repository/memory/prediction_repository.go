package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

type predictionKey struct {
	userID  int64
	matchID int64
}

type PredictionRepository struct {
	mu     sync.RWMutex
	byID   map[int64]prediction.Prediction
	byKey  map[predictionKey]int64
	nextID int64
	now    func() time.Time
}

func NewPredictionRepository(items []prediction.Prediction) *PredictionRepository {
	r := &PredictionRepository{
		byID:  make(map[int64]prediction.Prediction, len(items)),
		byKey: make(map[predictionKey]int64, len(items)),
		now:   time.Now,
	}
	for _, item := range items {
		r.byID[item.ID] = item
		r.byKey[predictionKey{userID: item.UserID, matchID: item.MatchID}] = item.ID
		r.nextID = max(r.nextID, item.ID)
	}
	return r
}

func (r *PredictionRepository) List(_ context.Context, filter prediction.Filter) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0, len(r.byID))
	for _, item := range r.byID {
		if filter.Week > 0 && item.Week != filter.Week {
			continue
		}
		if filter.UserID > 0 && item.UserID != filter.UserID {
			continue
		}
		if len(filter.MatchIDs) > 0 && !slices.Contains(filter.MatchIDs, item.MatchID) {
			continue
		}
		out = append(out, clonePrediction(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) UpdatePoints(_ context.Context, id int64, points int) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[id]
	if !ok {
		return prediction.Prediction{}, fmt.Errorf("%w: prediction id=%d", prediction.ErrNotFound, id)
	}
	item.PointsAwarded = &points
	item.UpdatedAt = r.now().UTC()
	r.byID[id] = item
	return clonePrediction(item), nil
}

func (r *PredictionRepository) Upsert(_ context.Context, userID, matchID int64, week int, pick match.Result) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey{userID: userID, matchID: matchID}
	item := prediction.Prediction{UserID: userID, MatchID: matchID}
	if id, ok := r.byKey[key]; ok {
		item = r.byID[id]
	} else {
		r.nextID++
		item.ID = r.nextID
		r.byKey[key] = item.ID
	}
	item.Week = week
	item.Pick = pick
	item.UpdatedAt = r.now().UTC()
	r.byID[item.ID] = item
	return clonePrediction(item), nil
}

func clonePrediction(item prediction.Prediction) prediction.Prediction {
	if item.PointsAwarded != nil {
		points := *item.PointsAwarded
		item.PointsAwarded = &points
	}
	return item
}
