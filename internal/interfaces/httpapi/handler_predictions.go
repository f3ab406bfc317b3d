package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.predictionService.SubmitPick(ctx, usecase.SubmitPickInput{
		UserID:  userID,
		MatchID: req.MatchID.Int64(),
		Pick:    req.Pick,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toPredictionDTO(item))
}

func (h *Handler) ListUserPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserPredictions")
	defer span.End()

	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	callerID, err := userIDFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if callerID != userID {
		writeError(ctx, w, fmt.Errorf("%w: predictions belong to another user", usecase.ErrUnauthorized))
		return
	}

	week, err := queryInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.predictionService.ListUserPredictions(ctx, userID, week)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toPredictionDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
