package httpapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func (h *Handler) ScoreWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreWeek")
	defer span.End()

	number, err := pathInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scoreWeekRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	inv := invocationFromContext(ctx)
	span.SetAttributes(
		attribute.Int("week", number),
		attribute.Bool("force", req.Force),
		attribute.Bool("resume", req.Resume),
		attribute.String("actor", inv.Actor()),
	)

	result, err := h.scoringService.ScoreWeek(ctx, number, usecase.ScoreOptions{Force: req.Force, Resume: req.Resume})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "week scored by admin",
		"week", number,
		"actor", inv.Actor(),
		"status", string(result.Status),
		"run_id", result.RunID,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SetMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMatchResult")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setResultRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.resultService.SetMatchResult(ctx, matchID, req.Result)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "match result set by admin",
		"match_id", matchID,
		"result", string(item.Result),
		"actor", invocationFromContext(ctx).Actor(),
	)
	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(item))
}

func (h *Handler) RunAutoScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoScore")
	defer span.End()

	h.runAutoScore(w, r.WithContext(ctx))
}

func (h *Handler) RunAutoScoreJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAutoScoreJob")
	defer span.End()

	h.runAutoScore(w, r.WithContext(ctx))
}

func (h *Handler) runAutoScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.autoScoreService.Tick(ctx, invocationFromContext(ctx))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ResetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetUsers")
	defer span.End()

	var req resetUsersRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.ToWeek == 0 {
		req.ToWeek = 1
	}

	result, err := h.seasonService.ResetUsers(ctx, invocationFromContext(ctx), req.ToWeek)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SeedWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeedWeek")
	defer span.End()

	var req usecase.SeedWeekInput
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.seasonService.SeedWeek(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	span.SetAttributes(attribute.Int("week", req.Week))
	writeSuccess(ctx, w, http.StatusCreated, toMatchDTOs(items))
}
