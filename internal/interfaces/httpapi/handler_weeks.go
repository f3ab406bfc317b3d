package httpapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	rows, err := h.leaderboardService.GetLeaderboard(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	span.SetAttributes(attribute.Int("leaderboard.rows", len(rows)))
	writeSuccess(ctx, w, http.StatusOK, rows)
}

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeeks")
	defer span.End()

	items, err := h.weekService.ListWeeks(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]weekDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toWeekDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeek")
	defer span.End()

	number, err := pathInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attribute.Int("week", number))

	status, err := h.weekService.GetWeek(ctx, number)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toWeekDTO(status))
}

func (h *Handler) IsWeekLocked(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IsWeekLocked")
	defer span.End()

	number, err := pathInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	locked, err := h.weekService.IsWeekLocked(ctx, number)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekLockDTO{Week: number, Locked: locked})
}
