package httpapi

import (
	"net/http"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/weeks", handler.ListWeeks)
	mux.HandleFunc("GET /v1/weeks/{week}", handler.GetWeek)
	mux.HandleFunc("GET /v1/weeks/{week}/locked", handler.IsWeekLocked)
	mux.HandleFunc("PUT /v1/predictions", handler.SubmitPick)
	mux.HandleFunc("GET /v1/users/{userID}/predictions", handler.ListUserPredictions)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, auth *usecase.AdminAuthenticator) {
	mux.Handle("POST /v1/admin/weeks", RequireAdminKey(auth, http.HandlerFunc(handler.SeedWeek)))
	mux.Handle("POST /v1/admin/weeks/{week}/score", RequireAdminKey(auth, http.HandlerFunc(handler.ScoreWeek)))
	mux.Handle("PUT /v1/admin/matches/{matchID}/result", RequireAdminKey(auth, http.HandlerFunc(handler.SetMatchResult)))
	mux.Handle("POST /v1/admin/autoscore", RequireAdminKey(auth, http.HandlerFunc(handler.RunAutoScore)))
	mux.Handle("POST /v1/admin/users/reset", RequireAdminKey(auth, http.HandlerFunc(handler.ResetUsers)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/autoscore", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAutoScoreJob)))
}
