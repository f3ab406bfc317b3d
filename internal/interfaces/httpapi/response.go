package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/week"
	"github.com/riskibarqy/prediction-league/internal/platform/relation"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "prediction-league"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
	// Opaque hides the wrapped message from clients.
	Opaque bool
}

type errorRule struct {
	targets []error
	mapped  mappedError
}

// errorRules is evaluated in order; the first rule with a matching target wins.
var errorRules = []errorRule{
	{
		targets: []error{usecase.ErrInvalidInput, prediction.ErrInvalidPick, match.ErrInvalidResult, relation.ErrInvalidID},
		mapped:  mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
	},
	{
		targets: []error{usecase.ErrNotFound, week.ErrNoSuchWeek},
		mapped:  mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
	},
	{
		targets: []error{usecase.ErrUnauthorized},
		mapped:  mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"},
	},
	{
		targets: []error{week.ErrAlreadyScored},
		mapped:  mappedError{HTTPStatus: http.StatusConflict, Reason: "alreadyScored", Status: "ALREADY_EXISTS"},
	},
	{
		targets: []error{week.ErrNotFullyResolved},
		mapped:  mappedError{HTTPStatus: http.StatusConflict, Reason: "notFullyResolved", Status: "FAILED_PRECONDITION"},
	},
	{
		targets: []error{week.ErrLocked},
		mapped:  mappedError{HTTPStatus: http.StatusConflict, Reason: "weekLocked", Status: "FAILED_PRECONDITION"},
	},
	{
		targets: []error{usecase.ErrRateLimited},
		mapped:  mappedError{HTTPStatus: http.StatusTooManyRequests, Reason: "rateLimited", Status: "RESOURCE_EXHAUSTED"},
	},
	{
		targets: []error{usecase.ErrDependencyUnavailable},
		mapped:  mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
	},
	{
		targets: []error{usecase.ErrStore},
		mapped:  mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "storeError", Status: "INTERNAL", Opaque: true},
	},
}

var internalErrorMapping = mappedError{
	HTTPStatus: http.StatusInternalServerError,
	Reason:     "internalError",
	Status:     "INTERNAL",
	Opaque:     true,
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, envelope{APIVersion: googleAPIVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	msg := err.Error()
	if mapped.Opaque {
		msg = http.StatusText(mapped.HTTPStatus)
	}
	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope(mapped, msg))
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope(internalErrorMapping, "internal server error"))
}

func errorEnvelope(mapped mappedError, msg string) envelope {
	return envelope{
		APIVersion: googleAPIVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: msg,
			Status:  mapped.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: msg}},
		},
	}
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.mapped
			}
		}
	}
	return internalErrorMapping
}
