package httpapi

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type contextKey string

const invocationContextKey contextKey = "invocation"

func withInvocation(ctx context.Context, inv usecase.Invocation) context.Context {
	return context.WithValue(ctx, invocationContextKey, inv)
}

// invocationFromContext returns the zero Invocation when none was attached,
// which every privileged use case rejects.
func invocationFromContext(ctx context.Context) usecase.Invocation {
	inv, _ := ctx.Value(invocationContextKey).(usecase.Invocation)
	return inv
}
