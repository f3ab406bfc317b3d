package usecase

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

type InvocationKind string

const (
	InvocationManual    InvocationKind = "manual"
	InvocationScheduled InvocationKind = "scheduled"
)

// Invocation records who triggered a privileged operation. It is built once
// where the request enters the process; the zero value is rejected.
type Invocation struct {
	kind  InvocationKind
	actor string
}

// ScheduledTrusted is for calls arriving on the internal trigger channel
// (worker ticker, signed job endpoint).
func ScheduledTrusted(source string) Invocation {
	source = strings.TrimSpace(source)
	if source == "" {
		source = "scheduler"
	}
	return Invocation{kind: InvocationScheduled, actor: source}
}

func (i Invocation) Kind() InvocationKind {
	return i.kind
}

func (i Invocation) Actor() string {
	return i.actor
}

func (i Invocation) Valid() bool {
	return i.kind == InvocationManual || i.kind == InvocationScheduled
}

// AdminAuthenticator turns a shared-secret credential into a manual invocation.
type AdminAuthenticator struct {
	key []byte
}

func NewAdminAuthenticator(key string) *AdminAuthenticator {
	return &AdminAuthenticator{key: []byte(strings.TrimSpace(key))}
}

func (a *AdminAuthenticator) Authenticate(actor, credential string) (Invocation, error) {
	if a == nil || len(a.key) == 0 {
		return Invocation{}, fmt.Errorf("%w: admin key is not configured", ErrUnauthorized)
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Invocation{}, fmt.Errorf("%w: missing admin credential", ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(credential), a.key) != 1 {
		return Invocation{}, fmt.Errorf("%w: invalid admin credential", ErrUnauthorized)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "admin"
	}
	return Invocation{kind: InvocationManual, actor: actor}, nil
}

func requireInvocation(inv Invocation) error {
	if !inv.Valid() {
		return fmt.Errorf("%w: unauthenticated invocation", ErrUnauthorized)
	}
	return nil
}
