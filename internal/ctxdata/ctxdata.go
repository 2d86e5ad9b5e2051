package ctxdata

import (
	"context"

	"sace/internal/model"
)

type key int

const (
	traceIDKey key = iota
	callerKey
)

// Caller is the identity a verified bearer token resolved to.
type Caller struct {
	UserID int64
	Email  string
	Role   model.Role
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func GetTraceID(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey).(string)
	return traceID, ok && traceID != ""
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func GetCaller(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}

// HasRole reports whether the caller holds exactly role. An anonymous
// context holds none.
func HasRole(ctx context.Context, role model.Role) bool {
	c, ok := GetCaller(ctx)
	return ok && c.Role == role
}
