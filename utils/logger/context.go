package logger

import (
	"context"
	"log/slog"
)

// ContextKey names a request value that TraceContextHandler copies into log records.
type ContextKey string

// Keys added to records when present in the context.
const (
	RequestIDKey ContextKey = "request_id"
	UserEmailKey ContextKey = "user_email"
	PeerKey      ContextKey = "peer_service"
)

var contextKeys = []ContextKey{RequestIDKey, UserEmailKey, PeerKey}

// WithRequestID stores the request id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithUserEmail stores the authenticated user's email.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, UserEmailKey, email)
}

// WithPeer records the satellite or upstream a call is addressed to.
func WithPeer(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, PeerKey, service)
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
