package middleware

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type contextKey string

const requestIDKey contextKey = "requestID"

const requestIDHeader = "x-request-id"

// ContextMiddleware stores the caller's x-request-id, or a fresh one, in the
// request context.
func ContextMiddleware(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	requestID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(requestIDHeader); len(ids) > 0 {
			requestID = ids[0]
		}
	}
	if requestID == "" {
		requestID = generateRequestID()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return handler(ctx, req)
}

// RequestID returns the request ID set by ContextMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func generateRequestID() string {
	return uuid.NewString()
}
