package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"fleet-booking-backend/internal/logger"
)

// LoggingUnary logs every unary call with its status code and latency.
func LoggingUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		args := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID, idErr := UserIDFromContext(ctx); idErr == nil {
			args = append(args, "user_id", userID)
		}
		if err != nil {
			logger.Warn("gRPC call failed", append(args, "error", err)...)
		} else {
			logger.Debug("gRPC call", args...)
		}
		return resp, err
	}
}
