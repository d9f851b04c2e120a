package logging

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const metadataKeyRequestID = "x-request-id"

// UnaryServerInterceptor is the gRPC counterpart of GinMiddleware. The
// request ID is echoed back in the response header. Health and reflection
// calls are only logged at debug level.
func UnaryServerInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		reqID := requestIDFromMD(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(metadataKeyRequestID, reqID))

		callLogger := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldGRPCMethod, info.FullMethod).
			Logger()

		resp, err := handler(WithLogger(ctx, callLogger), req)

		ev := callLogger.Info()
		if isInfrastructure(info.FullMethod) {
			ev = callLogger.Debug()
		}
		ev.Str(FieldGRPCCode, status.Code(err).String()).
			Int64(FieldLatency, time.Since(start).Milliseconds()).
			Err(err).
			Msg("unary call completed")

		return resp, err
	}
}

func isInfrastructure(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.") || strings.HasPrefix(method, "/grpc.reflection.")
}

func requestIDFromMD(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(metadataKeyRequestID); len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return uuid.NewString()
}
