// Package logging builds the zap loggers used by the vault binaries.
package logging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// New returns a production JSON logger writing to stderr at level
// ("debug", "info", "warn", "error").
func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// UnaryServerInterceptor logs method, duration and status code of every
// unary call. Request and response payloads are never logged; they may be
// secret vault exports.
func UnaryServerInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			if st, ok := status.FromError(err); ok {
				code = st.Code()
			} else {
				code = codes.Internal
			}
		}

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("status", code.String()),
		}
		switch {
		case err == nil:
			log.Info("grpc request", fields...)
		case code == codes.NotFound:
			log.Debug("grpc request", append(fields, zap.Error(err))...)
		default:
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
