package grpcapi

import (
	"context"
	"log"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader carries the per-call request ID in response headers.
const RequestIDHeader = "x-request-id"

// LoggingInterceptor logs every unary call with a request ID, its status code
// and its latency. A request ID sent by the caller is reused.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 {
				requestID = ids[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Printf("grpc: %s id=%s code=%s took=%s", info.FullMethod, requestID, status.Code(err), time.Since(start).Round(time.Millisecond))
		return resp, err
	}
}

// RecoveryInterceptor turns a panicking handler into an Internal error.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("ERROR: grpc: panic in %s: %v\n%s", info.FullMethod, r, debug.Stack())
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// ConcurrencyLimitInterceptor lets at most n GetWeatherData calls run at once.
// Further calls wait for a free slot until their context is done. Other
// methods, such as health checks, are not limited.
func ConcurrencyLimitInterceptor(n int) grpc.UnaryServerInterceptor {
	if n < 1 {
		n = 1
	}
	slots := make(chan struct{}, n)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if info.FullMethod != FullMethodGetWeatherData {
			return handler(ctx, req)
		}
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		defer func() { <-slots }()
		return handler(ctx, req)
	}
}
