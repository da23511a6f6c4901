package grpcapi

import (
	"context"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server hosts the weather service and the standard health service.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

// NewServer builds a gRPC server that runs at most poolSize GetWeatherData
// calls at once.
func NewServer(srv WeatherServiceServer, poolSize int) *Server {
	if poolSize < 1 {
		poolSize = 1
	}
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(),
			LoggingInterceptor(),
			ConcurrencyLimitInterceptor(poolSize),
		),
	)
	RegisterWeatherServiceServer(gs, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpcServer: gs, health: hs}
}

// SetServing reports the weather service as serving or not serving on the
// health service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Serve accepts connections on lis until Shutdown is called.
func (s *Server) Serve(lis net.Listener) error {
	log.Printf("grpc: serving %s on %s", ServiceName, lis.Addr())
	return s.grpcServer.Serve(lis)
}

// Shutdown stops accepting new calls and waits for in-flight calls until ctx
// is done, then closes all connections.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("grpc: grace period expired; stopping remaining calls")
		s.grpcServer.Stop()
		<-done
	}
}
