package grpcapi

import (
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds a grpc server carrying the ledger service and the
// standard health service. The returned health server starts SERVING.
func NewServer(handler LedgerServer, verifier TokenVerifier, log logrus.FieldLogger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(
		LoggingInterceptor(log),
		AuthInterceptor(verifier),
	))
	server := grpc.NewServer(opts...)
	RegisterLedgerServiceServer(server, handler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server, healthServer
}
