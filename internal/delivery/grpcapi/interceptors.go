package grpcapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/usecase"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const requestIDHeader = "x-request-id"

var errMissingCaller = errors.New("no authenticated caller")

type TokenVerifier interface {
	Verify(token string) (domain.Address, error)
}

type callerKey struct{}

func withCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

func callerFrom(ctx context.Context) (domain.Address, error) {
	caller, ok := ctx.Value(callerKey{}).(domain.Address)
	if !ok || caller.IsZero() {
		return "", errMissingCaller
	}
	return caller, nil
}

// AuthInterceptor resolves the caller address from the bearer token. Methods
// outside the ledger service (health checks) pass through.
func AuthInterceptor(verifier TokenVerifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization metadata")
		}
		token, ok := strings.CutPrefix(values[0], "Bearer ")
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "authorization must be a bearer token")
		}
		caller, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(withCaller(ctx, caller), req)
	}
}

// LoggingInterceptor tags the call with a request id and logs its outcome.
func LoggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(requestIDHeader); len(values) > 0 {
				requestID = values[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = usecase.WithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		entry := log.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"request_id": requestID,
			"code":       status.Code(err).String(),
			"took":       time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Debug("grpc call failed")
		} else {
			entry.Debug("grpc call")
		}
		return resp, err
	}
}
