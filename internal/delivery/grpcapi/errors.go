package grpcapi

import (
	"errors"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func statusCode(err error) codes.Code {
	switch domain.ClassOf(err) {
	case domain.ClassAuthorization:
		return codes.PermissionDenied
	case domain.ClassStateConflict:
		return codes.AlreadyExists
	case domain.ClassPrecondition:
		return codes.FailedPrecondition
	case domain.ClassNotFound:
		return codes.NotFound
	case domain.ClassValidation:
		return codes.InvalidArgument
	case domain.ClassResource:
		return codes.ResourceExhausted
	}
	return codes.Internal
}

// toStatus converts a ledger error into a grpc status error. Errors that
// already carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, errMissingCaller) {
		return status.Error(codes.Unauthenticated, err.Error())
	}
	code := statusCode(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
