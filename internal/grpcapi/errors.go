package grpcapi

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/travel-booking/internal/domain"
)

// ToStatus переводит доменную ошибку в gRPC-статус; остальное становится Internal без деталей.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case domain.IsValidation(err), domain.IsMinimumPayment(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsAuthorization(err):
		return status.Error(codes.PermissionDenied, err.Error())
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsNotAvailable(err), domain.IsNotAllowed(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.IsConflict(err):
		return status.Error(codes.Aborted, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
