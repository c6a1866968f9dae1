package grpc

import (
	"context"
	"errors"

	"mealplan-service/internal/domain/entity"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, entity.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, entity.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, entity.ErrInvariantViolation):
		code = codes.FailedPrecondition
	case errors.Is(err, entity.ErrTransientStore):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}

	return status.Error(code, err.Error())
}
