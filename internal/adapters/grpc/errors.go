package grpc

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/furniture-factory/internal/domain/factory"
)

// ErrJobNotFound is returned by GetJob for an unknown or pruned order id
type ErrJobNotFound struct {
	OrderID string
}

func (e *ErrJobNotFound) Error() string {
	return "no job for order " + e.OrderID
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		invalid     *factory.ErrInvalidArgument
		unknown     *factory.ErrUnknownMaterial
		negative    *factory.ErrNegativeAmount
		validation  validator.ValidationErrors
		stock       *factory.ErrInsufficientStock
		empty       *factory.ErrEmptyQueue
		notBroken   *factory.ErrMachineNotBroken
		duplicate   *factory.ErrDuplicateSupervisor
		jobNotFound *ErrJobNotFound
	)

	switch {
	case errors.As(err, &invalid), errors.As(err, &unknown), errors.As(err, &negative), errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &stock), errors.As(err, &empty), errors.As(err, &notBroken), errors.As(err, &duplicate):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &jobNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
