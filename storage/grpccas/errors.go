package grpccas

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/vault/storage"
)

// Status codes used on the wire for storage sentinel errors.
var codeFor = []struct {
	err  error
	code codes.Code
}{
	{storage.ErrNotFound, codes.NotFound},
	{storage.ErrInvalidCID, codes.InvalidArgument},
	{storage.ErrCIDMismatch, codes.DataLoss},
	{storage.ErrImmutable, codes.AlreadyExists},
}

// mapErr converts a backend error into a gRPC status.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	for _, m := range codeFor {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// mapRPC converts a gRPC status back into the storage sentinel it carries.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, m := range codeFor {
		if st.Code() == m.code || st.Message() == m.err.Error() {
			return m.err
		}
	}
	return err
}
