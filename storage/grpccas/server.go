package grpccas

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/vault/cidutil"
	"xdao.co/vault/storage"
)

// Server exposes a storage.CAS over the CAS gRPC service.
type Server struct {
	UnimplementedCASServer
	CAS storage.CAS
}

func (s *Server) Put(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	b := in.GetValue()
	expected, err := cidutil.Of(b)
	if err != nil {
		return nil, status.Error(codes.Internal, "cid computation failed")
	}
	id, err := s.CAS.Put(ctx, b)
	if err != nil {
		return nil, mapErr(err)
	}
	if !id.Equals(expected) {
		return nil, mapErr(storage.ErrCIDMismatch)
	}
	return wrapperspb.String(id.String()), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := cidutil.Parse(in.GetValue())
	if err != nil {
		return nil, mapErr(storage.ErrInvalidCID)
	}
	b, err := s.CAS.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !cidutil.Matches(id, b) {
		return nil, mapErr(storage.ErrCIDMismatch)
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	id, err := cidutil.Parse(in.GetValue())
	if err != nil {
		return nil, mapErr(storage.ErrInvalidCID)
	}
	ok, err := s.CAS.Has(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Server) ready() error {
	if s == nil || s.CAS == nil {
		return status.Error(codes.FailedPrecondition, "missing CAS")
	}
	return nil
}
