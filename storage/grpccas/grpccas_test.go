package grpccas

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/vault/storage"
	"xdao.co/vault/storage/localfs"
	"xdao.co/vault/storage/testkit"
)

// serve starts a CAS server over bufconn backed by localfs and returns a
// connected client.
func serve(t *testing.T) *Client {
	t.Helper()
	cas, err := localfs.New(t.TempDir())
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCASServer(srv, &Server{CAS: cas})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	client, err := Dial("passthrough:///bufnet", DialOptions{
		Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)},
	})
	require.NoError(t, err)
	client.Timeout = 2 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGRPCCAS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS { return serve(t) })
}

func TestGRPCCAS_LocalFS_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := serve(t)

	payload := []byte(`{"primary_identity":{"first_name":"Grace","last_name":"Hopper","email":"grace@example.com"},"vault_keys":[],"external_vaults":[]}`)
	id, err := client.Put(ctx, payload)
	require.NoError(t, err)
	require.True(t, id.Defined())

	ok, err := client.Has(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := client.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestServer_RejectsMalformedCID(t *testing.T) {
	client := serve(t)

	_, err := client.client.Get(context.Background(), wrapperspb.String("not-a-cid"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.ErrorIs(t, mapRPC(err), storage.ErrInvalidCID)

	_, err = client.client.Has(context.Background(), wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_MissingCAS(t *testing.T) {
	_, err := (&Server{}).Put(context.Background(), wrapperspb.Bytes([]byte("x")))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{storage.ErrNotFound, codes.NotFound},
		{storage.ErrInvalidCID, codes.InvalidArgument},
		{storage.ErrCIDMismatch, codes.DataLoss},
		{storage.ErrImmutable, codes.AlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			st := mapErr(tc.err)
			assert.Equal(t, tc.code, status.Code(st))
			assert.ErrorIs(t, mapRPC(st), tc.err)
		})
	}

	assert.Equal(t, codes.Internal, status.Code(mapErr(errors.New("disk on fire"))))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(mapErr(context.DeadlineExceeded)))
	assert.Nil(t, mapErr(nil))
	assert.Nil(t, mapRPC(nil))
}
