package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestProbe(t *testing.T) {
	hs := NewHealth()
	ctx := context.Background()

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := hs.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())

	Probe(ctx, pingFunc(func(context.Context) error { return nil }), hs, zap.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check())

	Probe(ctx, pingFunc(func(context.Context) error { return errors.New("down") }), hs, zap.NewNop())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, toStatus(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, toStatus(plain))

	err := toStatus(errorbank.NotFound("transaction not found"))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "transaction not found", st.Message())
}
