package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"fleet-booking-backend/internal/security"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error { return p.err }

const testSecret = "0123456789abcdef0123456789abcdef"

// startServer serves NewServer over an in-memory listener and returns a client
// connection to it.
func startServer(t *testing.T, hs *health.Server, svc *MockReservationService) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewServer(security.NewTokenManager(testSecret, time.Hour), hs, NewReservationHandler(svc))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthReporter_CheckOnce(t *testing.T) {
	hs := health.NewServer()
	pinger := &stubPinger{}
	reporter := NewHealthReporter(hs, pinger, time.Minute)
	client := healthpb.NewHealthClient(startServer(t, hs, new(MockReservationService)))
	ctx := context.Background()

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, reporter.CheckOnce(ctx))
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ReservationServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	pinger.err = errors.New("connection refused")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, reporter.CheckOnce(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestHealthReporter_RunStopsOnCancel(t *testing.T) {
	hs := health.NewServer()
	reporter := NewHealthReporter(hs, &stubPinger{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reporter.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}

	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
