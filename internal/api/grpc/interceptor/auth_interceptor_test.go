package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/security"
)

func newInterceptor(t *testing.T) (*AuthInterceptor, security.TokenManager) {
	t.Helper()
	tm := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	return NewAuthInterceptor(tm), tm
}

func call(ctx context.Context, i *AuthInterceptor, method string) (context.Context, error) {
	var seen context.Context
	_, err := i.Unary()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: method}, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = ctx
		return "ok", nil
	})
	return seen, err
}

func withToken(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func TestAuthInterceptor_PublicMethod(t *testing.T) {
	i, _ := newInterceptor(t)
	_, err := call(context.Background(), i, "/grpc.health.v1.Health/Check")
	assert.NoError(t, err)
}

func TestAuthInterceptor_MissingToken(t *testing.T) {
	i, _ := newInterceptor(t)

	_, err := call(context.Background(), i, "/fleet.booking.v1.ReservationService/GetReservation")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call(metadata.NewIncomingContext(context.Background(), metadata.MD{}), i, "/fleet.booking.v1.ReservationService/GetReservation")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptor_InjectsIdentity(t *testing.T) {
	i, tm := newInterceptor(t)
	token, err := tm.GenerateAccessToken("u-42", "", domain.UserRoleManager)
	require.NoError(t, err)

	// A spoofed header is replaced by the token's identity.
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"authorization", "bearer "+token,
		"user-id", "u-spoofed",
	))
	seen, err := call(ctx, i, "/fleet.booking.v1.ReservationService/GetReservation")
	require.NoError(t, err)

	userID, err := UserIDFromContext(seen)
	require.NoError(t, err)
	assert.Equal(t, "u-42", userID)
	md, _ := metadata.FromIncomingContext(seen)
	assert.Equal(t, []string{"MANAGER"}, md.Get("user-role"))
}

func TestAuthInterceptor_ResolverLevel(t *testing.T) {
	i, tm := newInterceptor(t)
	inspector, err := tm.GenerateAccessToken("u-1", "", domain.UserRoleInspector)
	require.NoError(t, err)
	admin, err := tm.GenerateAccessToken("u-2", "", domain.UserRoleAdmin)
	require.NoError(t, err)

	_, err = call(withToken(inspector), i, "reservation.accept")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = call(withToken(admin), i, "reservation.accept")
	assert.NoError(t, err)
}

func TestAuthInterceptor_InvalidToken(t *testing.T) {
	i, _ := newInterceptor(t)
	_, err := call(withToken("garbage"), i, "/fleet.booking.v1.ReservationService/GetReservation")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUserIDFromContext_Missing(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
