package grpc

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
)

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, actorID string, raw map[string]any) (*domain.Reservation, error) {
	args := m.Called(ctx, actorID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) UpdateReservation(ctx context.Context, actorID, id string, raw map[string]any) (*domain.Reservation, error) {
	args := m.Called(ctx, actorID, id, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) CheckConflicts(ctx context.Context, p booking.Proposal) ([]booking.Conflict, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Conflict), args.Error(1)
}
func (m *MockReservationService) AcceptReservation(ctx context.Context, actorID, id string, report *domain.PrecheckReport) (*domain.Reservation, error) {
	args := m.Called(ctx, actorID, id, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) DeclineReservation(ctx context.Context, actorID, id, reason string) (*domain.Reservation, error) {
	args := m.Called(ctx, actorID, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) CompleteReservation(ctx context.Context, actorID, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, actorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationService) ListAssetReservations(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	args := m.Called(ctx, assetID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
