package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/repository"
	"fleet-booking-backend/internal/utils"
)

type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service cannot modify the fixture.
	r := *args.Get(0).(*domain.Reservation)
	return &r, args.Error(1)
}
func (m *MockReservationRepo) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockReservationRepo) ListByAsset(ctx context.Context, assetID string, status domain.ReservationStatus) ([]domain.Reservation, error) {
	args := m.Called(ctx, assetID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListElapsedAccepted(ctx context.Context, today utils.Date) ([]domain.Reservation, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// fakeLocker runs the callback directly against repo and records the locked assets.
type fakeLocker struct {
	repo   repository.ReservationRepository
	locked []string
}

func (l *fakeLocker) WithAssetLock(ctx context.Context, assetID string, fn func(repository.ReservationRepository) error) error {
	l.locked = append(l.locked, assetID)
	return fn(l.repo)
}

type MockAssetSignaler struct {
	mock.Mock
}

func (m *MockAssetSignaler) SignalAssetEffect(ctx context.Context, r domain.Reservation, effect booking.AssetEffect, actorID string) error {
	args := m.Called(ctx, r, effect, actorID)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReservationAccepted(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	args := m.Called(ctx, to, assetName, r)
	return args.Error(0)
}
func (m *MockEmailService) SendReservationDeclined(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	args := m.Called(ctx, to, assetName, r)
	return args.Error(0)
}
func (m *MockEmailService) SendCompletionReminder(ctx context.Context, to domain.User, assetName string, r domain.Reservation) error {
	args := m.Called(ctx, to, assetName, r)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(topic string, key string, event any) error {
	args := m.Called(topic, key, event)
	return args.Error(0)
}
