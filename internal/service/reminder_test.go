package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/metrics"
	"fleet-booking-backend/internal/utils"
)

func TestReminderService_SendCompletionReminders(t *testing.T) {
	ctx := context.Background()
	requester := &domain.User{ID: "u-1", Name: "Sam Ortiz", Email: "sam@example.com", Role: domain.UserRoleInspector}

	newReminder := func(repo *MockReservationRepo, assets *MockAssetRepo, users *MockUserRepo, email *MockEmailService) *reminderService {
		loc := time.FixedZone("UTC-5", -5*60*60)
		svc := NewReminderService(repo, assets, users, email, metrics.NewBookingMetricsWithRegisterer(prometheus.NewRegistry()), loc).(*reminderService)
		// 02:00 UTC on the 21st is still the 20th five hours west.
		svc.now = func() time.Time { return time.Date(2025, 3, 21, 2, 0, 0, 0, time.UTC) }
		return svc
	}

	t.Run("Reminds each requester", func(t *testing.T) {
		repo, assets, users, email := new(MockReservationRepo), new(MockAssetRepo), new(MockUserRepo), new(MockEmailService)
		elapsed := []domain.Reservation{
			*stored("r-1", "V1", domain.AssetTypeVehicle, "2025-03-10", "2025-03-15", domain.ReservationStatusAccepted),
			*stored("r-2", "T1", domain.AssetTypeTool, "2025-03-01", "2025-03-02", domain.ReservationStatusAccepted),
		}
		repo.On("ListElapsedAccepted", mock.Anything, utils.MustParseDate("2025-03-20")).Return(elapsed, nil)
		users.On("GetByID", mock.Anything, "u-1").Return(requester, nil)
		assets.On("GetByID", mock.Anything, "V1").Return(vehicle, nil)
		assets.On("GetByID", mock.Anything, "T1").Return(nil, domain.ErrAssetNotFound)
		email.On("SendCompletionReminder", mock.Anything, *requester, "Van 12", mock.Anything).Return(nil)
		email.On("SendCompletionReminder", mock.Anything, *requester, "T1", mock.Anything).Return(errors.New("rate limited"))

		sent, err := newReminder(repo, assets, users, email).SendCompletionReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		email.AssertNumberOfCalls(t, "SendCompletionReminder", 2)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Query failure", func(t *testing.T) {
		repo := new(MockReservationRepo)
		repo.On("ListElapsedAccepted", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		sent, err := newReminder(repo, new(MockAssetRepo), new(MockUserRepo), new(MockEmailService)).SendCompletionReminders(ctx)
		assert.Error(t, err)
		assert.Zero(t, sent)
	})
}
