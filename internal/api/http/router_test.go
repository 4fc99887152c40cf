package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/security"
	"fleet-booking-backend/internal/service"
	"fleet-booking-backend/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	svc    *MockReservationService
	router http.Handler
	tokens security.TokenManager
}

func newFixture(t *testing.T, health HealthChecker) *fixture {
	t.Helper()
	svc := new(MockReservationService)
	tokens := security.NewTokenManager(testSecret, time.Hour)
	router := NewRouter(RouterConfig{
		Reservations: svc,
		TokenManager: tokens,
		Health:       health,
		Gatherer:     prometheus.NewRegistry(),
	})
	t.Cleanup(func() { svc.AssertExpectations(t) })
	return &fixture{svc: svc, router: router, tokens: tokens}
}

func (f *fixture) token(t *testing.T, userID string, role domain.UserRole) string {
	t.Helper()
	tok, err := f.tokens.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func pendingReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:              "r-1",
		AssetID:         "V1",
		AssetType:       domain.AssetTypeVehicle,
		RequestedByID:   "u-req",
		AssignedToID:    "u-driver",
		StartDate:       utils.MustParseDate("2025-03-10"),
		EndDate:         utils.MustParseDate("2025-03-15"),
		ReservationType: domain.ReservationTypeNormal,
		Purpose:         "Site visit",
		Status:          domain.ReservationStatusPending,
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		f := newFixture(t, stubHealth{})
		rec, body := f.do(t, "GET", "/healthz", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("Database down", func(t *testing.T) {
		f := newFixture(t, stubHealth{err: errDatabaseDown})
		rec, body := f.do(t, "GET", "/healthz", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unavailable", body["status"])
	})

	t.Run("Metrics are public", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "GET", "/metrics", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("Missing token", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, body := f.do(t, "GET", "/api/v1/reservations/r-1", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, body["error"], "not provided")
	})

	t.Run("Invalid token", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "GET", "/api/v1/reservations/r-1", "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Inspector cannot resolve", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "POST", "/api/v1/reservations/r-1/complete", f.token(t, "u-insp", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Policy lookup is public", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "GET", "/api/v1/reservation-policies/end-date?type=NORMAL&start=2025-03-10", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCreateReservation(t *testing.T) {
	body := `{"vehicleId":"V1","startDate":"2025-03-10","endDate":"2025-03-15","assignedToId":"u-driver","purpose":"Site visit"}`

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("CreateReservation", mock.Anything, "u-req", mock.MatchedBy(func(raw map[string]any) bool {
			return raw["vehicleId"] == "V1" && raw["startDate"] == "2025-03-10"
		})).Return(pendingReservation(), nil)

		rec, resp := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), body)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "r-1", resp["id"])
		assert.Equal(t, "PENDING", resp["status"])
		assert.Equal(t, "2025-03-15", resp["end_date"])
	})

	t.Run("Field errors are 422", func(t *testing.T) {
		f := newFixture(t, nil)
		verr := &service.ValidationError{Result: booking.ValidationResult{Fields: map[string]booking.ReasonCode{
			booking.FieldStartDate: booking.ReasonStartInPast,
			booking.FieldPurpose:   booking.ReasonRequired,
		}}}
		f.svc.On("CreateReservation", mock.Anything, "u-req", mock.Anything).Return(nil, verr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "validation_failed", resp["error"])
		fields := resp["fields"].(map[string]any)
		assert.Equal(t, "start_in_past", fields[booking.FieldStartDate])
		assert.Equal(t, "required", fields[booking.FieldPurpose])
	})

	t.Run("Conflicts only are 409", func(t *testing.T) {
		f := newFixture(t, nil)
		verr := &service.ValidationError{Result: booking.ValidationResult{
			Fields:    map[string]booking.ReasonCode{booking.FieldInterval: booking.ReasonConflict},
			Conflicts: []booking.Conflict{{
				ReservationID:  "r-other",
				AssignedToName: "Dana",
				Start:          utils.MustParseDate("2025-03-15"),
				End:            utils.MustParseDate("2025-03-20"),
			}},
		}}
		f.svc.On("CreateReservation", mock.Anything, "u-req", mock.Anything).Return(nil, verr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), body)
		assert.Equal(t, http.StatusConflict, rec.Code)
		conflicts := resp["conflicts"].([]any)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "Dana", conflicts[0].(map[string]any)["assigned_to_name"])
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), `{"vehicleId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Empty body", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, _ := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unexpected failure is 500", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("CreateReservation", mock.Anything, "u-req", mock.Anything).Return(nil, errors.New("connection reset"))

		rec, resp := f.do(t, "POST", "/api/v1/reservations", f.token(t, "u-req", domain.UserRoleInspector), body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", resp["error"])
	})
}

func TestUpdateReservation(t *testing.T) {
	t.Run("Not editable", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("UpdateReservation", mock.Anything, "u-req", "r-1", mock.Anything).
			Return(nil, domain.ErrReservationNotEditable)

		rec, _ := f.do(t, "PUT", "/api/v1/reservations/r-1", f.token(t, "u-req", domain.UserRoleInspector), `{"purpose":"x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Someone else's reservation", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("UpdateReservation", mock.Anything, "u-other", "r-1", mock.Anything).
			Return(nil, domain.ErrUnauthorized)

		rec, _ := f.do(t, "PUT", "/api/v1/reservations/r-1", f.token(t, "u-other", domain.UserRoleInspector), `{"purpose":"x"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetAndListReservations(t *testing.T) {
	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("GetReservation", mock.Anything, "missing").Return(nil, domain.ErrReservationNotFound)

		rec, _ := f.do(t, "GET", "/api/v1/reservations/missing", f.token(t, "u-req", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("List with status filter", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("ListAssetReservations", mock.Anything, "V1", domain.ReservationStatusPending).
			Return([]domain.Reservation{*pendingReservation()}, nil)

		rec, _ := f.do(t, "GET", "/api/v1/assets/V1/reservations?status=pending", f.token(t, "u-req", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var list []domain.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "r-1", list[0].ID)
	})

	t.Run("Empty list is an array", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("ListAssetReservations", mock.Anything, "V2", domain.ReservationStatus("")).Return(nil, nil)

		rec, _ := f.do(t, "GET", "/api/v1/assets/V2/reservations", f.token(t, "u-req", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, resp := f.do(t, "GET", "/api/v1/assets/V1/reservations?status=LOST", f.token(t, "u-req", domain.UserRoleInspector), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "reservation_status", resp["invalid"].(map[string]any)["status"])
	})
}

func TestCheckConflicts(t *testing.T) {
	t.Run("Returns conflicts", func(t *testing.T) {
		f := newFixture(t, nil)
		want := booking.Proposal{
			AssetID:   "V1",
			StartDate: utils.MustParseDate("2025-03-15"),
			EndDate:   utils.MustParseDate("2025-03-20"),
		}
		f.svc.On("CheckConflicts", mock.Anything, want).Return([]booking.Conflict{{
			ReservationID: "r-1",
			Start:         utils.MustParseDate("2025-03-10"),
			End:           utils.MustParseDate("2025-03-15"),
		}}, nil)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/conflicts", f.token(t, "u-req", domain.UserRoleInspector),
			`{"asset_id":"V1","start_date":"2025-03-15","end_date":"2025-03-20"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, resp["conflicts"], 1)
	})

	t.Run("No conflicts is an empty array", func(t *testing.T) {
		f := newFixture(t, nil)
		f.svc.On("CheckConflicts", mock.Anything, mock.Anything).Return(nil, nil)

		rec, _ := f.do(t, "POST", "/api/v1/reservations/conflicts", f.token(t, "u-req", domain.UserRoleInspector),
			`{"asset_id":"V1","start_date":"2025-03-16","end_date":"2025-03-20"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"conflicts":[]}`, rec.Body.String())
	})

	t.Run("Invalid date", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, resp := f.do(t, "POST", "/api/v1/reservations/conflicts", f.token(t, "u-req", domain.UserRoleInspector),
			`{"asset_id":"V1","start_date":"2025-02-30","end_date":"2025-03-20"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "date_ymd", resp["invalid"].(map[string]any)["start_date"])
	})
}

func TestAcceptReservation(t *testing.T) {
	t.Run("Passes the precheck report", func(t *testing.T) {
		f := newFixture(t, nil)
		accepted := pendingReservation()
		accepted.Status = domain.ReservationStatusAccepted
		f.svc.On("AcceptReservation", mock.Anything, "u-mgr", "r-1", mock.MatchedBy(func(rep *domain.PrecheckReport) bool {
			return rep != nil && len(rep.Items) == 1 &&
				rep.Items[0].ID == domain.ChecklistLighting && *rep.Items[0].Passed &&
				rep.FreeTextReport == "left mirror scratched"
		})).Return(accepted, nil)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-mgr", domain.UserRoleManager),
			`{"items":[{"id":"lighting","passed":true}],"free_text_report":" left mirror scratched "}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ACCEPTED", resp["status"])
	})

	t.Run("Empty body means no report", func(t *testing.T) {
		f := newFixture(t, nil)
		accepted := pendingReservation()
		accepted.Status = domain.ReservationStatusAccepted
		f.svc.On("AcceptReservation", mock.Anything, "u-admin", "r-1", (*domain.PrecheckReport)(nil)).Return(accepted, nil)

		rec, _ := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-admin", domain.UserRoleAdmin), "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Precheck incomplete is 422 with unanswered items", func(t *testing.T) {
		f := newFixture(t, nil)
		terr := &service.TransitionError{
			ReservationID: "r-1",
			From:          domain.ReservationStatusPending,
			To:            domain.ReservationStatusAccepted,
			Result:        booking.TransitionResult{Reason: booking.ReasonPrecheckIncomplete},
			Unanswered:    []domain.ChecklistItemID{domain.ChecklistTireCondition},
		}
		f.svc.On("AcceptReservation", mock.Anything, "u-mgr", "r-1", mock.Anything).Return(nil, terr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-mgr", domain.UserRoleManager),
			`{"items":[{"id":"BODY_CONDITION","passed":false}]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, false, resp["allowed"])
		assert.Equal(t, "precheck_incomplete", resp["reason"])
		assert.Equal(t, []any{"TIRE_CONDITION"}, resp["unanswered"])
	})

	t.Run("Illegal transition is 409", func(t *testing.T) {
		f := newFixture(t, nil)
		terr := &service.TransitionError{
			ReservationID: "r-1",
			From:          domain.ReservationStatusCompleted,
			To:            domain.ReservationStatusAccepted,
			Result:        booking.TransitionResult{Reason: booking.ReasonIllegalTransition},
		}
		f.svc.On("AcceptReservation", mock.Anything, "u-mgr", "r-1", mock.Anything).Return(nil, terr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-mgr", domain.UserRoleManager), "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, false, resp["allowed"])
		assert.Equal(t, "illegal_transition", resp["reason"])
	})

	t.Run("Conflict is 409", func(t *testing.T) {
		f := newFixture(t, nil)
		terr := &service.TransitionError{
			ReservationID: "r-1",
			Result:        booking.TransitionResult{Reason: booking.ReasonConflict},
			Conflicts:     []booking.Conflict{{ReservationID: "r-2"}},
		}
		f.svc.On("AcceptReservation", mock.Anything, "u-mgr", "r-1", mock.Anything).Return(nil, terr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-mgr", domain.UserRoleManager), "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Len(t, resp["conflicts"], 1)
	})

	t.Run("Unknown checklist item", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/accept", f.token(t, "u-mgr", domain.UserRoleManager),
			`{"items":[{"id":"RADIO","passed":true}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "checklist_item", resp["invalid"].(map[string]any)["items[0].id"])
	})
}

func TestDeclineAndComplete(t *testing.T) {
	t.Run("Decline with reason", func(t *testing.T) {
		f := newFixture(t, nil)
		declined := pendingReservation()
		declined.Status = domain.ReservationStatusDeclined
		declined.DeclineReason = "vehicle in service"
		f.svc.On("DeclineReservation", mock.Anything, "u-mgr", "r-1", "vehicle in service").Return(declined, nil)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/decline", f.token(t, "u-mgr", domain.UserRoleManager),
			`{"reason":"vehicle in service"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "DECLINED", resp["status"])
	})

	t.Run("Decline without reason is 422", func(t *testing.T) {
		f := newFixture(t, nil)
		terr := &service.TransitionError{
			ReservationID: "r-1",
			Result:        booking.TransitionResult{Reason: booking.ReasonDeclineReasonRequired},
		}
		f.svc.On("DeclineReservation", mock.Anything, "u-mgr", "r-1", "").Return(nil, terr)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/decline", f.token(t, "u-mgr", domain.UserRoleManager), "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "decline_reason_required", resp["reason"])
	})

	t.Run("Complete", func(t *testing.T) {
		f := newFixture(t, nil)
		completed := pendingReservation()
		completed.Status = domain.ReservationStatusCompleted
		f.svc.On("CompleteReservation", mock.Anything, "u-mgr", "r-1").Return(completed, nil)

		rec, resp := f.do(t, "POST", "/api/v1/reservations/r-1/complete", f.token(t, "u-mgr", domain.UserRoleManager), "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "COMPLETED", resp["status"])
	})
}

func TestResolveEndDate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantEnd    any
		wantLocked bool
	}{
		{"annual leap day", "type=ANNUAL&start=2024-02-29", "2025-02-28", true},
		{"seasonal clip", "type=seasonal&start=2024-01-31", "2024-04-30", true},
		{"normal is manual", "type=NORMAL&start=2025-03-10", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec, resp := f.do(t, "GET", "/api/v1/reservation-policies/end-date?"+tt.query, "", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantEnd, resp["end_date"])
			assert.Equal(t, tt.wantLocked, resp["end_date_locked"])
		})
	}

	t.Run("Unknown type", func(t *testing.T) {
		f := newFixture(t, nil)
		rec, resp := f.do(t, "GET", "/api/v1/reservation-policies/end-date?type=WEEKLY&start=2025-03-10", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "reservation_type", resp["invalid"].(map[string]any)["type"])
	})
}

func TestVehicleChecklist(t *testing.T) {
	f := newFixture(t, nil)
	rec, resp := f.do(t, "GET", "/api/v1/reservation-policies/vehicle-checklist", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	items := resp["items"].([]any)
	require.Len(t, items, len(domain.VehicleChecklist))
	first := items[0].(map[string]any)
	assert.Equal(t, string(domain.ChecklistBodyCondition), first["id"])
	assert.Nil(t, first["passed"])
}
