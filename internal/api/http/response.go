package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeInvalidRequest(w http.ResponseWriter, invalid map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Invalid: invalid})
}

// writeServiceError maps service failures onto status codes. Validation failures that
// are only about overlapping bookings, and transitions refused for a stale status or
// for conflicts, are 409; everything else the user can fix is 422.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		status := http.StatusUnprocessableEntity
		if verr.Result.OnlyConflicts() {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{
			Error:     "validation_failed",
			Fields:    verr.Result.Fields,
			Conflicts: verr.Result.Conflicts,
		})
		return
	}

	var terr *service.TransitionError
	if errors.As(err, &terr) {
		allowed := false
		body := errorResponse{
			Error:      terr.Result.Err().Error(),
			Allowed:    &allowed,
			Reason:     terr.Result.Reason,
			Conflicts:  terr.Conflicts,
			Unanswered: terr.Unanswered,
		}
		status := http.StatusUnprocessableEntity
		if terr.Result.Reason.IsCallerError() || terr.Result.Reason == booking.ReasonConflict {
			status = http.StatusConflict
		}
		writeJSON(w, status, body)
		return
	}

	switch {
	case errors.Is(err, domain.ErrReservationNotFound), errors.Is(err, domain.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrReservationNotEditable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
