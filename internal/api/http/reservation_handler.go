package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/service"
	"fleet-booking-backend/internal/utils"
)

const maxBodyBytes = 1 << 20

// ReservationHandler serves the reservation JSON API
type ReservationHandler struct {
	svc       service.ReservationService
	validator *RequestValidator
}

func NewReservationHandler(svc service.ReservationService, v *RequestValidator) *ReservationHandler {
	if v == nil {
		v = NewRequestValidator()
	}
	return &ReservationHandler{svc: svc, validator: v}
}

// CreateReservation accepts a loosely keyed record; the service normalizes it.
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	res, err := h.svc.CreateReservation(r.Context(), actorID(r), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	res, err := h.svc.UpdateReservation(r.Context(), actorID(r), mux.Vars(r)["id"], raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) ListAssetReservations(w http.ResponseWriter, r *http.Request) {
	q := listQuery{Status: r.URL.Query().Get("status")}
	if invalid := h.validator.Validate(q); invalid != nil {
		writeInvalidRequest(w, invalid)
		return
	}
	status, _ := domain.ParseReservationStatus(q.Status)

	list, err := h.svc.ListAssetReservations(r.Context(), mux.Vars(r)["assetId"], status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// CheckConflicts is the advisory pre-submit check. It never blocks anything itself.
func (h *ReservationHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req conflictCheckRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if invalid := h.validator.Validate(req); invalid != nil {
		writeInvalidRequest(w, invalid)
		return
	}

	conflicts, err := h.svc.CheckConflicts(r.Context(), req.proposal())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if conflicts == nil {
		conflicts = []booking.Conflict{}
	}
	writeJSON(w, http.StatusOK, conflictCheckResponse{Conflicts: conflicts})
}

func (h *ReservationHandler) AcceptReservation(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if invalid := h.validator.Validate(req); invalid != nil {
		writeInvalidRequest(w, invalid)
		return
	}

	res, err := h.svc.AcceptReservation(r.Context(), actorID(r), mux.Vars(r)["id"], req.report())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) DeclineReservation(w http.ResponseWriter, r *http.Request) {
	var req declineRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if invalid := h.validator.Validate(req); invalid != nil {
		writeInvalidRequest(w, invalid)
		return
	}

	res, err := h.svc.DeclineReservation(r.Context(), actorID(r), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CompleteReservation(r.Context(), actorID(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResolveEndDate lets a form show the mandated end date as soon as a type and start are picked.
func (h *ReservationHandler) ResolveEndDate(w http.ResponseWriter, r *http.Request) {
	q := endDateQuery{
		Type:  r.URL.Query().Get("type"),
		Start: r.URL.Query().Get("start"),
	}
	if invalid := h.validator.Validate(q); invalid != nil {
		writeInvalidRequest(w, invalid)
		return
	}

	rt, _ := domain.ParseReservationType(q.Type)
	start, _ := utils.ParseDate(q.Start)
	end, _ := booking.ResolveEndDate(rt, start)

	writeJSON(w, http.StatusOK, endDateResponse{
		ReservationType: rt,
		StartDate:       start,
		EndDate:         end,
		EndDateLocked:   booking.EndDateLocked(rt),
	})
}

// VehicleChecklist returns the precheck template: every item in order, unanswered.
func (h *ReservationHandler) VehicleChecklist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, checklistResponse{Items: booking.NewChecklist()})
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var raw map[string]any
	if !decodeJSON(w, r, &raw, false) {
		return nil, false
	}
	if raw == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return raw, true
}

// decodeJSON writes a 400 and returns false on malformed input. With allowEmpty an
// absent body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return true
			}
			writeError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, "malformed JSON: "+strings.TrimPrefix(err.Error(), "json: "))
		return false
	}
	return true
}
