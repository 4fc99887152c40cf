package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleet-booking-backend/internal/security"
	"fleet-booking-backend/internal/service"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Reservations service.ReservationService
	TokenManager security.TokenManager
	Health       HealthChecker
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer  prometheus.Gatherer
	Validator *RequestValidator
}

// NewRouter wires every route with logging and authentication middleware.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, NewAuthMiddleware(cfg.TokenManager).Middleware)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.HandleFunc("/healthz", healthHandler(cfg.Health)).Methods("GET").Name("health")
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET").Name("metrics")

	RegisterReservationRoutes(router, NewReservationHandler(cfg.Reservations, cfg.Validator))
	return router
}

// RegisterReservationRoutes registers the reservation endpoints. Route names are the
// keys of config.EndpointSecurityConfig.
func RegisterReservationRoutes(router *mux.Router, h *ReservationHandler) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/reservations", h.CreateReservation).Methods("POST").Name("reservation.create")
	api.HandleFunc("/reservations/conflicts", h.CheckConflicts).Methods("POST").Name("reservation.conflicts")
	api.HandleFunc("/reservations/{id}", h.GetReservation).Methods("GET").Name("reservation.get")
	api.HandleFunc("/reservations/{id}", h.UpdateReservation).Methods("PUT").Name("reservation.update")
	api.HandleFunc("/reservations/{id}/accept", h.AcceptReservation).Methods("POST").Name("reservation.accept")
	api.HandleFunc("/reservations/{id}/decline", h.DeclineReservation).Methods("POST").Name("reservation.decline")
	api.HandleFunc("/reservations/{id}/complete", h.CompleteReservation).Methods("POST").Name("reservation.complete")
	api.HandleFunc("/assets/{assetId}/reservations", h.ListAssetReservations).Methods("GET").Name("asset.reservations")
	api.HandleFunc("/reservation-policies/end-date", h.ResolveEndDate).Methods("GET").Name("reservation-policy.end-date")
	api.HandleFunc("/reservation-policies/vehicle-checklist", h.VehicleChecklist).Methods("GET").Name("reservation-policy.vehicle-checklist")
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
