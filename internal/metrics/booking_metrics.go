package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics collects counters for reservation checks and transitions.
// A nil *BookingMetrics records nothing.
type BookingMetrics struct {
	conflictChecks     *prometheus.CounterVec
	conflictsFound     prometheus.Counter
	validationFailures *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	reservationDays    *prometheus.HistogramVec
	assetSignals       *prometheus.CounterVec
	remindersSent      prometheus.Counter
}

func NewBookingMetrics() *BookingMetrics {
	return NewBookingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBookingMetricsWithRegisterer registers the collectors on registerer, reusing any
// that are already registered under the same name.
func NewBookingMetricsWithRegisterer(registerer prometheus.Registerer) *BookingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BookingMetrics{
		conflictChecks: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_conflict_checks_total",
			Help: "Total number of interval overlap checks, by caller",
		}, []string{"source"}),
		conflictsFound: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_conflicts_found_total",
			Help: "Total number of conflicting reservations reported by overlap checks",
		}),
		validationFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_validation_failures_total",
			Help: "Total number of rejected reservation fields, by reason code",
		}, []string{"reason"}),
		transitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_transitions_total",
			Help: "Total number of status transition requests, by target status and outcome",
		}, []string{"to", "outcome"}),
		reservationDays: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "fleet_booking_reservation_days",
			Help:    "Length of created reservations in calendar days, ends included",
			Buckets: []float64{1, 2, 3, 5, 7, 14, 31, 92, 183, 366},
		}, []string{"type"}),
		assetSignals: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_asset_signals_total",
			Help: "Total number of asset effect signals, by effect and result",
		}, []string{"effect", "result"}),
		remindersSent: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fleet_booking_completion_reminders_total",
			Help: "Total number of completion reminders sent for elapsed reservations",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordConflictCheck counts one overlap check and the conflicts it reported.
func (m *BookingMetrics) RecordConflictCheck(source string, conflicts int) {
	if m == nil {
		return
	}
	m.conflictChecks.WithLabelValues(source).Inc()
	m.conflictsFound.Add(float64(conflicts))
}

func (m *BookingMetrics) RecordValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(reason).Inc()
}

// RecordTransition counts a transition request. outcome is "allowed" or the reason code.
func (m *BookingMetrics) RecordTransition(to, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, outcome).Inc()
}

func (m *BookingMetrics) RecordReservationDays(reservationType string, days int) {
	if m == nil {
		return
	}
	m.reservationDays.WithLabelValues(reservationType).Observe(float64(days))
}

func (m *BookingMetrics) RecordAssetSignal(effect string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.assetSignals.WithLabelValues(effect, result).Inc()
}

func (m *BookingMetrics) RecordReminderSent() {
	if m == nil {
		return
	}
	m.remindersSent.Inc()
}
