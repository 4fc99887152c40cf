package booking

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

// Key priority lists. The first non-null value wins.
var (
	reservationIDKeys = []string{"id", "_id", "reservationId", "reservation_id"}
	assetIDKeys       = []string{"assetId", "asset.id", "material.id", "asset_id", "material_id"}
	assetTypeKeys     = []string{"assetType", "asset.type", "material.type", "asset_type", "material_type"}
	startDateKeys     = []string{"startDate", "start_date", "start_at", "start"}
	endDateKeys       = []string{"endDate", "end_date", "end_at", "end"}
	startTimeKeys     = []string{"startTime", "start_time"}
	endTimeKeys       = []string{"endTime", "end_time"}
	requestedByKeys   = []string{"requestedById", "requestedBy.id", "requested_by_id", "requested_by"}
	assignedToKeys    = []string{"assignedToId", "assignedTo.id", "assigned_to_id", "user.id", "user_id"}
	assigneeNameKeys  = []string{"assignedTo.name", "assignedToName", "assigned_to_name", "user.name"}
	reservationTypes  = []string{"reservationType", "reservation_type"}
	statusKeys        = []string{"status", "reservationStatus", "reservation_status"}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeReservation maps a loosely keyed reservation record onto domain.Reservation.
// Values that cannot be read are left at their zero value; nothing here fails.
func NormalizeReservation(raw map[string]any) domain.Reservation {
	r := domain.Reservation{
		ID:             firstString(raw, reservationIDKeys...),
		AssetID:        firstString(raw, assetIDKeys...),
		RequestedByID:  firstString(raw, requestedByKeys...),
		AssignedToID:   firstString(raw, assignedToKeys...),
		AssignedToName: assigneeName(raw),
		Purpose:        strings.TrimSpace(firstString(raw, "purpose")),
		Notes:          firstString(raw, "notes"),
		DeclineReason:  firstString(raw, "declineReason", "decline_reason"),
	}

	r.AssetType, _ = domain.ParseAssetType(firstString(raw, assetTypeKeys...))
	r.ReservationType, _ = domain.ParseReservationType(firstString(raw, reservationTypes...))
	r.Status, _ = domain.ParseReservationStatus(firstString(raw, statusKeys...))

	var startClock, endClock string
	r.StartDate, startClock = firstDate(raw, startDateKeys...)
	r.EndDate, endClock = firstDate(raw, endDateKeys...)
	r.StartTime = firstClock(raw, startTimeKeys, startClock)
	r.EndTime = firstClock(raw, endTimeKeys, endClock)

	if v, ok := firstValue(raw, "precheckReport", "precheck_report"); ok {
		r.PrecheckReport = decodePrecheck(v)
	}
	r.CreatedAt = firstTimestamp(raw, "createdAt", "created_at")
	r.UpdatedAt = firstTimestamp(raw, "updatedAt", "updated_at")

	return r
}

// NormalizeAsset maps a loosely keyed asset record onto domain.Asset.
func NormalizeAsset(raw map[string]any) domain.Asset {
	a := domain.Asset{
		ID:        firstString(raw, "id", "_id", "assetId", "asset_id"),
		Name:      firstString(raw, "name", "title"),
		Condition: domain.AssetCondition(strings.ToUpper(firstString(raw, "condition"))),
	}
	a.Type, _ = domain.ParseAssetType(firstString(raw, "type", "assetType", "asset_type", "category"))

	switch strings.ToUpper(firstString(raw, "reservationStatus", "reservation_status", "availability")) {
	case string(domain.AssetReservationStatusReserved):
		a.ReservationStatus = domain.AssetReservationStatusReserved
	case string(domain.AssetReservationStatusAvailable):
		a.ReservationStatus = domain.AssetReservationStatusAvailable
	}
	return a
}

// NormalizeReservations normalizes a list, dropping nothing: malformed records are
// kept and later skipped by FindConflicts.
func NormalizeReservations(raws []map[string]any) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeReservation(raw))
	}
	return out
}

// lookup resolves a dotted path such as "material.id".
func lookup(raw map[string]any, path string) (any, bool) {
	var cur any = raw
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func firstValue(raw map[string]any, paths ...string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookup(raw, p); ok {
			return v, true
		}
	}
	return nil, false
}

func firstString(raw map[string]any, paths ...string) string {
	for _, p := range paths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if s, ok := stringify(v); ok {
			return s
		}
	}
	return ""
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

func assigneeName(raw map[string]any) string {
	if name := strings.TrimSpace(firstString(raw, assigneeNameKeys...)); name != "" {
		return name
	}
	for _, prefix := range []string{"assignedTo", "user"} {
		first := firstString(raw, prefix+".firstName", prefix+".first_name")
		last := firstString(raw, prefix+".lastName", prefix+".last_name")
		if name := strings.TrimSpace(first + " " + last); name != "" {
			return name
		}
	}
	return ""
}

// firstDate takes the first non-null value among paths and parses it. A value that
// does not parse yields an absent date; later keys are not consulted.
func firstDate(raw map[string]any, paths ...string) (utils.Date, string) {
	v, ok := firstValue(raw, paths...)
	if !ok {
		return utils.Date{}, ""
	}
	return parseDateValue(v)
}

func parseDateValue(v any) (utils.Date, string) {
	switch t := v.(type) {
	case utils.Date:
		if t.Valid() {
			return t, ""
		}
	case time.Time:
		return DateAndClock(t)
	case *time.Time:
		if t != nil {
			return DateAndClock(*t)
		}
	case string:
		s := strings.TrimSpace(t)
		if d, err := utils.ParseDate(s); err == nil {
			return d, ""
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return DateAndClock(ts)
			}
		}
	}
	return utils.Date{}, ""
}

// DateAndClock splits a timestamp into its literal calendar date and HH:MM clock,
// without converting zones. Midnight yields an empty clock.
func DateAndClock(t time.Time) (utils.Date, string) {
	if t.IsZero() {
		return utils.Date{}, ""
	}
	clock := t.Format("15:04")
	if clock == "00:00" {
		clock = ""
	}
	return utils.DateFromTime(t), clock
}

func firstClock(raw map[string]any, keys []string, fallback string) string {
	if s := firstString(raw, keys...); s != "" {
		if clock, ok := parseClock(s); ok {
			return clock
		}
		return ""
	}
	return fallback
}

func parseClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}

func firstTimestamp(raw map[string]any, paths ...string) time.Time {
	v, ok := firstValue(raw, paths...)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t)); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// decodePrecheck accepts either a typed report or its JSON-shaped map form
// ({items: [{id, passed}], freeTextReport}).
func decodePrecheck(v any) *domain.PrecheckReport {
	switch t := v.(type) {
	case *domain.PrecheckReport:
		return t
	case domain.PrecheckReport:
		return &t
	case map[string]any:
		report := &domain.PrecheckReport{
			FreeTextReport: firstString(t, "freeTextReport", "free_text_report"),
			InspectorID:    firstString(t, "inspectorId", "inspector_id"),
		}
		items, _ := t["items"].([]any)
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			item := domain.ChecklistItem{ID: domain.ChecklistItemID(strings.ToUpper(firstString(m, "id")))}
			if passed, ok := m["passed"].(bool); ok {
				item.Passed = &passed
			}
			report.Items = append(report.Items, item)
		}
		return report
	}
	return nil
}
