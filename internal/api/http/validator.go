package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/utils"
)

// RequestValidator checks request DTOs and reports failures keyed by JSON field name.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds the validator with the booking rules registered.
// It panics if a rule cannot be registered, since the server must not start without them.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := registerRules(v); err != nil {
		panic("failed to register request validation rules: " + err.Error())
	}
	return &RequestValidator{validate: v}
}

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("date_ymd", isCalendarDate); err != nil {
		return err
	}
	if err := v.RegisterValidation("reservation_type", isReservationType); err != nil {
		return err
	}
	if err := v.RegisterValidation("reservation_status", isReservationStatus); err != nil {
		return err
	}
	return v.RegisterValidation("checklist_item", isChecklistItem)
}

func isCalendarDate(fl validator.FieldLevel) bool {
	_, err := utils.ParseDate(fl.Field().String())
	return err == nil
}

func isReservationType(fl validator.FieldLevel) bool {
	_, ok := domain.ParseReservationType(fl.Field().String())
	return ok
}

func isReservationStatus(fl validator.FieldLevel) bool {
	_, ok := domain.ParseReservationStatus(fl.Field().String())
	return ok
}

func isChecklistItem(fl validator.FieldLevel) bool {
	id := domain.ChecklistItemID(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	for _, known := range domain.VehicleChecklist {
		if id == known {
			return true
		}
	}
	return false
}

// Validate returns nil when req passes, otherwise the failed rule per field path
// (for example "items[2].id": "checklist_item").
func (rv *RequestValidator) Validate(req any) map[string]string {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return out
}

// fieldPath drops the struct name validator puts in front of every namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
