package grpc

import (
	"errors"
	"sort"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/logger"
	"fleet-booking-backend/internal/service"
)

const errorDomain = "fleet-booking"

// toStatus maps service failures onto gRPC codes. Booking refusals carry an ErrorInfo
// whose reason is the machine-readable reason code; field failures add a BadRequest.
func toStatus(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		code := codes.InvalidArgument
		if verr.Result.OnlyConflicts() {
			code = codes.Aborted
		}
		fields := make([]string, 0, len(verr.Result.Fields))
		for field := range verr.Result.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		br := &errdetails.BadRequest{}
		for _, field := range fields {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       field,
				Description: string(verr.Result.Fields[field]),
			})
		}
		info := &errdetails.ErrorInfo{
			Reason:   "validation_failed",
			Domain:   errorDomain,
			Metadata: conflictMetadata(verr.Result.Conflicts),
		}
		st := status.New(code, err.Error())
		if withDetails, derr := st.WithDetails(br, info); derr == nil {
			return withDetails.Err()
		}
		return st.Err()
	}

	var terr *service.TransitionError
	if errors.As(err, &terr) {
		code := codes.InvalidArgument
		switch {
		case terr.Result.Reason.IsCallerError():
			code = codes.FailedPrecondition
		case terr.Result.Reason == booking.ReasonConflict:
			code = codes.Aborted
		}
		md := conflictMetadata(terr.Conflicts)
		if len(terr.Unanswered) > 0 {
			ids := make([]string, 0, len(terr.Unanswered))
			for _, id := range terr.Unanswered {
				ids = append(ids, string(id))
			}
			md["unanswered"] = strings.Join(ids, ",")
		}
		info := &errdetails.ErrorInfo{Reason: string(terr.Result.Reason), Domain: errorDomain, Metadata: md}
		st := status.New(code, err.Error())
		if withDetails, derr := st.WithDetails(info); derr == nil {
			return withDetails.Err()
		}
		return st.Err()
	}

	switch {
	case errors.Is(err, domain.ErrReservationNotFound), errors.Is(err, domain.ErrAssetNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrReservationNotEditable):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	logger.Error("gRPC request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func conflictMetadata(conflicts []booking.Conflict) map[string]string {
	md := make(map[string]string)
	if len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.ReservationID)
		}
		md["conflicts"] = strings.Join(ids, ",")
	}
	return md
}
