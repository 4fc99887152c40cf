package grpc

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fleet-booking-backend/internal/api/grpc/interceptor"
	"fleet-booking-backend/internal/booking"
	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/service"
	"fleet-booking-backend/internal/utils"
)

// ReservationServer is the reservation API served over gRPC with the JSON codec.
type ReservationServer interface {
	CreateReservation(context.Context, *CreateReservationRequest) (*ReservationResponse, error)
	UpdateReservation(context.Context, *UpdateReservationRequest) (*ReservationResponse, error)
	GetReservation(context.Context, *GetReservationRequest) (*ReservationResponse, error)
	ListAssetReservations(context.Context, *ListAssetReservationsRequest) (*ListReservationsResponse, error)
	CheckConflicts(context.Context, *CheckConflictsRequest) (*CheckConflictsResponse, error)
	AcceptReservation(context.Context, *AcceptReservationRequest) (*ReservationResponse, error)
	DeclineReservation(context.Context, *DeclineReservationRequest) (*ReservationResponse, error)
	CompleteReservation(context.Context, *CompleteReservationRequest) (*ReservationResponse, error)
}

// ReservationServiceDesc describes ReservationServer for grpc.Server.RegisterService.
// Method names are the keys of config.EndpointSecurityConfig.
var ReservationServiceDesc = grpc.ServiceDesc{
	ServiceName: ReservationServiceName,
	HandlerType: (*ReservationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateReservation", Handler: unaryHandler("CreateReservation", ReservationServer.CreateReservation)},
		{MethodName: "UpdateReservation", Handler: unaryHandler("UpdateReservation", ReservationServer.UpdateReservation)},
		{MethodName: "GetReservation", Handler: unaryHandler("GetReservation", ReservationServer.GetReservation)},
		{MethodName: "ListAssetReservations", Handler: unaryHandler("ListAssetReservations", ReservationServer.ListAssetReservations)},
		{MethodName: "CheckConflicts", Handler: unaryHandler("CheckConflicts", ReservationServer.CheckConflicts)},
		{MethodName: "AcceptReservation", Handler: unaryHandler("AcceptReservation", ReservationServer.AcceptReservation)},
		{MethodName: "DeclineReservation", Handler: unaryHandler("DeclineReservation", ReservationServer.DeclineReservation)},
		{MethodName: "CompleteReservation", Handler: unaryHandler("CompleteReservation", ReservationServer.CompleteReservation)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fleet/booking/v1/reservation.json",
}

func RegisterReservationServer(s grpc.ServiceRegistrar, srv ReservationServer) {
	s.RegisterService(&ReservationServiceDesc, srv)
}

// FullMethod returns the gRPC method path of a ReservationService method.
func FullMethod(method string) string {
	return "/" + ReservationServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(ReservationServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, chain grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, chain grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if chain == nil {
			return call(srv.(ReservationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReservationServer), ctx, req.(*Req))
		}
		return chain(ctx, in, info, handler)
	}
}

type ReservationHandler struct {
	reservationSvc service.ReservationService
	validate       *validator.Validate
}

func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ReservationHandler{reservationSvc: reservationSvc, validate: v}
}

func (h *ReservationHandler) CreateReservation(ctx context.Context, req *CreateReservationRequest) (*ReservationResponse, error) {
	actorID, err := h.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := h.reservationSvc.CreateReservation(ctx, actorID, req.Record)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

func (h *ReservationHandler) UpdateReservation(ctx context.Context, req *UpdateReservationRequest) (*ReservationResponse, error) {
	actorID, err := h.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := h.reservationSvc.UpdateReservation(ctx, actorID, req.ID, req.Record)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

func (h *ReservationHandler) GetReservation(ctx context.Context, req *GetReservationRequest) (*ReservationResponse, error) {
	if _, err := h.begin(ctx, req); err != nil {
		return nil, err
	}
	res, err := h.reservationSvc.GetReservation(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

func (h *ReservationHandler) ListAssetReservations(ctx context.Context, req *ListAssetReservationsRequest) (*ListReservationsResponse, error) {
	if _, err := h.begin(ctx, req); err != nil {
		return nil, err
	}
	st, _ := domain.ParseReservationStatus(req.Status)
	list, err := h.reservationSvc.ListAssetReservations(ctx, req.AssetID, st)
	if err != nil {
		return nil, toStatus(err)
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	return &ListReservationsResponse{Reservations: list}, nil
}

func (h *ReservationHandler) CheckConflicts(ctx context.Context, req *CheckConflictsRequest) (*CheckConflictsResponse, error) {
	if _, err := h.begin(ctx, req); err != nil {
		return nil, err
	}
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)
	conflicts, err := h.reservationSvc.CheckConflicts(ctx, booking.Proposal{
		ReservationID: strings.TrimSpace(req.ReservationID),
		AssetID:       strings.TrimSpace(req.AssetID),
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	if conflicts == nil {
		conflicts = []booking.Conflict{}
	}
	return &CheckConflictsResponse{Conflicts: conflicts}, nil
}

func (h *ReservationHandler) AcceptReservation(ctx context.Context, req *AcceptReservationRequest) (*ReservationResponse, error) {
	actorID, err := h.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	report := req.PrecheckReport
	if report != nil {
		for i, item := range report.Items {
			report.Items[i].ID = domain.ChecklistItemID(strings.ToUpper(strings.TrimSpace(string(item.ID))))
		}
	}
	res, err := h.reservationSvc.AcceptReservation(ctx, actorID, req.ID, report)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

func (h *ReservationHandler) DeclineReservation(ctx context.Context, req *DeclineReservationRequest) (*ReservationResponse, error) {
	actorID, err := h.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := h.reservationSvc.DeclineReservation(ctx, actorID, req.ID, req.Reason)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

func (h *ReservationHandler) CompleteReservation(ctx context.Context, req *CompleteReservationRequest) (*ReservationResponse, error) {
	actorID, err := h.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := h.reservationSvc.CompleteReservation(ctx, actorID, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ReservationResponse{Reservation: res}, nil
}

// begin resolves the caller injected by the auth interceptor and validates req.
func (h *ReservationHandler) begin(ctx context.Context, req any) (string, error) {
	actorID, err := interceptor.UserIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	if err := h.validate.Struct(req); err != nil {
		return "", invalidArgument(err)
	}
	return actorID, nil
}

func invalidArgument(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	br := &errdetails.BadRequest{}
	for _, fe := range verrs {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fe.Field(),
			Description: fe.Tag(),
		})
	}
	st := status.New(codes.InvalidArgument, "invalid request")
	if detailed, derr := st.WithDetails(br); derr == nil {
		return detailed.Err()
	}
	return st.Err()
}
