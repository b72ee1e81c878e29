package grpcapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/service"
)

// Server реализует OperationsServer поверх движка.
type Server struct {
	engine         *service.Engine
	log            *logrus.Logger
	reminderWindow time.Duration
}

func NewServer(engine *service.Engine, log *logrus.Logger, reminderWindow time.Duration) *Server {
	return &Server{engine: engine, log: log, reminderWindow: reminderWindow}
}

func (s *Server) RunOverdueSweep(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	n, err := s.engine.Sweeper.RunOverdueSweep(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(map[string]any{"updatedCount": n})
}

// SendPaymentReminders: windowHours в запросе переопределяет окно из конфига.
func (s *Server) SendPaymentReminders(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	window := s.reminderWindow
	if v, ok := in.GetFields()["windowHours"]; ok {
		hours := v.GetNumberValue()
		if hours <= 0 {
			return nil, status.Error(codes.InvalidArgument, "windowHours must be positive")
		}
		window = time.Duration(hours * float64(time.Hour))
	}
	n, err := s.engine.Sweeper.SendPaymentReminders(ctx, window)
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(map[string]any{"sentCount": n})
}

func (s *Server) SettlePayout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "payoutId")
	if err != nil {
		return nil, err
	}
	p, err := s.engine.Payouts.SettlePayout(ctx, id, stringField(in, "settlementRef"))
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(payoutFields(p))
}

func (s *Server) FailPayout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "payoutId")
	if err != nil {
		return nil, err
	}
	p, err := s.engine.Payouts.FailPayout(ctx, id, stringField(in, "reason"))
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(payoutFields(p))
}

func (s *Server) RetryPayout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "payoutId")
	if err != nil {
		return nil, err
	}
	p, err := s.engine.Payouts.RetryPayout(ctx, id)
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(payoutFields(p))
}

func (s *Server) ListBookingPayouts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "bookingId")
	if err != nil {
		return nil, err
	}
	payouts, err := s.engine.Payouts.ListBookingPayouts(ctx, id)
	if err != nil {
		return nil, ToStatus(err)
	}
	items := make([]any, 0, len(payouts))
	for i := range payouts {
		items = append(items, payoutFields(&payouts[i]))
	}
	return newStruct(map[string]any{"items": items})
}

func (s *Server) ConfirmRefund(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "bookingId")
	if err != nil {
		return nil, err
	}
	b, err := s.engine.Payments.ConfirmRefund(ctx, id)
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(map[string]any{
		"bookingId":     b.ID.String(),
		"status":        string(b.Status),
		"paymentStatus": string(b.PaymentStatus),
		"refundAmount":  b.RefundAmount,
	})
}

func (s *Server) HostWallet(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := uuidField(in, "hostId")
	if err != nil {
		return nil, err
	}
	w, err := s.engine.Payouts.HostWallet(ctx, id)
	if err != nil {
		return nil, ToStatus(err)
	}
	return newStruct(map[string]any{
		"hostId":        w.HostID.String(),
		"totalEarnings": w.TotalEarnings,
		"received":      w.Received,
		"pending":       w.Pending,
		"upcoming":      w.Upcoming,
		"failed":        w.Failed,
	})
}

// LoggingInterceptor пишет метод, код ответа и длительность каждого вызова.
func LoggingInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		entry := log.WithContext(ctx).WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		})
		if err != nil {
			entry.WithError(err).Warn("grpc call failed")
		} else {
			entry.Info("grpc call")
		}
		return resp, err
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func uuidField(in *structpb.Struct, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(stringField(in, name))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s must be a uuid", name)
	}
	return id, nil
}

// timestamp: RFC 3339 в UTC, как google.protobuf.Timestamp в JSON.
func timestamp(t time.Time) string {
	return timestamppb.New(t).AsTime().Format(time.RFC3339)
}

func payoutFields(p *model.Payout) map[string]any {
	out := map[string]any{
		"id":            p.ID.String(),
		"bookingId":     p.BookingID.String(),
		"hostId":        p.HostID.String(),
		"installment":   p.Installment,
		"percent":       p.Percent,
		"amount":        p.Amount,
		"scheduledDate": timestamp(p.ScheduledDate),
		"status":        string(p.Status),
	}
	if p.PaidAt != nil {
		out["paidAt"] = timestamp(*p.PaidAt)
	}
	if p.SettlementRef != nil {
		out["settlementRef"] = *p.SettlementRef
	}
	if p.FailureReason != "" {
		out["failureReason"] = p.FailureReason
	}
	return out
}
