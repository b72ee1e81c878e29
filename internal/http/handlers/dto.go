package handlers

import (
	"time"

	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/service"
)

const dateLayout = "2006-01-02"

type guestDTO struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsLead   bool   `json:"isLead"`
}

type bookingDTO struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	TravelPlanID        string     `json:"travelPlanId"`
	StartDate           string     `json:"startDate"`
	EndDate             string     `json:"endDate"`
	Participants        int        `json:"participants"`
	PricePerPerson      int64      `json:"pricePerPerson"`
	TotalPrice          int64      `json:"totalPrice"`
	AmountPaid          int64      `json:"amountPaid"`
	RemainingAmount     int64      `json:"remainingAmount"`
	MinPaymentAmount    int64      `json:"minPaymentAmount"`
	RefundAmount        int64      `json:"refundAmount"`
	PaymentDeadline     *time.Time `json:"paymentDeadline"`
	PaymentStatus       string     `json:"paymentStatus"`
	Status              string     `json:"status"`
	AllowPartialPayment bool       `json:"allowPartialPayment"`
	FormSubmitted       bool       `json:"formSubmitted"`
	SpecialRequirements string     `json:"specialRequirements,omitempty"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	Guests              []guestDTO `json:"guests,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func toBookingDTO(b *model.Booking) bookingDTO {
	out := bookingDTO{
		ID:                  b.ID.String(),
		UserID:              b.UserID.String(),
		TravelPlanID:        b.TravelPlanID.String(),
		StartDate:           time.Time(b.StartDate).Format(dateLayout),
		EndDate:             time.Time(b.EndDate).Format(dateLayout),
		Participants:        b.Participants,
		PricePerPerson:      b.PricePerPerson,
		TotalPrice:          b.TotalPrice,
		AmountPaid:          b.AmountPaid,
		RemainingAmount:     b.RemainingAmount,
		MinPaymentAmount:    b.MinPaymentAmount,
		RefundAmount:        b.RefundAmount,
		PaymentDeadline:     b.PaymentDeadline,
		PaymentStatus:       string(b.PaymentStatus),
		Status:              string(b.Status),
		AllowPartialPayment: b.AllowPartialPayment,
		FormSubmitted:       b.FormSubmitted,
		SpecialRequirements: b.SpecialRequirements,
		CancelledAt:         b.CancelledAt,
		CreatedAt:           b.CreatedAt,
	}
	for _, g := range b.Guests {
		out.Guests = append(out.Guests, guestDTO{FullName: g.FullName, Email: g.Email, Phone: g.Phone, IsLead: g.IsLead})
	}
	return out
}

type paymentDTO struct {
	ID                   string    `json:"id"`
	Amount               int64     `json:"amount"`
	PaymentType          string    `json:"paymentType"`
	PaymentDate          time.Time `json:"paymentDate"`
	GatewayTransactionID *string   `json:"gatewayTransactionId,omitempty"`
}

func toPaymentDTO(p *model.PartialPayment) paymentDTO {
	return paymentDTO{
		ID:                   p.ID.String(),
		Amount:               p.Amount,
		PaymentType:          string(p.PaymentType),
		PaymentDate:          p.PaymentDate,
		GatewayTransactionID: p.GatewayTransactionID,
	}
}

type payoutDTO struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"bookingId"`
	Installment   int        `json:"installment"`
	Percent       int        `json:"percent"`
	Amount        int64      `json:"amount"`
	ScheduledDate string     `json:"scheduledDate"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
}

func toPayoutDTO(p *model.Payout) payoutDTO {
	return payoutDTO{
		ID:            p.ID.String(),
		BookingID:     p.BookingID.String(),
		Installment:   p.Installment,
		Percent:       p.Percent,
		Amount:        p.Amount,
		ScheduledDate: p.ScheduledDate.Format(dateLayout),
		Status:        string(p.Status),
		PaidAt:        p.PaidAt,
		FailureReason: p.FailureReason,
	}
}

type paymentResultDTO struct {
	Booking   bookingDTO  `json:"booking"`
	Payment   *paymentDTO `json:"payment,omitempty"`
	Payouts   []payoutDTO `json:"payouts,omitempty"`
	Duplicate bool        `json:"duplicate"`
}

func toPaymentResultDTO(res *service.PaymentResult) paymentResultDTO {
	out := paymentResultDTO{Booking: toBookingDTO(res.Booking), Duplicate: res.Duplicate}
	if res.Payment != nil {
		p := toPaymentDTO(res.Payment)
		out.Payment = &p
	}
	for i := range res.Payouts {
		out.Payouts = append(out.Payouts, toPayoutDTO(&res.Payouts[i]))
	}
	return out
}

func toGuestInputs(in []guestDTO) []service.GuestInput {
	out := make([]service.GuestInput, 0, len(in))
	for _, g := range in {
		out = append(out, service.GuestInput{FullName: g.FullName, Email: g.Email, Phone: g.Phone, IsLead: g.IsLead})
	}
	return out
}
