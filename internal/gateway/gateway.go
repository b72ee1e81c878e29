// Package gateway описывает контракт внешнего платёжного шлюза (hosted checkout).
// Движок не видит данных карты: шлюз возвращает токен сессии, а позже присылает
// подтверждение, которое считается уже проверенным.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrDeclined — шлюз отказал окончательно, повторять бесполезно.
var ErrDeclined = errors.New("gateway declined checkout")

type CheckoutRequest struct {
	BookingID   uuid.UUID
	PayerID     uuid.UUID
	OrderID     string
	Amount      int64
	PaymentType string
}

type CheckoutSession struct {
	OrderID     string
	Token       string
	RedirectURL string
}

// Confirmation — асинхронный колбэк шлюза.
type Confirmation struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
	Signature     string `json:"signature"`
	Amount        int64  `json:"amount"`
}

func (c Confirmation) Validate() error {
	if c.TransactionID == "" || c.OrderID == "" {
		return fmt.Errorf("confirmation: transactionId and orderId are required")
	}
	if c.Amount <= 0 {
		return fmt.Errorf("confirmation: amount must be positive")
	}
	return nil
}

type Adapter interface {
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// NewOrderID склеивает ID бронирования и случайный суффикс,
// чтобы колбэк находил бронирование без отдельной таблицы заказов.
func NewOrderID(bookingID uuid.UUID) string {
	return bookingID.String() + "." + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ParseOrderID извлекает ID бронирования из orderId, выданного NewOrderID.
func ParseOrderID(orderID string) (uuid.UUID, error) {
	i := strings.LastIndexByte(orderID, '.')
	if i <= 0 {
		return uuid.Nil, fmt.Errorf("order id %q: unexpected format", orderID)
	}
	return uuid.Parse(orderID[:i])
}
