package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockAdapter: шлюз для локального запуска: сразу выдаёт сессию
// и ссылку, по которой можно вручную дёрнуть колбэк.
type MockAdapter struct {
	BaseURL string
}

func NewMockAdapter(baseURL string) *MockAdapter {
	return &MockAdapter{BaseURL: baseURL}
}

func (m *MockAdapter) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDeclined)
	}
	token := uuid.NewString()
	return &CheckoutSession{
		OrderID:     req.OrderID,
		Token:       token,
		RedirectURL: fmt.Sprintf("%s/checkout/%s?order=%s", m.BaseURL, token, req.OrderID),
	}, nil
}
