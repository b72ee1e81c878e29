package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/travel-booking/internal/gateway"
	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/service"
)

type applyPaymentRequest struct {
	Amount      int64  `json:"amount"`
	PaymentType string `json:"paymentType"`
}

// POST /api/bookings/:id/payments
func (h *Handler) ApplyPayment(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engine.Payments.ApplyPayment(c.Request.Context(), userID, id, service.PaymentInput{
		Amount: req.Amount,
		Type:   model.PaymentType(req.PaymentType),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResultDTO(res))
}

// POST /api/bookings/:id/payments/complete
func (h *Handler) CompleteRemainingPayment(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.Payments.CompleteRemainingPayment(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResultDTO(res))
}

// GET /api/bookings/:id/payments
func (h *Handler) ListPayments(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.engine.Payments.ListPayments(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]paymentDTO, 0, len(items))
	for i := range items {
		out = append(out, toPaymentDTO(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// POST /api/bookings/:id/checkout; amount 0 означает весь остаток.
func (h *Handler) StartCheckout(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req applyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.engine.Payments.StartCheckout(c.Request.Context(), userID, id, req.Amount, model.PaymentType(req.PaymentType))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orderId":     session.OrderID,
		"token":       session.Token,
		"redirectUrl": session.RedirectURL,
	})
}

// POST /api/gateway/callback, вызывается шлюзом без токена.
func (h *Handler) GatewayCallback(c *gin.Context) {
	var conf gateway.Confirmation
	if !bindJSON(c, &conf) {
		return
	}
	res, err := h.engine.Payments.HandleGatewayCallback(c.Request.Context(), conf)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResultDTO(res))
}
