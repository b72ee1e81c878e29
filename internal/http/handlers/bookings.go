package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/travel-booking/internal/model"
	"github.com/Leganyst/travel-booking/internal/service"
)

type createBookingRequest struct {
	TravelPlanID        string     `json:"travelPlanId" binding:"required"`
	StartDate           string     `json:"startDate" binding:"required"`
	EndDate             string     `json:"endDate" binding:"required"`
	Participants        int        `json:"participants"`
	Guests              []guestDTO `json:"guests"`
	AllowPartialPayment bool       `json:"allowPartialPayment"`
	SpecialRequirements string     `json:"specialRequirements"`
}

// POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	planID, err := uuid.Parse(req.TravelPlanID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid travelPlanId")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "startDate must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "endDate must be YYYY-MM-DD")
		return
	}

	b, err := h.engine.Bookings.CreateBooking(c.Request.Context(), service.CreateBookingInput{
		UserID:              userID,
		TravelPlanID:        planID,
		StartDate:           start,
		EndDate:             end,
		Participants:        req.Participants,
		Guests:              toGuestInputs(req.Guests),
		AllowPartialPayment: req.AllowPartialPayment,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingDTO(b))
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	b, err := h.engine.Bookings.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDTO(b))
}

// GET /api/bookings?page=&pageSize=
func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	page, err := h.engine.Bookings.ListBookings(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items := make([]bookingDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toBookingDTO(&page.Items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "meta": metaOf(page)})
}

type updateGuestsRequest struct {
	Participants        int        `json:"participants"`
	Guests              []guestDTO `json:"guests"`
	SpecialRequirements string     `json:"specialRequirements"`
}

// PUT /api/bookings/:id/guests
func (h *Handler) UpdateGuestInfo(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateGuestsRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.engine.Bookings.UpdateGuestInfo(c.Request.Context(), userID, id, service.UpdateGuestInfoInput{
		Participants:        req.Participants,
		Guests:              toGuestInputs(req.Guests),
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDTO(b))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/bookings/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.engine.Bookings.UpdateStatus(c.Request.Context(), userID, id, model.BookingStatus(req.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDTO(b))
}

// POST /api/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.engine.Bookings.CancelBooking(c.Request.Context(), userID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": toBookingDTO(res.Booking),
		"refund": gin.H{
			"amount":        res.Refund.Amount,
			"percent":       res.Refund.Percent,
			"daysUntilTrip": res.Refund.DaysUntilTrip,
		},
	})
}
