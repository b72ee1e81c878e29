package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/host/wallet, хост видит только свой кошелёк.
func (h *Handler) HostWallet(c *gin.Context) {
	hostID, ok := caller(c)
	if !ok {
		return
	}
	w, err := h.engine.Payouts.HostWallet(c.Request.Context(), hostID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hostId":        w.HostID.String(),
		"totalEarnings": w.TotalEarnings,
		"received":      w.Received,
		"pending":       w.Pending,
		"upcoming":      w.Upcoming,
		"failed":        w.Failed,
	})
}

// GET /api/host/payouts?page=&pageSize=
func (h *Handler) HostPayouts(c *gin.Context) {
	hostID, ok := caller(c)
	if !ok {
		return
	}
	page, err := h.engine.Payouts.ListHostPayouts(c.Request.Context(), hostID, pageRequest(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	items := make([]payoutDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toPayoutDTO(&page.Items[i]))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "meta": metaOf(page)})
}
