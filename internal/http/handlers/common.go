package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Leganyst/travel-booking/internal/calendar"
	"github.com/Leganyst/travel-booking/internal/http/middleware"
	"github.com/Leganyst/travel-booking/internal/service"
)

type Handler struct {
	engine *service.Engine
}

func New(engine *service.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindJSON: тело обязательно и должно разбираться.
func bindJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "empty body")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload: "+err.Error())
		return false
	}
	return true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "caller identity missing")
	}
	return id, ok
}

func pageRequest(c *gin.Context) calendar.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return calendar.PageRequest{Page: page, PageSize: size}.Normalize()
}

type pageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrev"`
}

func metaOf[T any](p calendar.Page[T]) pageMeta {
	return pageMeta{Page: p.Page, PageSize: p.PageSize, Total: p.Total, HasNext: p.HasNext, HasPrev: p.HasPrev}
}
