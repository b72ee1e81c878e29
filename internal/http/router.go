package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	h "github.com/Leganyst/travel-booking/internal/http/handlers"
	"github.com/Leganyst/travel-booking/internal/http/middleware"
	"github.com/Leganyst/travel-booking/internal/service"
)

type RouterConfig struct {
	JWTSecret   string
	CORSOrigins string
}

func NewRouter(cfg RouterConfig, engine *service.Engine, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(cfg.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	hd := h.New(engine)
	auth := middleware.Auth([]byte(cfg.JWTSecret))

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)

		// Колбэк шлюза приходит без пользовательского токена.
		api.POST("/gateway/callback", hd.GatewayCallback)

		bookings := api.Group("/bookings", auth)
		bookings.POST("", hd.CreateBooking)
		bookings.GET("", hd.ListBookings)
		bookings.GET("/:id", hd.GetBooking)
		bookings.PUT("/:id/guests", hd.UpdateGuestInfo)
		bookings.PATCH("/:id/status", hd.UpdateStatus)
		bookings.POST("/:id/cancel", hd.CancelBooking)
		bookings.GET("/:id/payments", hd.ListPayments)
		bookings.POST("/:id/payments", hd.ApplyPayment)
		bookings.POST("/:id/payments/complete", hd.CompleteRemainingPayment)
		bookings.POST("/:id/checkout", hd.StartCheckout)

		host := api.Group("/host", auth, middleware.RequireRoles(middleware.RoleHost))
		host.GET("/wallet", hd.HostWallet)
		host.GET("/payouts", hd.HostPayouts)
	}

	return r
}
