package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	JWTSecret      []byte
	RequestTimeout time.Duration
}

func NewRouter(h *BookingHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(), RequestLogger(), Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(JWTAuth(cfg.JWTSecret), Timeout(cfg.RequestTimeout))
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.POST("/:id/payment-intent", h.CreatePaymentIntent)
			bookings.POST("/:id/confirm-payment", h.ConfirmPayment)
			bookings.POST("/:id/cancel", h.CancelBooking)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", h.ListPayments)
			payments.GET("/:id", h.GetPayment)
		}

		api.GET("/showtimes/:id/seats", h.SeatMap)
	}

	return router
}
