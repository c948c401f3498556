package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/cinema_booking/internal/core/domain"
	"github.com/srgjo27/cinema_booking/internal/core/services"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "validation", Message: "invalid json body"})
		return
	}

	booking, err := h.svc.CreateBooking(c.Request.Context(), services.CreateBookingRequest{
		UserID:     userID(c),
		ShowtimeID: req.ShowtimeID,
		SeatIDs:    req.SeatIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookings(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, newBookingResponse(&bookings[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.svc.GetBooking(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(booking))
}

func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	intent, err := h.svc.RequestPaymentIntent(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount.StringFixed(2),
	})
}

func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	if _, err := h.svc.ConfirmPayment(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{Status: string(domain.BookingConfirmed)})
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	if _, err := h.svc.CancelBooking(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{Status: string(domain.BookingCancelled)})
}

func (h *BookingHandler) ListPayments(c *gin.Context) {
	payments, err := h.svc.ListPayments(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, newPaymentResponse(&payments[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) GetPayment(c *gin.Context) {
	payment, err := h.svc.GetPayment(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaymentResponse(payment))
}

func (h *BookingHandler) SeatMap(c *gin.Context) {
	showtime, err := h.svc.SeatMap(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSeatMapResponse(showtime))
}
