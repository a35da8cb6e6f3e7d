package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonflow/services/booking"
	"salonflow/services/waitlist"
	"salonflow/utils"
)

// BookingHandler exposes the conversational booking flow over HTTP. The
// orchestrator never returns an error to this layer; every outcome is a UI
// payload the transport renders.
type BookingHandler struct {
	Orchestrator booking.Orchestrator
	Committer    booking.BookingCommitter
	Notifier     waitlist.Notifier
	Logger       *zap.Logger
}

func NewBookingHandler(orc booking.Orchestrator, committer booking.BookingCommitter, notifier waitlist.Notifier, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Orchestrator: orc, Committer: committer, Notifier: notifier, Logger: logger}
}

// HandleMessage receives a free-form customer message.
func (h *BookingHandler) HandleMessage(c *gin.Context) {
	var req struct {
		CustomerID string `json:"customerId" binding:"required"`
		SalonID    string `json:"salonId" binding:"required"`
		Text       string `json:"text" binding:"required"`
		Language   string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	payload := h.Orchestrator.HandleMessage(c.Request.Context(), req.CustomerID, req.SalonID, req.Text, req.Language)
	c.JSON(http.StatusOK, payload)
}

// HandleAction receives a button tap from a previously rendered card.
func (h *BookingHandler) HandleAction(c *gin.Context) {
	var req struct {
		CustomerID string `json:"customerId" binding:"required"`
		Action     string `json:"action" binding:"required"`
		SlotID     string `json:"slotId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	payload := h.Orchestrator.HandleAction(c.Request.Context(), req.CustomerID, req.Action, req.SlotID)
	c.JSON(http.StatusOK, payload)
}

// CancelSession discards the customer's in-progress conversation.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	customerID := c.Param("customerId")
	if err := h.Orchestrator.CancelSession(c.Request.Context(), customerID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CancelBooking cancels a confirmed booking and releases the freed slot to
// the waitlist.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("bookingId")

	booked, err := h.Committer.Cancel(c.Request.Context(), bookingID)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "failed to cancel booking", err.Error())
		return
	}

	if err := h.Notifier.OnSlotReleased(c.Request.Context(), booked.SalonID, booked.ServiceID, booked.StaffID, booked.Date, booked.Start); err != nil {
		// The cancellation stands; a failed release only delays the waitlist.
		h.Logger.Error("failed to release cancelled slot to waitlist",
			zap.String("bookingId", bookingID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "booking": booked})
}
