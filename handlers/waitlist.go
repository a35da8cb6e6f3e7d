package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonflow/models"
	"salonflow/services/booking"
	"salonflow/services/waitlist"
	"salonflow/utils"
)

// WaitlistHandler exposes the waitlist queue and the offer-response flow.
type WaitlistHandler struct {
	Queue    waitlist.QueueService
	Notifier waitlist.Notifier
}

func NewWaitlistHandler(queue waitlist.QueueService, notifier waitlist.Notifier) *WaitlistHandler {
	return &WaitlistHandler{Queue: queue, Notifier: notifier}
}

// Enqueue joins the waitlist directly, outside the conversational flow.
func (h *WaitlistHandler) Enqueue(c *gin.Context) {
	var req struct {
		SalonID       string `json:"salonId" binding:"required"`
		CustomerID    string `json:"customerId" binding:"required"`
		ServiceID     string `json:"serviceId" binding:"required"`
		StaffID       string `json:"staffId"`
		PreferredDate string `json:"preferredDate"`
		PreferredTime *int   `json:"preferredTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	intent := models.BookingIntent{
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		PreferredDate: req.PreferredDate,
	}
	if req.PreferredTime != nil {
		intent.PreferredTime = *req.PreferredTime
		intent.HasTime = true
	}

	entry, err := h.Queue.Enqueue(c.Request.Context(), req.SalonID, req.CustomerID, intent)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to join waitlist", err.Error())
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Status returns the customer's waitlist entries with live queue positions.
func (h *WaitlistHandler) Status(c *gin.Context) {
	customerID := c.Param("customerId")
	entries, err := h.Queue.Status(c.Request.Context(), customerID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch waitlist status", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// RespondToOffer handles the customer's book-now or pass on a live offer.
func (h *WaitlistHandler) RespondToOffer(c *gin.Context) {
	entryID := c.Param("id")
	var req struct {
		BookNow bool `json:"bookNow"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	booked, err := h.Notifier.RespondToOffer(c.Request.Context(), entryID, req.BookNow)
	if err != nil {
		var flowErr *booking.FlowError
		if errors.As(err, &flowErr) {
			status := http.StatusConflict
			if flowErr.Code == booking.CodeStaleSelection {
				status = http.StatusGone
			}
			c.JSON(status, gin.H{"code": flowErr.Code, "message": flowErr.Message})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to process offer response", err.Error())
		return
	}

	if booked == nil {
		c.JSON(http.StatusOK, gin.H{"status": "passed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "booked", "booking": booked})
}

// SlotReleased is the internal hook external schedulers call when a slot
// frees up outside the cancellation path.
func (h *WaitlistHandler) SlotReleased(c *gin.Context) {
	var req struct {
		SalonID   string `json:"salonId" binding:"required"`
		ServiceID string `json:"serviceId" binding:"required"`
		StaffID   string `json:"staffId" binding:"required"`
		Date      string `json:"date" binding:"required"`
		Start     *int   `json:"start" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := h.Notifier.OnSlotReleased(c.Request.Context(), req.SalonID, req.ServiceID, req.StaffID, req.Date, *req.Start); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to process released slot", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processed"})
}
