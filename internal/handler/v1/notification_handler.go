package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/service"
)

// NotificationHandler exposes manual triggers for the reminder jobs,
// mainly for operators and integration tests.
type NotificationHandler struct {
	notifications *service.NotificationService
	aheadDays     int
}

func NewNotificationHandler(notifications *service.NotificationService, aheadDays int) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, aheadDays: aheadDays}
}

func (h *NotificationHandler) TriggerAppointmentReminders(c *gin.Context) {
	sent, err := h.notifications.SendAppointmentReminders(c.Request.Context(), h.aheadDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "appointment reminders dispatched", gin.H{"sent": sent})
}

// TriggerMedicationReminders dispatches medication reminders. Without a
// time_slot query parameter the bucket covering the current hour is used;
// with one ("HH:MM") the bucket covering that clock time is targeted.
func (h *NotificationHandler) TriggerMedicationReminders(c *gin.Context) {
	var (
		sent int
		err  error
	)

	if raw := c.Query("time_slot"); raw != "" {
		slot, parseErr := time.Parse("15:04", raw)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "invalid time_slot: must be HH:MM")
			return
		}
		sent, err = h.notifications.SendMedicationRemindersForBucket(
			c.Request.Context(), medication.BucketForHour(slot.Hour()))
	} else {
		sent, err = h.notifications.SendMedicationReminders(c.Request.Context())
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medication reminders dispatched", gin.H{"sent": sent})
}

func (h *NotificationHandler) SendConfirmation(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.SendAppointmentConfirmation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "confirmation notification sent", nil)
}

func (h *NotificationHandler) SendCancellation(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.SendAppointmentCancellation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "cancellation notification sent", nil)
}
