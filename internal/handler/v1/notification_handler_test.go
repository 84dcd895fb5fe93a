package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTriggerMedicationRemindersRejectsBadTimeSlot(t *testing.T) {
	h := NewNotificationHandler(nil, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/notifications/medications/trigger?time_slot=banana", nil)

	h.TriggerMedicationReminders(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
