package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/appointment"
	"github.com/medifit/medifit-api/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
	patients     *service.PatientService
}

func NewAppointmentHandler(appointments *service.AppointmentService, patients *service.PatientService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, patients: patients}
}

type createAppointmentRequest struct {
	PatientID    uuid.UUID                   `json:"patient_id" binding:"required"`
	HospitalID   uuid.UUID                   `json:"hospital_id" binding:"required"`
	DoctorID     *uuid.UUID                  `json:"doctor_id"`
	ScheduledAt  time.Time                   `json:"scheduled_at" binding:"required"`
	Department   string                      `json:"department" binding:"required"`
	DurationMins int                         `json:"duration_mins"`
	Type         appointment.AppointmentType `json:"type"`
	Notes        string                      `json:"notes"`
	Symptoms     string                      `json:"symptoms"`
	Room         string                      `json:"room"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.Schedule(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PatientID:    req.PatientID,
		HospitalID:   req.HospitalID,
		DoctorID:     req.DoctorID,
		ScheduledAt:  req.ScheduledAt,
		Department:   req.Department,
		DurationMins: req.DurationMins,
		Type:         req.Type,
		Notes:        req.Notes,
		Symptoms:     req.Symptoms,
		Room:         req.Room,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "appointment scheduled", a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", a)
}

type updateAppointmentRequest struct {
	ScheduledAt  *time.Time                   `json:"scheduled_at"`
	Department   *string                      `json:"department"`
	DurationMins *int                         `json:"duration_mins"`
	Type         *appointment.AppointmentType `json:"type"`
	Notes        *string                      `json:"notes"`
	Symptoms     *string                      `json:"symptoms"`
	Room         *string                      `json:"room"`
	DoctorID     *uuid.UUID                   `json:"doctor_id"`
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.Update(c.Request.Context(), id, &appointment.UpdateAppointmentCommand{
		ScheduledAt:  req.ScheduledAt,
		Department:   req.Department,
		DurationMins: req.DurationMins,
		Type:         req.Type,
		Notes:        req.Notes,
		Symptoms:     req.Symptoms,
		Room:         req.Room,
		DoctorID:     req.DoctorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "appointment updated", a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.appointments.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "appointment deleted", nil)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}
	hospitalID, ok := parseQueryUUID(c, "hospital_id")
	if !ok {
		return
	}

	q := &appointment.ListAppointmentsQuery{
		PatientID:  patientID,
		HospitalID: hospitalID,
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := appointment.AppointmentStatus(raw)
		if !status.IsValid() {
			respondError(c, 400, "invalid status")
			return
		}
		q.Status = &status
	}
	if raw := c.Query("department"); raw != "" {
		q.Department = &raw
	}

	page, err := h.appointments.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", page, page.TotalCount)
}

func (h *AppointmentHandler) Search(c *gin.Context) {
	results, err := h.appointments.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, "", results, int64(len(results)))
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.appointments.Confirm, "appointment confirmed")
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	h.transition(c, h.appointments.Start, "appointment started")
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.appointments.Complete, "appointment completed")
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.appointments.Cancel, "appointment cancelled")
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.transition(c, h.appointments.MarkNoShow, "appointment marked as no-show")
}

func (h *AppointmentHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error), message string) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := fn(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, message, a)
}

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	hospitalID, ok := parseUUID(c, "hospitalId")
	if !ok {
		return
	}
	day, ok := parseQueryDate(c, "date")
	if !ok {
		return
	}

	slots, err := h.appointments.AvailableSlots(c.Request.Context(), hospitalID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", slots, int64(len(slots)))
}

func (h *AppointmentHandler) Upcoming(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	appts, err := h.appointments.Upcoming(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", appts, int64(len(appts)))
}

func (h *AppointmentHandler) Today(c *gin.Context) {
	hospitalID, ok := parseUUID(c, "hospitalId")
	if !ok {
		return
	}

	appts, err := h.appointments.Today(c.Request.Context(), hospitalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", appts, int64(len(appts)))
}

func (h *AppointmentHandler) Statistics(c *gin.Context) {
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}
	hospitalID, ok := parseQueryUUID(c, "hospital_id")
	if !ok {
		return
	}

	stats, err := h.appointments.MonthlyStatistics(c.Request.Context(), patientID, hospitalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", stats)
}

func (h *AppointmentHandler) Dashboard(c *gin.Context) {
	hospitalID, ok := parseUUID(c, "hospitalId")
	if !ok {
		return
	}

	stats, err := h.appointments.DashboardStatistics(c.Request.Context(), hospitalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	newPatients, err := h.patients.RegisteredThisWeek(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", gin.H{
		"appointments":        stats,
		"newPatientsThisWeek": newPatients,
	})
}
