package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/service"
)

type MedicationHandler struct {
	medications *service.MedicationService
}

func NewMedicationHandler(medications *service.MedicationService) *MedicationHandler {
	return &MedicationHandler{medications: medications}
}

type createMedicationRequest struct {
	PatientID       uuid.UUID            `json:"patient_id" binding:"required"`
	PrescriptionID  *uuid.UUID           `json:"prescription_id"`
	Name            string               `json:"name" binding:"required"`
	Dosage          string               `json:"dosage" binding:"required"`
	FrequencyPerDay int                  `json:"frequency_per_day" binding:"required"`
	StartDate       time.Time            `json:"start_date" binding:"required"`
	EndDate         time.Time            `json:"end_date" binding:"required"`
	TimeOfDay       medication.TimeOfDay `json:"time_of_day"`
	Instructions    string               `json:"instructions"`
	SideEffects     string               `json:"side_effects"`
	ReminderEnabled *bool                `json:"reminder_enabled"`
}

func (h *MedicationHandler) Create(c *gin.Context) {
	var req createMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	reminder := true
	if req.ReminderEnabled != nil {
		reminder = *req.ReminderEnabled
	}

	m, err := h.medications.Create(c.Request.Context(), &medication.CreateMedicationCommand{
		PatientID:       req.PatientID,
		PrescriptionID:  req.PrescriptionID,
		Name:            req.Name,
		Dosage:          req.Dosage,
		FrequencyPerDay: req.FrequencyPerDay,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TimeOfDay:       req.TimeOfDay,
		Instructions:    req.Instructions,
		SideEffects:     req.SideEffects,
		ReminderEnabled: reminder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "medication created", m)
}

func (h *MedicationHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.medications.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", m)
}

type updateMedicationRequest struct {
	Name            *string               `json:"name"`
	Dosage          *string               `json:"dosage"`
	FrequencyPerDay *int                  `json:"frequency_per_day"`
	StartDate       *time.Time            `json:"start_date"`
	EndDate         *time.Time            `json:"end_date"`
	TimeOfDay       *medication.TimeOfDay `json:"time_of_day"`
	Instructions    *string               `json:"instructions"`
	SideEffects     *string               `json:"side_effects"`
	ReminderEnabled *bool                 `json:"reminder_enabled"`
}

func (h *MedicationHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateMedicationRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.medications.Update(c.Request.Context(), id, &medication.UpdateMedicationCommand{
		Name:            req.Name,
		Dosage:          req.Dosage,
		FrequencyPerDay: req.FrequencyPerDay,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TimeOfDay:       req.TimeOfDay,
		Instructions:    req.Instructions,
		SideEffects:     req.SideEffects,
		ReminderEnabled: req.ReminderEnabled,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medication updated", m)
}

func (h *MedicationHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.medications.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medication deleted", nil)
}

func (h *MedicationHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	var (
		meds []*medication.Medication
		err  error
	)
	if c.Query("active") == "true" {
		meds, err = h.medications.ListActiveByPatient(c.Request.Context(), patientID)
	} else {
		meds, err = h.medications.ListByPatient(c.Request.Context(), patientID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", meds, int64(len(meds)))
}

func (h *MedicationHandler) Today(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	meds, err := h.medications.TodayMedications(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", meds, int64(len(meds)))
}

func (h *MedicationHandler) TakeDose(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.medications.RecordDoseTaken(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "dose recorded", m)
}

type changeMedicationStatusRequest struct {
	Status medication.MedicationStatus `json:"status" binding:"required"`
}

func (h *MedicationHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req changeMedicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.medications.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medication status updated", m)
}
