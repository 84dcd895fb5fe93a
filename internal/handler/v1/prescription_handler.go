package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/prescription"
	"github.com/medifit/medifit-api/internal/service"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions}
}

type medicationLineRequest struct {
	Name            string               `json:"name" binding:"required"`
	Dosage          string               `json:"dosage" binding:"required"`
	FrequencyPerDay int                  `json:"frequency_per_day" binding:"required"`
	StartDate       time.Time            `json:"start_date" binding:"required"`
	EndDate         time.Time            `json:"end_date" binding:"required"`
	TimeOfDay       medication.TimeOfDay `json:"time_of_day"`
	Instructions    string               `json:"instructions"`
}

type createPrescriptionRequest struct {
	PatientID       uuid.UUID               `json:"patient_id" binding:"required"`
	DoctorID        *uuid.UUID              `json:"doctor_id"`
	MedicalRecordID *uuid.UUID              `json:"medical_record_id"`
	PrescribedAt    time.Time               `json:"prescribed_at"`
	Instructions    string                  `json:"instructions"`
	PharmacyNotes   string                  `json:"pharmacy_notes"`
	Medications     []medicationLineRequest `json:"medications" binding:"required"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]prescription.MedicationLine, 0, len(req.Medications))
	for _, l := range req.Medications {
		lines = append(lines, prescription.MedicationLine{
			Name:            l.Name,
			Dosage:          l.Dosage,
			FrequencyPerDay: l.FrequencyPerDay,
			StartDate:       l.StartDate,
			EndDate:         l.EndDate,
			TimeOfDay:       l.TimeOfDay,
			Instructions:    l.Instructions,
		})
	}

	p, err := h.prescriptions.Issue(c.Request.Context(), &prescription.CreatePrescriptionCommand{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		MedicalRecordID: req.MedicalRecordID,
		PrescribedAt:    req.PrescribedAt,
		Instructions:    req.Instructions,
		PharmacyNotes:   req.PharmacyNotes,
		Medications:     lines,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "prescription issued", p)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.prescriptions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", p)
}

func (h *PrescriptionHandler) GetByNumber(c *gin.Context) {
	p, err := h.prescriptions.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", p)
}

type changePrescriptionStatusRequest struct {
	Status prescription.PrescriptionStatus `json:"status" binding:"required"`
}

func (h *PrescriptionHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req changePrescriptionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.prescriptions.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "prescription status updated", p)
}

func (h *PrescriptionHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.prescriptions.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "prescription deleted", nil)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}

	q := &prescription.ListPrescriptionsQuery{
		PatientID: patientID,
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := prescription.PrescriptionStatus(raw)
		if !status.IsValid() {
			respondError(c, 400, "invalid status")
			return
		}
		q.Status = &status
	}

	page, err := h.prescriptions.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", page, page.TotalCount)
}

func (h *PrescriptionHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	list, err := h.prescriptions.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", list, int64(len(list)))
}
