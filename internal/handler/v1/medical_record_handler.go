package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	mr "github.com/medifit/medifit-api/internal/domain/medical_record"
	"github.com/medifit/medifit-api/internal/service"
)

type MedicalRecordHandler struct {
	records *service.MedicalRecordService
}

func NewMedicalRecordHandler(records *service.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{records: records}
}

type createRecordRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      *uuid.UUID `json:"doctor_id"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Department    string     `json:"department"`
	Symptoms      string     `json:"symptoms"`
	Diagnosis     string     `json:"diagnosis" binding:"required"`
	Treatment     string     `json:"treatment"`
	DoctorNotes   string     `json:"doctor_notes"`
	VisitDate     time.Time  `json:"visit_date"`
	MedicalFee    *int       `json:"medical_fee"`
	Room          string     `json:"room"`
}

func (h *MedicalRecordHandler) Create(c *gin.Context) {
	var req createRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.records.Create(c.Request.Context(), &mr.CreateRecordCommand{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Department:    req.Department,
		Symptoms:      req.Symptoms,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
		DoctorNotes:   req.DoctorNotes,
		VisitDate:     req.VisitDate,
		MedicalFee:    req.MedicalFee,
		Room:          req.Room,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "medical record created", r)
}

func (h *MedicalRecordHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.records.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", r)
}

type updateRecordRequest struct {
	Department  *string          `json:"department"`
	Symptoms    *string          `json:"symptoms"`
	Diagnosis   *string          `json:"diagnosis"`
	Treatment   *string          `json:"treatment"`
	DoctorNotes *string          `json:"doctor_notes"`
	Status      *mr.RecordStatus `json:"status"`
	VisitDate   *time.Time       `json:"visit_date"`
	MedicalFee  *int             `json:"medical_fee"`
	Room        *string          `json:"room"`
}

func (h *MedicalRecordHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.records.Update(c.Request.Context(), id, &mr.UpdateRecordCommand{
		Department:  req.Department,
		Symptoms:    req.Symptoms,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		DoctorNotes: req.DoctorNotes,
		Status:      req.Status,
		VisitDate:   req.VisitDate,
		MedicalFee:  req.MedicalFee,
		Room:        req.Room,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medical record updated", r)
}

func (h *MedicalRecordHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "medical record deleted", nil)
}

func (h *MedicalRecordHandler) List(c *gin.Context) {
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}

	q := &mr.ListRecordsQuery{
		PatientID: patientID,
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("department"); raw != "" {
		q.Department = &raw
	}

	page, err := h.records.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", page, page.TotalCount)
}

func (h *MedicalRecordHandler) Search(c *gin.Context) {
	results, err := h.records.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, "", results, int64(len(results)))
}

func (h *MedicalRecordHandler) GenerateSummary(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.records.GenerateSummary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "summary generated", gin.H{"summary": summary})
}

func (h *MedicalRecordHandler) DiagnosisStatistics(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	stats, err := h.records.DiagnosisStatistics(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", stats)
}

func (h *MedicalRecordHandler) FeeStatistics(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	stats, err := h.records.FeeStatistics(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", stats)
}

func (h *MedicalRecordHandler) RecentHistory(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	records, err := h.records.RecentHistory(c.Request.Context(), patientID, parseQueryInt(c, "limit", 10))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", records, int64(len(records)))
}
