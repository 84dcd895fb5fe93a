package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/patient"
	"github.com/medifit/medifit-api/internal/service"
)

type PatientHandler struct {
	patients *service.PatientService
}

func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

type createPatientRequest struct {
	Name           string            `json:"name" binding:"required"`
	PhoneNumber    string            `json:"phone_number" binding:"required"`
	Address        string            `json:"address"`
	BirthDate      time.Time         `json:"birth_date" binding:"required"`
	Gender         patient.Gender    `json:"gender"`
	BloodType      patient.BloodType `json:"blood_type"`
	Allergies      string            `json:"allergies"`
	MedicalHistory string            `json:"medical_history"`
	HospitalID     *uuid.UUID        `json:"hospital_id"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.patients.Register(c.Request.Context(), &patient.CreatePatientCommand{
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		BirthDate:      req.BirthDate,
		Gender:         req.Gender,
		BloodType:      req.BloodType,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
		HospitalID:     req.HospitalID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, "patient registered", p)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", p)
}

func (h *PatientHandler) GetByPhone(c *gin.Context) {
	phone := c.Query("phone")

	p, err := h.patients.GetByPhoneNumber(c.Request.Context(), phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "", p)
}

type updatePatientRequest struct {
	Name           *string            `json:"name"`
	PhoneNumber    *string            `json:"phone_number"`
	Address        *string            `json:"address"`
	Gender         *patient.Gender    `json:"gender"`
	BloodType      *patient.BloodType `json:"blood_type"`
	Allergies      *string            `json:"allergies"`
	MedicalHistory *string            `json:"medical_history"`
	HospitalID     *uuid.UUID         `json:"hospital_id"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updatePatientRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.patients.Update(c.Request.Context(), id, &patient.UpdatePatientCommand{
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		Gender:         req.Gender,
		BloodType:      req.BloodType,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
		HospitalID:     req.HospitalID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "patient updated", p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.patients.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, "patient deleted", nil)
}

func (h *PatientHandler) List(c *gin.Context) {
	hospitalID, ok := parseQueryUUID(c, "hospital_id")
	if !ok {
		return
	}

	page, err := h.patients.List(c.Request.Context(), &patient.ListPatientsQuery{
		Search:     c.Query("search"),
		HospitalID: hospitalID,
		Page:       parseQueryInt(c, "page", 1),
		PageSize:   parseQueryInt(c, "page_size", 20),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "", page, page.TotalCount)
}
