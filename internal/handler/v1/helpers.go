package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/appointment"
	mr "github.com/medifit/medifit-api/internal/domain/medical_record"
	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/patient"
	"github.com/medifit/medifit-api/internal/domain/prescription"
	"github.com/medifit/medifit-api/internal/repository"
	"github.com/medifit/medifit-api/internal/service"
	"github.com/medifit/medifit-api/pkg/auth"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Total   *int64 `json:"total,omitempty"`
}

type ValidationErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, message string, data any, total int64) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: message, Data: data, Total: &total})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{Success: false, Message: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Success: false,
			Message: "validation failed",
			Fields:  validErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, mr.ErrRecordNotFound),
		errors.Is(err, medication.ErrMedicationNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, patient.ErrDuplicatePhoneNumber),
		errors.Is(err, appointment.ErrAppointmentConflict),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusConflict, err.Error())

	case errors.Is(err, appointment.ErrScheduledInPast),
		errors.Is(err, appointment.ErrOutsideWorkingHours),
		errors.Is(err, appointment.ErrInvalidDuration),
		errors.Is(err, appointment.ErrInvalidStatusTransition),
		errors.Is(err, appointment.ErrInvalidAppointmentType),
		errors.Is(err, patient.ErrInvalidPhoneNumber),
		errors.Is(err, patient.ErrInvalidGender),
		errors.Is(err, patient.ErrInvalidBirthDate),
		errors.Is(err, medication.ErrInvalidDateRange),
		errors.Is(err, medication.ErrInvalidFrequency),
		errors.Is(err, medication.ErrInvalidStatus),
		errors.Is(err, medication.ErrInvalidTimeOfDay),
		errors.Is(err, mr.ErrDiagnosisRequired),
		errors.Is(err, mr.ErrInvalidRecordStatus),
		errors.Is(err, prescription.ErrInvalidStatus),
		errors.Is(err, prescription.ErrNoMedications):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch):
		respondError(c, http.StatusUnauthorized, "invalid credentials")

	case errors.Is(err, service.ErrAccountInactive):
		respondError(c, http.StatusUnauthorized, "account is inactive")

	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+param+": must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be a valid UUID")
		return nil, false
	}
	return &id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

// parseQueryDate reads a "YYYY-MM-DD" query parameter.
func parseQueryDate(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		respondError(c, http.StatusBadRequest, key+" is required (YYYY-MM-DD)")
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+key+": must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}
