package prescription

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/medifit/medifit-api/internal/domain/medication"
)

type PrescriptionStatus string

const (
	StatusPrescribed PrescriptionStatus = "prescribed"
	StatusDispensed  PrescriptionStatus = "dispensed"
	StatusCompleted  PrescriptionStatus = "completed"
	StatusCancelled  PrescriptionStatus = "cancelled"
)

func (s PrescriptionStatus) IsValid() bool {
	switch s {
	case StatusPrescribed, StatusDispensed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID       uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID        *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`
	MedicalRecordID *uuid.UUID `gorm:"column:medical_record_id;type:uuid;index"`

	// Number is the system-generated unique prescription identifier.
	Number string `gorm:"column:number;type:varchar(40);uniqueIndex;not null"`

	PrescribedAt  time.Time          `gorm:"column:prescribed_at;not null;index"`
	Status        PrescriptionStatus `gorm:"column:status;type:varchar(30);not null;default:'prescribed';index"`
	Instructions  string             `gorm:"column:instructions;type:text"`
	PharmacyNotes string             `gorm:"column:pharmacy_notes;type:text"`

	Medications []medication.Medication `gorm:"foreignKey:PrescriptionID"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// NewNumber generates a prescription number from the issue instant,
// e.g. "RX1756454400000".
func NewNumber(now time.Time) string {
	return "RX" + strconv.FormatInt(now.UnixMilli(), 10)
}

type MedicationLine struct {
	Name            string
	Dosage          string
	FrequencyPerDay int
	StartDate       time.Time
	EndDate         time.Time
	TimeOfDay       medication.TimeOfDay
	Instructions    string
}

type CreatePrescriptionCommand struct {
	PatientID       uuid.UUID
	DoctorID        *uuid.UUID
	MedicalRecordID *uuid.UUID
	PrescribedAt    time.Time
	Instructions    string
	PharmacyNotes   string
	Medications     []MedicationLine
}

type ListPrescriptionsQuery struct {
	PatientID *uuid.UUID
	Status    *PrescriptionStatus
	Page      int
	PageSize  int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
