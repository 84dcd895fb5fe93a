package medical_record

import (
	"time"

	"github.com/google/uuid"
)

type RecordStatus string

const (
	StatusActive    RecordStatus = "active"
	StatusCompleted RecordStatus = "completed"
	StatusCancelled RecordStatus = "cancelled"
	StatusDraft     RecordStatus = "draft"
)

func (s RecordStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled, StatusDraft:
		return true
	}
	return false
}

type MedicalRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID     uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID      *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`
	AppointmentID *uuid.UUID `gorm:"column:appointment_id;type:uuid;index"`

	Department string `gorm:"column:department;type:varchar(100);index"`
	Symptoms   string `gorm:"column:symptoms;type:text"`
	Diagnosis  string `gorm:"column:diagnosis;type:varchar(255);not null;index"`
	Treatment  string `gorm:"column:treatment;type:text"`

	DoctorNotes string `gorm:"column:doctor_notes;type:text"`

	// AISummary is derived from the clinical fields and regenerable at any
	// time; it is never an input.
	AISummary string `gorm:"column:ai_summary;type:text"`

	Status    RecordStatus `gorm:"column:status;type:varchar(30);not null;default:'active';index"`
	VisitDate time.Time    `gorm:"column:visit_date;not null;index"`

	MedicalFee *int   `gorm:"column:medical_fee"`
	Room       string `gorm:"column:room;type:varchar(50)"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}

type CreateRecordCommand struct {
	PatientID     uuid.UUID
	DoctorID      *uuid.UUID
	AppointmentID *uuid.UUID
	Department    string
	Symptoms      string
	Diagnosis     string
	Treatment     string
	DoctorNotes   string
	VisitDate     time.Time
	MedicalFee    *int
	Room          string
}

type UpdateRecordCommand struct {
	Department  *string
	Symptoms    *string
	Diagnosis   *string
	Treatment   *string
	DoctorNotes *string
	Status      *RecordStatus
	VisitDate   *time.Time
	MedicalFee  *int
	Room        *string
}

type ListRecordsQuery struct {
	PatientID  *uuid.UUID
	Department *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

type PagedRecords struct {
	Records    []*MedicalRecord
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

// DiagnosisStatistics aggregates a patient's record history. Frequencies
// are grouped in the store, not by scanning rows in application memory.
type DiagnosisStatistics struct {
	DiagnosisFrequency  map[string]int64 `json:"diagnosisFrequency"` // case-folded diagnosis → count
	DepartmentFrequency map[string]int64 `json:"departmentFrequency"`
	MonthlyVisitPattern map[string]int64 `json:"monthlyVisitPattern"` // "YYYY-MM" → count, last 12 months
	TotalRecords        int64            `json:"totalRecords"`
	UniqueDiagnoses     int              `json:"uniqueDiagnoses"`
	MostCommonDiagnosis string           `json:"mostCommonDiagnosis"`
}

type FeeStatistics struct {
	TotalFee    int64   `json:"totalFee"`
	AverageFee  float64 `json:"averageFee"`
	MinFee      int64   `json:"minFee"`
	MaxFee      int64   `json:"maxFee"`
	RecordCount int64   `json:"recordCount"`
}
