package patient

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

type BloodType string

const (
	BloodTypeAPos    BloodType = "A+"
	BloodTypeANeg    BloodType = "A-"
	BloodTypeBPos    BloodType = "B+"
	BloodTypeBNeg    BloodType = "B-"
	BloodTypeABPos   BloodType = "AB+"
	BloodTypeABNeg   BloodType = "AB-"
	BloodTypeOPos    BloodType = "O+"
	BloodTypeONeg    BloodType = "O-"
	BloodTypeUnknown BloodType = "unknown"
)

// phonePattern matches Korean mobile numbers: 010-1234-5678 (hyphens optional).
var phonePattern = regexp.MustCompile(`^010-?\d{4}-?\d{4}$`)

func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name        string    `gorm:"column:name;type:varchar(100);not null"`
	PhoneNumber string    `gorm:"column:phone_number;type:varchar(20);uniqueIndex;not null"`
	Address     string    `gorm:"column:address;type:text"`
	BirthDate   time.Time `gorm:"column:birth_date;not null"`
	Gender      Gender    `gorm:"column:gender;type:varchar(20);not null"`
	BloodType   BloodType `gorm:"column:blood_type;type:varchar(10)"`

	Allergies      string `gorm:"column:allergies;type:text"`
	MedicalHistory string `gorm:"column:medical_history;type:text"`

	// PatientNumber is the human-facing identifier, e.g. "2026-001".
	PatientNumber string `gorm:"column:patient_number;type:varchar(30);uniqueIndex"`

	// Owning facility (a hospital user account)
	HospitalID *uuid.UUID `gorm:"column:hospital_id;type:uuid;index"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() ||
		(now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}

// NewPatientNumber derives the human-facing identifier from registration year
// and the running count of registered patients.
func NewPatientNumber(now time.Time, count int64) string {
	return fmt.Sprintf("%d-%03d", now.Year(), count+1)
}

type CreatePatientCommand struct {
	Name           string
	PhoneNumber    string
	Address        string
	BirthDate      time.Time
	Gender         Gender
	BloodType      BloodType
	Allergies      string
	MedicalHistory string
	HospitalID     *uuid.UUID
}

type UpdatePatientCommand struct {
	Name           *string
	PhoneNumber    *string
	Address        *string
	Gender         *Gender
	BloodType      *BloodType
	Allergies      *string
	MedicalHistory *string
	HospitalID     *uuid.UUID
}

type ListPatientsQuery struct {
	// Search matches a substring of name, phone number, or address.
	Search     string
	HospitalID *uuid.UUID
	Page       int
	PageSize   int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
