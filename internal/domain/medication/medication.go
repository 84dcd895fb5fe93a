package medication

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type MedicationStatus string

const (
	StatusActive       MedicationStatus = "active"
	StatusPaused       MedicationStatus = "paused"
	StatusCompleted    MedicationStatus = "completed"
	StatusDiscontinued MedicationStatus = "discontinued"
)

func (s MedicationStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusDiscontinued:
		return true
	}
	return false
}

// TimeOfDay is the reminder targeting bucket a medication belongs to.
type TimeOfDay string

const (
	BeforeBreakfast TimeOfDay = "before_breakfast"
	AfterBreakfast  TimeOfDay = "after_breakfast"
	BeforeLunch     TimeOfDay = "before_lunch"
	AfterLunch      TimeOfDay = "after_lunch"
	BeforeDinner    TimeOfDay = "before_dinner"
	AfterDinner     TimeOfDay = "after_dinner"
	BeforeSleep     TimeOfDay = "before_sleep"
	AsNeeded        TimeOfDay = "as_needed"
)

func (t TimeOfDay) IsValid() bool {
	switch t {
	case BeforeBreakfast, AfterBreakfast, BeforeLunch, AfterLunch,
		BeforeDinner, AfterDinner, BeforeSleep, AsNeeded:
		return true
	}
	return false
}

// BucketForHour maps a wall-clock hour onto the reminder bucket whose
// window contains it. Hours outside every meal window fall into
// before_sleep. as_needed is assignable on a medication but is never the
// result of this mapping, so the hourly reminder job cannot target it.
func BucketForHour(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 9:
		return BeforeBreakfast
	case hour >= 9 && hour < 12:
		return AfterBreakfast
	case hour >= 12 && hour < 13:
		return BeforeLunch
	case hour >= 13 && hour < 18:
		return AfterLunch
	case hour >= 18 && hour < 19:
		return BeforeDinner
	case hour >= 19 && hour < 22:
		return AfterDinner
	default:
		return BeforeSleep
	}
}

type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID      uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	PrescriptionID *uuid.UUID `gorm:"column:prescription_id;type:uuid;index"`

	Name            string `gorm:"column:name;type:varchar(255);not null"`
	Dosage          string `gorm:"column:dosage;type:varchar(50);not null"` // e.g. "500mg"
	FrequencyPerDay int    `gorm:"column:frequency_per_day;not null"`

	StartDate time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null;index"`

	TimeOfDay TimeOfDay        `gorm:"column:time_of_day;type:varchar(30);not null;index"`
	Status    MedicationStatus `gorm:"column:status;type:varchar(30);not null;default:'active';index"`

	Instructions string `gorm:"column:instructions;type:text"`
	SideEffects  string `gorm:"column:side_effects;type:text"`

	ReminderEnabled bool `gorm:"column:reminder_enabled;not null;default:true;index"`

	TotalDoses     int `gorm:"column:total_doses;not null;default:0"`
	CompletedDoses int `gorm:"column:completed_doses;not null;default:0"`
}

func (Medication) TableName() string {
	return "medications"
}

// ComputeTotalDoses derives the total dose count from the inclusive date
// range and the daily frequency: a 7-day course at 2/day is 14 doses.
func (m *Medication) ComputeTotalDoses() int {
	days := int(m.EndDate.Sub(m.StartDate).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days * m.FrequencyPerDay
}

// RecordTaken counts one dose. The medication completes once the dose
// budget is exhausted or today is past the end date, whichever happens
// first. Completion never reverts automatically.
func (m *Medication) RecordTaken(today time.Time) {
	m.CompletedDoses++
	if m.CompletedDoses >= m.TotalDoses || dateAfter(today, m.EndDate) {
		m.Status = StatusCompleted
	}
}

// CoversDate reports whether the course's inclusive date range contains day.
func (m *Medication) CoversDate(day time.Time) bool {
	return !dateAfter(m.StartDate, day) && !dateAfter(day, m.EndDate)
}

// Expired reports whether the course's end date has passed.
func (m *Medication) Expired(today time.Time) bool {
	return dateAfter(today, m.EndDate)
}

// Progress returns the completed share of the dose budget in percent.
func (m *Medication) Progress() float64 {
	if m.TotalDoses == 0 {
		return 0
	}
	pct := float64(m.CompletedDoses) / float64(m.TotalDoses) * 100
	return math.Round(pct*100) / 100
}

// dateAfter compares calendar days, ignoring the time-of-day component.
func dateAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad > bd
}

type CreateMedicationCommand struct {
	PatientID       uuid.UUID
	PrescriptionID  *uuid.UUID
	Name            string
	Dosage          string
	FrequencyPerDay int
	StartDate       time.Time
	EndDate         time.Time
	TimeOfDay       TimeOfDay
	Instructions    string
	SideEffects     string
	ReminderEnabled bool
}

type UpdateMedicationCommand struct {
	Name            *string
	Dosage          *string
	FrequencyPerDay *int
	StartDate       *time.Time
	EndDate         *time.Time
	TimeOfDay       *TimeOfDay
	Instructions    *string
	SideEffects     *string
	ReminderEnabled *bool
}
