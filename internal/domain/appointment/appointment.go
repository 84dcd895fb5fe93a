package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow_up"
	TypeCheckUp      AppointmentType = "check_up"
	TypeEmergency    AppointmentType = "emergency"
	TypeVaccination  AppointmentType = "vaccination"
	TypeSurgery      AppointmentType = "surgery"
	TypeTherapy      AppointmentType = "therapy"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeCheckUp, TypeEmergency, TypeVaccination, TypeSurgery, TypeTherapy:
		return true
	}
	return false
}

// State transition possibilities:
//
//	scheduled → confirmed → in_progress → completed
//	cancelled and no_show are terminal side-exits from any non-terminal state
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

const DefaultDurationMins = 30

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID  uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	HospitalID uuid.UUID  `gorm:"column:hospital_id;type:uuid;not null;index"`
	DoctorID   *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`

	ScheduledAt  time.Time         `gorm:"column:scheduled_at;not null;index"`
	Department   string            `gorm:"column:department;type:varchar(100);not null;index"`
	DurationMins int               `gorm:"column:duration_mins;not null;default:30"`
	Type         AppointmentType   `gorm:"column:type;type:varchar(50);not null"`
	Status       AppointmentStatus `gorm:"column:status;type:varchar(30);not null;default:'scheduled';index"`

	Notes    string `gorm:"column:notes;type:text"`
	Symptoms string `gorm:"column:symptoms;type:text"`
	Room     string `gorm:"column:room;type:varchar(50)"`

	ReminderSent   bool       `gorm:"column:reminder_sent;not null;default:false;index"`
	ReminderSentAt *time.Time `gorm:"column:reminder_sent_at"`

	// Back-link to the medical record spawned by this visit, if any.
	MedicalRecordID *uuid.UUID `gorm:"column:medical_record_id;type:uuid;index"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMins) * time.Minute)
}

func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusNoShow},
		StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
		StatusInProgress: {StatusCompleted, StatusCancelled, StatusNoShow},
		StatusCompleted:  {},
		StatusCancelled:  {},
		StatusNoShow:     {},
	}

	for _, s := range allowed[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Transition moves the appointment to next. Re-applying the status an
// appointment already has is an idempotent no-op; any other move out of a
// terminal state fails.
func (a *Appointment) Transition(next AppointmentStatus, now time.Time) error {
	if a.Status == next {
		return nil
	}
	if !a.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}

// Overlaps reports whether two half-open intervals [ScheduledAt, EndsAt)
// intersect. Used by tests to document the intended no-overlap invariant;
// the persisted check lives in Repository.HasConflict.
func (a *Appointment) Overlaps(other *Appointment) bool {
	return a.ScheduledAt.Before(other.EndsAt()) && other.ScheduledAt.Before(a.EndsAt())
}

type CreateAppointmentCommand struct {
	PatientID    uuid.UUID
	HospitalID   uuid.UUID
	DoctorID     *uuid.UUID
	ScheduledAt  time.Time
	Department   string
	DurationMins int
	Type         AppointmentType
	Notes        string
	Symptoms     string
	Room         string
}

type UpdateAppointmentCommand struct {
	ScheduledAt  *time.Time
	Department   *string
	DurationMins *int
	Type         *AppointmentType
	Notes        *string
	Symptoms     *string
	Room         *string
	DoctorID     *uuid.UUID
}

type ListAppointmentsQuery struct {
	PatientID  *uuid.UUID
	HospitalID *uuid.UUID
	Status     *AppointmentStatus
	Department *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}

// StatisticsScope narrows aggregate queries to one patient or one hospital.
// Both nil means the whole store.
type StatisticsScope struct {
	PatientID  *uuid.UUID
	HospitalID *uuid.UUID
	Since      time.Time
}

type MonthlyStatistics struct {
	MonthlyAppointments  map[string]int64            `json:"monthlyAppointments"` // "YYYY-MM" → count
	StatusStatistics     map[AppointmentStatus]int64 `json:"statusStatistics"`
	DepartmentStatistics map[string]int64            `json:"departmentStatistics"`
	CompletionRate       float64                     `json:"completionRate"` // percent, 2 decimals
}

type DashboardStatistics struct {
	TodayAppointments   int64   `json:"todayAppointments"`
	WeeklyAppointments  int64   `json:"weeklyAppointments"`
	PendingAppointments int64   `json:"pendingAppointments"`
	CancellationRate    float64 `json:"cancellationRate"` // percent over last 30 days
}
