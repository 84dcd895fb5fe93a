package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateAppointmentCommand) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// UpdateStatus persists the status and reminder fields of a mutated appointment.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// HasConflict reports whether the hospital already has a non-cancelled
	// appointment whose scheduled time falls inside [start, end]. This is a
	// read separate from the subsequent write; two concurrent creations for
	// the same slot can both pass it.
	HasConflict(ctx context.Context, hospitalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	// ListForDay returns the hospital's non-cancelled appointments whose
	// scheduled time falls on the given calendar day, ordered by time.
	ListForDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) ([]*Appointment, error)

	// ListUpcoming returns the patient's future scheduled/confirmed
	// appointments ordered by time.
	ListUpcoming(ctx context.Context, patientID uuid.UUID, after time.Time) ([]*Appointment, error)

	// ListDueReminders returns scheduled/confirmed appointments inside
	// [from, to) that have not had a reminder sent yet.
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*Appointment, error)

	// ClaimReminder flips reminder_sent from false to true for the given
	// appointment and returns whether this call won the flip. A run that
	// crashed after claiming but before emitting loses that reminder rather
	// than duplicating it.
	ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// Grouped aggregates, computed in the store rather than by scanning rows
	// into application memory.
	GroupByMonth(ctx context.Context, scope StatisticsScope) (map[string]int64, error)
	GroupByStatus(ctx context.Context, scope StatisticsScope) (map[AppointmentStatus]int64, error)
	GroupByDepartment(ctx context.Context, scope StatisticsScope) (map[string]int64, error)

	CountByHospitalAndStatus(ctx context.Context, hospitalID uuid.UUID, status AppointmentStatus) (int64, error)
	CountForDateRange(ctx context.Context, hospitalID uuid.UUID, from, to time.Time) (int64, error)

	// ListStale returns scheduled/confirmed appointments whose time passed
	// before the cutoff. Used by the expiry sweep.
	ListStale(ctx context.Context, cutoff time.Time) ([]*Appointment, error)

	// Search matches a keyword against department, notes, symptoms, and room.
	Search(ctx context.Context, keyword string) ([]*Appointment, error)
}
