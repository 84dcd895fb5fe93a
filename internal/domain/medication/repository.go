package medication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)

	// Save persists a mutated medication in full, including dose counters
	// and status.
	Save(ctx context.Context, m *Medication) error

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateMedicationCommand) (*Medication, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
	ListByStatus(ctx context.Context, status MedicationStatus) ([]*Medication, error)

	// ListForDay returns the patient's active medications whose course
	// covers the given calendar day.
	ListForDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*Medication, error)

	// ListDueForReminder returns active, reminder-enabled medications in the
	// given bucket whose course covers the given day. Feeds the hourly
	// reminder job.
	ListDueForReminder(ctx context.Context, bucket TimeOfDay, day time.Time) ([]*Medication, error)

	// ListActiveExpired returns active medications whose end date precedes
	// the given day. Feeds the midnight expiry sweep.
	ListActiveExpired(ctx context.Context, day time.Time) ([]*Medication, error)
}
