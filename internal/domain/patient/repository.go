package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrDuplicatePhoneNumber on a
	// phone number collision.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	GetByPhoneNumber(ctx context.Context, phone string) (*Patient, error)

	// Update applies partial updates to an existing patient record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePatientCommand) (*Patient, error)

	// Delete removes the patient row. Deletion is hard; there is no archival flag.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a paginated, filtered list of patients.
	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)

	// ExistsByPhoneNumber checks for uniqueness without fetching the full record.
	ExistsByPhoneNumber(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)

	Count(ctx context.Context) (int64, error)

	CountRegisteredBetween(ctx context.Context, from, to time.Time) (int64, error)
}
