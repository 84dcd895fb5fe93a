package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists the prescription together with its medication lines.
	Create(ctx context.Context, p *Prescription) error

	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetByNumber(ctx context.Context, number string) (*Prescription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status PrescriptionStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}
