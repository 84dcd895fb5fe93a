package medical_record

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateRecordCommand) (*MedicalRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *ListRecordsQuery) (*PagedRecords, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*MedicalRecord, error)

	// Search matches a keyword against diagnosis, symptoms, treatment, and notes.
	Search(ctx context.Context, keyword string) ([]*MedicalRecord, error)

	// SetAISummary stores a freshly generated summary without touching the
	// clinical fields.
	SetAISummary(ctx context.Context, id uuid.UUID, summary string) error

	// Grouped aggregates computed in the store.
	GroupDiagnosisFrequency(ctx context.Context, patientID uuid.UUID) (map[string]int64, error)
	GroupDepartmentFrequency(ctx context.Context, patientID uuid.UUID) (map[string]int64, error)
	GroupMonthlyVisits(ctx context.Context, patientID uuid.UUID, since time.Time) (map[string]int64, error)
	FeeAggregates(ctx context.Context, patientID uuid.UUID) (*FeeStatistics, error)
}
