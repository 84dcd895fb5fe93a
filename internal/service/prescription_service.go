package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/patient"
	"github.com/medifit/medifit-api/internal/domain/prescription"
)

type PrescriptionService struct {
	repo        prescription.Repository
	patientRepo patient.Repository
	log         *zap.Logger
	now         func() time.Time
}

func NewPrescriptionService(repo prescription.Repository, patientRepo patient.Repository, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{repo: repo, patientRepo: patientRepo, log: log, now: time.Now}
}

func (s *PrescriptionService) WithClock(now func() time.Time) *PrescriptionService {
	s.now = now
	return s
}

// Issue creates a prescription and one medication course per line in a
// single store write.
func (s *PrescriptionService) Issue(ctx context.Context, cmd *prescription.CreatePrescriptionCommand) (*prescription.Prescription, error) {
	if err := validateIssueCommand(cmd); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}

	now := s.now()
	prescribedAt := cmd.PrescribedAt
	if prescribedAt.IsZero() {
		prescribedAt = now
	}

	p := &prescription.Prescription{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		MedicalRecordID: cmd.MedicalRecordID,
		Number:          prescription.NewNumber(now),
		PrescribedAt:    prescribedAt,
		Status:          prescription.StatusPrescribed,
		Instructions:    cmd.Instructions,
		PharmacyNotes:   cmd.PharmacyNotes,
		Medications:     make([]medication.Medication, 0, len(cmd.Medications)),
	}

	for _, line := range cmd.Medications {
		m := medication.Medication{
			PatientID:       cmd.PatientID,
			Name:            strings.TrimSpace(line.Name),
			Dosage:          line.Dosage,
			FrequencyPerDay: line.FrequencyPerDay,
			StartDate:       line.StartDate,
			EndDate:         line.EndDate,
			TimeOfDay:       line.TimeOfDay,
			Status:          medication.StatusActive,
			Instructions:    line.Instructions,
			ReminderEnabled: true,
		}
		m.TotalDoses = m.ComputeTotalDoses()
		p.Medications = append(p.Medications, m)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to issue prescription", zap.Error(err))
		return nil, fmt.Errorf("issuing prescription: %w", err)
	}

	s.log.Info("prescription issued",
		zap.String("prescription_id", p.ID.String()),
		zap.String("number", p.Number),
		zap.Int("medications", len(p.Medications)),
	)

	return p, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PrescriptionService) GetByNumber(ctx context.Context, number string) (*prescription.Prescription, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *PrescriptionService) ChangeStatus(ctx context.Context, id uuid.UUID, status prescription.PrescriptionStatus) (*prescription.Prescription, error) {
	if !status.IsValid() {
		return nil, prescription.ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *PrescriptionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *PrescriptionService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func validateIssueCommand(cmd *prescription.CreatePrescriptionCommand) error {
	var errs []string

	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	for i, line := range cmd.Medications {
		if strings.TrimSpace(line.Name) == "" {
			errs = append(errs, fmt.Sprintf("medications[%d].name is required", i))
		}
		if line.FrequencyPerDay < 1 {
			errs = append(errs, fmt.Sprintf("medications[%d].frequency_per_day must be at least 1", i))
		}
		if line.EndDate.Before(line.StartDate) {
			errs = append(errs, fmt.Sprintf("medications[%d] end_date precedes start_date", i))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	if len(cmd.Medications) == 0 {
		return prescription.ErrNoMedications
	}
	return nil
}
