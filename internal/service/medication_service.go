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
)

type MedicationService struct {
	repo        medication.Repository
	patientRepo patient.Repository
	log         *zap.Logger
	now         func() time.Time
}

func NewMedicationService(repo medication.Repository, patientRepo patient.Repository, log *zap.Logger) *MedicationService {
	return &MedicationService{repo: repo, patientRepo: patientRepo, log: log, now: time.Now}
}

func (s *MedicationService) WithClock(now func() time.Time) *MedicationService {
	s.now = now
	return s
}

func (s *MedicationService) Create(ctx context.Context, cmd *medication.CreateMedicationCommand) (*medication.Medication, error) {
	if err := validateMedicationCommand(cmd); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}

	m := &medication.Medication{
		PatientID:       cmd.PatientID,
		PrescriptionID:  cmd.PrescriptionID,
		Name:            strings.TrimSpace(cmd.Name),
		Dosage:          cmd.Dosage,
		FrequencyPerDay: cmd.FrequencyPerDay,
		StartDate:       cmd.StartDate,
		EndDate:         cmd.EndDate,
		TimeOfDay:       cmd.TimeOfDay,
		Status:          medication.StatusActive,
		Instructions:    cmd.Instructions,
		SideEffects:     cmd.SideEffects,
		ReminderEnabled: cmd.ReminderEnabled,
	}
	m.TotalDoses = m.ComputeTotalDoses()

	if err := s.repo.Create(ctx, m); err != nil {
		s.log.Error("failed to create medication", zap.Error(err))
		return nil, fmt.Errorf("creating medication: %w", err)
	}

	s.log.Info("medication created",
		zap.String("medication_id", m.ID.String()),
		zap.String("patient_id", m.PatientID.String()),
		zap.Int("total_doses", m.TotalDoses),
	)

	return m, nil
}

func (s *MedicationService) Get(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MedicationService) Update(ctx context.Context, id uuid.UUID, cmd *medication.UpdateMedicationCommand) (*medication.Medication, error) {
	if cmd.FrequencyPerDay != nil && *cmd.FrequencyPerDay < 1 {
		return nil, medication.ErrInvalidFrequency
	}
	if cmd.TimeOfDay != nil && !cmd.TimeOfDay.IsValid() {
		return nil, medication.ErrInvalidTimeOfDay
	}

	m, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	// The dose budget follows the schedule whenever it changes.
	if cmd.StartDate != nil || cmd.EndDate != nil || cmd.FrequencyPerDay != nil {
		if m.EndDate.Before(m.StartDate) {
			return nil, medication.ErrInvalidDateRange
		}
		m.TotalDoses = m.ComputeTotalDoses()
		if err := s.repo.Save(ctx, m); err != nil {
			return nil, fmt.Errorf("recomputing dose budget: %w", err)
		}
	}

	return m, nil
}

func (s *MedicationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *MedicationService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *MedicationService) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	return s.repo.ListActiveByPatient(ctx, patientID)
}

// TodayMedications returns the patient's active medications whose course
// covers the current calendar day.
func (s *MedicationService) TodayMedications(ctx context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	return s.repo.ListForDay(ctx, patientID, s.now())
}

// RecordDoseTaken counts one dose against the medication. Completion is
// decided inside the entity.
func (s *MedicationService) RecordDoseTaken(ctx context.Context, id uuid.UUID) (*medication.Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != medication.StatusActive {
		return nil, medication.ErrInvalidStatus
	}

	m.RecordTaken(s.now())
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("recording dose: %w", err)
	}

	if m.Status == medication.StatusCompleted {
		s.log.Info("medication course completed", zap.String("medication_id", id.String()))
	}

	return m, nil
}

func (s *MedicationService) ChangeStatus(ctx context.Context, id uuid.UUID, status medication.MedicationStatus) (*medication.Medication, error) {
	if !status.IsValid() {
		return nil, medication.ErrInvalidStatus
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m.Status = status
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("updating medication status: %w", err)
	}
	return m, nil
}

// ExpireOverdue completes every active medication whose end date has
// passed. Called by the nightly sweep.
func (s *MedicationService) ExpireOverdue(ctx context.Context) (int, error) {
	today := s.now()
	expired, err := s.repo.ListActiveExpired(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("listing expired medications: %w", err)
	}

	done := 0
	for _, m := range expired {
		m.Status = medication.StatusCompleted
		if err := s.repo.Save(ctx, m); err != nil {
			s.log.Error("failed to expire medication",
				zap.String("medication_id", m.ID.String()), zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

func validateMedicationCommand(cmd *medication.CreateMedicationCommand) error {
	var errs []string

	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if cmd.Dosage == "" {
		errs = append(errs, "dosage is required")
	}
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() {
		errs = append(errs, "start_date and end_date are required")
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	if cmd.FrequencyPerDay < 1 {
		return medication.ErrInvalidFrequency
	}
	if cmd.EndDate.Before(cmd.StartDate) {
		return medication.ErrInvalidDateRange
	}
	if cmd.TimeOfDay != "" && !cmd.TimeOfDay.IsValid() {
		return medication.ErrInvalidTimeOfDay
	}
	return nil
}
