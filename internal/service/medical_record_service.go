package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain/medical_record"
	"github.com/medifit/medifit-api/internal/domain/patient"
)

type MedicalRecordService struct {
	repo        medical_record.Repository
	patientRepo patient.Repository
	summarizer  Summarizer
	log         *zap.Logger
	now         func() time.Time
}

func NewMedicalRecordService(repo medical_record.Repository, patientRepo patient.Repository, summarizer Summarizer, log *zap.Logger) *MedicalRecordService {
	return &MedicalRecordService{
		repo:        repo,
		patientRepo: patientRepo,
		summarizer:  summarizer,
		log:         log,
		now:         time.Now,
	}
}

func (s *MedicalRecordService) WithClock(now func() time.Time) *MedicalRecordService {
	s.now = now
	return s
}

func (s *MedicalRecordService) Create(ctx context.Context, cmd *medical_record.CreateRecordCommand) (*medical_record.MedicalRecord, error) {
	var errs []string
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if strings.TrimSpace(cmd.Diagnosis) == "" {
		errs = append(errs, "diagnosis is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}

	visitDate := cmd.VisitDate
	if visitDate.IsZero() {
		visitDate = s.now()
	}

	r := &medical_record.MedicalRecord{
		PatientID:     cmd.PatientID,
		DoctorID:      cmd.DoctorID,
		AppointmentID: cmd.AppointmentID,
		Department:    cmd.Department,
		Symptoms:      cmd.Symptoms,
		Diagnosis:     strings.TrimSpace(cmd.Diagnosis),
		Treatment:     cmd.Treatment,
		DoctorNotes:   cmd.DoctorNotes,
		Status:        medical_record.StatusActive,
		VisitDate:     visitDate,
		MedicalFee:    cmd.MedicalFee,
		Room:          cmd.Room,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to create medical record", zap.Error(err))
		return nil, fmt.Errorf("creating medical record: %w", err)
	}

	s.log.Info("medical record created",
		zap.String("record_id", r.ID.String()),
		zap.String("patient_id", r.PatientID.String()),
	)

	return r, nil
}

func (s *MedicalRecordService) Get(ctx context.Context, id uuid.UUID) (*medical_record.MedicalRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MedicalRecordService) Update(ctx context.Context, id uuid.UUID, cmd *medical_record.UpdateRecordCommand) (*medical_record.MedicalRecord, error) {
	if cmd.Diagnosis != nil && strings.TrimSpace(*cmd.Diagnosis) == "" {
		return nil, medical_record.ErrDiagnosisRequired
	}
	if cmd.Status != nil && !cmd.Status.IsValid() {
		return nil, medical_record.ErrInvalidRecordStatus
	}
	return s.repo.Update(ctx, id, cmd)
}

func (s *MedicalRecordService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *MedicalRecordService) List(ctx context.Context, q *medical_record.ListRecordsQuery) (*medical_record.PagedRecords, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *MedicalRecordService) Search(ctx context.Context, keyword string) ([]*medical_record.MedicalRecord, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, keyword)
}

// GenerateSummary produces and stores a fresh summary for the record.
// Regenerating overwrites the previous one.
func (s *MedicalRecordService) GenerateSummary(ctx context.Context, id uuid.UUID) (string, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	summary, err := s.summarizer.Summarize(ctx, r)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}

	if err := s.repo.SetAISummary(ctx, id, summary); err != nil {
		return "", fmt.Errorf("storing summary: %w", err)
	}

	s.log.Info("record summary generated", zap.String("record_id", id.String()))
	return summary, nil
}

// DiagnosisStatistics aggregates a patient's record history over the last
// 12 months of visits. Grouping runs in the store.
func (s *MedicalRecordService) DiagnosisStatistics(ctx context.Context, patientID uuid.UUID) (*medical_record.DiagnosisStatistics, error) {
	byDiagnosis, err := s.repo.GroupDiagnosisFrequency(ctx, patientID)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.repo.GroupDepartmentFrequency(ctx, patientID)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.repo.GroupMonthlyVisits(ctx, patientID, s.now().AddDate(0, -12, 0))
	if err != nil {
		return nil, err
	}

	var total int64
	mostCommon := ""
	var mostCount int64
	for d, n := range byDiagnosis {
		total += n
		if n > mostCount {
			mostCount = n
			mostCommon = d
		}
	}

	return &medical_record.DiagnosisStatistics{
		DiagnosisFrequency:  byDiagnosis,
		DepartmentFrequency: byDepartment,
		MonthlyVisitPattern: byMonth,
		TotalRecords:        total,
		UniqueDiagnoses:     len(byDiagnosis),
		MostCommonDiagnosis: mostCommon,
	}, nil
}

func (s *MedicalRecordService) FeeStatistics(ctx context.Context, patientID uuid.UUID) (*medical_record.FeeStatistics, error) {
	return s.repo.FeeAggregates(ctx, patientID)
}

func (s *MedicalRecordService) RecentHistory(ctx context.Context, patientID uuid.UUID, limit int) ([]*medical_record.MedicalRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.ListByPatient(ctx, patientID, limit)
}
