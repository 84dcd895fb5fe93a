package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain/patient"
)

type PatientService struct {
	repo patient.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewPatientService(repo patient.Repository, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, log: log, now: time.Now}
}

func (s *PatientService) WithClock(now func() time.Time) *PatientService {
	s.now = now
	return s
}

func (s *PatientService) Register(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	if err := validateRegisterCommand(cmd); err != nil {
		return nil, err
	}

	now := s.now()
	if cmd.BirthDate.After(now) {
		return nil, patient.ErrInvalidBirthDate
	}

	exists, err := s.repo.ExistsByPhoneNumber(ctx, cmd.PhoneNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("checking phone number: %w", err)
	}
	if exists {
		return nil, patient.ErrDuplicatePhoneNumber
	}

	// Patient numbers are year-scoped and sequential. The count read and
	// the insert are not atomic, so the unique index is the backstop.
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}

	gender := cmd.Gender
	if gender == "" {
		gender = patient.GenderUnknown
	}
	bloodType := cmd.BloodType
	if bloodType == "" {
		bloodType = patient.BloodTypeUnknown
	}

	p := &patient.Patient{
		Name:           strings.TrimSpace(cmd.Name),
		PhoneNumber:    cmd.PhoneNumber,
		Address:        cmd.Address,
		BirthDate:      cmd.BirthDate,
		Gender:         gender,
		BloodType:      bloodType,
		Allergies:      cmd.Allergies,
		MedicalHistory: cmd.MedicalHistory,
		PatientNumber:  patient.NewPatientNumber(now, count),
		HospitalID:     cmd.HospitalID,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to register patient", zap.Error(err))
		return nil, fmt.Errorf("registering patient: %w", err)
	}

	s.log.Info("patient registered",
		zap.String("patient_id", p.ID.String()),
		zap.String("patient_number", p.PatientNumber),
	)

	return p, nil
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) GetByPhoneNumber(ctx context.Context, phone string) (*patient.Patient, error) {
	if !patient.ValidPhoneNumber(phone) {
		return nil, patient.ErrInvalidPhoneNumber
	}
	return s.repo.GetByPhoneNumber(ctx, phone)
}

func (s *PatientService) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	if cmd.PhoneNumber != nil {
		if !patient.ValidPhoneNumber(*cmd.PhoneNumber) {
			return nil, patient.ErrInvalidPhoneNumber
		}
		exists, err := s.repo.ExistsByPhoneNumber(ctx, *cmd.PhoneNumber, &id)
		if err != nil {
			return nil, fmt.Errorf("checking phone number: %w", err)
		}
		if exists {
			return nil, patient.ErrDuplicatePhoneNumber
		}
	}
	if cmd.Gender != nil && !cmd.Gender.IsValid() {
		return nil, patient.ErrInvalidGender
	}
	return s.repo.Update(ctx, id, cmd)
}

func (s *PatientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("patient deleted", zap.String("patient_id", id.String()))
	return nil
}

func (s *PatientService) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

// RegisteredThisWeek counts patients registered since Monday of the
// current week. Feeds the hospital dashboard.
func (s *PatientService) RegisteredThisWeek(ctx context.Context) (int64, error) {
	now := s.now()
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(int(now.Weekday())+6)%7)
	return s.repo.CountRegisteredBetween(ctx, weekStart, weekStart.AddDate(0, 0, 7))
}

func validateRegisterCommand(cmd *patient.CreatePatientCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if cmd.PhoneNumber == "" {
		errs = append(errs, "phone_number is required")
	} else if !patient.ValidPhoneNumber(cmd.PhoneNumber) {
		errs = append(errs, "phone_number must match 010-XXXX-XXXX")
	}
	if cmd.BirthDate.IsZero() {
		errs = append(errs, "birth_date is required")
	}
	if cmd.Gender != "" && !cmd.Gender.IsValid() {
		errs = append(errs, "gender is invalid")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
