package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain/appointment"
	"github.com/medifit/medifit-api/internal/domain/patient"
)

type AppointmentService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	log         *zap.Logger
	now         func() time.Time
}

func NewAppointmentService(repo appointment.Repository, patientRepo patient.Repository, log *zap.Logger) *AppointmentService {
	return &AppointmentService{repo: repo, patientRepo: patientRepo, log: log, now: time.Now}
}

// WithClock overrides the service's time source. Test hook.
func (s *AppointmentService) WithClock(now func() time.Time) *AppointmentService {
	s.now = now
	return s
}

// Schedule validates and persists a new appointment with status scheduled.
// The conflict check is a read followed by a separate insert: two concurrent
// requests for the same slot can both pass it and both land. The store's
// default isolation is the only guard.
func (s *AppointmentService) Schedule(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (*appointment.Appointment, error) {
	if err := validateScheduleCommand(cmd); err != nil {
		return nil, err
	}

	now := s.now()
	if cmd.ScheduledAt.Before(now) {
		return nil, appointment.ErrScheduledInPast
	}
	if !appointment.WithinWorkingHours(cmd.ScheduledAt) {
		return nil, appointment.ErrOutsideWorkingHours
	}

	duration := cmd.DurationMins
	if duration == 0 {
		duration = appointment.DefaultDurationMins
	}
	if duration < 5 || duration > 480 {
		return nil, appointment.ErrInvalidDuration
	}

	apptType := cmd.Type
	if apptType == "" {
		apptType = appointment.TypeConsultation
	}
	if !apptType.IsValid() {
		return nil, appointment.ErrInvalidAppointmentType
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}

	// Duration-aware window on both sides of the proposed start.
	window := time.Duration(duration) * time.Minute
	conflict, err := s.repo.HasConflict(ctx, cmd.HospitalID, cmd.ScheduledAt.Add(-window), cmd.ScheduledAt.Add(window), nil)
	if err != nil {
		return nil, fmt.Errorf("checking conflicts: %w", err)
	}
	if conflict {
		return nil, appointment.ErrAppointmentConflict
	}

	a := &appointment.Appointment{
		PatientID:    cmd.PatientID,
		HospitalID:   cmd.HospitalID,
		DoctorID:     cmd.DoctorID,
		ScheduledAt:  cmd.ScheduledAt,
		Department:   cmd.Department,
		DurationMins: duration,
		Type:         apptType,
		Status:       appointment.StatusScheduled,
		Notes:        cmd.Notes,
		Symptoms:     cmd.Symptoms,
		Room:         cmd.Room,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.log.Info("appointment scheduled",
		zap.String("appointment_id", a.ID.String()),
		zap.String("hospital_id", a.HospitalID.String()),
		zap.Time("scheduled_at", a.ScheduledAt),
	)

	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	if cmd.ScheduledAt != nil && cmd.ScheduledAt.Before(s.now()) {
		return nil, appointment.ErrScheduledInPast
	}
	return s.repo.Update(ctx, id, cmd)
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *AppointmentService) Search(ctx context.Context, keyword string) ([]*appointment.Appointment, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, keyword)
}

func (s *AppointmentService) Confirm(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusConfirmed)
}

func (s *AppointmentService) Start(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusInProgress)
}

func (s *AppointmentService) Complete(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusCompleted)
}

func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusCancelled)
}

func (s *AppointmentService) MarkNoShow(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.transition(ctx, id, appointment.StatusNoShow)
}

func (s *AppointmentService) transition(ctx context.Context, id uuid.UUID, next appointment.AppointmentStatus) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := a.Status
	if err := a.Transition(next, s.now()); err != nil {
		return nil, err
	}
	if a.Status == prev {
		// Idempotent re-apply; nothing to persist.
		return a, nil
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.log.Info("appointment status changed",
		zap.String("appointment_id", id.String()),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)

	return a, nil
}

// AvailableSlots returns the free "HH:mm" start times of the hospital's
// working window on the given day.
func (s *AppointmentService) AvailableSlots(ctx context.Context, hospitalID uuid.UUID, day time.Time) ([]string, error) {
	booked, err := s.repo.ListForDay(ctx, hospitalID, day)
	if err != nil {
		return nil, fmt.Errorf("listing booked appointments: %w", err)
	}
	return appointment.AvailableSlots(booked), nil
}

func (s *AppointmentService) Upcoming(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListUpcoming(ctx, patientID, s.now())
}

func (s *AppointmentService) Today(ctx context.Context, hospitalID uuid.UUID) ([]*appointment.Appointment, error) {
	return s.repo.ListForDay(ctx, hospitalID, s.now())
}

// MonthlyStatistics aggregates the last 12 months of appointments, scoped by
// patient or hospital if given. Grouping runs in the store.
func (s *AppointmentService) MonthlyStatistics(ctx context.Context, patientID, hospitalID *uuid.UUID) (*appointment.MonthlyStatistics, error) {
	scope := appointment.StatisticsScope{
		PatientID:  patientID,
		HospitalID: hospitalID,
		Since:      s.now().AddDate(0, -12, 0),
	}

	byMonth, err := s.repo.GroupByMonth(ctx, scope)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.GroupByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.repo.GroupByDepartment(ctx, scope)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	completed := byStatus[appointment.StatusCompleted]

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*100*100) / 100
	}

	return &appointment.MonthlyStatistics{
		MonthlyAppointments:  byMonth,
		StatusStatistics:     byStatus,
		DepartmentStatistics: byDepartment,
		CompletionRate:       rate,
	}, nil
}

// DashboardStatistics summarizes a hospital's current load.
func (s *AppointmentService) DashboardStatistics(ctx context.Context, hospitalID uuid.UUID) (*appointment.DashboardStatistics, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -(int(now.Weekday())+6)%7) // Monday

	today, err := s.repo.CountForDateRange(ctx, hospitalID, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.CountForDateRange(ctx, hospitalID, startOfWeek, startOfWeek.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountByHospitalAndStatus(ctx, hospitalID, appointment.StatusScheduled)
	if err != nil {
		return nil, err
	}

	scope := appointment.StatisticsScope{HospitalID: &hospitalID, Since: now.AddDate(0, 0, -30)}
	byStatus, err := s.repo.GroupByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}

	var recent int64
	for _, n := range byStatus {
		recent += n
	}
	cancelRate := 0.0
	if recent > 0 {
		cancelRate = math.Round(float64(byStatus[appointment.StatusCancelled])/float64(recent)*100*100) / 100
	}

	return &appointment.DashboardStatistics{
		TodayAppointments:   today,
		WeeklyAppointments:  weekly,
		PendingAppointments: pending,
		CancellationRate:    cancelRate,
	}, nil
}

// CancelStale cancels scheduled/confirmed appointments whose time passed
// more than a day ago. Returns how many were cancelled.
func (s *AppointmentService) CancelStale(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -1)
	stale, err := s.repo.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing stale appointments: %w", err)
	}

	cancelled := 0
	for _, a := range stale {
		if err := a.Transition(appointment.StatusCancelled, s.now()); err != nil {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			s.log.Error("failed to cancel stale appointment",
				zap.String("appointment_id", a.ID.String()), zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

func validateScheduleCommand(cmd *appointment.CreateAppointmentCommand) error {
	var errs []string

	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if cmd.HospitalID == uuid.Nil {
		errs = append(errs, "hospital_id is required")
	}
	if cmd.ScheduledAt.IsZero() {
		errs = append(errs, "scheduled_at is required")
	}
	if strings.TrimSpace(cmd.Department) == "" {
		errs = append(errs, "department is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
