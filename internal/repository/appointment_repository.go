package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medifit/medifit-api/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("querying appointment: %w", err)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	updates := map[string]any{}
	if cmd.ScheduledAt != nil {
		updates["scheduled_at"] = *cmd.ScheduledAt
	}
	if cmd.Department != nil {
		updates["department"] = *cmd.Department
	}
	if cmd.DurationMins != nil {
		updates["duration_mins"] = *cmd.DurationMins
	}
	if cmd.Type != nil {
		updates["type"] = *cmd.Type
	}
	if cmd.Notes != nil {
		updates["notes"] = *cmd.Notes
	}
	if cmd.Symptoms != nil {
		updates["symptoms"] = *cmd.Symptoms
	}
	if cmd.Room != nil {
		updates["room"] = *cmd.Room
	}
	if cmd.DoctorID != nil {
		updates["doctor_id"] = *cmd.DoctorID
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, appointment.ErrAppointmentNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.HospitalID != nil {
		tx = tx.Where("hospital_id = ?", *q.HospitalID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.Department != nil {
		tx = tx.Where("department = ?", *q.Department)
	}
	if q.DateFrom != nil {
		tx = tx.Where("scheduled_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("scheduled_at < ?", *q.DateTo)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var appointments []*appointment.Appointment
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order("scheduled_at DESC").Offset(offset).Limit(q.PageSize).Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	return &appointment.PagedAppointments{
		Appointments: appointments,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages(total, q.PageSize),
	}, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":           a.Status,
			"reminder_sent":    a.ReminderSent,
			"reminder_sent_at": a.ReminderSentAt,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) HasConflict(ctx context.Context, hospitalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("hospital_id = ?", hospitalID).
		Where("status <> ?", appointment.StatusCancelled).
		Where("scheduled_at BETWEEN ? AND ?", start, end)
	if excludeID != nil {
		tx = tx.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking appointment conflict: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) ListForDay(ctx context.Context, hospitalID uuid.UUID, day time.Time) ([]*appointment.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Where("status <> ?", appointment.StatusCancelled).
		Where("scheduled_at >= ? AND scheduled_at < ?", start, end).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing day appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) ListUpcoming(ctx context.Context, patientID uuid.UUID, after time.Time) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Where("scheduled_at > ?", after).
		Where("status IN ?", []appointment.AppointmentStatus{appointment.StatusScheduled, appointment.StatusConfirmed}).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing upcoming appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("reminder_sent = false").
		Where("status IN ?", []appointment.AppointmentStatus{appointment.StatusScheduled, appointment.StatusConfirmed}).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing due reminders: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("id = ? AND reminder_sent = false", id).
		Updates(map[string]any{
			"reminder_sent":    true,
			"reminder_sent_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("claiming reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

type monthCount struct {
	Month string
	Count int64
}

type labelCount struct {
	Label string
	Count int64
}

func (r *AppointmentRepository) GroupByMonth(ctx context.Context, scope appointment.StatisticsScope) (map[string]int64, error) {
	var rows []monthCount
	err := r.scoped(ctx, scope).
		Select("to_char(created_at, 'YYYY-MM') AS month, count(*) AS count").
		Group("1").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping appointments by month: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Month] = row.Count
	}
	return out, nil
}

func (r *AppointmentRepository) GroupByStatus(ctx context.Context, scope appointment.StatisticsScope) (map[appointment.AppointmentStatus]int64, error) {
	var rows []labelCount
	err := r.scoped(ctx, scope).
		Select("status AS label, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping appointments by status: %w", err)
	}

	out := make(map[appointment.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		out[appointment.AppointmentStatus(row.Label)] = row.Count
	}
	return out, nil
}

func (r *AppointmentRepository) GroupByDepartment(ctx context.Context, scope appointment.StatisticsScope) (map[string]int64, error) {
	var rows []labelCount
	err := r.scoped(ctx, scope).
		Select("department AS label, count(*) AS count").
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("grouping appointments by department: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Label] = row.Count
	}
	return out, nil
}

func (r *AppointmentRepository) scoped(ctx context.Context, scope appointment.StatisticsScope) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("created_at >= ?", scope.Since)
	if scope.PatientID != nil {
		tx = tx.Where("patient_id = ?", *scope.PatientID)
	}
	if scope.HospitalID != nil {
		tx = tx.Where("hospital_id = ?", *scope.HospitalID)
	}
	return tx
}

func (r *AppointmentRepository) CountByHospitalAndStatus(ctx context.Context, hospitalID uuid.UUID, status appointment.AppointmentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("hospital_id = ? AND status = ?", hospitalID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting appointments by status: %w", err)
	}
	return count, nil
}

func (r *AppointmentRepository) CountForDateRange(ctx context.Context, hospitalID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("hospital_id = ?", hospitalID).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting appointments in range: %w", err)
	}
	return count, nil
}

func (r *AppointmentRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*appointment.Appointment, error) {
	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("scheduled_at < ?", cutoff).
		Where("status IN ?", []appointment.AppointmentStatus{appointment.StatusScheduled, appointment.StatusConfirmed}).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("listing stale appointments: %w", err)
	}
	return appointments, nil
}

func (r *AppointmentRepository) Search(ctx context.Context, keyword string) ([]*appointment.Appointment, error) {
	like := "%" + keyword + "%"
	var appointments []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("department ILIKE ? OR notes ILIKE ? OR symptoms ILIKE ? OR room ILIKE ?", like, like, like, like).
		Order("scheduled_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("searching appointments: %w", err)
	}
	return appointments, nil
}
