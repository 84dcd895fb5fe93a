package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/service"
)

func sameHour(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay() && a.Hour() == b.Hour()
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// MedicationReminderJob fires once per wall-clock hour and sends the
// reminders for the bucket covering that hour.
type MedicationReminderJob struct {
	notifications *service.NotificationService
	log           *zap.Logger
}

func NewMedicationReminderJob(notifications *service.NotificationService, log *zap.Logger) *MedicationReminderJob {
	return &MedicationReminderJob{notifications: notifications, log: log}
}

func (j *MedicationReminderJob) Name() string { return "medication_reminders" }

func (j *MedicationReminderJob) Due(lastRun, now time.Time) bool {
	return !sameHour(lastRun, now)
}

func (j *MedicationReminderJob) Run(ctx context.Context) error {
	sent, err := j.notifications.SendMedicationReminders(ctx)
	if err != nil {
		return fmt.Errorf("sending medication reminders: %w", err)
	}
	if sent > 0 {
		j.log.Info("medication reminders sent", zap.Int("count", sent))
	}
	return nil
}

// AppointmentReminderJob fires once a day at the configured hour and
// reminds patients of appointments inside the look-ahead window.
type AppointmentReminderJob struct {
	notifications *service.NotificationService
	hour          int
	aheadDays     int
	log           *zap.Logger
}

func NewAppointmentReminderJob(notifications *service.NotificationService, hour, aheadDays int, log *zap.Logger) *AppointmentReminderJob {
	return &AppointmentReminderJob{
		notifications: notifications,
		hour:          hour,
		aheadDays:     aheadDays,
		log:           log,
	}
}

func (j *AppointmentReminderJob) Name() string { return "appointment_reminders" }

func (j *AppointmentReminderJob) Due(lastRun, now time.Time) bool {
	return now.Hour() == j.hour && !sameDay(lastRun, now)
}

func (j *AppointmentReminderJob) Run(ctx context.Context) error {
	sent, err := j.notifications.SendAppointmentReminders(ctx, j.aheadDays)
	if err != nil {
		return fmt.Errorf("sending appointment reminders: %w", err)
	}
	if sent > 0 {
		j.log.Info("appointment reminders sent", zap.Int("count", sent))
	}
	return nil
}

// NightlySweepJob fires once a day after midnight. It completes expired
// medication courses and cancels appointments that were never acted on.
type NightlySweepJob struct {
	medications  *service.MedicationService
	appointments *service.AppointmentService
	log          *zap.Logger
}

func NewNightlySweepJob(medications *service.MedicationService, appointments *service.AppointmentService, log *zap.Logger) *NightlySweepJob {
	return &NightlySweepJob{medications: medications, appointments: appointments, log: log}
}

func (j *NightlySweepJob) Name() string { return "nightly_sweep" }

func (j *NightlySweepJob) Due(lastRun, now time.Time) bool {
	return now.Hour() == 0 && !sameDay(lastRun, now)
}

func (j *NightlySweepJob) Run(ctx context.Context) error {
	expired, err := j.medications.ExpireOverdue(ctx)
	if err != nil {
		return fmt.Errorf("expiring medications: %w", err)
	}

	cancelled, err := j.appointments.CancelStale(ctx)
	if err != nil {
		return fmt.Errorf("cancelling stale appointments: %w", err)
	}

	if expired > 0 || cancelled > 0 {
		j.log.Info("nightly sweep finished",
			zap.Int("medications_expired", expired),
			zap.Int("appointments_cancelled", cancelled),
		)
	}
	return nil
}
