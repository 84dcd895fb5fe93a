package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain/appointment"
	"github.com/medifit/medifit-api/internal/domain/medication"
)

// Notification is one outbound reminder message.
type Notification struct {
	PatientID uuid.UUID
	Kind      string // "appointment_reminder", "medication_reminder", "appointment_confirmation", "appointment_cancellation"
	Title     string
	Body      string
	SentAt    time.Time
}

// Notifier delivers notifications. The default implementation writes
// structured log lines; push or SMS gateways slot in behind the same
// interface.
type Notifier interface {
	Send(ctx context.Context, n *Notification) error
}

type logNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Send(_ context.Context, msg *Notification) error {
	n.log.Info("notification sent",
		zap.String("patient_id", msg.PatientID.String()),
		zap.String("kind", msg.Kind),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
	)
	return nil
}

type NotificationService struct {
	appointmentRepo appointment.Repository
	medicationRepo  medication.Repository
	notifier        Notifier
	log             *zap.Logger
	now             func() time.Time
}

func NewNotificationService(appointmentRepo appointment.Repository, medicationRepo medication.Repository, notifier Notifier, log *zap.Logger) *NotificationService {
	return &NotificationService{
		appointmentRepo: appointmentRepo,
		medicationRepo:  medicationRepo,
		notifier:        notifier,
		log:             log,
		now:             time.Now,
	}
}

func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// SendAppointmentReminders emits one reminder per appointment scheduled
// inside the window, which covers aheadDays whole calendar days starting
// tomorrow. Appointments later today are never targeted; the daily run is
// a day-before reminder. Each appointment's reminder flag is claimed with a
// conditional update before the send, so concurrent runs cannot double-emit;
// a reminder is at-most-once, not at-least-once.
func (s *NotificationService) SendAppointmentReminders(ctx context.Context, aheadDays int) (int, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	due, err := s.appointmentRepo.ListDueReminders(ctx, from, from.AddDate(0, 0, aheadDays))
	if err != nil {
		return 0, fmt.Errorf("listing due reminders: %w", err)
	}

	sent := 0
	for _, a := range due {
		claimed, err := s.appointmentRepo.ClaimReminder(ctx, a.ID, now)
		if err != nil {
			s.log.Error("failed to claim appointment reminder",
				zap.String("appointment_id", a.ID.String()), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		n := &Notification{
			PatientID: a.PatientID,
			Kind:      "appointment_reminder",
			Title:     "Upcoming appointment",
			Body: fmt.Sprintf("You have a %s appointment in %s on %s.",
				a.Type, a.Department, a.ScheduledAt.Format("2006-01-02 15:04")),
			SentAt: now,
		}
		if err := s.notifier.Send(ctx, n); err != nil {
			s.log.Error("failed to send appointment reminder",
				zap.String("appointment_id", a.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	return sent, nil
}

// SendMedicationReminders emits reminders for the bucket covering the
// current hour. Medications marked as_needed belong to no hourly bucket
// and are never targeted.
func (s *NotificationService) SendMedicationReminders(ctx context.Context) (int, error) {
	return s.SendMedicationRemindersForBucket(ctx, medication.BucketForHour(s.now().Hour()))
}

// SendMedicationRemindersForBucket emits reminders for one named bucket
// regardless of the current hour. Backs the manual trigger endpoint.
func (s *NotificationService) SendMedicationRemindersForBucket(ctx context.Context, bucket medication.TimeOfDay) (int, error) {
	now := s.now()

	due, err := s.medicationRepo.ListDueForReminder(ctx, bucket, now)
	if err != nil {
		return 0, fmt.Errorf("listing due medications: %w", err)
	}

	sent := 0
	for _, m := range due {
		n := &Notification{
			PatientID: m.PatientID,
			Kind:      "medication_reminder",
			Title:     "Time to take your medication",
			Body:      fmt.Sprintf("%s (%s), %s.", m.Name, m.Dosage, bucketLabel(bucket)),
			SentAt:    now,
		}
		if err := s.notifier.Send(ctx, n); err != nil {
			s.log.Error("failed to send medication reminder",
				zap.String("medication_id", m.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	return sent, nil
}

// SendAppointmentConfirmation notifies the patient that their appointment
// has been confirmed.
func (s *NotificationService) SendAppointmentConfirmation(ctx context.Context, id uuid.UUID) error {
	return s.sendAppointmentNotice(ctx, id, "appointment_confirmation",
		"Appointment confirmed", "Your %s appointment in %s on %s is confirmed.")
}

// SendAppointmentCancellation notifies the patient that their appointment
// has been cancelled.
func (s *NotificationService) SendAppointmentCancellation(ctx context.Context, id uuid.UUID) error {
	return s.sendAppointmentNotice(ctx, id, "appointment_cancellation",
		"Appointment cancelled", "Your %s appointment in %s on %s has been cancelled.")
}

func (s *NotificationService) sendAppointmentNotice(ctx context.Context, id uuid.UUID, kind, title, format string) error {
	a, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n := &Notification{
		PatientID: a.PatientID,
		Kind:      kind,
		Title:     title,
		Body:      fmt.Sprintf(format, a.Type, a.Department, a.ScheduledAt.Format("2006-01-02 15:04")),
		SentAt:    s.now(),
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		return fmt.Errorf("sending %s: %w", kind, err)
	}
	return nil
}

func bucketLabel(t medication.TimeOfDay) string {
	switch t {
	case medication.BeforeBreakfast:
		return "before breakfast"
	case medication.AfterBreakfast:
		return "after breakfast"
	case medication.BeforeLunch:
		return "before lunch"
	case medication.AfterLunch:
		return "after lunch"
	case medication.BeforeDinner:
		return "before dinner"
	case medication.AfterDinner:
		return "after dinner"
	case medication.BeforeSleep:
		return "before sleep"
	default:
		return "as needed"
	}
}
