package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/domain"
	"github.com/medifit/medifit-api/internal/domain/appointment"
	"github.com/medifit/medifit-api/internal/domain/medical_record"
	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/patient"
	"github.com/medifit/medifit-api/internal/domain/prescription"
)

func fixedClock(value string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (f *fakePatientRepo) add(p *patient.Patient) *patient.Patient {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.patients[p.ID] = p
	return p
}

func (f *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	f.add(p)
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (f *fakePatientRepo) GetByPhoneNumber(_ context.Context, phone string) (*patient.Patient, error) {
	for _, p := range f.patients {
		if p.PhoneNumber == phone {
			return p, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (f *fakePatientRepo) Update(_ context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.PhoneNumber != nil {
		p.PhoneNumber = *cmd.PhoneNumber
	}
	return p, nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(f.patients, id)
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	var out []*patient.Patient
	for _, p := range f.patients {
		out = append(out, p)
	}
	return &patient.PagedPatients{
		Patients:   out,
		TotalCount: int64(len(out)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

func (f *fakePatientRepo) ExistsByPhoneNumber(_ context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range f.patients {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePatientRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.patients)), nil
}

func (f *fakePatientRepo) CountRegisteredBetween(_ context.Context, from, to time.Time) (int64, error) {
	var n int64
	for _, p := range f.patients {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*appointment.Appointment
	claimed      map[uuid.UUID]bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[uuid.UUID]*appointment.Appointment),
		claimed:      make(map[uuid.UUID]bool),
	}
}

func (f *fakeAppointmentRepo) add(a *appointment.Appointment) *appointment.Appointment {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DurationMins == 0 {
		a.DurationMins = appointment.DefaultDurationMins
	}
	f.appointments[a.ID] = a
	return a
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	f.add(a)
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return a, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if cmd.ScheduledAt != nil {
		a.ScheduledAt = *cmd.ScheduledAt
	}
	if cmd.Department != nil {
		a.Department = *cmd.Department
	}
	return a, nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		out = append(out, a)
	}
	return &appointment.PagedAppointments{
		Appointments: out,
		TotalCount:   int64(len(out)),
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   1,
	}, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	if _, ok := f.appointments[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) HasConflict(_ context.Context, hospitalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	for _, a := range f.appointments {
		if a.HospitalID != hospitalID || a.Status == appointment.StatusCancelled {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if !a.ScheduledAt.Before(start) && !a.ScheduledAt.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointmentRepo) ListForDay(_ context.Context, hospitalID uuid.UUID, day time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if a.HospitalID != hospitalID || a.Status == appointment.StatusCancelled {
			continue
		}
		if a.ScheduledAt.Year() == day.Year() && a.ScheduledAt.YearDay() == day.YearDay() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListUpcoming(_ context.Context, patientID uuid.UUID, after time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if a.PatientID != patientID || a.ScheduledAt.Before(after) {
			continue
		}
		if a.Status == appointment.StatusScheduled || a.Status == appointment.StatusConfirmed {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListDueReminders(_ context.Context, from, to time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if a.ReminderSent {
			continue
		}
		if a.Status != appointment.StatusScheduled && a.Status != appointment.StatusConfirmed {
			continue
		}
		if !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ClaimReminder(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	a, ok := f.appointments[id]
	if !ok {
		return false, appointment.ErrAppointmentNotFound
	}
	if a.ReminderSent {
		return false, nil
	}
	a.ReminderSent = true
	a.ReminderSentAt = &at
	f.claimed[id] = true
	return true, nil
}

func (f *fakeAppointmentRepo) GroupByMonth(_ context.Context, scope appointment.StatisticsScope) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, a := range f.scoped(scope) {
		out[a.CreatedAt.Format("2006-01")]++
	}
	return out, nil
}

func (f *fakeAppointmentRepo) GroupByStatus(_ context.Context, scope appointment.StatisticsScope) (map[appointment.AppointmentStatus]int64, error) {
	out := make(map[appointment.AppointmentStatus]int64)
	for _, a := range f.scoped(scope) {
		out[a.Status]++
	}
	return out, nil
}

func (f *fakeAppointmentRepo) GroupByDepartment(_ context.Context, scope appointment.StatisticsScope) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, a := range f.scoped(scope) {
		out[a.Department]++
	}
	return out, nil
}

func (f *fakeAppointmentRepo) scoped(scope appointment.StatisticsScope) []*appointment.Appointment {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if scope.PatientID != nil && a.PatientID != *scope.PatientID {
			continue
		}
		if scope.HospitalID != nil && a.HospitalID != *scope.HospitalID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (f *fakeAppointmentRepo) CountByHospitalAndStatus(_ context.Context, hospitalID uuid.UUID, status appointment.AppointmentStatus) (int64, error) {
	var n int64
	for _, a := range f.appointments {
		if a.HospitalID == hospitalID && a.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentRepo) CountForDateRange(_ context.Context, hospitalID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	for _, a := range f.appointments {
		if a.HospitalID != hospitalID {
			continue
		}
		if !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentRepo) ListStale(_ context.Context, cutoff time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if a.Status != appointment.StatusScheduled && a.Status != appointment.StatusConfirmed {
			continue
		}
		if a.ScheduledAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Search(_ context.Context, keyword string) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range f.appointments {
		if a.Department == keyword {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeMedicationRepo struct {
	medications map[uuid.UUID]*medication.Medication
}

func newFakeMedicationRepo() *fakeMedicationRepo {
	return &fakeMedicationRepo{medications: make(map[uuid.UUID]*medication.Medication)}
}

func (f *fakeMedicationRepo) add(m *medication.Medication) *medication.Medication {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.medications[m.ID] = m
	return m
}

func (f *fakeMedicationRepo) Create(_ context.Context, m *medication.Medication) error {
	f.add(m)
	return nil
}

func (f *fakeMedicationRepo) GetByID(_ context.Context, id uuid.UUID) (*medication.Medication, error) {
	m, ok := f.medications[id]
	if !ok {
		return nil, medication.ErrMedicationNotFound
	}
	return m, nil
}

func (f *fakeMedicationRepo) Save(_ context.Context, m *medication.Medication) error {
	if _, ok := f.medications[m.ID]; !ok {
		return medication.ErrMedicationNotFound
	}
	f.medications[m.ID] = m
	return nil
}

func (f *fakeMedicationRepo) Update(_ context.Context, id uuid.UUID, cmd *medication.UpdateMedicationCommand) (*medication.Medication, error) {
	m, ok := f.medications[id]
	if !ok {
		return nil, medication.ErrMedicationNotFound
	}
	if cmd.Name != nil {
		m.Name = *cmd.Name
	}
	if cmd.FrequencyPerDay != nil {
		m.FrequencyPerDay = *cmd.FrequencyPerDay
	}
	if cmd.StartDate != nil {
		m.StartDate = *cmd.StartDate
	}
	if cmd.EndDate != nil {
		m.EndDate = *cmd.EndDate
	}
	return m, nil
}

func (f *fakeMedicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.medications[id]; !ok {
		return medication.ErrMedicationNotFound
	}
	delete(f.medications, id)
	return nil
}

func (f *fakeMedicationRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) ListActiveByPatient(_ context.Context, patientID uuid.UUID) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.PatientID == patientID && m.Status == medication.StatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) ListByStatus(_ context.Context, status medication.MedicationStatus) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) ListForDay(_ context.Context, patientID uuid.UUID, day time.Time) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.PatientID == patientID && m.Status == medication.StatusActive && m.CoversDate(day) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) ListDueForReminder(_ context.Context, bucket medication.TimeOfDay, day time.Time) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.Status != medication.StatusActive || !m.ReminderEnabled {
			continue
		}
		if m.TimeOfDay == bucket && m.CoversDate(day) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedicationRepo) ListActiveExpired(_ context.Context, day time.Time) ([]*medication.Medication, error) {
	var out []*medication.Medication
	for _, m := range f.medications {
		if m.Status == medication.StatusActive && m.Expired(day) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeRecordRepo struct {
	records map[uuid.UUID]*medical_record.MedicalRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[uuid.UUID]*medical_record.MedicalRecord)}
}

func (f *fakeRecordRepo) add(r *medical_record.MedicalRecord) *medical_record.MedicalRecord {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.records[r.ID] = r
	return r
}

func (f *fakeRecordRepo) Create(_ context.Context, r *medical_record.MedicalRecord) error {
	f.add(r)
	return nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id uuid.UUID) (*medical_record.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, medical_record.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, id uuid.UUID, cmd *medical_record.UpdateRecordCommand) (*medical_record.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, medical_record.ErrRecordNotFound
	}
	if cmd.Diagnosis != nil {
		r.Diagnosis = *cmd.Diagnosis
	}
	if cmd.Status != nil {
		r.Status = *cmd.Status
	}
	return r, nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return medical_record.ErrRecordNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRecordRepo) List(_ context.Context, q *medical_record.ListRecordsQuery) (*medical_record.PagedRecords, error) {
	var out []*medical_record.MedicalRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	return &medical_record.PagedRecords{
		Records:    out,
		TotalCount: int64(len(out)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

func (f *fakeRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit int) ([]*medical_record.MedicalRecord, error) {
	var out []*medical_record.MedicalRecord
	for _, r := range f.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecordRepo) Search(_ context.Context, keyword string) ([]*medical_record.MedicalRecord, error) {
	var out []*medical_record.MedicalRecord
	for _, r := range f.records {
		if r.Diagnosis == keyword {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) SetAISummary(_ context.Context, id uuid.UUID, summary string) error {
	r, ok := f.records[id]
	if !ok {
		return medical_record.ErrRecordNotFound
	}
	r.AISummary = summary
	return nil
}

func (f *fakeRecordRepo) GroupDiagnosisFrequency(_ context.Context, patientID uuid.UUID) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range f.records {
		if r.PatientID == patientID {
			out[r.Diagnosis]++
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) GroupDepartmentFrequency(_ context.Context, patientID uuid.UUID) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range f.records {
		if r.PatientID == patientID {
			out[r.Department]++
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) GroupMonthlyVisits(_ context.Context, patientID uuid.UUID, since time.Time) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range f.records {
		if r.PatientID == patientID && !r.VisitDate.Before(since) {
			out[r.VisitDate.Format("2006-01")]++
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) FeeAggregates(_ context.Context, patientID uuid.UUID) (*medical_record.FeeStatistics, error) {
	stats := &medical_record.FeeStatistics{}
	for _, r := range f.records {
		if r.PatientID != patientID || r.MedicalFee == nil {
			continue
		}
		fee := int64(*r.MedicalFee)
		if stats.RecordCount == 0 || fee < stats.MinFee {
			stats.MinFee = fee
		}
		if fee > stats.MaxFee {
			stats.MaxFee = fee
		}
		stats.TotalFee += fee
		stats.RecordCount++
	}
	if stats.RecordCount > 0 {
		stats.AverageFee = float64(stats.TotalFee) / float64(stats.RecordCount)
	}
	return stats, nil
}

type fakePrescriptionRepo struct {
	prescriptions map[uuid.UUID]*prescription.Prescription
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{prescriptions: make(map[uuid.UUID]*prescription.Prescription)}
}

func (f *fakePrescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.prescriptions[p.ID] = p
	return nil
}

func (f *fakePrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	return p, nil
}

func (f *fakePrescriptionRepo) GetByNumber(_ context.Context, number string) (*prescription.Prescription, error) {
	for _, p := range f.prescriptions {
		if p.Number == number {
			return p, nil
		}
	}
	return nil, prescription.ErrPrescriptionNotFound
}

func (f *fakePrescriptionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status prescription.PrescriptionStatus) error {
	p, ok := f.prescriptions[id]
	if !ok {
		return prescription.ErrPrescriptionNotFound
	}
	p.Status = status
	return nil
}

func (f *fakePrescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.prescriptions[id]; !ok {
		return prescription.ErrPrescriptionNotFound
	}
	delete(f.prescriptions, id)
	return nil
}

func (f *fakePrescriptionRepo) List(_ context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	var out []*prescription.Prescription
	for _, p := range f.prescriptions {
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		out = append(out, p)
	}
	return &prescription.PagedPrescriptions{
		Prescriptions: out,
		TotalCount:    int64(len(out)),
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    1,
	}, nil
}

func (f *fakePrescriptionRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*prescription.Prescription, error) {
	var out []*prescription.Prescription
	for _, p := range f.prescriptions {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) RecordLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

// plainVerifier stores and compares passwords verbatim, keeping auth
// tests free of bcrypt cost.
type plainVerifier struct{}

func (plainVerifier) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainVerifier) Verify(hash, password string) bool { return hash == "plain:"+password }

type recordingNotifier struct {
	sent []*Notification
}

func (r *recordingNotifier) Send(_ context.Context, n *Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
