package service

import (
	"context"
	"errors"
	"testing"

	"github.com/medifit/medifit-api/internal/domain/medication"
	"github.com/medifit/medifit-api/internal/domain/patient"
)

func newMedicationFixture(clock string) (*MedicationService, *fakeMedicationRepo, *patient.Patient) {
	meds := newFakeMedicationRepo()
	patients := newFakePatientRepo()
	p := patients.add(&patient.Patient{Name: "Choi Yuna", PhoneNumber: "010-9999-0000"})

	svc := NewMedicationService(meds, patients, testLogger()).WithClock(fixedClock(clock))
	return svc, meds, p
}

func TestCreateMedicationComputesDoseBudget(t *testing.T) {
	svc, _, p := newMedicationFixture("2026-09-01 10:00")

	m, err := svc.Create(context.Background(), &medication.CreateMedicationCommand{
		PatientID:       p.ID,
		Name:            "Amoxicillin",
		Dosage:          "500mg",
		FrequencyPerDay: 2,
		StartDate:       birthDate(t, "2026-09-01"),
		EndDate:         birthDate(t, "2026-09-07"),
		TimeOfDay:       medication.AfterBreakfast,
		ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if m.TotalDoses != 14 {
		t.Errorf("TotalDoses = %d, want 14 for a 7-day course at 2/day", m.TotalDoses)
	}
	if m.Status != medication.StatusActive {
		t.Errorf("status = %s, want active", m.Status)
	}
}

func TestCreateMedicationValidation(t *testing.T) {
	svc, _, p := newMedicationFixture("2026-09-01 10:00")

	_, err := svc.Create(context.Background(), &medication.CreateMedicationCommand{
		PatientID:       p.ID,
		Name:            "Ibuprofen",
		Dosage:          "200mg",
		FrequencyPerDay: 0,
		StartDate:       birthDate(t, "2026-09-01"),
		EndDate:         birthDate(t, "2026-09-03"),
	})
	if !errors.Is(err, medication.ErrInvalidFrequency) {
		t.Fatalf("err = %v, want ErrInvalidFrequency", err)
	}

	_, err = svc.Create(context.Background(), &medication.CreateMedicationCommand{
		PatientID:       p.ID,
		Name:            "Ibuprofen",
		Dosage:          "200mg",
		FrequencyPerDay: 1,
		StartDate:       birthDate(t, "2026-09-05"),
		EndDate:         birthDate(t, "2026-09-01"),
	})
	if !errors.Is(err, medication.ErrInvalidDateRange) {
		t.Fatalf("err = %v, want ErrInvalidDateRange", err)
	}
}

func TestRecordDoseTakenCompletesCourse(t *testing.T) {
	svc, repo, p := newMedicationFixture("2026-09-01 10:00")

	m := repo.add(&medication.Medication{
		PatientID:       p.ID,
		Name:            "Amoxicillin",
		Dosage:          "500mg",
		FrequencyPerDay: 1,
		StartDate:       birthDate(t, "2026-09-01"),
		EndDate:         birthDate(t, "2026-09-02"),
		Status:          medication.StatusActive,
		TotalDoses:      2,
	})

	first, err := svc.RecordDoseTaken(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("first dose: %v", err)
	}
	if first.Status != medication.StatusActive {
		t.Errorf("status after 1/2 = %s, want active", first.Status)
	}

	second, err := svc.RecordDoseTaken(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("second dose: %v", err)
	}
	if second.Status != medication.StatusCompleted {
		t.Errorf("status after 2/2 = %s, want completed", second.Status)
	}

	if _, err := svc.RecordDoseTaken(context.Background(), m.ID); !errors.Is(err, medication.ErrInvalidStatus) {
		t.Fatalf("dose on completed course err = %v, want ErrInvalidStatus", err)
	}
}

func TestExpireOverdue(t *testing.T) {
	svc, repo, p := newMedicationFixture("2026-09-10 00:05")

	overdue := repo.add(&medication.Medication{
		PatientID: p.ID,
		Name:      "Old course",
		StartDate: birthDate(t, "2026-09-01"),
		EndDate:   birthDate(t, "2026-09-05"),
		Status:    medication.StatusActive,
	})
	current := repo.add(&medication.Medication{
		PatientID: p.ID,
		Name:      "Current course",
		StartDate: birthDate(t, "2026-09-08"),
		EndDate:   birthDate(t, "2026-09-15"),
		Status:    medication.StatusActive,
	})

	n, err := svc.ExpireOverdue(context.Background())
	if err != nil {
		t.Fatalf("ExpireOverdue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	if overdue.Status != medication.StatusCompleted {
		t.Errorf("overdue status = %s, want completed", overdue.Status)
	}
	if current.Status != medication.StatusActive {
		t.Errorf("current status = %s, want active", current.Status)
	}
}

func TestTodayMedications(t *testing.T) {
	svc, repo, p := newMedicationFixture("2026-09-03 09:00")

	covering := repo.add(&medication.Medication{
		PatientID: p.ID,
		Name:      "Covering",
		StartDate: birthDate(t, "2026-09-01"),
		EndDate:   birthDate(t, "2026-09-07"),
		Status:    medication.StatusActive,
	})
	repo.add(&medication.Medication{
		PatientID: p.ID,
		Name:      "Finished",
		StartDate: birthDate(t, "2026-08-01"),
		EndDate:   birthDate(t, "2026-08-07"),
		Status:    medication.StatusActive,
	})

	meds, err := svc.TodayMedications(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("TodayMedications: %v", err)
	}
	if len(meds) != 1 || meds[0].ID != covering.ID {
		t.Fatalf("got %d medications, want only the covering course", len(meds))
	}
}
