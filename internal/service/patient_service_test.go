package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medifit/medifit-api/internal/domain/patient"
)

func birthDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRegisterPatient(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-01 10:00"))

	p, err := svc.Register(context.Background(), &patient.CreatePatientCommand{
		Name:        "Lee Minho",
		PhoneNumber: "010-1234-5678",
		BirthDate:   birthDate(t, "1985-04-12"),
		Gender:      patient.GenderMale,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if p.PatientNumber != "2026-001" {
		t.Errorf("PatientNumber = %q, want 2026-001", p.PatientNumber)
	}
	if p.BloodType != patient.BloodTypeUnknown {
		t.Errorf("BloodType = %q, want unknown default", p.BloodType)
	}

	second, err := svc.Register(context.Background(), &patient.CreatePatientCommand{
		Name:        "Park Sora",
		PhoneNumber: "010-8765-4321",
		BirthDate:   birthDate(t, "1992-11-30"),
		Gender:      patient.GenderFemale,
	})
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if second.PatientNumber != "2026-002" {
		t.Errorf("second PatientNumber = %q, want 2026-002", second.PatientNumber)
	}
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-01 10:00"))

	cmd := &patient.CreatePatientCommand{
		Name:        "Lee Minho",
		PhoneNumber: "010-1234-5678",
		BirthDate:   birthDate(t, "1985-04-12"),
	}
	if _, err := svc.Register(context.Background(), cmd); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	cmd.Name = "Someone Else"
	if _, err := svc.Register(context.Background(), cmd); !errors.Is(err, patient.ErrDuplicatePhoneNumber) {
		t.Fatalf("err = %v, want ErrDuplicatePhoneNumber", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-01 10:00"))

	tests := []struct {
		name string
		cmd  patient.CreatePatientCommand
	}{
		{"empty", patient.CreatePatientCommand{}},
		{"bad phone", patient.CreatePatientCommand{
			Name: "A", PhoneNumber: "02-123-4567", BirthDate: birthDate(t, "1990-01-01"),
		}},
		{"bad gender", patient.CreatePatientCommand{
			Name: "A", PhoneNumber: "010-1234-5678", BirthDate: birthDate(t, "1990-01-01"),
			Gender: "robot",
		}},
	}

	for _, tt := range tests {
		_, err := svc.Register(context.Background(), &tt.cmd)
		var validErr *ValidationError
		if !errors.As(err, &validErr) {
			t.Errorf("%s: err = %v, want ValidationError", tt.name, err)
		}
	}
}

func TestRegisterRejectsFutureBirthDate(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-01 10:00"))

	_, err := svc.Register(context.Background(), &patient.CreatePatientCommand{
		Name:        "Time Traveller",
		PhoneNumber: "010-1234-5678",
		BirthDate:   birthDate(t, "2030-01-01"),
	})
	if !errors.Is(err, patient.ErrInvalidBirthDate) {
		t.Fatalf("err = %v, want ErrInvalidBirthDate", err)
	}
}

func TestUpdatePatientPhoneChecks(t *testing.T) {
	repo := newFakePatientRepo()
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-01 10:00"))

	a := repo.add(&patient.Patient{Name: "A", PhoneNumber: "010-1111-1111"})
	b := repo.add(&patient.Patient{Name: "B", PhoneNumber: "010-2222-2222"})

	taken := b.PhoneNumber
	if _, err := svc.Update(context.Background(), a.ID, &patient.UpdatePatientCommand{PhoneNumber: &taken}); !errors.Is(err, patient.ErrDuplicatePhoneNumber) {
		t.Fatalf("err = %v, want ErrDuplicatePhoneNumber", err)
	}

	// Keeping your own number is not a collision.
	own := a.PhoneNumber
	if _, err := svc.Update(context.Background(), a.ID, &patient.UpdatePatientCommand{PhoneNumber: &own}); err != nil {
		t.Fatalf("Update with own number: %v", err)
	}

	bad := "123"
	if _, err := svc.Update(context.Background(), a.ID, &patient.UpdatePatientCommand{PhoneNumber: &bad}); !errors.Is(err, patient.ErrInvalidPhoneNumber) {
		t.Fatalf("err = %v, want ErrInvalidPhoneNumber", err)
	}
}

func TestRegisteredThisWeekStartsMonday(t *testing.T) {
	repo := newFakePatientRepo()
	// 2026-09-03 is a Thursday; the week runs from Monday 2026-08-31.
	svc := NewPatientService(repo, testLogger()).WithClock(fixedClock("2026-09-03 10:00"))

	repo.add(&patient.Patient{Name: "A", PhoneNumber: "010-1111-1111", CreatedAt: mustTime(t, "2026-08-31 00:30")})
	repo.add(&patient.Patient{Name: "B", PhoneNumber: "010-2222-2222", CreatedAt: mustTime(t, "2026-09-01 09:00")})
	repo.add(&patient.Patient{Name: "C", PhoneNumber: "010-3333-3333", CreatedAt: mustTime(t, "2026-08-30 23:00")})

	n, err := svc.RegisteredThisWeek(context.Background())
	if err != nil {
		t.Fatalf("RegisteredThisWeek: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2 (Sunday registration belongs to last week)", n)
	}
}
