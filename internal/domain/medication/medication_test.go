package medication

import (
	"testing"
	"time"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parsing date %q: %v", value, err)
	}
	return d
}

func TestBucketForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{6, BeforeBreakfast},
		{8, BeforeBreakfast},
		{9, AfterBreakfast},
		{11, AfterBreakfast},
		{12, BeforeLunch},
		{13, AfterLunch},
		{17, AfterLunch},
		{18, BeforeDinner},
		{19, AfterDinner},
		{21, AfterDinner},
		{22, BeforeSleep},
		{23, BeforeSleep},
		{0, BeforeSleep},
		{5, BeforeSleep},
	}

	for _, tt := range tests {
		if got := BucketForHour(tt.hour); got != tt.want {
			t.Errorf("BucketForHour(%d) = %s, want %s", tt.hour, got, tt.want)
		}
	}
}

func TestBucketForHourNeverAsNeeded(t *testing.T) {
	for h := 0; h < 24; h++ {
		if BucketForHour(h) == AsNeeded {
			t.Fatalf("BucketForHour(%d) returned as_needed", h)
		}
	}
}

func TestComputeTotalDoses(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		frequency int
		want      int
	}{
		{"week twice daily", "2026-09-01", "2026-09-07", 2, 14},
		{"single day", "2026-09-01", "2026-09-01", 3, 3},
		{"thirty days once", "2026-09-01", "2026-09-30", 1, 30},
	}

	for _, tt := range tests {
		m := &Medication{
			StartDate:       day(t, tt.start),
			EndDate:         day(t, tt.end),
			FrequencyPerDay: tt.frequency,
		}
		if got := m.ComputeTotalDoses(); got != tt.want {
			t.Errorf("%s: ComputeTotalDoses = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRecordTakenCompletesOnBudget(t *testing.T) {
	m := &Medication{
		StartDate:       day(t, "2026-09-01"),
		EndDate:         day(t, "2026-09-01"),
		FrequencyPerDay: 2,
		Status:          StatusActive,
	}
	m.TotalDoses = m.ComputeTotalDoses()

	today := day(t, "2026-09-01")

	m.RecordTaken(today)
	if m.Status != StatusActive {
		t.Fatalf("status after 1/2 doses = %s, want active", m.Status)
	}

	m.RecordTaken(today)
	if m.Status != StatusCompleted {
		t.Fatalf("status after 2/2 doses = %s, want completed", m.Status)
	}
	if m.CompletedDoses != 2 {
		t.Fatalf("CompletedDoses = %d, want 2", m.CompletedDoses)
	}
}

func TestRecordTakenCompletesPastEndDate(t *testing.T) {
	m := &Medication{
		StartDate:       day(t, "2026-09-01"),
		EndDate:         day(t, "2026-09-03"),
		FrequencyPerDay: 2,
		Status:          StatusActive,
	}
	m.TotalDoses = m.ComputeTotalDoses()

	m.RecordTaken(day(t, "2026-09-05"))
	if m.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed when taken past end date", m.Status)
	}
}

func TestCoversDate(t *testing.T) {
	m := &Medication{
		StartDate: day(t, "2026-09-01"),
		EndDate:   day(t, "2026-09-07"),
	}

	tests := []struct {
		date string
		want bool
	}{
		{"2026-08-31", false},
		{"2026-09-01", true},
		{"2026-09-04", true},
		{"2026-09-07", true},
		{"2026-09-08", false},
	}

	for _, tt := range tests {
		if got := m.CoversDate(day(t, tt.date)); got != tt.want {
			t.Errorf("CoversDate(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	m := &Medication{TotalDoses: 14, CompletedDoses: 7}
	if got := m.Progress(); got != 50 {
		t.Errorf("Progress = %v, want 50", got)
	}

	empty := &Medication{}
	if got := empty.Progress(); got != 0 {
		t.Errorf("Progress with zero budget = %v, want 0", got)
	}
}
