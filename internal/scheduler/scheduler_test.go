package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/config"
)

type countingJob struct {
	mu    sync.Mutex
	name  string
	due   func(lastRun, now time.Time) bool
	runs  int
	fail  error
	block chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Due(lastRun, now time.Time) bool { return j.due(lastRun, now) }

func (j *countingJob) Run(_ context.Context) error {
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
	if j.block != nil {
		<-j.block
	}
	return j.fail
}

func (j *countingJob) runCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

type recordingObserver struct {
	mu       sync.Mutex
	observed []string
	errs     int
}

func (o *recordingObserver) ObserveJob(name string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, name)
	if err != nil {
		o.errs++
	}
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:      true,
		TickInterval: time.Minute,
		JobTimeout:   time.Second,
	}
}

func testClock(value string) func() time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func alwaysDue(time.Time, time.Time) bool { return true }

func TestTickRunsDueJobs(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRegistry(testConfig(), obs, zap.NewNop()).WithClock(testClock("2026-09-01 10:00"))

	job := &countingJob{name: "due", due: alwaysDue}
	never := &countingJob{name: "never", due: func(time.Time, time.Time) bool { return false }}
	r.Register(job)
	r.Register(never)

	r.Tick()

	if job.runCount() != 1 {
		t.Errorf("due job ran %d times, want 1", job.runCount())
	}
	if never.runCount() != 0 {
		t.Errorf("never-due job ran %d times, want 0", never.runCount())
	}
	if len(obs.observed) != 1 || obs.observed[0] != "due" {
		t.Errorf("observed = %v", obs.observed)
	}
}

func TestTickReportsJobErrors(t *testing.T) {
	obs := &recordingObserver{}
	r := NewRegistry(testConfig(), obs, zap.NewNop()).WithClock(testClock("2026-09-01 10:00"))

	r.Register(&countingJob{name: "broken", due: alwaysDue, fail: errors.New("boom")})
	r.Tick()

	if obs.errs != 1 {
		t.Errorf("observer errors = %d, want 1", obs.errs)
	}
}

func TestHourlyDueFiresOncePerHour(t *testing.T) {
	job := &MedicationReminderJob{}

	nine, _ := time.Parse("2006-01-02 15:04", "2026-09-01 09:00")
	nineThirty, _ := time.Parse("2006-01-02 15:04", "2026-09-01 09:30")
	ten, _ := time.Parse("2006-01-02 15:04", "2026-09-01 10:00")

	if !job.Due(time.Time{}, nine) {
		t.Error("job not due on first run")
	}
	if job.Due(nine, nineThirty) {
		t.Error("job due again within the same hour")
	}
	if !job.Due(nine, ten) {
		t.Error("job not due after the hour rolled over")
	}
}

func TestDailyDueFiresAtConfiguredHour(t *testing.T) {
	job := &AppointmentReminderJob{hour: 9}

	eight, _ := time.Parse("2006-01-02 15:04", "2026-09-01 08:00")
	nine, _ := time.Parse("2006-01-02 15:04", "2026-09-01 09:15")
	nextDay, _ := time.Parse("2006-01-02 15:04", "2026-09-02 09:05")

	if job.Due(time.Time{}, eight) {
		t.Error("due before the configured hour")
	}
	if !job.Due(time.Time{}, nine) {
		t.Error("not due at the configured hour")
	}
	if job.Due(nine, nine.Add(10*time.Minute)) {
		t.Error("due twice on the same day")
	}
	if !job.Due(nine, nextDay) {
		t.Error("not due the next day")
	}
}

func TestNightlySweepDueAtMidnight(t *testing.T) {
	job := &NightlySweepJob{}

	midnight, _ := time.Parse("2006-01-02 15:04", "2026-09-02 00:10")
	noon, _ := time.Parse("2006-01-02 15:04", "2026-09-02 12:00")

	if !job.Due(time.Time{}, midnight) {
		t.Error("not due after midnight")
	}
	if job.Due(midnight, noon) {
		t.Error("due again the same day")
	}
}

func TestJobNotReenteredWhileRunning(t *testing.T) {
	r := NewRegistry(testConfig(), nil, zap.NewNop()).WithClock(testClock("2026-09-01 10:00"))

	job := &countingJob{name: "slow", due: alwaysDue, block: make(chan struct{})}
	r.Register(job)

	done := make(chan struct{})
	go func() {
		r.Tick()
		close(done)
	}()

	// Wait for the first run to be in flight, then tick again.
	for job.runCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	go r.Tick()
	time.Sleep(10 * time.Millisecond)

	if job.runCount() != 1 {
		t.Fatalf("job ran %d times while still in flight, want 1", job.runCount())
	}

	close(job.block)
	<-done
}
