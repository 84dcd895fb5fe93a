package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/config"
)

// Job is one recurring background task. Due decides whether the job
// should fire given when it last ran; the registry never runs the same
// job concurrently with itself.
type Job interface {
	Name() string
	Due(lastRun, now time.Time) bool
	Run(ctx context.Context) error
}

// Observer receives the outcome of every job run. The metrics collector
// implements it; a nil observer is fine.
type Observer interface {
	ObserveJob(name string, elapsed time.Duration, err error)
}

type jobState struct {
	job     Job
	lastRun time.Time
	running bool
}

// Registry drives registered jobs from a single ticker. Cadence lives in
// each job's Due method, so the tick interval only bounds firing latency.
type Registry struct {
	cfg      config.SchedulerConfig
	log      *zap.Logger
	observer Observer
	now      func() time.Time

	mu   sync.Mutex
	jobs []*jobState

	stop chan struct{}
	done chan struct{}
}

func NewRegistry(cfg config.SchedulerConfig, observer Observer, log *zap.Logger) *Registry {
	return &Registry{
		cfg:      cfg,
		log:      log,
		observer: observer,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func (r *Registry) Register(j Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, &jobState{job: j})
}

// Start runs the tick loop until Stop is called. Call it in its own
// goroutine.
func (r *Registry) Start() {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	r.log.Info("scheduler started",
		zap.Duration("tick_interval", r.cfg.TickInterval),
		zap.Int("jobs", len(r.jobs)),
	)

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

func (r *Registry) Stop() {
	close(r.stop)
	<-r.done
}

// Tick fires every due job once. Exported so tests can drive the registry
// without the ticker.
func (r *Registry) Tick() {
	now := r.now()

	r.mu.Lock()
	var due []*jobState
	for _, s := range r.jobs {
		if s.running || !s.job.Due(s.lastRun, now) {
			continue
		}
		s.running = true
		s.lastRun = now
		due = append(due, s)
	}
	r.mu.Unlock()

	for _, s := range due {
		r.runJob(s)
	}
}

func (r *Registry) runJob(s *jobState) {
	defer func() {
		r.mu.Lock()
		s.running = false
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.JobTimeout)
	defer cancel()

	start := r.now()
	err := s.job.Run(ctx)
	elapsed := r.now().Sub(start)

	if r.observer != nil {
		r.observer.ObserveJob(s.job.Name(), elapsed, err)
	}

	if err != nil {
		r.log.Error("scheduled job failed",
			zap.String("job", s.job.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}

	r.log.Debug("scheduled job ran",
		zap.String("job", s.job.Name()),
		zap.Duration("elapsed", elapsed),
	)
}
