package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/config"
	v1 "github.com/medifit/medifit-api/internal/handler/v1"
	"github.com/medifit/medifit-api/internal/repository"
	"github.com/medifit/medifit-api/internal/scheduler"
	"github.com/medifit/medifit-api/internal/service"
	"github.com/medifit/medifit-api/pkg/auth"
	"github.com/medifit/medifit-api/pkg/database"
	"github.com/medifit/medifit-api/pkg/logger"
	"github.com/medifit/medifit-api/pkg/metrics"
	"github.com/medifit/medifit-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("medifit")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	recordRepo := repository.NewMedicalRecordRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)

	authService := service.NewAuthService(userRepo, jwtManager, service.NewBcryptVerifier(), log)
	patientService := service.NewPatientService(patientRepo, log)
	appointmentService := service.NewAppointmentService(appointmentRepo, patientRepo, log)
	recordService := service.NewMedicalRecordService(recordRepo, patientRepo, service.NewTemplateSummarizer(), log)
	medicationService := service.NewMedicationService(medicationRepo, patientRepo, log)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, patientRepo, log)
	notificationService := service.NewNotificationService(appointmentRepo, medicationRepo, service.NewLogNotifier(log), log)

	var registry *scheduler.Registry
	if cfg.Scheduler.Enabled {
		registry = scheduler.NewRegistry(cfg.Scheduler, collector, log)
		registry.Register(scheduler.NewMedicationReminderJob(notificationService, log))
		registry.Register(scheduler.NewAppointmentReminderJob(
			notificationService, cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderAheadDays, log))
		registry.Register(scheduler.NewNightlySweepJob(medicationService, appointmentService, log))
		go registry.Start()
		defer registry.Stop()
	}

	router := v1.NewRouter(v1.RouterDeps{
		Config:         cfg,
		Log:            log,
		JWTManager:     jwtManager,
		Collector:      collector,
		Auth:           v1.NewAuthHandler(authService),
		Patients:       v1.NewPatientHandler(patientService),
		Appointments:   v1.NewAppointmentHandler(appointmentService, patientService),
		MedicalRecords: v1.NewMedicalRecordHandler(recordService),
		Medications:    v1.NewMedicationHandler(medicationService),
		Prescriptions:  v1.NewPrescriptionHandler(prescriptionService),
		Notifications:  v1.NewNotificationHandler(notificationService, cfg.Scheduler.ReminderAheadDays),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
