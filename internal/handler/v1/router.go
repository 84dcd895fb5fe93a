package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medifit/medifit-api/internal/config"
	"github.com/medifit/medifit-api/pkg/auth"
	"github.com/medifit/medifit-api/pkg/metrics"
)

type RouterDeps struct {
	Config     *config.Config
	Log        *zap.Logger
	JWTManager *auth.JWTManager
	Collector  *metrics.Collector

	Auth           *AuthHandler
	Patients       *PatientHandler
	Appointments   *AppointmentHandler
	MedicalRecords *MedicalRecordHandler
	Medications    *MedicationHandler
	Prescriptions  *PrescriptionHandler
	Notifications  *NotificationHandler
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(deps.Log))
	r.Use(Metrics(deps.Collector))
	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.CORS.AllowedOrigins,
		AllowMethods: deps.Config.CORS.AllowedMethods,
		AllowHeaders: deps.Config.CORS.AllowedHeaders,
		MaxAge:       deps.Config.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": deps.Config.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", deps.Auth.Register)
		authGroup.POST("/login", deps.Auth.Login)
		authGroup.POST("/refresh", deps.Auth.Refresh)
	}

	protected := api.Group("")
	protected.Use(RequireAuth(deps.JWTManager))

	me := protected.Group("/auth")
	{
		me.GET("/me", deps.Auth.Me)
		me.POST("/change-password", deps.Auth.ChangePassword)
	}

	patients := protected.Group("/patients")
	{
		patients.POST("", deps.Patients.Create)
		patients.GET("", deps.Patients.List)
		patients.GET("/by-phone", deps.Patients.GetByPhone)
		patients.GET("/:id", deps.Patients.Get)
		patients.PUT("/:id", deps.Patients.Update)
		patients.DELETE("/:id", deps.Patients.Delete)
	}

	appointments := protected.Group("/appointments")
	{
		appointments.POST("", deps.Appointments.Create)
		appointments.GET("", deps.Appointments.List)
		appointments.GET("/search", deps.Appointments.Search)
		appointments.GET("/statistics", deps.Appointments.Statistics)
		appointments.GET("/:id", deps.Appointments.Get)
		appointments.PUT("/:id", deps.Appointments.Update)
		appointments.DELETE("/:id", deps.Appointments.Delete)
		appointments.PATCH("/:id/confirm", deps.Appointments.Confirm)
		appointments.PATCH("/:id/start", deps.Appointments.Start)
		appointments.PATCH("/:id/complete", deps.Appointments.Complete)
		appointments.PATCH("/:id/cancel", deps.Appointments.Cancel)
		appointments.PATCH("/:id/no-show", deps.Appointments.NoShow)
	}

	hospitals := protected.Group("/hospitals/:hospitalId")
	{
		hospitals.GET("/available-slots", deps.Appointments.AvailableSlots)
		hospitals.GET("/appointments/today", deps.Appointments.Today)
		hospitals.GET("/dashboard", deps.Appointments.Dashboard)
	}

	byPatient := protected.Group("/by-patient/:patientId")
	{
		byPatient.GET("/appointments/upcoming", deps.Appointments.Upcoming)
		byPatient.GET("/medications", deps.Medications.ListByPatient)
		byPatient.GET("/medications/today", deps.Medications.Today)
		byPatient.GET("/prescriptions", deps.Prescriptions.ListByPatient)
		byPatient.GET("/records/recent", deps.MedicalRecords.RecentHistory)
		byPatient.GET("/records/statistics", deps.MedicalRecords.DiagnosisStatistics)
		byPatient.GET("/records/fees", deps.MedicalRecords.FeeStatistics)
	}

	records := protected.Group("/medical-records")
	{
		records.POST("", deps.MedicalRecords.Create)
		records.GET("", deps.MedicalRecords.List)
		records.GET("/search", deps.MedicalRecords.Search)
		records.GET("/:id", deps.MedicalRecords.Get)
		records.PUT("/:id", deps.MedicalRecords.Update)
		records.DELETE("/:id", deps.MedicalRecords.Delete)
		records.POST("/:id/summary", deps.MedicalRecords.GenerateSummary)
	}

	medications := protected.Group("/medications")
	{
		medications.POST("", deps.Medications.Create)
		medications.GET("/:id", deps.Medications.Get)
		medications.PUT("/:id", deps.Medications.Update)
		medications.DELETE("/:id", deps.Medications.Delete)
		medications.POST("/:id/take", deps.Medications.TakeDose)
		medications.PATCH("/:id/status", deps.Medications.ChangeStatus)
	}

	prescriptions := protected.Group("/prescriptions")
	{
		prescriptions.POST("", deps.Prescriptions.Create)
		prescriptions.GET("", deps.Prescriptions.List)
		prescriptions.GET("/by-number/:number", deps.Prescriptions.GetByNumber)
		prescriptions.GET("/:id", deps.Prescriptions.Get)
		prescriptions.PATCH("/:id/status", deps.Prescriptions.ChangeStatus)
		prescriptions.DELETE("/:id", deps.Prescriptions.Delete)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.POST("/appointments/trigger", deps.Notifications.TriggerAppointmentReminders)
		notifications.POST("/medications/trigger", deps.Notifications.TriggerMedicationReminders)
		notifications.POST("/appointments/:id/confirmation", deps.Notifications.SendConfirmation)
		notifications.POST("/appointments/:id/cancellation", deps.Notifications.SendCancellation)
	}

	return r
}
