package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/handlers"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	patientHandler := handlers.NewPatientHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	billingHandler := handlers.NewBillingHandler(db)
	reportHandler := handlers.NewReportHandler(db)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.RefreshToken)
	}

	// Doctor directory is public; mutations are gated below.
	api.GET("/doctors", doctorHandler.GetDoctors)
	api.GET("/doctors/:id", doctorHandler.GetDoctor)
	api.GET("/doctors/:id/availability", doctorHandler.GetAvailability)

	// Authenticated routes
	private := api.Group("")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authPrivate := private.Group("/auth")
		{
			authPrivate.POST("/logout", authHandler.Logout)
			authPrivate.GET("/me", authHandler.GetMe)
		}

		patients := private.Group("/patients")
		{
			patients.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), patientHandler.GetPatients)
			patients.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), patientHandler.CreatePatient)
			patients.GET("/:id", patientHandler.GetPatient)   // Ownership enforced in handler
			patients.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePatient), patientHandler.UpdatePatient)
			patients.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), patientHandler.DeletePatient)
			patients.GET("/:id/history", patientHandler.GetMedicalHistory) // Ownership enforced in handler
			patients.POST("/:id/history", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), patientHandler.AddMedicalHistory)
		}

		doctors := private.Group("/doctors")
		{
			doctors.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.CreateDoctor)
			doctors.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), doctorHandler.UpdateDoctor)
			doctors.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.DeleteDoctor)
			doctors.PUT("/:id/availability", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor), doctorHandler.UpdateAvailability)
		}

		appointments := private.Group("/appointments")
		{
			appointments.GET("", appointmentHandler.GetAppointments)
			appointments.POST("", appointmentHandler.CreateAppointment)
			appointments.GET("/:id", appointmentHandler.GetAppointment)       // Ownership enforced in handler
			appointments.PUT("/:id", appointmentHandler.UpdateAppointment)    // Ownership enforced in handler
			appointments.DELETE("/:id", appointmentHandler.CancelAppointment) // Soft delete: status -> Cancelled
		}

		billing := private.Group("/billing")
		{
			billing.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePatient), billingHandler.GetBills)
			billing.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), billingHandler.CreateBill)
			billing.GET("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePatient), billingHandler.GetBill)
			billing.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), billingHandler.UpdateBill)
			billing.PUT("/:id/payment", middleware.RoleAuthMiddleware(models.RoleAdmin), billingHandler.RecordPayment)
			billing.GET("/:id/invoice", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RolePatient), billingHandler.GenerateInvoice)
		}

		reports := private.Group("/reports")
		reports.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			reports.GET("/appointments", reportHandler.GetAppointmentStats)
			reports.GET("/financial", reportHandler.GetFinancialReports)
			reports.GET("/patients", reportHandler.GetPatientDemographics)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
