package routes

import (
	"time"

	"bloodlink/handlers"
	"bloodlink/middleware"
	"bloodlink/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAppointmentRoutes registers appointment lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))

		api.POST("", middleware.RequireRoles(models.RoleDonor), hb.CreateAppointmentHandler)
		api.GET("", hb.ListAppointmentsHandler)
		api.GET("/availability/:bloodBankId", hb.AvailabilityHandler)
		api.GET("/:id", hb.GetAppointmentHandler)
		api.PUT("/:id", hb.UpdateAppointmentHandler)
		api.PATCH("/:id/status", middleware.RequireRoles(models.RoleBloodBank, models.RoleAdmin), hb.UpdateStatusHandler)
		api.PUT("/:id/reschedule", hb.RescheduleAppointmentHandler)
		api.DELETE("/:id", hb.CancelAppointmentHandler)
	}
}

// RegisterDonorRoutes registers donor read endpoints.
func RegisterDonorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/donors")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))
		api.GET("/:id/eligibility", hb.EligibilityHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterDonorRoutes(r, hb)
}
