package routes

import (
	"salonbook-backend/config"
	"salonbook-backend/controllers"
	"salonbook-backend/services"
	"salonbook-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())
	r.Use(config.MetricsMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Wire the booking engine
	availability := services.NewAvailabilityService(config.DB)
	conflicts := services.NewConflictService(config.DB)
	notifier := services.NewTwilioNotifier(config.DB)
	booking := services.NewBookingService(config.DB, availability, conflicts, notifier)
	controllers.InitServices(availability, booking)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Public booking surface: guests can query slots and book without a token
	public := r.Group("/api/public")
	{
		public.GET("/availability/slots", controllers.GetSlots)
		public.GET("/services", controllers.GetServices)
		public.GET("/employees", controllers.GetEmployees)
		public.POST("/appointments", controllers.CreateAppointment)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Appointment routes
		appointments := api.Group("/appointments")
		{
			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("", controllers.GetAppointments)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.PUT("/:id", controllers.UpdateAppointment)
			appointments.POST("/:id/reschedule", controllers.RescheduleAppointment)
			appointments.POST("/:id/confirm", controllers.ConfirmAppointment)
			appointments.POST("/:id/cancel", controllers.CancelAppointment)
			appointments.POST("/:id/complete", controllers.CompleteAppointment)
			appointments.POST("/:id/no-show", controllers.MarkAppointmentNoShow)
		}

		// Availability routes
		availabilityRoutes := api.Group("/availability")
		{
			availabilityRoutes.GET("/slots", controllers.GetSlots)
			availabilityRoutes.POST("/rules", controllers.CreateRule)
			availabilityRoutes.GET("/rules", controllers.GetRules)
			availabilityRoutes.PUT("/rules/:id", controllers.UpdateRule)
			availabilityRoutes.DELETE("/rules/:id", controllers.DeleteRule)
		}

		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", controllers.CreateClient)
			clients.GET("", controllers.GetClients)
			clients.GET("/:id", controllers.GetClient)
			clients.DELETE("/:id", controllers.DeleteClient)
		}

		// Service routes
		servicesRoutes := api.Group("/services", utils.AdminOnly())
		{
			servicesRoutes.POST("", controllers.CreateService)
			servicesRoutes.GET("", controllers.GetServices)
			servicesRoutes.GET("/:id", controllers.GetService)
			servicesRoutes.PUT("/:id", controllers.UpdateService)
			servicesRoutes.DELETE("/:id", controllers.DeleteService)
		}

		// Employee routes
		employees := api.Group("/employees", utils.AdminOnly())
		{
			employees.POST("", controllers.CreateEmployee)
			employees.GET("", controllers.GetEmployees)
			employees.GET("/:id", controllers.GetEmployee)
			employees.PUT("/:id", controllers.UpdateEmployee)
			employees.DELETE("/:id", controllers.DeleteEmployee)
		}
	}

	return r
}
