package routes

import (
	"github.com/gin-gonic/gin"

	"eyekra-backend/internal/handlers"
	"eyekra-backend/internal/middleware"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// ==================== PUBLIC ====================
		auth := api.Group("/auth")
		{
			auth.POST("/otp/send", handlers.SendOTP)
			auth.POST("/otp/verify", handlers.VerifyOTP)
			auth.POST("/login", handlers.Login) // Staf & admin
		}

		api.GET("/products", handlers.GetProducts)
		api.GET("/products/:slug", handlers.GetProductBySlug)
		api.GET("/slots", handlers.GetSlots)

		// Analytics terbuka, tapi user login ikut kecatat
		api.POST("/analytics/track", middleware.OptionalAuth(), handlers.TrackEvent)

		// ==================== PROTECTED ====================
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/auth/me", handlers.Me)

			// Booking (customer)
			protected.POST("/bookings", handlers.CreateBooking)
			protected.GET("/bookings", handlers.GetMyBookings)
			protected.POST("/bookings/:id/confirm", handlers.ConfirmBooking)
			protected.POST("/bookings/:id/cancel", handlers.CancelBooking)

			// Order — list & detail di-scope per role di handler-nya
			protected.POST("/orders", handlers.CreateOrder)
			protected.GET("/orders", handlers.GetOrders)
			protected.GET("/orders/:id", handlers.GetOrderDetail)
			protected.POST("/orders/:id/cancel", handlers.CancelOrder)

			// Transisi stage: role per-stage dicek di lifecycle engine,
			// middleware cuma nyaring customer keluar
			protected.PATCH("/orders/:id/status", middleware.StaffOnly(), handlers.UpdateOrderStatus)
			protected.POST("/orders/:id/exception", middleware.StaffOnly(), handlers.RecordException)

			// Staf lapangan
			staff := protected.Group("/staff")
			staff.Use(middleware.FieldStaffOnly())
			{
				staff.GET("/jobs", handlers.GetMyJobs)
				staff.POST("/orders/:id/eye-test", handlers.SubmitEyeTest)
				staff.POST("/orders/:id/try-on", handlers.SubmitTryOn)
			}

			// Lab
			lab := protected.Group("/lab")
			lab.Use(middleware.LabOnly())
			{
				lab.GET("/queue", handlers.GetLabQueue)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/slots", handlers.CreateSlot)
				admin.GET("/slots", handlers.ListSlots)
				admin.PATCH("/slots/:id/toggle", handlers.ToggleSlot)
				admin.POST("/orders/:id/assign", handlers.AssignStaff)
				admin.POST("/staff", handlers.CreateStaffUser)
				admin.POST("/products", handlers.CreateProduct)
				admin.GET("/dashboard", handlers.Dashboard)
			}
		}
	}
}
