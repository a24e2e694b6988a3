package server

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) SetupRoutes(authMiddleware, staffMiddleware, loginLimiter, registerLimiter echo.MiddlewareFunc) {
	e := s.Echo
	api := e.Group("/api/v1")

	// Auth routes (unprotected); login and register are rate limited.
	auth := api.Group("/auth")
	{
		auth.GET("/providers", s.AuthHandler.GetProviders)
		auth.POST("/register", s.AuthHandler.Register, registerLimiter)
		auth.POST("/login", s.AuthHandler.Login, loginLimiter)
		auth.POST("/refresh", s.AuthHandler.RefreshToken)
		auth.GET("/oauth/:provider", s.AuthHandler.OAuthLogin)
		auth.GET("/oauth/:provider/callback", s.AuthHandler.OAuthCallback)
	}

	// Public catalog and order tracking.
	public := api.Group("/public")
	{
		public.GET("/categories", s.ProductHandler.ListCategories)
		public.GET("/products", s.ProductHandler.ListProducts)
		public.GET("/products/:productId", s.ProductHandler.GetProduct)
		public.GET("/tracking/:trackingNumber", s.OrderHandler.TrackOrder)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/user", s.AuthHandler.GetCurrentUser)

		pets := protected.Group("/pets")
		{
			pets.GET("", s.PetHandler.ListPets)
			pets.POST("", s.PetHandler.CreatePet)
			pets.GET("/:petId", s.PetHandler.GetPet)
			pets.PUT("/:petId", s.PetHandler.UpdatePet)
			pets.DELETE("/:petId", s.PetHandler.DeletePet)
			pets.GET("/:petId/medical-records", s.PetHandler.ListMedicalRecords)
			pets.POST("/:petId/medical-records", s.PetHandler.CreateMedicalRecord, staffMiddleware)
			pets.GET("/:petId/vaccines", s.PetHandler.ListVaccines)
			pets.POST("/:petId/vaccines", s.PetHandler.CreateVaccine, staffMiddleware)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", s.OrderHandler.CreateOrder)
			orders.GET("", s.OrderHandler.ListOrders)
			orders.GET("/:orderId", s.OrderHandler.GetOrder)
			orders.PUT("/:orderId/shipping", s.OrderHandler.UpdateShipping, staffMiddleware)
		}

		payments := protected.Group("/payments")
		{
			payments.POST("", s.PaymentHandler.CreatePayment)
			payments.GET("", s.PaymentHandler.ListPayments)
			payments.GET("/:paymentId", s.PaymentHandler.GetPayment)
			payments.PUT("/:paymentId/status", s.PaymentHandler.UpdatePaymentStatus, staffMiddleware)
		}

		memberships := protected.Group("/memberships")
		{
			memberships.POST("", s.MembershipHandler.Subscribe)
			memberships.GET("/current", s.MembershipHandler.GetCurrent)
			memberships.DELETE("/current", s.MembershipHandler.Cancel)
			memberships.GET("", s.MembershipHandler.ListMemberships, staffMiddleware)
		}

		appointments := protected.Group("/appointments")
		{
			appointments.POST("", s.AppointmentHandler.CreateAppointment)
			appointments.GET("", s.AppointmentHandler.ListAppointments)
			appointments.PUT("/:appointmentId", s.AppointmentHandler.UpdateAppointment)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", s.NotificationHandler.ListNotifications)
			notifications.PUT("/:notificationId/read", s.NotificationHandler.MarkAsRead)
			notifications.PUT("/read-all", s.NotificationHandler.MarkAllAsRead)
			notifications.POST("/broadcast", s.NotificationHandler.Broadcast, staffMiddleware)
		}

		// Chat: room management plus the live websocket endpoint.
		chat := protected.Group("/chat")
		{
			chat.GET("/veterinarians", s.ChatHandler.ListVeterinarians)
			chat.POST("/rooms", s.ChatHandler.CreateRoom)
			chat.GET("/rooms", s.ChatHandler.ListRooms)
			chat.GET("/rooms/:roomId", s.ChatHandler.GetRoom)
			chat.PUT("/rooms/:roomId", s.ChatHandler.UpdateRoom)
			chat.GET("/rooms/:roomId/messages", s.ChatHandler.GetMessages)
			chat.POST("/rooms/:roomId/read", s.ChatHandler.MarkAsRead)
			chat.GET("/unread-count", s.ChatHandler.UnreadCount)
			chat.GET("/:roomId/online-users", s.ChatWebSocketHandler.GetOnlineUsers)
		}
		protected.GET("/chat/:roomId/ws", s.ChatWebSocketHandler.HandleWebSocket)

		// Staff-only back office surfaces.
		admin := protected.Group("/admin")
		admin.Use(staffMiddleware)
		{
			admin.POST("/categories", s.ProductHandler.CreateCategory)
			admin.POST("/products", s.ProductHandler.CreateProduct)
			admin.PUT("/products/:productId", s.ProductHandler.UpdateProduct)
			admin.DELETE("/products/:productId", s.ProductHandler.DeleteProduct)

			admin.POST("/inventory/movements", s.InventoryHandler.RecordMovement)
			admin.GET("/inventory/movements", s.InventoryHandler.ListMovements)
			admin.GET("/inventory/low-stock", s.InventoryHandler.LowStockReport)

			admin.GET("/dashboard/stats", s.DashboardHandler.GetStats)
			admin.GET("/dashboard/activity", s.DashboardHandler.GetRecentActivity)
			admin.GET("/dashboard/sales", s.DashboardHandler.GetSalesReport)
		}
	}
}
