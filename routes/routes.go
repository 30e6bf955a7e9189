package routes

import (
	"net/http"
	"time"

	"institute/handlers"
	"institute/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterFeeRoutes registers the fee ledger and payment endpoints.
func RegisterFeeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/fees")
	{
		// Gateway confirmation callbacks carry their own signature and
		// must stay reachable without a session token.
		api.POST("/verify-payment", hb.FeeHandler.VerifyPaymentHandler)
		api.POST("/gateway/webhook", hb.FeeHandler.VerifyPaymentHandler)

		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware("student", "admin", "faculty"))
		authed.GET("/account/:studentId", hb.FeeHandler.GetAccountHandler)
		authed.POST("/initiate-payment", hb.FeeHandler.InitiatePaymentHandler)
		authed.GET("/order/:orderId", hb.FeeHandler.OrderStatusHandler)

		// Ledger mutations outside the gateway flow are staff-only.
		staff := api.Group("")
		staff.Use(middleware.JWTAuthMiddleware("admin", "faculty"))
		staff.POST("/manual-payment", hb.FeeHandler.ManualPaymentHandler)
		staff.POST("/add-fee", hb.FeeHandler.AddFeeHandler)
	}
}

// RegisterStudentRoutes registers student enrollment and profile endpoints.
func RegisterStudentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/students")
	{
		api.POST("/login", hb.StudentHandler.AuthenticateStudentHandler)

		staff := api.Group("")
		staff.Use(middleware.JWTAuthMiddleware("admin", "faculty"))
		staff.POST("/enroll", hb.StudentHandler.EnrollStudentHandler)
		staff.GET("", hb.StudentHandler.GetStudentsHandler)
		staff.PUT("/:id", hb.StudentHandler.UpdateStudentHandler)
		staff.DELETE("/:id", hb.StudentHandler.DeleteStudentHandler)

		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware("student", "admin", "faculty"))
		authed.GET("/:id", hb.StudentHandler.GetStudentByIDHandler)
		authed.POST("/fcm-token", hb.StudentHandler.RegisterFCMTokenHandler)
	}
}

// RegisterStaffRoutes registers staff authentication and management endpoints.
func RegisterStaffRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/staff")
	{
		api.POST("/login", hb.StaffHandler.AuthenticateStaffHandler)

		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware("admin"))
		admin.POST("", hb.StaffHandler.CreateStaffHandler)
		admin.GET("", hb.StaffHandler.GetStaffHandler)
	}
}

// RegisterCourseRoutes registers course catalogue endpoints.
func RegisterCourseRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/courses")
	{
		api.GET("", hb.CourseHandler.GetCoursesHandler)
		api.GET("/:id", hb.CourseHandler.GetCourseByIDHandler)

		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware("admin"))
		admin.POST("", hb.CourseHandler.CreateCourseHandler)
	}
}

// RegisterAttendanceRoutes registers attendance endpoints.
func RegisterAttendanceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/attendance")
	{
		staff := api.Group("")
		staff.Use(middleware.JWTAuthMiddleware("admin", "faculty"))
		staff.POST("/mark", hb.AttendanceHandler.MarkAttendanceHandler)

		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware("student", "admin", "faculty"))
		authed.GET("/:studentId", hb.AttendanceHandler.GetAttendanceHandler)
	}
}

// RegisterMessageRoutes registers the notification feed endpoints.
func RegisterMessageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/messages")
	{
		staff := api.Group("")
		staff.Use(middleware.JWTAuthMiddleware("admin", "faculty"))
		staff.POST("/announce", hb.MessageHandler.AnnounceHandler)

		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware("student", "admin", "faculty"))
		authed.GET("/student/:studentId", hb.MessageHandler.GetMessagesHandler)
		authed.PUT("/:id/read", hb.MessageHandler.MarkMessageReadHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterFeeRoutes(r, hb)
	RegisterStudentRoutes(r, hb)
	RegisterStaffRoutes(r, hb)
	RegisterCourseRoutes(r, hb)
	RegisterAttendanceRoutes(r, hb)
	RegisterMessageRoutes(r, hb)
}
