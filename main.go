package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"institute/config"
	"institute/cron"
	"institute/database"
	attendanceRepoPkg "institute/database/repository/attendance"
	courseRepoPkg "institute/database/repository/course"
	ledgerRepoPkg "institute/database/repository/ledger"
	messageRepoPkg "institute/database/repository/message"
	orderRepoPkg "institute/database/repository/order"
	staffRepoPkg "institute/database/repository/staff"
	studentRepoPkg "institute/database/repository/student"
	"institute/handlers"
	"institute/middleware"
	"institute/routes"
	"institute/services/fees"
	"institute/services/gateway"
	"institute/services/notification"
	"institute/services/student"
	"institute/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	accountRepo := ledgerRepoPkg.NewMongoAccountRepo()
	orderRepo := orderRepoPkg.NewMongoOrderRepo()
	studentRepo := studentRepoPkg.NewMongoStudentRepo()
	staffRepo := staffRepoPkg.NewMongoStaffRepo()
	courseRepo := courseRepoPkg.NewMongoCourseRepo()
	attendanceRepo := attendanceRepoPkg.NewMongoAttendanceRepo()
	messageRepo := messageRepoPkg.NewMongoMessageRepo()

	// services.
	notifier := &notification.DefaultNotifier{
		Students: studentRepo,
		Messages: messageRepo,
		Logger:   logger,
	}

	engine := fees.NewEngine(accountRepo, logger, config.AppConfig.AllowOverpayment)
	recorder := fees.NewRecorder(engine)
	feeService := &fees.DefaultFeeService{
		Accounts: accountRepo,
		Logger:   logger,
	}

	gatewayClient := gateway.NewHTTPClient(
		config.AppConfig.GatewayBaseURL,
		config.AppConfig.GatewayKeyID,
		config.AppConfig.GatewayKeySecret,
		logger,
	)
	verifier := gateway.NewVerifier(config.AppConfig.GatewayKeySecret)

	orchestrator := fees.NewOrchestrator(fees.OrchestratorDeps{
		Orders:           orderRepo,
		Accounts:         accountRepo,
		Engine:           engine,
		Gateway:          gatewayClient,
		Verifier:         verifier,
		Notifier:         notifier,
		Expiry:           cron.NewExpiryScheduler(),
		Logger:           logger,
		Currency:         config.AppConfig.Currency,
		OrderTTL:         time.Duration(config.AppConfig.OrderTTLMinutes) * time.Minute,
		AllowOverpayment: config.AppConfig.AllowOverpayment,
	})

	studentService := &student.DefaultStudentService{
		Repo:    studentRepo,
		Courses: courseRepo,
		Fees:    feeService,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		FeeHandler:        handlers.NewFeeHandler(feeService, recorder, orchestrator, logger),
		StudentHandler:    handlers.NewStudentHandler(studentService),
		StaffHandler:      handlers.NewStaffHandler(staffRepo),
		CourseHandler:     handlers.NewCourseHandler(courseRepo),
		AttendanceHandler: handlers.NewAttendanceHandler(attendanceRepo),
		MessageHandler:    handlers.NewMessageHandler(messageRepo, notifier),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker for pending-order expiry.
	cron.InitExpiryWorker(orchestrator)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
