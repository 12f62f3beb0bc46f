package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scantrack/attendance-api/internal/clock"
	"github.com/scantrack/attendance-api/internal/config"
	"github.com/scantrack/attendance-api/internal/database"
	"github.com/scantrack/attendance-api/internal/handler"
	"github.com/scantrack/attendance-api/internal/middleware"
	"github.com/scantrack/attendance-api/internal/qr"
	"github.com/scantrack/attendance-api/internal/repository"
	"github.com/scantrack/attendance-api/internal/router"
	"github.com/scantrack/attendance-api/internal/service"
	"github.com/scantrack/attendance-api/internal/sms"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional; without it the duplicate-tap guard is skipped.
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, scan dedupe guard disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	codec := qr.NewCodec(cfg.QRSalt)

	studentRepo := repository.NewStudentRepository(db)
	quarterRepo := repository.NewQuarterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	lateTrackingRepo := repository.NewLateTrackingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	smsLogRepo := repository.NewSMSLogRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	schoolClock, err := clock.NewSchoolClock(cfg.SchoolTimezone, calendarRepo)
	if err != nil {
		log.Fatalf("failed to initialise school clock: %v", err)
	}

	smsClient := sms.NewClient(cfg.SMS, logger)
	templateBuilder := sms.NewTemplateBuilder(sms.TemplateThresholds{
		Critical: cfg.Late.CriticalRemaining,
		Moderate: cfg.Late.ModerateRemaining,
	})

	smsDispatcher := service.NewSMSDispatcher(templateBuilder, smsClient, smsLogRepo, cfg.Late.ThresholdMinutes, logger)
	notificationService := service.NewNotificationService(notificationRepo, studentRepo, attendanceRepo, schoolClock, cfg.Late, logger)
	quarterService := service.NewQuarterService(quarterRepo, schoolClock, validate, logger)
	attendanceService := service.NewAttendanceService(service.AttendanceServiceDeps{
		Students:     studentRepo,
		Attendance:   attendanceRepo,
		Quarters:     quarterRepo,
		LateTracking: lateTrackingRepo,
		SMSLogs:      smsLogRepo,
		Codec:        codec,
		Clock:        schoolClock,
		Notifier:     notificationService,
		Dispatcher:   smsDispatcher,
		Cache:        redisClient,
		DedupeTTL:    cfg.ScanDedupeTTL,
		Policy:       cfg.Late,
		Validator:    validate,
		Logger:       logger,
	})

	attendanceHandler := handler.NewAttendanceHandler(attendanceService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	quarterHandler := handler.NewQuarterHandler(quarterService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AttendanceHandler:   attendanceHandler,
		NotificationHandler: notificationHandler,
		QuarterHandler:      quarterHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	notificationService.StartAbsenceSweep(sweepCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, smsDispatcher, stopSweep)
}

func waitForShutdown(app *fiber.App, dispatcher *service.SMSDispatcher, stopSweep context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	// Let in-flight SMS deliveries and audit writes finish.
	dispatcher.Wait()

	log.Println("server stopped")
}
