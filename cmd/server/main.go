package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/carousel-scheduler/configs"
	"github.com/maheshrc27/carousel-scheduler/internal/api/handlers"
	"github.com/maheshrc27/carousel-scheduler/internal/api/middleware"
	"github.com/maheshrc27/carousel-scheduler/internal/app"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	job "github.com/maheshrc27/carousel-scheduler/internal/jobs"
	"github.com/maheshrc27/carousel-scheduler/internal/preset"
	"github.com/maheshrc27/carousel-scheduler/internal/queue"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
	"github.com/maheshrc27/carousel-scheduler/internal/schedule"
	"github.com/maheshrc27/carousel-scheduler/internal/service"
	"github.com/maheshrc27/carousel-scheduler/internal/timezone"
	"github.com/maheshrc27/carousel-scheduler/internal/workflow"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()
	log := app.NewLogger(cfg.Environment)
	defer log.Sync()

	if envErr != nil {
		log.Warn("no .env file loaded", zap.Error(envErr))
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer closeDB(db, log)

	if err := db.Ping(); err != nil {
		log.Fatal("database is unreachable", zap.Error(err))
	}

	ctx := context.Background()
	if cfg.MigrationsEnabled {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()
	inspector := asynq.NewInspector(redisConn)
	defer inspector.Close()

	storage, err := service.NewStorageService(ctx, *cfg)
	if err != nil {
		log.Fatal("object storage unavailable", zap.Error(err))
	}
	presets, err := preset.OpenFileStore(cfg.BrandPresetPath)
	if err != nil {
		log.Fatal("brand presets unavailable", zap.Error(err), zap.String("path", cfg.BrandPresetPath))
	}

	server := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    10 * service.MaxUploadBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			log.Error("unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": apperr.UserMessage(err)})
		},
	})

	server.Use(logger.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	carouselRepo := repository.NewCarouselRepository(db)
	slideRepo := repository.NewCarouselSlideRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	derivativeRepo := repository.NewMediaDerivativeRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	transactor := repository.NewTransactor(db)

	notifications := schedule.NewNotifications(cfg.NotificationTTL)
	workflowClient := workflow.NewClient(cfg.WorkflowURL, cfg.WorkflowSecret)
	publishQueue := queue.NewPublishQueue(client, inspector, log)

	sessionService := service.NewSessionService(userRepo)
	thumbnailService := service.NewThumbnailService(slideRepo, mediaRepo, derivativeRepo, storage, cfg.SignedURLTTL, log)
	draftService := service.NewDraftService(transactor, carouselRepo, slideRepo, mediaRepo, sessionService, storage, log)
	boardService := service.NewBoardService(carouselRepo, slideRepo, mediaRepo, thumbnailService, draftService, log)
	carouselService := service.NewCarouselService(carouselRepo, thumbnailService, presets, workflowClient, log)
	scheduleService := service.NewScheduleService(carouselRepo, reservationRepo, sessionService, publishQueue,
		notifications, cfg.DefaultTimezone, timezone.ParseWeekStart(cfg.WeekStart), log)
	calendarService := service.NewCalendarService(carouselRepo, cfg.FrontendURL)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, log)

	api := server.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	carousel := handlers.NewCarouselHandler(carouselService)
	api.Post("/carousels", carousel.CreateCarousel)
	api.Get("/carousels/:id", carousel.GetCarousel)
	api.Post("/carousels/:id/caption", carousel.GenerateCaption)
	api.Delete("/carousels/:id", carousel.RemoveCarousel)

	boards := handlers.NewBoardHandler(boardService)
	api.Get("/board/preview/:handle", boards.Preview)
	api.Get("/board/:carousel", boards.GetBoard)
	api.Post("/board/:carousel/files", boards.AddFiles)
	api.Post("/board/:carousel/slots/:index", boards.UploadIntoSlot)
	api.Post("/board/:carousel/slots/:index/library", boards.ImportLibrary)
	api.Delete("/board/:carousel/slots/:index", boards.ClearSlot)
	api.Post("/board/:carousel/drag", boards.Drag)
	api.Post("/board/:carousel/persist", boards.Persist)
	api.Delete("/board/:carousel", boards.CloseBoard)

	schedules := handlers.NewScheduleHandler(scheduleService, calendarService)
	api.Get("/schedule.ics", schedules.ExportICS)
	api.Get("/schedule", schedules.GetMonth)
	api.Post("/schedule", schedules.Schedule)
	api.Delete("/schedule/:carousel", schedules.Unschedule)
	api.Get("/notifications", schedules.Notifications)
	api.Delete("/notifications/:id", schedules.DismissNotification)

	presetHandler := handlers.NewPresetHandler(presets)
	api.Get("/presets", presetHandler.ListPresets)
	api.Put("/presets/:name", presetHandler.PutPreset)
	api.Delete("/presets/:name", presetHandler.DeletePreset)

	// cron jobs
	sweepJob := job.NewBoardSweepJob(boardService, cfg.BoardIdleTTL, log)

	// queue
	queueW := queue.NewQueue(carouselRepo, slideRepo, thumbnailService, workflowClient, notifications, log)

	c := cron.New()
	if err := c.AddFunc("@every 10m", sweepJob.SweepIdleBoards); err != nil {
		log.Fatal("failed to schedule board sweep", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	worker := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
		Logger:      log.Sugar(),
	})
	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishCarousel, queueW.HandlePublishCarouselTask)

		log.Info("starting the asynq server")
		if err := worker.Run(mux); err != nil {
			log.Fatal("could not start asynq server", zap.Error(err))
		}
	}()

	go func() {
		if err := server.Listen(cfg.ListenAddr); err != nil {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()
	log.Info("server is running", zap.String("addr", cfg.ListenAddr))

	gracefulShutdown(server, worker, boardService, log)
}

func closeDB(db *sql.DB, log *zap.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", zap.Error(err))
		return
	}
	log.Info("database connection closed")
}

func gracefulShutdown(server *fiber.App, worker *asynq.Server, boards service.BoardService, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server")

	if err := server.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Error("failed to shut down server", zap.Error(err))
	}
	worker.Shutdown()
	boards.CloseAll()

	log.Info("server shutdown complete")
}
