package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/api/handlers"
	"github.com/listforge/listforge/internal/api/middleware"
	job "github.com/listforge/listforge/internal/jobs"
	"github.com/listforge/listforge/internal/queue"
	"github.com/listforge/listforge/internal/repository"
	"github.com/listforge/listforge/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	historyRepo := repository.NewPublishHistoryRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	ledgerService := service.NewLedgerService(ledgerRepo)
	userService := service.NewUserService(userRepo, subscriptionRepo, ledgerService)
	r2Service := service.NewR2Service(*cfg)
	generationService := service.NewGenerationService(*cfg, r2Service)
	dispatchService := service.NewDispatchService(*cfg)
	workflowService := service.NewWorkflowService(*cfg, postRepo, subscriptionRepo, connectionRepo, historyRepo, ledgerService, dispatchService, generationService)
	platformService := service.NewPlatformService(*cfg, connectionRepo)
	billingService := service.NewBillingService(*cfg, userRepo, subscriptionRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	payment := handlers.NewPaymentHandler(*cfg, billingService, client)
	app.Post("/webhooks/payment", payment.PaymentWebhook)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(*cfg, userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.DeleteAccount)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	platform := handlers.NewPlatformHandler(*cfg, platformService)
	api.Get("/listing/connect", platform.ConnectListing)
	api.Get("/listing/callback", platform.CallbackHandler)
	api.Get("/listing/connection", platform.GetConnection)
	api.Post("/listing/remove", platform.DeleteConnection)

	post := handlers.NewPostHandler(workflowService)
	api.Post("/posts/generate", post.GeneratePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/approve", post.ApprovePost)
	api.Post("/posts/reject", post.RejectPost)
	api.Post("/posts/schedule", post.SchedulePost)
	api.Post("/posts/publish", post.PublishPost)
	api.Post("/posts/description", post.UpdateDescription)
	api.Post("/posts/remove", post.RemovePost)
	api.Get("/posts/history", post.PublishHistory)

	// cron jobs
	publishDueJob := job.NewPublishDueJob(postRepo, workflowService)
	refreshTokenJob := job.NewTokenRefreshJob(connectionRepo, platformService)

	//queue
	queueW := queue.NewQueue(ledgerService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", publishDueJob.PublishDue)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeApplyCredits, queueW.HandleApplyCreditsTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
