package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"coding-edu-platform/config"
	"coding-edu-platform/database"
	"coding-edu-platform/handlers"
	"coding-edu-platform/services"
	"coding-edu-platform/utils"
	"coding-edu-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	progressionService := services.NewProgressionService(db)
	badgeService := services.NewBadgeService(db)
	if err := badgeService.SeedBadgeTypes(ctx); err != nil {
		log.Fatal("failed to seed badges: ", err)
	}

	// Progress events go through asynq when Redis is configured, inline otherwise.
	if cfg.RedisURL != "" {
		jobs, err := workers.NewBadgeJobManager(cfg.RedisURL, badgeService)
		if err != nil {
			log.Fatal(err)
		}
		progressionService.Publisher = jobs
		go func() {
			if err := jobs.Run(ctx); err != nil {
				log.Printf("[JOBS] worker stopped: %v", err)
			}
		}()
	} else {
		log.Println("⚠️  REDIS_URL not set, evaluating badges inline")
		progressionService.Publisher = workers.NewInlinePublisher(badgeService)
	}

	if _, err := progressionService.StartLevelReconciler(ctx, cfg.LevelReconcileInterval); err != nil {
		log.Fatal("failed to start scheduler: ", err)
	}

	var images handlers.ImageStore
	staticRoot := ""
	if cfg.R2Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		images = uploader
	} else {
		local := &utils.LocalUploader{Root: "./uploads", BaseURL: "/uploads"}
		if err := local.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir: ", err)
		}
		staticRoot = local.Root
		images = local
	}

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.BodyLimitMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))
	if staticRoot != "" {
		app.Static("/uploads", staticRoot)
	}

	handlers.SetupRoutes(app, handlers.Deps{
		Auth:         services.NewAuthService(db, progressionService, cfg.JWTSecret, cfg.TokenTTL),
		Progression:  progressionService,
		Progress:     services.NewProgressService(db, progressionService),
		Courses:      services.NewCourseService(db),
		Challenges:   services.NewChallengeService(db, progressionService, services.LengthGrader{}),
		Roadmaps:     services.NewRoadmapService(db, progressionService),
		Leaderboard:  services.NewLeaderboardService(db),
		Badges:       badgeService,
		Profiles:     services.NewProfileService(db, badgeService),
		Images:       images,
		ServiceToken: cfg.ServiceToken,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Level reconciler running (every %s)", cfg.LevelReconcileInterval)
	log.Printf("✅ CORS configured for origins: %v", cfg.AllowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
