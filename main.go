package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"skillpath-backend/handlers"
	"skillpath-backend/models"
	"skillpath-backend/services"
	"skillpath-backend/utils"
	"skillpath-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, avatar uploads only
	})

	// CORS for the SPA frontend
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.AssessmentQuestion{},
		&models.AssessmentResult{},
		&models.AssessmentAnswer{},
		&models.LearningPath{},
		&models.LearningTopic{},
		&models.TopicResource{},
		&models.PathAssessmentResult{},
		&models.Video{},
		&models.VideoProgress{},
		&models.Review{},
		&models.LeaderboardEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Redis is optional: without it the leaderboard falls back to the DB
	// unique constraint for generation races and skips the top-3 cache.
	var rdb *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("⚠️  REDIS_URL not set, leaderboard generation lock and top-3 cache disabled")
	}

	if err := utils.InitStorage(); err != nil {
		log.Printf("⚠️  Object storage not configured, avatar uploads disabled: %v", err)
	}

	authService := services.NewAuthService(db)
	assessmentService := services.NewAssessmentService(db)
	pathService := services.NewLearningPathService(db)
	videoService := services.NewVideoService(db)
	activityService := services.NewActivityService(db)
	reviewService := services.NewReviewService(db)
	leaderboardService := services.NewLeaderboardService(db, rdb)

	if err := assessmentService.Seed(); err != nil {
		log.Printf("⚠️  Assessment seeding failed: %v", err)
	}
	authService.EnsureDemoUser()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	weekResetWorker := workers.NewWeekResetWorker(db)
	weekResetWorker.Start(ctx)

	leaderboardService.StartWeeklyScheduler()

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupAssessmentRoutes(app, assessmentService)
	handlers.SetupLearningPathRoutes(app, pathService)
	handlers.SetupVideoRoutes(app, videoService)
	handlers.SetupActivityRoutes(app, activityService)
	handlers.SetupReviewRoutes(app, reviewService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupUserRoutes(app, db)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "Server is running"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Week Reset Worker running")
	log.Println("✅ Weekly leaderboard scheduler running")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
