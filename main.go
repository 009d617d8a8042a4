package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/definitelynotchirag/Fitlog/cache"
	"github.com/definitelynotchirag/Fitlog/db"
	"github.com/definitelynotchirag/Fitlog/handlers"
	"github.com/definitelynotchirag/Fitlog/llm"
	"github.com/definitelynotchirag/Fitlog/middleware"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/routes"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	utils.Logger.Info("starting_application")

	db.Connect()
	if err := db.DB.AutoMigrate(
		&models.User{},
		&models.Routine{},
		&models.Workout{},
		&models.Set{},
		&models.ChatHistory{},
		&models.ChatMessage{},
	); err != nil {
		utils.Logger.Fatal("migration_failed", zap.Error(err))
	}

	// Redis is optional: list caching is skipped when it isn't reachable.
	if err := cache.InitRedis(utils.Logger); err != nil {
		utils.Logger.Warn("redis_unavailable_continuing_without_cache", zap.Error(err))
	}
	defer cache.Close()

	handlers.Generator = llm.NewClientFromEnv()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{utils.GetEnv("CORS_ORIGIN", "http://localhost:3000")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
			"database":  "connected",
		})
	})

	// Public endpoints
	r.POST("/api/register", routes.Register)
	r.POST("/api/login", routes.Login)

	// Protected endpoints
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// Profile
		api.GET("/profile", routes.Profile)

		// Chat: the streaming endpoint is the primary surface
		api.POST("/chat/stream", handlers.ChatStream)
		api.POST("/chat", handlers.Chat)

		// Users
		api.POST("/users", handlers.CreateUser)
		api.GET("/users/fitness-profile", handlers.GetFitnessProfile)
		api.POST("/users/fitness-profile", handlers.UpdateFitnessProfile)
		api.POST("/users/history", handlers.GetChatHistory)

		// Routines
		api.GET("/routines", middleware.CacheMiddleware(2*time.Minute), handlers.DisplayRoutines)
		api.POST("/routines", handlers.CreateRoutine)
		api.POST("/routines/id-by-name", handlers.RoutineIDByName)

		// Workouts
		api.GET("/workouts/by-date", middleware.CacheMiddleware(2*time.Minute), handlers.WorkoutsByDate)
		api.POST("/workouts/log", handlers.LogWorkout)
		api.POST("/workouts/sets", handlers.AddSets)
		api.POST("/calories", handlers.CaloriesSummary)
	}

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	startServer(r)
}

func startServer(router *gin.Engine) {
	port := utils.GetEnv("PORT", "8080")

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Write timeout must cover a whole streamed chat exchange.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))

	fmt.Println("\n🚀 ================================")
	fmt.Println("   Fitlog Backend Started")
	fmt.Println("   ================================")
	fmt.Printf("   🌐 Server:  http://localhost:%s\n", port)
	fmt.Printf("   📊 Metrics: http://localhost:%s/metrics\n", port)
	fmt.Printf("   ❤️  Health: http://localhost:%s/health\n", port)
	fmt.Println("   ================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
}
