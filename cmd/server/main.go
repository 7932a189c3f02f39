package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/mtakagi/todo-share-api/internal/config"
	"github.com/mtakagi/todo-share-api/internal/constants"
	"github.com/mtakagi/todo-share-api/internal/database"
	"github.com/mtakagi/todo-share-api/internal/handlers"
	"github.com/mtakagi/todo-share-api/internal/middleware"
	"github.com/mtakagi/todo-share-api/internal/repository"
	"github.com/mtakagi/todo-share-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Refuse to serve against an incomplete schema; in particular the
	// sharing table must exist before any request comes in.
	if err := database.CheckSchema(database.GetDB()); err != nil {
		log.Fatalf("Schema check failed: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	authService := services.NewAuthService(userRepo)
	todoService := services.NewTodoService(todoRepo)
	adminService := services.NewAdminService(userRepo, todoRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Todo Share API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Share-target listing (protected)
		api.GET("/users", middleware.RequireAuth(), authHandler.ListUsers)

		// Todo routes (protected)
		todos := api.Group("/todos")
		todos.Use(middleware.RequireAuth())
		{
			todos.GET("", todoHandler.ListTodos)
			todos.GET("/shared", todoHandler.ListSharedTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/:id", todoHandler.GetTodo)
			todos.PATCH("/:id", todoHandler.UpdateTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
			todos.POST("/:id/share", todoHandler.ShareTodo)
			todos.DELETE("/:id/share/:user_id", todoHandler.RevokeShare)
		}

		// Admin routes (protected + role gated)
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/todos", adminHandler.ListTodos)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
