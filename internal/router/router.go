package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/kinjaldesarla/PostIt/internal/handlers"
	"github.com/kinjaldesarla/PostIt/internal/middleware"
	"github.com/kinjaldesarla/PostIt/internal/models"
	"github.com/kinjaldesarla/PostIt/internal/repositories"
	"github.com/kinjaldesarla/PostIt/internal/service"
	"github.com/kinjaldesarla/PostIt/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, mgClient *mongo.Client, pgdb *gorm.DB, firebaseAuthClient *auth.Client, uploader storage.Uploader) {
	// AutoMigrate the PostgreSQL notification ledger
	if err := pgdb.AutoMigrate(&models.Notification{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := mgClient.Database("postit")
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)

	// --- Services ---
	followService := service.NewFollowService(userRepo, notificationRepo)

	// --- Unprotected routes for authentication ---
	usersGroup := e.Group("/api/v1/users")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(usersGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	authedUsers := e.Group("/api/v1/users")
	authedUsers.Use(middleware.JWTAuthMiddleware())
	authHandler.RegisterSessionRoutes(authedUsers)

	userHandler := handlers.NewUserHandler(userRepo, postRepo, followService, uploader)
	userHandler.RegisterProfileRoutes(authedUsers)
	log.Println("User profile routes configured.")

	followHandler := handlers.NewFollowHandler(followService)
	followHandler.RegisterFollowRoutes(authedUsers)
	log.Println("Follow routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, followService)
	notificationHandler.RegisterNotificationRoutes(authedUsers)
	log.Println("Notification routes configured.")

	postsGroup := e.Group("/api/v1/posts")
	postsGroup.Use(middleware.JWTAuthMiddleware())
	postHandler := handlers.NewPostHandler(postRepo, userRepo, commentRepo, uploader)
	postHandler.RegisterPostRoutes(postsGroup)
	log.Println("Post routes configured.")

	commentsGroup := e.Group("/api/v1/comments")
	commentsGroup.Use(middleware.JWTAuthMiddleware())
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)
	commentHandler.RegisterCommentRoutes(commentsGroup)
	log.Println("Comment routes configured.")

	log.Println("All routes configured.")
}
