package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/auth"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/config"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/database"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/email"
	"github.com/FranciscoSoares0/WatchMatch-Backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "github.com/FranciscoSoares0/WatchMatch-Backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           WatchMatch API
// @version         1.0
// @description     Authentication, friendships and matching sessions for the WatchMatch service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	handler.Mailer = email.NewSMTPService(
		config.AppConfig.EmailHost,
		config.AppConfig.EmailPort,
		config.AppConfig.EmailUser,
		config.AppConfig.EmailPassword,
		config.AppConfig.FrontendURL,
	)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/signup", handler.Signup)
			authRoutes.POST("/signin", handler.Signin)
			authRoutes.POST("/refresh", handler.Refresh)
			authRoutes.POST("/forgot-password", handler.ForgotPassword)
			authRoutes.PUT("/reset-password", handler.ResetPassword)
			authRoutes.POST("/signout", handler.Signout)

			// The actual OAuth handshake happens in a verifier middleware
			// configured at deploy time; this service only checks that a
			// verified identity was attached.
			authRoutes.GET("/google/callback", auth.ExternalIdentityRequired(), handler.GoogleCallback)

			authRoutes.PUT("/change-password", auth.AuthMiddleware(), handler.ChangePassword)
			authRoutes.GET("/me", auth.AuthMiddleware(), handler.GetMe)
		}

		// Friendship routes (protected)
		friendRoutes := apiV1.Group("/friends")
		friendRoutes.Use(auth.AuthMiddleware())
		{
			friendRoutes.GET("", handler.GetFriends)
			friendRoutes.POST("/requests", handler.SendFriendRequest)
			friendRoutes.GET("/requests", handler.GetFriendRequests)
			friendRoutes.GET("/sent-requests", handler.GetSentRequests)
			friendRoutes.PATCH("/requests/:requestorId", handler.RespondToFriendRequest)
			friendRoutes.DELETE("/:friendId", handler.RemoveFriend)
		}

		// Matching routes (protected)
		matchingRoutes := apiV1.Group("/matching")
		matchingRoutes.Use(auth.AuthMiddleware())
		{
			matchingRoutes.POST("", handler.StartMatching)
			matchingRoutes.GET("", handler.GetMatchingSessions)
			matchingRoutes.POST("/:id/approvals", handler.ApproveShow)
		}
	}

	fmt.Println("Server is running on :8080")
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(":8080"))
}
