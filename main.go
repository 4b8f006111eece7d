package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	controller "golang-tourbackend/controllers"
	"golang-tourbackend/database"
	"golang-tourbackend/middleware"
	"golang-tourbackend/routes"
	"golang-tourbackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	database.Connect()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	utils.InitRedis()

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(controller.ErrorHandler())
	router.Use(cors.New(corsConfig()))

	api := router.Group("/api", middleware.RateLimit())
	v1 := api.Group("/v1")
	{
		routes.TourRoutes(v1)
		routes.UserRoutes(v1)
		routes.ReviewRoutes(v1)
		routes.BookingRoutes(v1)
	}

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(utils.NewAppError(
			"Can't find "+c.Request.URL.Path+" on this server!",
			http.StatusNotFound))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowCredentials = true
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
		return config
	}
	for _, origin := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			config.AllowOrigins = append(config.AllowOrigins, trimmed)
		}
	}
	return config
}
