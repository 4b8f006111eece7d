package routes

import (
	controller "golang-tourbackend/controllers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"

	"github.com/gin-gonic/gin"
)

func TourRoutes(incomingRoutes *gin.RouterGroup) {
	tours := incomingRoutes.Group("/tours")

	tours.GET("/top-5-cheap", controller.AliasTopTours(), controller.GetAllTours())
	tours.GET("/", controller.GetAllTours())
	tours.GET("/:id", controller.GetTour())

	// Nested reviews: :id is the tour here.
	tours.GET("/:id/reviews", middleware.Protect(), controller.SetTourFilter(), controller.GetAllReviews())
	tours.POST("/:id/reviews",
		middleware.Protect(),
		middleware.RestrictTo(models.RoleUser),
		controller.SetTourUserIDs(),
		controller.CreateReview(),
	)

	restricted := tours.Group("/")
	restricted.Use(middleware.Protect(), middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
	{
		restricted.POST("/", controller.CreateTour())
		restricted.PATCH("/:id", controller.UpdateTour())
		restricted.DELETE("/:id", controller.DeleteTour())
	}
}
