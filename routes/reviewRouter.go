package routes

import (
	controller "golang-tourbackend/controllers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"

	"github.com/gin-gonic/gin"
)

func ReviewRoutes(incomingRoutes *gin.RouterGroup) {
	reviews := incomingRoutes.Group("/reviews")
	reviews.Use(middleware.Protect())

	reviews.GET("/", controller.GetAllReviews())
	reviews.POST("/",
		middleware.RestrictTo(models.RoleUser),
		controller.SetTourUserIDs(),
		controller.CreateReview(),
	)

	reviews.GET("/:id", controller.GetReview())
	reviews.PATCH("/:id",
		middleware.RestrictTo(models.RoleUser, models.RoleAdmin),
		controller.UpdateReview(),
	)
	reviews.DELETE("/:id",
		middleware.RestrictTo(models.RoleUser, models.RoleAdmin),
		controller.DeleteReview(),
	)
}
