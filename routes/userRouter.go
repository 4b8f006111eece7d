package routes

import (
	controller "golang-tourbackend/controllers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"

	"github.com/gin-gonic/gin"
)

func UserRoutes(incomingRoutes *gin.RouterGroup) {
	users := incomingRoutes.Group("/users")

	users.POST("/signup", controller.Signup())
	users.POST("/login", controller.Login())
	users.GET("/logout", controller.Logout())
	users.POST("/forgotPassword", controller.ForgotPassword())
	users.PATCH("/resetPassword/:token", controller.ResetPassword())

	authed := users.Group("/")
	authed.Use(middleware.Protect())
	{
		authed.PATCH("/updateMyPassword", controller.UpdatePassword())
		authed.GET("/me", controller.GetMe(), controller.GetUser())
		authed.PATCH("/updateMe", controller.UpdateMe())
		authed.DELETE("/deleteMe", controller.DeleteMe())
	}

	admin := users.Group("/")
	admin.Use(middleware.Protect(), middleware.RestrictTo(models.RoleAdmin))
	{
		admin.GET("/", controller.GetAllUsers())
		admin.POST("/", controller.CreateUser())
		admin.GET("/:id", controller.GetUser())
		admin.PATCH("/:id", controller.UpdateUser())
		admin.DELETE("/:id", controller.DeleteUser())
	}
}
