package routes

import (
	controller "golang-tourbackend/controllers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"

	"github.com/gin-gonic/gin"
)

func BookingRoutes(incomingRoutes *gin.RouterGroup) {
	bookings := incomingRoutes.Group("/bookings")
	bookings.Use(middleware.Protect())

	bookings.GET("/checkout-session/:tourId", controller.GetCheckoutSession())
	bookings.GET("/checkout-callback", controller.CreateBookingCheckout())

	admin := bookings.Group("/")
	admin.Use(middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide))
	{
		admin.GET("/", controller.GetAllBookings())
		admin.POST("/", controller.CreateBooking())
		admin.GET("/:id", controller.GetBooking())
		admin.PATCH("/:id", controller.UpdateBooking())
		admin.DELETE("/:id", controller.DeleteBooking())
	}
}
