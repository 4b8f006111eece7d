package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/middleware"
	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

func GetBooking() gin.HandlerFunc     { return GetOne(models.Bookings) }
func GetAllBookings() gin.HandlerFunc { return GetAll(models.Bookings) }
func CreateBooking() gin.HandlerFunc  { return CreateOne(models.Bookings) }
func UpdateBooking() gin.HandlerFunc  { return UpdateOne(models.Bookings) }
func DeleteBooking() gin.HandlerFunc  { return DeleteOne(models.Bookings) }

// GetCheckoutSession creates a hosted payment session for the tour in the
// path. The success URL carries the session id so the callback can verify
// the payment with the provider instead of trusting the client.
func GetCheckoutSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		user, ok := middleware.CurrentUser(c)
		if !ok {
			abortWithError(c, utils.NewAppError(
				"You are not logged in. Please log in to get access.",
				http.StatusUnauthorized))
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("tourId"))
		if err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid id: "+c.Param("tourId"), http.StatusBadRequest))
			return
		}

		var tour models.Tour
		err = models.Tours.Collection().
			FindOne(ctx, models.Tours.ReadFilter(bson.M{"_id": oid})).
			Decode(&tour)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
		base := requestBaseURL(c)

		params := &stripe.CheckoutSessionParams{
			SuccessURL:        stripe.String(base + "/api/v1/bookings/checkout-callback?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:         stripe.String(base + "/tour/" + tour.Slug),
			CustomerEmail:     stripe.String(*user.Email),
			ClientReferenceID: stripe.String(tour.ID.Hex()),
			Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
			PaymentMethodTypes: stripe.StringSlice([]string{
				"card",
			}),
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{
					PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
						Currency:   stripe.String("usd"),
						UnitAmount: stripe.Int64(int64(*tour.Price * 100)),
						ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
							Name:        stripe.String(*tour.Name + " Tour"),
							Description: stripe.String(*tour.Summary),
						},
					},
					Quantity: stripe.Int64(1),
				},
			},
		}

		sess, err := checkoutsession.New(params)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"session": sess},
		})
	}
}

// CreateBookingCheckout turns a completed checkout redirect into a booking.
// Tour, user and price come from the provider's record of the session, never
// from the query string.
func CreateBookingCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		sessionID := c.Query("session_id")
		if sessionID == "" {
			abortWithError(c, utils.NewAppError("Missing checkout session id", http.StatusBadRequest))
			return
		}

		stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
		sess, err := checkoutsession.Get(sessionID, nil)
		if err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid checkout session", http.StatusBadRequest))
			return
		}
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			abortWithError(c, utils.NewAppError("Checkout session has not been paid", http.StatusBadRequest))
			return
		}

		tourID, err := primitive.ObjectIDFromHex(sess.ClientReferenceID)
		if err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid checkout session", http.StatusBadRequest))
			return
		}

		email := sess.CustomerEmail
		if email == "" && sess.CustomerDetails != nil {
			email = sess.CustomerDetails.Email
		}
		var user models.User
		err = models.Users.Collection().
			FindOne(ctx, models.Users.ReadFilter(bson.M{"email": email})).
			Decode(&user)
		if err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid checkout session", http.StatusBadRequest))
			return
		}

		price := float64(sess.AmountTotal) / 100
		booking := models.Booking{
			Tour:  tourID,
			User:  user.ID,
			Price: &price,
		}
		if err := models.Bookings.RunHooks(ctx, models.Bookings.PreValidate, &booking); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Validate.Struct(booking); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Bookings.RunHooks(ctx, models.Bookings.PreSave, &booking); err != nil {
			abortWithError(c, err)
			return
		}
		if _, err := models.Bookings.Collection().InsertOne(ctx, booking); err != nil {
			abortWithError(c, err)
			return
		}

		redirect := os.Getenv("FRONTEND_URL")
		if redirect == "" {
			redirect = "/"
		}
		c.Redirect(http.StatusFound, redirect)
	}
}
