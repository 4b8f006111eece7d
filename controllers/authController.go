package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/helpers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

// createSendToken mints a token for the user and transmits it both in the
// response body and as an http-only cookie.
func createSendToken(c *gin.Context, user *models.User, statusCode int) {
	token, err := helpers.GenerateToken(user.ID.Hex())
	if err != nil {
		abortWithError(c, err)
		return
	}

	maxAge := int(helpers.TokenExpiry().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("jwt", token, maxAge, "/", "", isProduction(), true)

	models.Users.Present(user)
	c.JSON(statusCode, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var payload models.User
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid input", http.StatusBadRequest))
			return
		}

		// Only these fields are taken from the payload; everything else is
		// assigned by the model's hooks.
		user := models.User{
			Name:            payload.Name,
			Email:           payload.Email,
			Password:        payload.Password,
			PasswordConfirm: payload.PasswordConfirm,
			Role:            payload.Role,
		}

		if err := models.Users.RunHooks(ctx, models.Users.PreValidate, &user); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Validate.Struct(user); err != nil {
			abortWithError(c, err)
			return
		}
		if err := models.Users.RunHooks(ctx, models.Users.PreSave, &user); err != nil {
			abortWithError(c, err)
			return
		}

		if _, err := models.Users.Collection().InsertOne(ctx, user); err != nil {
			abortWithError(c, err)
			return
		}

		if err := helpers.SendWelcomeEmail(*user.Email, *user.Name, requestBaseURL(c)+"/me"); err != nil {
			log.Printf("Could not send welcome email to %s: %v", *user.Email, err)
		}

		createSendToken(c, &user, http.StatusCreated)
	}
}

func Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&credentials); err != nil || credentials.Email == "" || credentials.Password == "" {
			abortWithError(c, utils.NewAppError("Please provide email and password", http.StatusBadRequest))
			return
		}

		var user models.User
		err := models.Users.Collection().
			FindOne(ctx, models.Users.ReadFilter(bson.M{"email": credentials.Email})).
			Decode(&user)
		if err == mongo.ErrNoDocuments ||
			(err == nil && (user.Password == nil || !models.VerifyPassword(credentials.Password, *user.Password))) {
			abortWithError(c, utils.NewAppError("Incorrect email or password", http.StatusUnauthorized))
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		createSendToken(c, &user, http.StatusOK)
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie("jwt", middleware.LoggedOutCookie, 10, "/", "", isProduction(), true)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func ForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var payload struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil || payload.Email == "" {
			abortWithError(c, utils.NewAppError("Please provide an email address", http.StatusBadRequest))
			return
		}

		var user models.User
		err := models.Users.Collection().
			FindOne(ctx, models.Users.ReadFilter(bson.M{"email": payload.Email})).
			Decode(&user)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, utils.NewAppError("There is no user with that email address.", http.StatusNotFound))
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		resetToken, err := user.CreatePasswordResetToken()
		if err != nil {
			abortWithError(c, err)
			return
		}
		_, err = models.Users.Collection().UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"passwordResetToken":   user.PasswordResetToken,
				"passwordResetExpires": user.PasswordResetExpires,
			}})
		if err != nil {
			abortWithError(c, err)
			return
		}

		resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", requestBaseURL(c), resetToken)
		if err := helpers.SendPasswordResetEmail(*user.Email, resetURL); err != nil {
			// Roll the token back so a half-issued reset cannot linger.
			_, _ = models.Users.Collection().UpdateOne(ctx,
				bson.M{"_id": user.ID},
				bson.M{"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""}})
			abortWithError(c, utils.NewAppError(
				"There was an error sending the email. Try again later!",
				http.StatusInternalServerError))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Token sent to email!",
		})
	}
}

// resetTokenFilter matches a live account holding the given unexpired reset
// token digest. Goes through the visibility filter so a deactivated account
// cannot complete a reset with a token issued before it was deleted.
func resetTokenFilter(hashedToken string) bson.M {
	return models.Users.ReadFilter(bson.M{
		"passwordResetToken":   hashedToken,
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	})
}

func ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		hashedToken := models.HashResetToken(c.Param("token"))

		var user models.User
		err := models.Users.Collection().
			FindOne(ctx, resetTokenFilter(hashedToken)).
			Decode(&user)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, utils.NewAppError("Token is invalid or has expired.", http.StatusBadRequest))
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		var payload struct {
			Password        string `json:"password"`
			PasswordConfirm string `json:"passwordConfirm"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid input", http.StatusBadRequest))
			return
		}
		if err := applyNewPassword(&user, payload.Password, payload.PasswordConfirm); err != nil {
			abortWithError(c, err)
			return
		}

		_, err = models.Users.Collection().UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{
				"$set": bson.M{
					"password":          user.Password,
					"passwordChangedAt": user.PasswordChangedAt,
				},
				"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
			})
		if err != nil {
			abortWithError(c, err)
			return
		}

		createSendToken(c, &user, http.StatusOK)
	}
}

func UpdatePassword() gin.HandlerFunc {
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

		var payload struct {
			PasswordCurrent string `json:"passwordCurrent"`
			Password        string `json:"password"`
			PasswordConfirm string `json:"passwordConfirm"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			abortWithError(c, utils.WrapError(err, "Invalid input", http.StatusBadRequest))
			return
		}

		if user.Password == nil || !models.VerifyPassword(payload.PasswordCurrent, *user.Password) {
			abortWithError(c, utils.NewAppError(
				"Your current password is wrong.",
				http.StatusUnauthorized))
			return
		}

		if err := applyNewPassword(user, payload.Password, payload.PasswordConfirm); err != nil {
			abortWithError(c, err)
			return
		}

		_, err := models.Users.Collection().UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{
				"password":          user.Password,
				"passwordChangedAt": user.PasswordChangedAt,
			}})
		if err != nil {
			abortWithError(c, err)
			return
		}

		createSendToken(c, user, http.StatusOK)
	}
}

// applyNewPassword validates and hashes a new password onto the user, and
// stamps the change one second in the past so the token minted right after
// is not itself invalidated.
func applyNewPassword(user *models.User, password, passwordConfirm string) error {
	if len(password) < 8 {
		return utils.NewAppError("A password must contain at least 8 characters", http.StatusBadRequest)
	}
	if password != passwordConfirm {
		return utils.NewAppError("Passwords do not match", http.StatusBadRequest)
	}

	hashed, err := models.HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = &hashed
	user.PasswordConfirm = nil

	changedAt := time.Now().Add(-time.Second)
	user.PasswordChangedAt = &changedAt
	return nil
}
