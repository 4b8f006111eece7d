package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"golang-tourbackend/helpers"
	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

const (
	principalKey   = "currentUser"
	requestTimeout = 10 * time.Second

	// LoggedOutCookie is the sentinel the logout handler writes over the jwt
	// cookie; it is never accepted as a token.
	LoggedOutCookie = "loggedout"
)

// CurrentUser returns the principal a previous Protect or IsLoggedIn attached.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// Protect rejects the request unless a valid, unexpired token resolves to a
// live principal whose password has not changed since the token was issued.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolvePrincipal(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(principalKey, user)
		c.Next()
	}
}

// IsLoggedIn runs the same checks as Protect but silently proceeds without a
// principal on any failure. For personalization only, never for protection.
func IsLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolvePrincipal(c); err == nil {
			c.Set(principalKey, user)
		}
		c.Next()
	}
}

// RestrictTo allows only the given roles. Fails closed with Unauthenticated
// when no principal was attached.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			_ = c.Error(utils.NewAppError(
				"You are not logged in. Please log in to get access.",
				http.StatusUnauthorized))
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		_ = c.Error(utils.NewAppError(
			"You do not have permission to perform this action.",
			http.StatusForbidden))
		c.Abort()
	}
}

func resolvePrincipal(c *gin.Context) (*models.User, error) {
	token := extractToken(c)
	if token == "" {
		return nil, utils.NewAppError(
			"You are not logged in. Please log in to get access.",
			http.StatusUnauthorized)
	}

	claims, err := helpers.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, utils.NewAppError("Invalid token. Please log in again!", http.StatusUnauthorized)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var user models.User
	err = models.Users.Collection().
		FindOne(ctx, models.Users.ReadFilter(bson.M{"_id": oid})).
		Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(
			"The user belonging to this token does no longer exist.",
			http.StatusUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, utils.NewAppError(
			"User recently changed password! Please log in again.",
			http.StatusUnauthorized)
	}
	return &user, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("jwt"); err == nil && cookie != LoggedOutCookie {
		return cookie
	}
	return ""
}
