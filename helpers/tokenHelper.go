package helpers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	jwt "github.com/dgrijalva/jwt-go"

	"golang-tourbackend/utils"
)

// SignedDetails binds a token to a principal id and its issue time. The
// issued-at claim is what invalidates tokens minted before a password change.
type SignedDetails struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// TokenExpiry is the configured token lifetime.
func TokenExpiry() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("JWT_EXPIRES_HOURS"))
	if err != nil || hours < 1 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &SignedDetails{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenExpiry()).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

func ValidateToken(signedToken string) (*SignedDetails, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, utils.NewAppError("Invalid token. Please log in again!", http.StatusUnauthorized)
			}
			return jwtSecret(), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return nil, utils.NewAppError("Invalid token. Please log in again!", http.StatusUnauthorized)
	}
	return claims, nil
}
