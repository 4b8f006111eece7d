package models

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 *string            `json:"name" bson:"name,omitempty" validate:"required,min=3,max=30"`
	Email                *string            `json:"email" bson:"email,omitempty" validate:"required,email"`
	Photo                string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role                 string             `json:"role,omitempty" bson:"role,omitempty" validate:"omitempty,oneof=user guide lead-guide admin"`
	Password             *string            `json:"password,omitempty" bson:"password,omitempty" validate:"required,min=8"`
	PasswordConfirm      *string            `json:"passwordConfirm,omitempty" bson:"-" validate:"required,eqfield=Password"`
	PasswordChangedAt    *time.Time         `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires *time.Time         `json:"-" bson:"passwordResetExpires,omitempty"`
	Active               *bool              `json:"-" bson:"active,omitempty"`
}

// Users is the collection accessor. Soft-deleted users are invisible to every
// standard read, and credential fields never leave the database layer.
var Users = &Model[User]{
	CollectionName: "users",
	Visibility:     bson.M{"active": bson.M{"$ne": false}},
	Hidden: []string{
		"password",
		"passwordResetToken",
		"passwordResetExpires",
		"active",
	},
	PreValidate: []Hook[User]{userDefaults},
	PreSave:     []Hook[User]{hashUserPassword},
	PreUpdate:   []Hook[User]{hashUserPassword},
	Present:     sanitizeUser,
}

func userDefaults(ctx context.Context, user *User) error {
	if user.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*user.Email))
		user.Email = &lowered
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.Photo == "" {
		user.Photo = "default.jpg"
	}
	if user.Active == nil {
		active := true
		user.Active = &active
	}
	// On a merged update the stored hash round-trips as the password; mirror
	// it so the confirmation equality rule only bites on new passwords.
	if user.PasswordConfirm == nil && user.Password != nil && IsHashedPassword(*user.Password) {
		confirm := *user.Password
		user.PasswordConfirm = &confirm
	}
	return nil
}

func hashUserPassword(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Password == nil || IsHashedPassword(*user.Password) {
		return nil
	}
	hashed, err := HashPassword(*user.Password)
	if err != nil {
		return err
	}
	user.Password = &hashed
	user.PasswordConfirm = nil
	return nil
}

func sanitizeUser(user *User) {
	user.Password = nil
	user.PasswordConfirm = nil
	user.PasswordChangedAt = nil
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	user.Active = nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func VerifyPassword(candidate, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}

// IsHashedPassword reports whether the value is already a bcrypt hash, which
// is how a merged update is told apart from a fresh plaintext password.
func IsHashedPassword(password string) bool {
	return strings.HasPrefix(password, "$2a$") ||
		strings.HasPrefix(password, "$2b$") ||
		strings.HasPrefix(password, "$2y$")
}

// ChangedPasswordAfter reports whether the user's password changed at or
// after the given token issue time. The stored timestamp is truncated to
// whole seconds to line up with the JWT issued-at claim.
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() >= issuedAt
}

// CreatePasswordResetToken returns the plaintext token to send out-of-band
// and records its sha256 digest plus a 10 minute expiry on the user.
func (u *User) CreatePasswordResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	resetToken := hex.EncodeToString(raw)

	u.PasswordResetToken = HashResetToken(resetToken)
	expires := time.Now().Add(10 * time.Minute)
	u.PasswordResetExpires = &expires

	return resetToken, nil
}

func HashResetToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
