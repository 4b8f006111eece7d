package controllers

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"golang-tourbackend/helpers"
	"golang-tourbackend/middleware"
	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

func GetUser() gin.HandlerFunc     { return GetOne(models.Users) }
func GetAllUsers() gin.HandlerFunc { return GetAll(models.Users) }

// Do NOT update passwords with these.
func UpdateUser() gin.HandlerFunc { return UpdateOne(models.Users) }
func DeleteUser() gin.HandlerFunc { return DeleteOne(models.Users) }

// GetMe injects the principal's id so the generic GetOne serves /me.
func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			abortWithError(c, utils.NewAppError(
				"You are not logged in. Please log in to get access.",
				http.StatusUnauthorized))
			return
		}
		c.Params = append(c.Params, gin.Param{Key: "id", Value: user.ID.Hex()})
		c.Next()
	}
}

// UpdateMe lets the principal change name, email and photo. Password changes
// go through /updateMyPassword only.
func UpdateMe() gin.HandlerFunc {
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

		name, email, err := bindUpdateMePayload(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		update := bson.M{}
		if name != "" {
			update["name"] = name
		}
		if email != "" {
			email = strings.ToLower(strings.TrimSpace(email))
			if err := models.Validate.Var(email, "email"); err != nil {
				abortWithError(c, utils.NewAppError("Please provide a valid email address", http.StatusBadRequest))
				return
			}
			update["email"] = email
		}

		if file, header, err := c.Request.FormFile("photo"); err == nil {
			defer file.Close()
			if !strings.HasPrefix(header.Header.Get("Content-Type"), "image") {
				abortWithError(c, utils.NewAppError("Not an image! Please upload images only.", http.StatusBadRequest))
				return
			}
			key := fmt.Sprintf("users/user-%s-%d.jpeg", user.ID.Hex(), time.Now().Unix())
			if err := helpers.UploadFileToS3(ctx, os.Getenv("BUCKET_NAME"), key, file); err != nil {
				abortWithError(c, err)
				return
			}
			update["photo"] = key
		}

		if len(update) == 0 {
			abortWithError(c, utils.NewAppError("Nothing to update", http.StatusBadRequest))
			return
		}

		var updated models.User
		err = models.Users.Collection().
			FindOneAndUpdate(ctx,
				models.Users.ReadFilter(bson.M{"_id": user.ID}),
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			abortWithError(c, errNoDocument)
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}

		models.Users.Present(&updated)
		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   gin.H{"user": updated},
		})
	}
}

func bindUpdateMePayload(c *gin.Context) (name, email string, err error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var payload struct {
			Name            string `json:"name"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			PasswordConfirm string `json:"passwordConfirm"`
		}
		if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
			return "", "", utils.WrapError(bindErr, "Invalid input", http.StatusBadRequest)
		}
		if payload.Password != "" || payload.PasswordConfirm != "" {
			return "", "", utils.NewAppError(
				"This route is not for password updates. Please use /updateMyPassword",
				http.StatusBadRequest)
		}
		return payload.Name, payload.Email, nil
	}

	if c.PostForm("password") != "" || c.PostForm("passwordConfirm") != "" {
		return "", "", utils.NewAppError(
			"This route is not for password updates. Please use /updateMyPassword",
			http.StatusBadRequest)
	}
	return c.PostForm("name"), c.PostForm("email"), nil
}

// DeleteMe soft-deletes the principal; the account disappears from every
// standard read but the record stays.
func DeleteMe() gin.HandlerFunc {
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

		_, err := models.Users.Collection().UpdateOne(ctx,
			bson.M{"_id": user.ID},
			bson.M{"$set": bson.M{"active": false}})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// CreateUser exists so the admin CRUD surface is complete; accounts are only
// created through /signup.
func CreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, utils.NewAppError(
			"This route is not defined. Please use /signup instead",
			http.StatusInternalServerError))
	}
}
