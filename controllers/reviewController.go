package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"golang-tourbackend/middleware"
	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

func GetReview() gin.HandlerFunc     { return GetOne(models.Reviews) }
func GetAllReviews() gin.HandlerFunc { return GetAll(models.Reviews) }
func CreateReview() gin.HandlerFunc  { return CreateOne(models.Reviews) }
func UpdateReview() gin.HandlerFunc  { return UpdateOne(models.Reviews) }
func DeleteReview() gin.HandlerFunc  { return DeleteOne(models.Reviews) }

// SetTourFilter scopes a nested list to the tour in the path.
func SetTourFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tourID := c.Param("id"); tourID != "" {
			oid, err := primitive.ObjectIDFromHex(tourID)
			if err != nil {
				abortWithError(c, utils.WrapError(err, "Invalid id: "+tourID, http.StatusBadRequest))
				return
			}
			c.Set(queryScopeKey, bson.M{"tour": oid})
		}
		c.Next()
	}
}

// SetTourUserIDs fills the review's tour from the path and its user from the
// principal before the generic create runs.
func SetTourUserIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		body := map[string]interface{}{}
		if raw, err := io.ReadAll(c.Request.Body); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}

		if _, ok := body["tour"]; !ok {
			if tourID := c.Param("id"); tourID != "" {
				body["tour"] = tourID
			}
		}
		if user, ok := middleware.CurrentUser(c); ok {
			body["user"] = user.ID.Hex()
		}

		raw, err := json.Marshal(body)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		c.Request.ContentLength = int64(len(raw))
		c.Next()
	}
}
