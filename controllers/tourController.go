package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

const tourCacheTTL = 60 * time.Second

func GetTour() gin.HandlerFunc     { return GetOne(models.Tours) }
func CreateTour() gin.HandlerFunc  { return CreateOne(models.Tours) }
func UpdateTour() gin.HandlerFunc  { return UpdateOne(models.Tours) }
func DeleteTour() gin.HandlerFunc  { return DeleteOne(models.Tours) }
func GetAllTours() gin.HandlerFunc { return cachedList("tours", tourCacheTTL, GetAll(models.Tours)) }

// AliasTopTours rewrites the query so the list endpoint serves the five
// best-rated cheap tours.
func AliasTopTours() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := url.Values{}
		query.Set("limit", "5")
		query.Set("sort", "-ratingsAverage,price")
		query.Set("fields", "name,price,ratingsAverage,summary,difficulty")
		c.Request.URL.RawQuery = query.Encode()
		c.Next()
	}
}

type bodyCapture struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// cachedList serves a list endpoint from redis when an identical query was
// answered recently, and stores fresh successful responses.
func cachedList(prefix string, ttl time.Duration, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := utils.QueryCacheKey(prefix, c.Request.URL.Query())

		var cached map[string]interface{}
		if hit, err := utils.GetCached(ctx, key, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}

		writer := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = writer
		handler(c)
		c.Writer = writer.ResponseWriter

		if writer.Status() == http.StatusOK {
			var body map[string]interface{}
			if err := json.Unmarshal(writer.buf.Bytes(), &body); err == nil {
				_ = utils.SetCached(ctx, key, body, ttl)
			}
		}
	}
}
