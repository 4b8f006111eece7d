package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAliasTopToursRewritesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tours/top-5-cheap?limit=500&difficulty=easy", nil)

	AliasTopTours()(c)

	query := c.Request.URL.Query()
	assert.Equal(t, "5", query.Get("limit"))
	assert.Equal(t, "-ratingsAverage,price", query.Get("sort"))
	assert.Equal(t, "name,price,ratingsAverage,summary,difficulty", query.Get("fields"))
	assert.Empty(t, query.Get("difficulty"))
}
