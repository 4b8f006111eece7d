package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-tourbackend/models"
	"golang-tourbackend/utils"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	return c, w
}

func lastAppError(t *testing.T, c *gin.Context) *utils.AppError {
	t.Helper()
	require.NotEmpty(t, c.Errors)
	appErr, ok := c.Errors.Last().Err.(*utils.AppError)
	require.True(t, ok)
	return appErr
}

func TestRestrictToAllowsMatchingRole(t *testing.T) {
	c, _ := newTestContext(t)
	c.Set(principalKey, &models.User{Role: models.RoleAdmin})

	RestrictTo(models.RoleAdmin, models.RoleLeadGuide)(c)

	assert.False(t, c.IsAborted())
	assert.Empty(t, c.Errors)
}

func TestRestrictToForbidsOtherRoles(t *testing.T) {
	c, _ := newTestContext(t)
	c.Set(principalKey, &models.User{Role: models.RoleUser})

	RestrictTo(models.RoleAdmin, models.RoleLeadGuide)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, lastAppError(t, c).StatusCode)
}

func TestRestrictToFailsClosedWithoutPrincipal(t *testing.T) {
	c, _ := newTestContext(t)

	RestrictTo(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, lastAppError(t, c).StatusCode)
}

func TestCurrentUser(t *testing.T) {
	c, _ := newTestContext(t)

	_, ok := CurrentUser(c)
	assert.False(t, ok)

	want := &models.User{Role: models.RoleGuide}
	c.Set(principalKey, want)

	got, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestExtractTokenPrefersBearerHeader(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.Header.Set("Authorization", "Bearer header-token")
	c.Request.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})

	assert.Equal(t, "header-token", extractToken(c))
}

func TestExtractTokenFallsBackToCookie(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})

	assert.Equal(t, "cookie-token", extractToken(c))
}

func TestExtractTokenIgnoresLogoutSentinel(t *testing.T) {
	c, _ := newTestContext(t)
	c.Request.AddCookie(&http.Cookie{Name: "jwt", Value: LoggedOutCookie})

	assert.Equal(t, "", extractToken(c))
}

func TestProtectRejectsMissingToken(t *testing.T) {
	c, _ := newTestContext(t)

	Protect()(c)

	assert.True(t, c.IsAborted())
	appErr := lastAppError(t, c)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "You are not logged in. Please log in to get access.", appErr.Message)
}

func TestIsLoggedInProceedsWithoutToken(t *testing.T) {
	c, _ := newTestContext(t)

	IsLoggedIn()(c)

	assert.False(t, c.IsAborted())
	assert.Empty(t, c.Errors)
	_, ok := CurrentUser(c)
	assert.False(t, ok)
}
