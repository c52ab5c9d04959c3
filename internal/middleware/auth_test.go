package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/invoice_finance_app/internal/core/domain"
	"github.com/SscSPs/invoice_finance_app/internal/utils"
)

const testSecret = "test-secret"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(slog.Default()))
	r.GET("/me", AuthMiddleware(testSecret, "ifa"), func(c *gin.Context) {
		p, ok := GetPrincipalFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, p)
	})
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := utils.GenerateJWT(domain.Principal{UserID: "u-1", OrganizationID: "org-1", Role: domain.RoleSeller}, testSecret, time.Hour, "ifa")
	require.NoError(t, err)

	w := doRequest(newAuthRouter(), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"organizationID":"org-1"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	r := newAuthRouter()
	wrongSecret, _ := utils.GenerateJWT(domain.Principal{UserID: "u", OrganizationID: "o", Role: domain.RoleSeller}, "other", time.Hour, "ifa")
	wrongIssuer, _ := utils.GenerateJWT(domain.Principal{UserID: "u", OrganizationID: "o", Role: domain.RoleSeller}, testSecret, time.Hour, "someone-else")
	expired, _ := utils.GenerateJWT(domain.Principal{UserID: "u", OrganizationID: "o", Role: domain.RoleSeller}, testSecret, -time.Hour, "ifa")
	system, _ := utils.GenerateJWT(domain.Principal{UserID: "u", Role: domain.RoleSystem}, testSecret, time.Hour, "ifa")
	noOrg, _ := utils.GenerateJWT(domain.Principal{UserID: "u", Role: domain.RoleBuyer}, testSecret, time.Hour, "ifa")

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"wrong secret":   "Bearer " + wrongSecret,
		"wrong issuer":   "Bearer " + wrongIssuer,
		"expired":        "Bearer " + expired,
		"system role":    "Bearer " + system,
		"party w/o org":  "Bearer " + noOrg,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, doRequest(r, header).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lim, err := NewRateLimiter("2-M")
	require.NoError(t, err)
	r := gin.New()
	r.GET("/ping", RateLimit(lim), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	_, err = NewRateLimiter("lots")
	assert.Error(t, err)
}
