package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "readlog", Duration: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	ts := testTokens()
	tok, exp, err := ts.Sign(OwnerSubject)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, OwnerSubject, claims.Subject)
	assert.Equal(t, "readlog", claims.Issuer)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	ts := testTokens()
	tok, _, err := ts.Sign(OwnerSubject)
	require.NoError(t, err)

	other := ts
	other.Secret = []byte("other-secret")
	_, err = other.Parse(tok)
	assert.Error(t, err)

	otherIssuer := ts
	otherIssuer.Issuer = "someone-else"
	_, err = otherIssuer.Parse(tok)
	assert.Error(t, err)

	expired := ts
	expired.Duration = -time.Minute
	old, _, err := expired.Sign(OwnerSubject)
	require.NoError(t, err)
	_, err = ts.Parse(old)
	assert.Error(t, err)
}

func newRouter(t *testing.T, password string) (*gin.Engine, TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	ts := testTokens()
	r := gin.New()
	NewHandler(string(hash), ts).RegisterRoutes(r.Group("/auth"))
	r.GET("/private", AuthMiddleware(ts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sub": MustGetClaims(c).Subject})
	})
	return r, ts
}

func doLogin(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesUsableToken(t *testing.T) {
	r, _ := newRouter(t, "correct horse")

	w := doLogin(r, `{"password":"correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), OwnerSubject)
}

func TestLoginFailures(t *testing.T) {
	r, _ := newRouter(t, "correct horse")

	assert.Equal(t, http.StatusUnauthorized, doLogin(r, `{"password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doLogin(r, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, doLogin(r, `not json`).Code)
}

func TestLoginWithoutConfiguredOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler("", testTokens()).RegisterRoutes(r.Group("/auth"))

	assert.Equal(t, http.StatusUnauthorized, doLogin(r, `{"password":"anything"}`).Code)
}

func TestMiddlewareRejects(t *testing.T) {
	r, ts := newRouter(t, "pw")

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-token",
	}
	other, _, err := ts.Sign("visitor")
	require.NoError(t, err)
	cases["other subject"] = "Bearer " + other

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}
