package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  float64(42),
		"email":    "alice@example.com",
		"username": "alice",
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	RequireAuth(testSecret)(c)
	return w, c
}

func TestRequireAuthValidToken(t *testing.T) {
	token := signToken(t, testSecret, validClaims())
	w, c := runAuth(t, "Bearer "+token)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)

	userID, ok := CurrentUserID(c)
	require.True(t, ok)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "alice", c.GetString("username"))
	assert.Equal(t, "alice@example.com", c.GetString("email"))
}

func TestRequireAuthMissingHeader(t *testing.T) {
	w, c := runAuth(t, "")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	w, c := runAuth(t, "Token abc123")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", validClaims())
	w, c := runAuth(t, "Bearer "+token)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, testSecret, claims)
	w, c := runAuth(t, "Bearer "+token)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestParseTokenRejectsMissingUserID(t *testing.T) {
	claims := validClaims()
	delete(claims, "user_id")
	token := signToken(t, testSecret, claims)

	_, err := ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongAlgorithm(t *testing.T) {
	// Unsigned tokens must never be accepted.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err)
}
