package middleware

import (
	"errors"
	"strings"

	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// RequireAuth validates the Bearer token and exposes the caller's
// identity on the gin context as user_id, email and username.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// TokenClaims is the decoded identity carried by an access token.
type TokenClaims struct {
	UserID   uint
	Email    string
	Username string
}

func ParseToken(tokenString, secret string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errInvalidToken
	}

	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)

	return &TokenClaims{
		UserID:   uint(userID),
		Email:    email,
		Username: username,
	}, nil
}

// CurrentUserID reads the authenticated user id set by RequireAuth.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
