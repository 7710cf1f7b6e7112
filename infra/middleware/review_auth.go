package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

// Locals keys set by JWTAuth.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalIsAdmin  = "is_admin"
)

// Claims issued by the dashboard login. Older tokens carry the user id in
// "sub" instead of "id".
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// UserID returns the id claim, falling back to sub.
func (c *Claims) UserID() (uuid.UUID, error) {
	id := c.ID
	if id == "" {
		id = c.Subject
	}
	return uuid.Parse(id)
}

// JWTAuth verifies HS256 bearer tokens and stores the user in Locals and in
// the request context.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return apperr.Unauthorized("인증이 필요합니다.")
		}
		if secret == "" {
			return apperr.ConfigError("JWT secret not configured")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuedAt())
		if err != nil || !token.Valid {
			logger.WithContext(c.UserContext()).WithError(err).Warn("JWT validation failed")
			return apperr.InvalidToken("유효하지 않은 토큰입니다.")
		}

		userID, err := claims.UserID()
		if err != nil {
			return apperr.InvalidToken("유효하지 않은 토큰입니다.")
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalIsAdmin, claims.IsAdmin)
		c.SetUserContext(context.WithValue(c.UserContext(), logger.UserIDKey, userID.String()))

		return c.Next()
	}
}

// UserID returns the authenticated user, or uuid.Nil.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals(LocalUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
