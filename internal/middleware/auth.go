package middleware

import (
	"fmt"
	"strings"

	"smartquiz/internal/domain"
	"smartquiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	IdentityKey         = "identity" // Key for storing the caller identity in fiber.Ctx locals
)

// TokenVerifier validates a signed bearer token and returns the caller
// identity it carries. Tokens are issued elsewhere; this service only
// verifies them.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, extracting the subject and
// role claims.
func (v *TokenVerifier) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Identity{}, fmt.Errorf("token has no subject")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = domain.RoleStudent
	}

	return domain.Identity{ID: sub, Role: role}, nil
}

// Protected is a middleware function that protects routes by requiring a valid JWT.
// It verifies the token and sets the caller identity in the context.
func Protected(verifier *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_AUTH_HEADER",
				Message: "Authorization header is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_AUTH_SCHEME",
				Message: "Authorization scheme is not Bearer",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenString := strings.TrimPrefix(authHeader, BearerSchema)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "EMPTY_TOKEN",
				Message: "Token is empty",
				Status:  fiber.StatusUnauthorized,
			})
		}

		ident, err := verifier.Verify(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: err.Error(),
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(IdentityKey, ident)

		return c.Next()
	}
}

// OptionalAuth is a middleware function that optionally authenticates a caller.
// If a valid token is provided, it sets the identity in the context.
// Otherwise, it proceeds without one, allowing for anonymous access.
func OptionalAuth(verifier *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)

		// If no Authorization header, proceed as anonymous
		if authHeader == "" {
			return c.Next()
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			logger.Get().Debug("OptionalAuth: Authorization scheme is not Bearer, proceeding as anonymous.")
			return c.Next()
		}

		tokenString := strings.TrimPrefix(authHeader, BearerSchema)
		if tokenString == "" {
			return c.Next()
		}

		ident, err := verifier.Verify(tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: token verification failed, proceeding as anonymous.", zap.Error(err))
			return c.Next()
		}

		c.Locals(IdentityKey, ident)

		return c.Next()
	}
}

// IdentityFromCtx returns the authenticated identity stored by
// Protected or OptionalAuth, and whether one is present.
func IdentityFromCtx(c *fiber.Ctx) (domain.Identity, bool) {
	ident, ok := c.Locals(IdentityKey).(domain.Identity)
	return ident, ok
}
