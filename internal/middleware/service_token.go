package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/localnerve/conexo-admin/internal/types"
)

// ServiceTokenIssuer is the issuer expected on scheduler tokens
const ServiceTokenIssuer = "conexo-scheduler"

// ServiceToken admits callers presenting an HS256 bearer token signed with
// secret. With an empty secret the route is disabled.
func ServiceToken(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ServiceTokenIssuer),
		jwt.WithExpirationRequired(),
	)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return &types.CustomError{
				Code:    fiber.StatusNotFound,
				Message: "sweep.disabled",
				Type:    "authorization.service",
			}
		}

		raw, found := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			return unauthorizedService()
		}

		claims := &jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return unauthorizedService()
		}

		c.Locals("serviceSubject", claims.Subject)
		return c.Next()
	}
}

// SignServiceToken issues a scheduler token; used by operators and tests
func SignServiceToken(secret, subject string, claims jwt.RegisteredClaims) (string, error) {
	claims.Issuer = ServiceTokenIssuer
	claims.Subject = subject
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func unauthorizedService() error {
	return &types.CustomError{
		Code:    fiber.StatusUnauthorized,
		Message: "sweep.unauthorized",
		Type:    "authorization.service",
	}
}
