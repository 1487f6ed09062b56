package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sqlizer/sqlizer/internal/services"
	"github.com/sqlizer/sqlizer/internal/types"
	"gorm.io/gorm"
)

// AuthUser validates the bearer token and stores the resolved user in the
// request context under "user".
func AuthUser(db *gorm.DB, jwtKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractBearerToken(c)
		if err != nil {
			return err
		}

		user, err := services.UserFromToken(db, jwtKey, token)
		if err != nil {
			return err
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", types.InvalidToken("Invalid Token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", types.InvalidToken("Invalid Token")
	}
	return parts[1], nil
}
