package middlewares

import (
	"ping_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//TokenMemberID get member form token, set c.locals name
	TokenMemberID = "MemberID"
	//TokenRole get role form token, set c.locals name
	TokenRole = "role"
)

// TokenFromRequest query > cookie > Authorization header
func TokenFromRequest(c *fiber.Ctx) string {
	if t := c.Query(QueryToken); t != "" {
		return t
	}
	if t := c.Cookies(CookieToken); t != "" {
		return t
	}
	return c.Get(fiber.HeaderAuthorization)
}

// JWTMiddleware validates JWT, reject request without valid token
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Missing token",
			})
		}

		claims, err := token.ParseJWTWrapper(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		c.Locals(TokenMemberID, claims.MemberID)
		c.Locals(TokenRole, claims.Role)
		return c.Next()
	}
}

// OptionalJWTMiddleware bind member when token valid, never reject
func OptionalJWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := TokenFromRequest(c); tokenStr != "" {
			if claims, err := token.ParseJWTWrapper(tokenStr); err == nil {
				c.Locals(TokenMemberID, claims.MemberID)
				c.Locals(TokenRole, claims.Role)
			}
		}
		return c.Next()
	}
}

// MemberID get member id set by JWT middleware, empty when anonymous
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(TokenMemberID).(string)
	return id
}
