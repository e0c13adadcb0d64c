package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ping_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	echo := func(c *fiber.Ctx) error {
		return c.SendString(MemberID(c))
	}
	app.Get("/required", JWTMiddleware(), echo)
	app.Get("/optional", OptionalJWTMiddleware(), echo)
	return app
}

func TestJWTMiddleware(t *testing.T) {
	token.Configure("mw_secret", time.Minute)
	tk, err := token.GenerateJWT("member-9", "member", "test")
	require.NoError(t, err)

	app := newTestApp()

	cases := []struct {
		name   string
		path   string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "query token", path: "/required?auth=" + tk, status: fiber.StatusOK, body: "member-9"},
		{name: "bearer header", path: "/required", header: "Bearer " + tk, status: fiber.StatusOK, body: "member-9"},
		{name: "cookie token", path: "/required", cookie: tk, status: fiber.StatusOK, body: "member-9"},
		{name: "missing token", path: "/required", status: fiber.StatusUnauthorized},
		{name: "bad token", path: "/required?auth=nope", status: fiber.StatusUnauthorized},
		{name: "optional anonymous", path: "/optional", status: fiber.StatusOK, body: ""},
		{name: "optional bad token", path: "/optional?auth=nope", status: fiber.StatusOK, body: ""},
		{name: "optional valid", path: "/optional?auth=" + tk, status: fiber.StatusOK, body: "member-9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set(fiber.HeaderCookie, CookieToken+"="+tc.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == fiber.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tc.body, string(b))
			}
		})
	}
}
