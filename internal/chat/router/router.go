package router

import (
	"context"
	"strings"

	"ping_chat_service/internal/chat/app"
	"ping_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册 websocket 路由, token 可有可無
func RegisterRoutes(ctx context.Context, r fiber.Router, chatWebsocket *app.ChatWebsocketHandler, origins []string) {
	r.Use("/ws", middlewares.OptionalJWTMiddleware(), func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"message": "websocket upgrade required"})
		}
		if !originAllowed(c.Get(fiber.HeaderOrigin), origins) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "origin not allowed"})
		}
		return c.Next()
	})

	// origin 已在上面檢查, 不帶 Origin 的非瀏覽器 client 也要能升級
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(ctx, c)
	}))
}

// originAllowed 沒有 Origin header 視為非瀏覽器 client
func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
