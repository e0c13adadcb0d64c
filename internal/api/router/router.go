package router

import (
	"strings"

	"ping_chat_service/internal/api/handlers"
	"ping_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
)

// RegisterRoutes 注册 HTTP 路由
// @title Ping Chat Service API
// @version 1.0
// @description API documentation for the two-party chat service
// @host localhost:4000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func RegisterRoutes(app *fiber.App, memberHandler *handlers.MemberHandler, chatHandler *handlers.ChatHandler, allowedOrigins []string) {
	if cfg, ok := corsConfig(allowedOrigins); ok {
		app.Use(cors.New(cfg))
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	userRoutes := app.Group("/users")
	userRoutes.Post("/", memberHandler.Register)
	userRoutes.Get("/", middlewares.OptionalJWTMiddleware(), memberHandler.ListUsers)
	userRoutes.Put("/", middlewares.JWTMiddleware(), memberHandler.UpdateUser)
	userRoutes.Delete("/", middlewares.JWTMiddleware(), memberHandler.DeleteUser)
	userRoutes.Post("/avatar", middlewares.JWTMiddleware(), memberHandler.UploadAvatar)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/login", memberHandler.Login)
	authRoutes.Post("/logout", middlewares.JWTMiddleware(), memberHandler.Logout)
	authRoutes.Get("/session", middlewares.JWTMiddleware(), memberHandler.CheckSession)
	authRoutes.Post("/refresh", middlewares.JWTMiddleware(), memberHandler.RefreshSession)

	msgRoutes := app.Group("/messages")
	msgRoutes.Post("/", chatHandler.CreateMessage)
	msgRoutes.Get("/", chatHandler.ListMessages)
	msgRoutes.Put("/", chatHandler.UpdateMessage)
	msgRoutes.Delete("/", chatHandler.DeleteMessage)
	msgRoutes.Get("/recent", chatHandler.RecentMessages)
	msgRoutes.Get("/count", chatHandler.CountMessages)
	msgRoutes.Post("/mark-as-read", chatHandler.MarkAsRead)
	msgRoutes.Get("/unread/:userId", chatHandler.UnreadSenders)

	msgRoutes.Get("/conversation/:peerId", middlewares.JWTMiddleware(), chatHandler.Conversation)
	msgRoutes.Post("/mark-read", middlewares.JWTMiddleware(), chatHandler.MarkRead)
	msgRoutes.Get("/unread-count", middlewares.JWTMiddleware(), chatHandler.UnreadCount)
	msgRoutes.Get("/unread", middlewares.JWTMiddleware(), chatHandler.UnreadConversations)
}

// corsConfig 沒有設定來源時不啟用 CORS, 只接受同源請求
func corsConfig(allowedOrigins []string) (cors.Config, bool) {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return cors.Config{}, false
	}

	cfg := cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}
	if cfg.AllowOrigins == "*" {
		// credentials 不能搭配萬用字元
		cfg.AllowCredentials = false
	}
	return cfg, true
}
