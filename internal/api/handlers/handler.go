package handlers

import (
	"fmt"
	"strconv"

	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectCheck check api connect start
// @Summary Check chat server status
// @Description Returns a simple confirmation message
// @Tags Shared
// @Success 200 {string} string "Chat server is running."
// @Router / [get]
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("Chat server is running.")
}

// DebugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Description Enable or disable debug logging for a service
// @Tags Shared
// @Param service query string true "Service name"
// @Param status query bool true "Debug status"
// @Success 200 {string} string "Service debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func DebugLogFlag(c *fiber.Ctx) error {
	service := c.Query("service")
	statusStr := c.Query("status")
	logger.Log.Info("debug", zap.String("service", service), zap.String("status", statusStr))

	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	switch service {
	default:
		logger.Log.SetDebugMode(status)
	}
	return c.SendString(fmt.Sprintf("service[%s]: debug mode is : %t", service, status))
}

// MessageResponse {"message": ...} body
type MessageResponse struct {
	Message string `json:"message"`
}

// errorResponse 依錯誤種類決定 status, 其餘使用 fallback
func errorResponse(c *fiber.Ctx, err error, fallback int) error {
	return c.Status(errprocess.HTTPStatus(err, fallback)).JSON(MessageResponse{Message: errprocess.PublicMessage(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(MessageResponse{Message: msg})
}
