package handlers

import (
	"strings"

	"ping_chat_service/internal/chat/app"
	"ping_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler 訊息與已讀狀態的 HTTP 介面
type ChatHandler struct {
	messages     *app.MessageUseCase
	readState    *app.ReadStateUseCase
	conversation *app.ConversationUseCase
}

// NewChatHandler create ChatHandler
func NewChatHandler(messages *app.MessageUseCase, readState *app.ReadStateUseCase, conversation *app.ConversationUseCase) *ChatHandler {
	return &ChatHandler{messages: messages, readState: readState, conversation: conversation}
}

// CreateMessageRequest POST /messages body
type CreateMessageRequest struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// UpdateMessageRequest PUT /messages body
type UpdateMessageRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// MarkAsReadRequest POST /messages/mark-as-read body
type MarkAsReadRequest struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
}

// MarkReadRequest POST /messages/mark-read body
type MarkReadRequest struct {
	ConversationUserID string   `json:"conversationUserId"`
	MessageIDs         []string `json:"messageIds"`
}

// MarkReadResponse mark-read result
type MarkReadResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

// CountResponse count result
type CountResponse struct {
	Count int64 `json:"count"`
}

// CreateMessage 寫入訊息
// @Summary 新增訊息
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body CreateMessageRequest true "message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /messages [post]
func (h *ChatHandler) CreateMessage(c *fiber.Ctx) error {
	var req CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	msg, err := h.messages.CreateMessage(c.UserContext(), req.SenderID, req.RecipientID, req.Content)
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// ListMessages 所有訊息
// @Summary 所有訊息
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.Message
// @Failure 501 {object} MessageResponse
// @Router /messages [get]
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	msgs, err := h.messages.ListAll(c.UserContext())
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(msgs)
}

// UpdateMessage 修改訊息
// @Summary 修改訊息
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body UpdateMessageRequest true "message"
// @Success 200 {object} domain.Message
// @Failure 400 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /messages [put]
func (h *ChatHandler) UpdateMessage(c *fiber.Ctx) error {
	var req UpdateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	msg, err := h.messages.UpdateMessage(c.UserContext(), req.ID, req.Content)
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(msg)
}

// DeleteMessage 刪除訊息
// @Summary 刪除訊息
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body DeleteRequest true "message id"
// @Success 200 {object} domain.Message
// @Failure 404 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /messages [delete]
func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	msg, err := h.messages.DeleteMessage(c.UserContext(), req.ID)
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(msg)
}

// RecentMessages 最新訊息
// @Summary 最新訊息
// @Tags Messages
// @Produce json
// @Param limit query int false "limit (default 10)"
// @Success 200 {array} domain.RecentMessage
// @Failure 501 {object} MessageResponse
// @Router /messages/recent [get]
func (h *ChatHandler) RecentMessages(c *fiber.Ctx) error {
	recent, err := h.messages.RecentMessages(c.UserContext(), c.QueryInt("limit", app.DefaultRecentLimit))
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(recent)
}

// CountMessages 訊息總數
// @Summary 訊息總數
// @Tags Messages
// @Produce json
// @Success 200 {object} CountResponse
// @Failure 501 {object} MessageResponse
// @Router /messages/count [get]
func (h *ChatHandler) CountMessages(c *fiber.Ctx) error {
	count, err := h.messages.CountAll(c.UserContext())
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(CountResponse{Count: count})
}

// Conversation 與 peer 的對話
// @Summary 對話內容
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param peerId path string true "peer member id"
// @Success 200 {array} domain.ConversationEntry
// @Failure 401 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /messages/conversation/{peerId} [get]
func (h *ChatHandler) Conversation(c *fiber.Ctx) error {
	view, err := h.conversation.ConversationView(c.UserContext(), middlewares.MemberID(c), c.Params("peerId"))
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(view)
}

// MarkAsRead sender 寄給 recipient 的訊息全部標記已讀
// @Summary 標記對話已讀
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body MarkAsReadRequest true "conversation"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /messages/mark-as-read [post]
func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	var req MarkAsReadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if strings.TrimSpace(req.SenderID) == "" || strings.TrimSpace(req.RecipientID) == "" {
		return badRequest(c, "senderId and recipientId are required")
	}

	if _, err := h.readState.MarkConversationRead(c.UserContext(), req.RecipientID, req.SenderID); err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(MessageResponse{Message: "Messages marked as read"})
}

// MarkRead 目前使用者標記已讀
// @Summary 標記已讀
// @Description conversationUserId 標記整段對話, 否則標記 messageIds
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MarkReadRequest true "conversation or message ids"
// @Success 200 {object} MarkReadResponse
// @Failure 400 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /messages/mark-read [post]
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	var req MarkReadRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	reader := middlewares.MemberID(c)
	var (
		count int64
		err   error
	)
	switch {
	case strings.TrimSpace(req.ConversationUserID) != "":
		count, err = h.readState.MarkConversationRead(c.UserContext(), reader, req.ConversationUserID)
	case req.MessageIDs != nil:
		count, err = h.readState.MarkMessagesRead(c.UserContext(), reader, req.MessageIDs)
	default:
		return badRequest(c, "conversationUserId or messageIds is required")
	}
	if err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(MarkReadResponse{Success: true, Count: count})
}

// UnreadCount 未讀數
// @Summary 未讀數
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CountResponse
// @Failure 401 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /messages/unread-count [get]
func (h *ChatHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.readState.UnreadCountFor(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(CountResponse{Count: count})
}

// UnreadConversations 依發送者分組的未讀訊息
// @Summary 未讀摘要
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.UnreadDigest
// @Failure 401 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /messages/unread [get]
func (h *ChatHandler) UnreadConversations(c *fiber.Ctx) error {
	digests, err := h.readState.UnreadConversations(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(digests)
}

// UnreadSenders 有未讀訊息的發送者
// @Summary 未讀發送者
// @Tags Messages
// @Produce json
// @Param userId path string true "reader member id"
// @Success 200 {array} domain.UnreadSender
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /messages/unread/{userId} [get]
func (h *ChatHandler) UnreadSenders(c *fiber.Ctx) error {
	senders, err := h.readState.UnreadSenders(c.UserContext(), c.Params("userId"))
	if err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(senders)
}
