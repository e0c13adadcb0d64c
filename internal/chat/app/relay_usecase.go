package app

import (
	"context"
	"errors"
	"strings"

	"ping_chat_service/internal/chat/domain"
	memberdomain "ping_chat_service/internal/member/domain"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// RelayUseCase 即時訊息: 先寫入再投遞給雙方
type RelayUseCase struct {
	hub      *EphemeralHub
	messages *MessageUseCase
	members  MemberDirectory
}

// NewRelayUseCase init relay use case
func NewRelayUseCase(hub *EphemeralHub, messages *MessageUseCase, members MemberDirectory) *RelayUseCase {
	return &RelayUseCase{hub: hub, messages: messages, members: members}
}

// HandleChatMessage 不合法的訊息直接丟棄只記 log, 寫入失敗不投遞
func (uc *RelayUseCase) HandleChatMessage(ctx context.Context, s *Session, req domain.WSRequest) (*domain.Message, bool) {
	bound := uc.hub.MemberOf(s)
	senderID := strings.TrimSpace(req.UserID)
	if senderID == "" {
		senderID = bound
	}
	recipientID := strings.TrimSpace(req.RecipientID)

	label := senderID
	if label == "" {
		label = domain.AnonymousUser
	}
	fields := []zap.Field{
		zap.String("connectionID", s.ID()),
		zap.String("userID", label),
		zap.String("recipientID", recipientID),
	}

	switch {
	case senderID == "":
		logger.Log.Error("drop chat message without sender", fields...)
		return nil, false
	case recipientID == "":
		logger.Log.Error("drop chat message without recipient", fields...)
		return nil, false
	case strings.TrimSpace(req.Text) == "":
		logger.Log.Error("drop empty chat message", fields...)
		return nil, false
	case bound != "" && bound != senderID:
		logger.Log.Error("drop chat message with mismatched identity", append(fields, zap.String("boundID", bound))...)
		return nil, false
	}

	msg, err := uc.messages.CreateMessage(ctx, senderID, recipientID, req.Text)
	if err != nil {
		logger.Log.Error("persist chat message", append(fields, zap.Error(err))...)
		return nil, false
	}

	if bound == "" {
		uc.hub.Bind(s, senderID)
	}

	delivered := domain.DeliveredMessage{
		MessageID:    msg.ID,
		Text:         msg.Content,
		UserID:       senderID,
		UserName:     uc.displayName(ctx, req.UserName, senderID),
		ConnectionID: s.ID(),
		Timestamp:    msg.CreatedAt,
		RecipientID:  recipientID,
	}
	n := uc.hub.DeliverTo(delivered.Response(), senderID, recipientID)
	uc.hub.DeliverTo(domain.UnreadSignalResponse(recipientID, msg.ID, senderID), senderID, recipientID)

	logger.Log.Debug("relay chat message", append(fields, zap.String("messageID", msg.ID), zap.Int("sessions", n))...)
	return msg, true
}

// Join 綁定身分, 之後可收到寄給該 member 的訊息, 結果只回給呼叫者
func (uc *RelayUseCase) Join(ctx context.Context, s *Session, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Action: string(domain.Join), Payload: map[string]interface{}{}}
	memberID := strings.TrimSpace(req.UserID)
	if memberID == "" {
		resp.Error = "userId is required"
		return resp
	}

	if bound := uc.hub.MemberOf(s); bound != "" && bound != memberID {
		logger.Log.Error("reject join with mismatched identity",
			zap.String("connectionID", s.ID()),
			zap.String("userID", memberID),
			zap.String("boundID", bound))
		resp.Error = "session already bound to another user"
		return resp
	}

	if _, err := uc.members.FindMember(ctx, &memberdomain.MemberQuery{MemberID: &memberID}); err != nil {
		if errors.Is(err, errprocess.ErrNotFound) {
			resp.Error = "user not found"
			return resp
		}
		logger.Log.Error("join lookup member", zap.String("userID", memberID), zap.Error(err))
		resp.Error = errprocess.PublicMessage(err)
		return resp
	}

	if !uc.hub.Bind(s, memberID) {
		resp.Error = "session closed"
		return resp
	}
	logger.Log.Debug("websocket join", zap.String("connectionID", s.ID()), zap.String("userID", memberID))

	resp.Success = true
	resp.Payload["userId"] = memberID
	return resp
}

func (uc *RelayUseCase) displayName(ctx context.Context, name, memberID string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}

	member, err := uc.members.FindMember(ctx, &memberdomain.MemberQuery{MemberID: &memberID})
	if err != nil || member == nil || member.Name == "" {
		return domain.DefaultUserName
	}
	return member.Name
}
