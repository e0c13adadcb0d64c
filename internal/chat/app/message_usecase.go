package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"ping_chat_service/internal/chat/domain"
	"ping_chat_service/internal/chat/repository"
	memberdomain "ping_chat_service/internal/member/domain"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/validator"

	"github.com/google/uuid"
)

const (
	// DefaultRecentLimit recent messages 預設筆數
	DefaultRecentLimit = 10
	maxRecentLimit     = 100
)

// MemberDirectory 查詢會員資料 (由 member usecase 提供)
type MemberDirectory interface {
	FindMember(ctx context.Context, param *memberdomain.MemberQuery) (*memberdomain.Member, error)
	ListMembers(ctx context.Context, excludeMemberID string) ([]memberdomain.Person, error)
}

// MessageUseCase 負責訊息的持久化
type MessageUseCase struct {
	msgRepo   repository.MessageRepository
	members   MemberDirectory
	validator *validator.Validator
	now       func() time.Time
}

// NewMessageUseCase init message use case
func NewMessageUseCase(msgRepo repository.MessageRepository, members MemberDirectory) *MessageUseCase {
	return &MessageUseCase{
		msgRepo:   msgRepo,
		members:   members,
		validator: validator.New(),
		now:       time.Now,
	}
}

// CreateMessage 驗證雙方存在後寫入訊息
func (uc *MessageUseCase) CreateMessage(ctx context.Context, senderID, recipientID, content string) (*domain.Message, error) {
	senderID = strings.TrimSpace(senderID)
	recipientID = strings.TrimSpace(recipientID)
	if err := uc.validator.ValidateMessage(senderID, recipientID, content); err != nil {
		return nil, err
	}

	if err := uc.ensureMember(ctx, senderID, "sender not found"); err != nil {
		return nil, err
	}
	if err := uc.ensureMember(ctx, recipientID, "recipient not found"); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New().String(),
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
		CreatedAt:   uc.now().UTC(),
	}
	if err := uc.msgRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (uc *MessageUseCase) ensureMember(ctx context.Context, memberID, msg string) error {
	_, err := uc.members.FindMember(ctx, &memberdomain.MemberQuery{MemberID: &memberID})
	if errors.Is(err, errprocess.ErrNotFound) {
		return errprocess.NotFound(msg)
	}
	return err
}

// GetMessagesBetween 兩人之間所有訊息, 由舊到新
func (uc *MessageUseCase) GetMessagesBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if strings.TrimSpace(userA) == "" || strings.TrimSpace(userB) == "" {
		return nil, errprocess.Validation("both participants are required")
	}
	return uc.msgRepo.FindBetween(ctx, userA, userB)
}

// ListAll 所有訊息, 由舊到新
func (uc *MessageUseCase) ListAll(ctx context.Context) ([]domain.Message, error) {
	return uc.msgRepo.FindAll(ctx)
}

// UpdateMessage 修改內容
func (uc *MessageUseCase) UpdateMessage(ctx context.Context, id, content string) (*domain.Message, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errprocess.Validation("id is required")
	}
	if err := uc.validator.ValidateContent(content); err != nil {
		return nil, err
	}
	return uc.msgRepo.UpdateContent(ctx, id, content)
}

// DeleteMessage 刪除訊息
func (uc *MessageUseCase) DeleteMessage(ctx context.Context, id string) (*domain.Message, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errprocess.Validation("id is required")
	}
	return uc.msgRepo.Delete(ctx, id)
}

// CountAll 訊息總數
func (uc *MessageUseCase) CountAll(ctx context.Context) (int64, error) {
	return uc.msgRepo.Count(ctx)
}

// RecentMessages 最新訊息, limit <= 0 時使用預設值
func (uc *MessageUseCase) RecentMessages(ctx context.Context, limit int) ([]domain.RecentMessage, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	msgs, err := uc.msgRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	recent := make([]domain.RecentMessage, 0, len(msgs))
	for _, m := range msgs {
		recent = append(recent, domain.RecentMessage{ID: m.ID, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	return recent, nil
}
