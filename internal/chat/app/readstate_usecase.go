package app

import (
	"context"
	"strings"

	"ping_chat_service/internal/chat/domain"
	"ping_chat_service/internal/chat/repository"
	"ping_chat_service/pkg"
	errprocess "ping_chat_service/pkg/err"
)

// ReadStateUseCase 所有已讀狀態的異動與未讀查詢
type ReadStateUseCase struct {
	msgRepo  repository.MessageRepository
	readRepo repository.ReadStateRepository
}

// NewReadStateUseCase init read state use case
func NewReadStateUseCase(msgRepo repository.MessageRepository, readRepo repository.ReadStateRepository) *ReadStateUseCase {
	return &ReadStateUseCase{msgRepo: msgRepo, readRepo: readRepo}
}

// MarkConversationRead peer 寄給 reader 的未讀訊息全部標記已讀, 回傳新增筆數
func (uc *ReadStateUseCase) MarkConversationRead(ctx context.Context, readerID, peerID string) (int64, error) {
	readerID = strings.TrimSpace(readerID)
	peerID = strings.TrimSpace(peerID)
	if readerID == "" || peerID == "" {
		return 0, errprocess.Validation("reader and peer are required")
	}
	return uc.msgRepo.CreateConversationReceipts(ctx, readerID, peerID)
}

// MarkMessagesRead 不存在或非寄給 reader 的 id 直接忽略
func (uc *ReadStateUseCase) MarkMessagesRead(ctx context.Context, readerID string, messageIDs []string) (int64, error) {
	if strings.TrimSpace(readerID) == "" {
		return 0, errprocess.Validation("reader is required")
	}
	ids := pkg.UniqueNonEmpty(messageIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	return uc.msgRepo.CreateReceipts(ctx, readerID, ids)
}

// UnreadCountFor reader 的未讀數
func (uc *ReadStateUseCase) UnreadCountFor(ctx context.Context, readerID string) (int64, error) {
	if strings.TrimSpace(readerID) == "" {
		return 0, errprocess.Validation("reader is required")
	}
	return uc.readRepo.UnreadCount(ctx, readerID)
}

// UnreadConversations 依發送者分組, 最新未讀的發送者在前, 組內由新到舊
func (uc *ReadStateUseCase) UnreadConversations(ctx context.Context, readerID string) ([]domain.UnreadDigest, error) {
	if strings.TrimSpace(readerID) == "" {
		return nil, errprocess.Validation("reader is required")
	}

	rows, err := uc.readRepo.UnreadRows(ctx, readerID)
	if err != nil {
		return nil, err
	}

	digests := []domain.UnreadDigest{}
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.SenderID]
		if !ok {
			i = len(digests)
			index[row.SenderID] = i
			digests = append(digests, domain.UnreadDigest{
				SenderID:    row.SenderID,
				SenderName:  row.SenderName,
				SenderImage: row.SenderImage,
				Messages:    []domain.UnreadPreview{},
			})
		}
		digests[i].Messages = append(digests[i].Messages, domain.UnreadPreview{
			ID:        row.MessageID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		})
	}
	return digests, nil
}

// UnreadSenders 有未讀訊息的發送者
func (uc *ReadStateUseCase) UnreadSenders(ctx context.Context, readerID string) ([]domain.UnreadSender, error) {
	if strings.TrimSpace(readerID) == "" {
		return nil, errprocess.Validation("reader is required")
	}
	return uc.readRepo.UnreadSenders(ctx, readerID)
}
