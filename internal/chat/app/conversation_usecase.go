package app

import (
	"context"

	"ping_chat_service/internal/chat/domain"
	memberdomain "ping_chat_service/internal/member/domain"
)

// ConversationUseCase read only views, 每次呼叫重新查詢
type ConversationUseCase struct {
	messages *MessageUseCase
	members  MemberDirectory
}

// NewConversationUseCase init conversation projector
func NewConversationUseCase(messages *MessageUseCase, members MemberDirectory) *ConversationUseCase {
	return &ConversationUseCase{messages: messages, members: members}
}

// ConversationView current 與 peer 的對話, 由舊到新
func (uc *ConversationUseCase) ConversationView(ctx context.Context, currentID, peerID string) ([]domain.ConversationEntry, error) {
	msgs, err := uc.messages.GetMessagesBetween(ctx, currentID, peerID)
	if err != nil {
		return nil, err
	}

	view := make([]domain.ConversationEntry, 0, len(msgs))
	for _, m := range msgs {
		view = append(view, domain.ConversationEntry{
			ID:              m.ID,
			Text:            m.Content,
			FromCurrentUser: m.SenderID == currentID,
			Timestamp:       m.CreatedAt,
		})
	}
	return view, nil
}

// PeopleList 除了 excludingID 以外的所有人
func (uc *ConversationUseCase) PeopleList(ctx context.Context, excludingID string) ([]memberdomain.Person, error) {
	return uc.members.ListMembers(ctx, excludingID)
}
