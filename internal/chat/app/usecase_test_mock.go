package app

import (
	"context"

	"ping_chat_service/internal/chat/domain"
	memberdomain "ping_chat_service/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// AutoMigrate mock migrate
func (m *MockMessageRepository) AutoMigrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Create mock create message
func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// GetByID mock get message
func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindBetween mock conversation
func (m *MockMessageRepository) FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindAll mock list
func (m *MockMessageRepository) FindAll(ctx context.Context) ([]domain.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateContent mock update
func (m *MockMessageRepository) UpdateContent(ctx context.Context, id, content string) (*domain.Message, error) {
	args := m.Called(ctx, id, content)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Delete mock delete
func (m *MockMessageRepository) Delete(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// Count mock count
func (m *MockMessageRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Recent mock recent
func (m *MockMessageRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// CreateReceipts mock mark messages read
func (m *MockMessageRepository) CreateReceipts(ctx context.Context, readerID string, messageIDs []string) (int64, error) {
	args := m.Called(ctx, readerID, messageIDs)
	return args.Get(0).(int64), args.Error(1)
}

// CreateConversationReceipts mock mark conversation read
func (m *MockMessageRepository) CreateConversationReceipts(ctx context.Context, readerID, peerID string) (int64, error) {
	args := m.Called(ctx, readerID, peerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReadStateRepository Mock ReadStateRepository
type MockReadStateRepository struct {
	mock.Mock
}

// UnreadCount mock unread count
func (m *MockReadStateRepository) UnreadCount(ctx context.Context, readerID string) (int64, error) {
	args := m.Called(ctx, readerID)
	return args.Get(0).(int64), args.Error(1)
}

// UnreadRows mock unread rows
func (m *MockReadStateRepository) UnreadRows(ctx context.Context, readerID string) ([]domain.UnreadRow, error) {
	args := m.Called(ctx, readerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UnreadRow), args.Error(1)
	}
	return nil, args.Error(1)
}

// UnreadSenders mock unread senders
func (m *MockReadStateRepository) UnreadSenders(ctx context.Context, readerID string) ([]domain.UnreadSender, error) {
	args := m.Called(ctx, readerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.UnreadSender), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMemberDirectory Mock MemberDirectory
type MockMemberDirectory struct {
	mock.Mock
}

// FindMember mock find member
func (m *MockMemberDirectory) FindMember(ctx context.Context, param *memberdomain.MemberQuery) (*memberdomain.Member, error) {
	args := m.Called(ctx, param)
	if args.Get(0) != nil {
		return args.Get(0).(*memberdomain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// ListMembers mock list members
func (m *MockMemberDirectory) ListMembers(ctx context.Context, excludeMemberID string) ([]memberdomain.Person, error) {
	args := m.Called(ctx, excludeMemberID)
	if args.Get(0) != nil {
		return args.Get(0).([]memberdomain.Person), args.Error(1)
	}
	return nil, args.Error(1)
}
