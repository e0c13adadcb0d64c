package handlers

import (
	"context"
	"time"

	"ping_chat_service/internal/member/app"
	"ping_chat_service/internal/member/domain"

	"github.com/stretchr/testify/mock"
)

// MockMemberUseCase Mock app.MemberUseCase
type MockMemberUseCase struct {
	mock.Mock
}

func (m *MockMemberUseCase) member(args mock.Arguments) (*domain.Member, error) {
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Member), args.Error(1)
	}
	return nil, args.Error(1)
}

// Register mock register
func (m *MockMemberUseCase) Register(ctx context.Context, params domain.RegisterParams) (*domain.Member, error) {
	return m.member(m.Called(ctx, params))
}

// FindMember mock find member
func (m *MockMemberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.member(m.Called(ctx, param))
}

// ListMembers mock list members
func (m *MockMemberUseCase) ListMembers(ctx context.Context, excludeMemberID string) ([]domain.Person, error) {
	args := m.Called(ctx, excludeMemberID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Person), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateProfile mock update profile
func (m *MockMemberUseCase) UpdateProfile(ctx context.Context, requesterID string, params domain.UpdateParams) (*domain.Member, error) {
	return m.member(m.Called(ctx, requesterID, params))
}

// DeleteMember mock delete member
func (m *MockMemberUseCase) DeleteMember(ctx context.Context, requesterID, memberID string) (*domain.Member, error) {
	return m.member(m.Called(ctx, requesterID, memberID))
}

// UploadAvatar mock upload avatar
func (m *MockMemberUseCase) UploadAvatar(ctx context.Context, memberID string, file app.AvatarFile) (*domain.Member, error) {
	return m.member(m.Called(ctx, memberID, file))
}

// Login mock login
func (m *MockMemberUseCase) Login(ctx context.Context, email, password string, now time.Time) (string, error) {
	args := m.Called(ctx, email, password, now)
	return args.String(0), args.Error(1)
}

// Logout mock logout
func (m *MockMemberUseCase) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// ForceLogout mock force logout
func (m *MockMemberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	return m.Called(ctx, memberID).Error(0)
}

// CheckSessionTimeout mock check session
func (m *MockMemberUseCase) CheckSessionTimeout(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// ReconnectSession mock refresh session
func (m *MockMemberUseCase) ReconnectSession(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
