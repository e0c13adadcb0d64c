package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"ping_chat_service/internal/member/domain"
	"ping_chat_service/internal/member/repository"
	"ping_chat_service/pkg/database"
	"ping_chat_service/pkg/encrypt"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"
	"ping_chat_service/pkg/token"
	"ping_chat_service/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberUseCase 這裡封裝了對外提供的應用服務
type MemberUseCase interface {
	Register(ctx context.Context, params domain.RegisterParams) (*domain.Member, error)
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	ListMembers(ctx context.Context, excludeMemberID string) ([]domain.Person, error)
	UpdateProfile(ctx context.Context, requesterID string, params domain.UpdateParams) (*domain.Member, error)
	DeleteMember(ctx context.Context, requesterID, memberID string) (*domain.Member, error)
	UploadAvatar(ctx context.Context, memberID string, file AvatarFile) (*domain.Member, error)
	Login(ctx context.Context, email, password string, now time.Time) (string, error)
	Logout(ctx context.Context, token string) error
	ForceLogout(ctx context.Context, memberID string) error
	CheckSessionTimeout(ctx context.Context, token string) (bool, error)
	ReconnectSession(ctx context.Context, token string) error
}

// AvatarStore 頭像儲存 (MinIO)
type AvatarStore interface {
	PutObject(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	ObjectURL(objectName string) string
}

// AvatarFile uploaded avatar
type AvatarFile struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

const maxAvatarSize = 5 << 20

type memberUseCase struct {
	memberRepo   repository.MemberRepository
	sessionTTL   time.Duration
	redisRepo    database.RedisRepository[domain.MemberSession]
	hashPassword func(string) (string, error)
	avatars      AvatarStore
	validator    *validator.Validator
}

// NewMemberUseCase 建立一個新的 MemberUseCase, avatars 可為 nil
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
	hashPassword func(string) (string, error),
	avatars AvatarStore,
) MemberUseCase {
	return &memberUseCase{
		memberRepo:   memberRepo,
		sessionTTL:   sessionTTL,
		redisRepo:    redisRepo,
		hashPassword: hashPassword,
		avatars:      avatars,
		validator:    validator.New(),
	}
}

// Register 註冊, email 重複回傳 ErrConflict
func (m *memberUseCase) Register(ctx context.Context, params domain.RegisterParams) (*domain.Member, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := m.validator.ValidateRegister(params.Name, params.Email, params.Gender); err != nil {
		return nil, err
	}
	if err := encrypt.ValidatePasswordStrength(params.Password); err != nil {
		return nil, errprocess.Validation(err.Error())
	}

	_, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &params.Email})
	switch {
	case err == nil:
		return nil, errprocess.Conflict("email already exists")
	case !errors.Is(err, errprocess.ErrNotFound):
		return nil, err
	}

	pw, err := m.hashPassword(params.Password)
	if err != nil {
		logger.Log.Errorf("password err :", err)
		return nil, err
	}

	member := domain.Member{
		MemberID: uuid.New().String(),
		Name:     params.Name,
		Email:    params.Email,
		Password: pw,
		Status:   domain.MemberStatusOffLine,
	}
	if params.Gender != "" {
		g := domain.Gender(params.Gender)
		member.Gender = &g
	}

	if err := m.memberRepo.CreateUser(ctx, &member); err != nil {
		return nil, err
	}
	logger.Log.Info("member registered", zap.String("member_id", member.MemberID))

	return &member, nil
}

// FindMember 依條件尋找使用者
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// ListMembers people list, excludeMemberID 空字串時回傳全部
func (m *memberUseCase) ListMembers(ctx context.Context, excludeMemberID string) ([]domain.Person, error) {
	members, err := m.memberRepo.ListMembers(ctx, excludeMemberID)
	if err != nil {
		return nil, err
	}

	people := make([]domain.Person, 0, len(members))
	for i := range members {
		people = append(people, members[i].ToPerson())
	}
	return people, nil
}

// UpdateProfile 只能修改自己的資料
func (m *memberUseCase) UpdateProfile(ctx context.Context, requesterID string, params domain.UpdateParams) (*domain.Member, error) {
	if params.MemberID == "" {
		return nil, errprocess.Validation("id is required")
	}
	if requesterID != params.MemberID {
		return nil, errprocess.Forbidden("cannot modify another member")
	}

	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &params.MemberID})
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if err := m.validator.ValidateName(name); err != nil {
			return nil, err
		}
		member.Name = name
	}
	if params.Gender != nil {
		if err := m.validator.ValidateGender(*params.Gender); err != nil {
			return nil, err
		}
		if *params.Gender == "" {
			member.Gender = nil
		} else {
			g := domain.Gender(*params.Gender)
			member.Gender = &g
		}
	}
	if params.Image != nil {
		member.Image = params.Image
		if *params.Image == "" {
			member.Image = nil
		}
	}

	if err := m.memberRepo.UpdateProfile(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// DeleteMember 刪除自己, 同時清除 session
func (m *memberUseCase) DeleteMember(ctx context.Context, requesterID, memberID string) (*domain.Member, error) {
	if memberID == "" {
		return nil, errprocess.Validation("id is required")
	}
	if requesterID != memberID {
		return nil, errprocess.Forbidden("cannot delete another member")
	}

	member, err := m.memberRepo.DeleteMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := m.redisRepo.Del(ctx, memberID); err != nil {
		logger.Log.Warn("delete member session failed", zap.String("member_id", memberID), zap.Error(err))
	}
	logger.Log.Info("member deleted", zap.String("member_id", memberID))
	return member, nil
}

// UploadAvatar 上傳頭像到 MinIO 並更新 image
func (m *memberUseCase) UploadAvatar(ctx context.Context, memberID string, file AvatarFile) (*domain.Member, error) {
	if m.avatars == nil {
		return nil, errors.New("avatar storage not configured")
	}
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, errprocess.Validation("avatar must be an image")
	}
	if file.Size <= 0 || file.Size > maxAvatarSize {
		return nil, errprocess.Validation("avatar must be between 1 byte and 5MB")
	}

	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{MemberID: &memberID})
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/%s%s", memberID, uuid.New().String(), path.Ext(file.Filename))
	if err := m.avatars.PutObject(ctx, objectName, file.Reader, file.Size, file.ContentType); err != nil {
		return nil, errprocess.Persistence(err, "upload avatar")
	}

	url := m.avatars.ObjectURL(objectName)
	member.Image = &url
	if err := m.memberRepo.UpdateProfile(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Login 驗證帳密, 產生 JWT 並寫入 session
func (m *memberUseCase) Login(ctx context.Context, email, password string, now time.Time) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email})
	if err != nil {
		if errors.Is(err, errprocess.ErrNotFound) {
			return "", errprocess.Auth("invalid email or password")
		}
		return "", err
	}

	if err = member.IsPasswordMatch(password); err != nil {
		logger.Log.Info("login password mismatch", zap.String("member_id", member.MemberID))
		return "", errprocess.Auth("invalid email or password")
	}

	tk, err := token.GenerateJWTWrapper(member.MemberID, string(token.RoleMember))
	if err != nil {
		return "", err
	}

	session := domain.MemberSession{
		Token:        tk,
		MemberID:     member.MemberID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}
	if err := m.redisRepo.Set(ctx, member.MemberID, session, m.sessionTTL); err != nil {
		return "", errprocess.Persistence(err, "save session")
	}

	member.Status = domain.MemberStatusOnLine
	if err := m.memberRepo.UpdateMemberStatus(ctx, member); err != nil {
		return "", err
	}

	return tk, nil
}

// Logout 清除 session
func (m *memberUseCase) Logout(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		return errprocess.Auth("invalid token")
	}
	logger.Log.Debug("logout", zap.String("member_id", tokenInfo.MemberID))

	return m.ForceLogout(ctx, tokenInfo.MemberID)
}

// ForceLogout 直接把該 memberID 的 session 清除
func (m *memberUseCase) ForceLogout(ctx context.Context, memberID string) error {
	if err := m.redisRepo.Del(ctx, memberID); err != nil {
		return errprocess.Persistence(err, "delete session")
	}

	return m.memberRepo.UpdateMemberStatus(ctx, &domain.Member{
		MemberID: memberID,
		Status:   domain.MemberStatusOffLine,
	})
}

// CheckSessionTimeout true 表示 session 已過期
func (m *memberUseCase) CheckSessionTimeout(ctx context.Context, t string) (bool, error) {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		return true, errprocess.Auth("invalid token")
	}

	ttl, err := m.redisRepo.GetTTL(ctx, tokenInfo.MemberID)
	if err != nil {
		return true, err
	}

	return ttl <= 0, nil
}

// ReconnectSession 重新連線時延長 session
func (m *memberUseCase) ReconnectSession(ctx context.Context, t string) error {
	tokenInfo, err := token.ParseJWTWrapper(t)
	if err != nil {
		return errprocess.Auth("invalid token")
	}

	session, err := m.redisRepo.Get(ctx, tokenInfo.MemberID)
	if err != nil {
		if errors.Is(err, database.ErrRedisNil) {
			return errprocess.Auth("session expired")
		}
		return err
	}

	now := time.Now()
	session.LastActivity = now
	session.ExpiredAt = now.Add(m.sessionTTL)
	return m.redisRepo.Set(ctx, tokenInfo.MemberID, session, m.sessionTTL)
}
