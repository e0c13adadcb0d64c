package handlers

import (
	"time"

	chatapp "ping_chat_service/internal/chat/app"
	"ping_chat_service/internal/member/app"
	"ping_chat_service/internal/member/domain"
	"ping_chat_service/pkg/logger"
	"ping_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MemberHandler 处理用户相关的 HTTP 请求
type MemberHandler struct {
	memberUC     app.MemberUseCase
	conversation *chatapp.ConversationUseCase
	sessionTTL   time.Duration
	now          func() time.Time
}

// NewMemberHandler 创建新的 MemberHandler
func NewMemberHandler(memberUC app.MemberUseCase, conversation *chatapp.ConversationUseCase, sessionTTL time.Duration) *MemberHandler {
	return &MemberHandler{
		memberUC:     memberUC,
		conversation: conversation,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

// LoginRequest login body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse login result
type TokenResponse struct {
	Token string `json:"token"`
}

// DeleteRequest body of delete endpoints
type DeleteRequest struct {
	ID string `json:"id"`
}

// Register 注册新用户
// @Summary 注册新用户
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.RegisterParams true "注册请求"
// @Success 201 {object} domain.Member
// @Failure 400 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /users [post]
func (h *MemberHandler) Register(c *fiber.Ctx) error {
	var req domain.RegisterParams
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	member, err := h.memberUC.Register(c.UserContext(), req)
	if err != nil {
		logger.Log.Info("register failed", zap.String("email", req.Email), zap.Error(err))
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

// ListUsers 除了自己以外的所有人
// @Summary 联络人列表
// @Tags Users
// @Produce json
// @Success 200 {array} domain.Person
// @Failure 501 {object} MessageResponse
// @Router /users [get]
func (h *MemberHandler) ListUsers(c *fiber.Ctx) error {
	people, err := h.conversation.PeopleList(c.UserContext(), middlewares.MemberID(c))
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(people)
}

// UpdateUser 修改自己的资料
// @Summary 修改个人资料
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.UpdateParams true "更新内容"
// @Success 200 {object} domain.Member
// @Failure 400 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Failure 403 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /users [put]
func (h *MemberHandler) UpdateUser(c *fiber.Ctx) error {
	var req domain.UpdateParams
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.MemberID == "" {
		req.MemberID = middlewares.MemberID(c)
	}

	member, err := h.memberUC.UpdateProfile(c.UserContext(), middlewares.MemberID(c), req)
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(member)
}

// DeleteUser 删除自己的帐号
// @Summary 删除帐号
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DeleteRequest true "member id"
// @Success 200 {object} domain.Member
// @Failure 401 {object} MessageResponse
// @Failure 403 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /users [delete]
func (h *MemberHandler) DeleteUser(c *fiber.Ctx) error {
	var req DeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if req.ID == "" {
		req.ID = middlewares.MemberID(c)
	}

	member, err := h.memberUC.DeleteMember(c.UserContext(), middlewares.MemberID(c), req.ID)
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(member)
}

// UploadAvatar 上传头像
// @Summary 上传头像
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "avatar"
// @Success 200 {object} domain.Member
// @Failure 400 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Failure 501 {object} MessageResponse
// @Router /users/avatar [post]
func (h *MemberHandler) UploadAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "invalid file")
	}
	defer f.Close()

	member, err := h.memberUC.UploadAvatar(c.UserContext(), middlewares.MemberID(c), app.AvatarFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	})
	if err != nil {
		return errorResponse(c, err, fiber.StatusNotImplemented)
	}
	return c.JSON(member)
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户通过邮箱和密码登录, token 同时写入 cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "用户登录信息"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Router /auth/login [post]
func (h *MemberHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}

	now := h.now()
	tk, err := h.memberUC.Login(c.UserContext(), req.Email, req.Password, now)
	if err != nil {
		return errorResponse(c, err, fiber.StatusUnauthorized)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.CookieToken,
		Value:    tk,
		Expires:  now.Add(h.sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(TokenResponse{Token: tk})
}

// Logout 用户登出
// @Summary 用户登出
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /auth/logout [post]
func (h *MemberHandler) Logout(c *fiber.Ctx) error {
	if err := h.memberUC.Logout(c.UserContext(), middlewares.TokenFromRequest(c)); err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	c.ClearCookie(middlewares.CookieToken)
	return c.JSON(MessageResponse{Message: "logout success"})
}

// CheckSession session 是否過期
// @Summary 检查 session
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Failure 401 {object} MessageResponse
// @Router /auth/session [get]
func (h *MemberHandler) CheckSession(c *fiber.Ctx) error {
	expired, err := h.memberUC.CheckSessionTimeout(c.UserContext(), middlewares.TokenFromRequest(c))
	if err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{"expired": expired})
}

// RefreshSession 延長 session
// @Summary 延长 session
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /auth/refresh [post]
func (h *MemberHandler) RefreshSession(c *fiber.Ctx) error {
	if err := h.memberUC.ReconnectSession(c.UserContext(), middlewares.TokenFromRequest(c)); err != nil {
		return errorResponse(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(MessageResponse{Message: "session refreshed"})
}
