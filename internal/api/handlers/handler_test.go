package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	chatapp "ping_chat_service/internal/chat/app"
	chatdomain "ping_chat_service/internal/chat/domain"
	memberapp "ping_chat_service/internal/member/app"
	"ping_chat_service/internal/member/domain"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"
	"ping_chat_service/pkg/middlewares"
	"ping_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMain 初始化測試環境
func TestMain(m *testing.M) {
	logger.SetNewNop()
	token.Configure("handler-test-secret", time.Hour)
	os.Exit(m.Run())
}

type testDeps struct {
	app     *fiber.App
	members *MockMemberUseCase
	msgRepo *chatapp.MockMessageRepository
	read    *chatapp.MockReadStateRepository
}

func newTestApp() *testDeps {
	d := &testDeps{
		app:     fiber.New(),
		members: new(MockMemberUseCase),
		msgRepo: new(chatapp.MockMessageRepository),
		read:    new(chatapp.MockReadStateRepository),
	}

	messages := chatapp.NewMessageUseCase(d.msgRepo, d.members)
	readState := chatapp.NewReadStateUseCase(d.msgRepo, d.read)
	conversation := chatapp.NewConversationUseCase(messages, d.members)

	mh := NewMemberHandler(d.members, conversation, time.Hour)
	ch := NewChatHandler(messages, readState, conversation)

	d.app.Get("/", ConnectCheck)
	d.app.Post("/debug", DebugLogFlag)
	d.app.Post("/users", mh.Register)
	d.app.Get("/users", middlewares.OptionalJWTMiddleware(), mh.ListUsers)
	d.app.Put("/users", middlewares.JWTMiddleware(), mh.UpdateUser)
	d.app.Delete("/users", middlewares.JWTMiddleware(), mh.DeleteUser)
	d.app.Post("/users/avatar", middlewares.JWTMiddleware(), mh.UploadAvatar)
	d.app.Post("/auth/login", mh.Login)
	d.app.Post("/auth/logout", middlewares.JWTMiddleware(), mh.Logout)
	d.app.Get("/auth/session", middlewares.JWTMiddleware(), mh.CheckSession)
	d.app.Post("/messages", ch.CreateMessage)
	d.app.Get("/messages", ch.ListMessages)
	d.app.Put("/messages", ch.UpdateMessage)
	d.app.Delete("/messages", ch.DeleteMessage)
	d.app.Get("/messages/recent", ch.RecentMessages)
	d.app.Get("/messages/count", ch.CountMessages)
	d.app.Post("/messages/mark-as-read", ch.MarkAsRead)
	d.app.Get("/messages/unread/:userId", ch.UnreadSenders)
	d.app.Get("/messages/conversation/:peerId", middlewares.JWTMiddleware(), ch.Conversation)
	d.app.Post("/messages/mark-read", middlewares.JWTMiddleware(), ch.MarkRead)
	d.app.Get("/messages/unread-count", middlewares.JWTMiddleware(), ch.UnreadCount)
	d.app.Get("/messages/unread", middlewares.JWTMiddleware(), ch.UnreadConversations)
	return d
}

func bearer(t *testing.T, memberID string) string {
	t.Helper()
	tk, err := token.GenerateJWT(memberID, string(token.RoleMember), "test")
	require.NoError(t, err)
	return "Bearer " + tk
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, auth string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func messageOf(t *testing.T, data []byte) string {
	t.Helper()
	var body MessageResponse
	require.NoError(t, json.Unmarshal(data, &body))
	return body.Message
}

func TestSharedHandlers(t *testing.T) {
	d := newTestApp()

	resp, data := doJSON(t, d.app, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Chat server is running.", string(data))

	resp, _ = doJSON(t, d.app, http.MethodPost, "/debug?service=chat&status=maybe", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, d.app, http.MethodPost, "/debug?service=chat&status=true", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, logger.Log.IsDebugMode())
	logger.Log.SetDebugMode(false)
}

func TestMemberHandler(t *testing.T) {
	t.Run("註冊成功回傳 201 且不含密碼", func(t *testing.T) {
		d := newTestApp()
		params := domain.RegisterParams{Name: "Alice", Email: "alice@example.com", Password: "Secret123", Gender: "FEMALE"}
		d.members.On("Register", mock.Anything, params).
			Return(&domain.Member{MemberID: "u1", Name: "Alice", Email: "alice@example.com", Password: "$2a$hash"}, nil).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/users", params, "")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(data), `"id":"u1"`)
		assert.NotContains(t, string(data), "hash")
		d.members.AssertExpectations(t)
	})

	t.Run("註冊驗證失敗 400, 重複 email 501", func(t *testing.T) {
		d := newTestApp()
		d.members.On("Register", mock.Anything, mock.MatchedBy(func(p domain.RegisterParams) bool { return p.Name == "A" })).
			Return(nil, errprocess.Validation("name must be between 2 and 50 characters")).Once()
		d.members.On("Register", mock.Anything, mock.MatchedBy(func(p domain.RegisterParams) bool { return p.Name == "Dup" })).
			Return(nil, errprocess.Conflict("email already registered")).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/users", domain.RegisterParams{Name: "A"}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "name must be between 2 and 50 characters", messageOf(t, data))

		resp, data = doJSON(t, d.app, http.MethodPost, "/users", domain.RegisterParams{Name: "Dup"}, "")
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
		assert.Equal(t, errprocess.GenericMessage, messageOf(t, data))
	})

	t.Run("聯絡人清單排除登入者", func(t *testing.T) {
		d := newTestApp()
		d.members.On("ListMembers", mock.Anything, "u1").Return([]domain.Person{{ID: "u2", Name: "Bob"}}, nil).Once()
		d.members.On("ListMembers", mock.Anything, "").Return([]domain.Person{{ID: "u1"}, {ID: "u2"}}, nil).Once()

		resp, data := doJSON(t, d.app, http.MethodGet, "/users", nil, bearer(t, "u1"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var people []domain.Person
		require.NoError(t, json.Unmarshal(data, &people))
		assert.Len(t, people, 1)

		resp, data = doJSON(t, d.app, http.MethodGet, "/users", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(data, &people))
		assert.Len(t, people, 2)
	})

	t.Run("修改他人資料 403, 未登入 401", func(t *testing.T) {
		d := newTestApp()
		d.members.On("UpdateProfile", mock.Anything, "u1", mock.MatchedBy(func(p domain.UpdateParams) bool { return p.MemberID == "u2" })).
			Return(nil, errprocess.Forbidden("cannot modify another member")).Once()

		resp, _ := doJSON(t, d.app, http.MethodPut, "/users", domain.UpdateParams{MemberID: "u2"}, bearer(t, "u1"))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, d.app, http.MethodPut, "/users", domain.UpdateParams{MemberID: "u2"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("刪除自己的帳號", func(t *testing.T) {
		d := newTestApp()
		d.members.On("DeleteMember", mock.Anything, "u1", "u1").Return(&domain.Member{MemberID: "u1"}, nil).Once()

		resp, _ := doJSON(t, d.app, http.MethodDelete, "/users", DeleteRequest{}, bearer(t, "u1"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		d.members.AssertExpectations(t)
	})

	t.Run("上傳頭像", func(t *testing.T) {
		d := newTestApp()
		image := "http://minio/avatars/u1.png"
		d.members.On("UploadAvatar", mock.Anything, "u1", mock.MatchedBy(func(f memberapp.AvatarFile) bool {
			return f.Filename == "me.png" && f.Size == 4
		})).Return(&domain.Member{MemberID: "u1", Image: &image}, nil).Once()

		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, err := w.CreateFormFile("file", "me.png")
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/users/avatar", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", bearer(t, "u1"))
		resp, err := d.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, d.app, http.MethodPost, "/users/avatar", nil, bearer(t, "u1"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("登入設定 cookie", func(t *testing.T) {
		d := newTestApp()
		d.members.On("Login", mock.Anything, "alice@example.com", "Secret123", mock.Anything).Return("tk-1", nil).Once()
		d.members.On("Login", mock.Anything, "alice@example.com", "bad", mock.Anything).Return("", errprocess.Auth("invalid email or password")).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "Secret123"}, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(data), "tk-1")
		require.NotEmpty(t, resp.Cookies())
		assert.Equal(t, middlewares.CookieToken, resp.Cookies()[0].Name)

		resp, _ = doJSON(t, d.app, http.MethodPost, "/auth/login", LoginRequest{Email: "alice@example.com", Password: "bad"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, d.app, http.MethodPost, "/auth/login", LoginRequest{}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("登出與 session 檢查", func(t *testing.T) {
		d := newTestApp()
		auth := bearer(t, "u1")
		d.members.On("Logout", mock.Anything, auth).Return(nil).Once()
		d.members.On("CheckSessionTimeout", mock.Anything, auth).Return(false, nil).Once()

		resp, _ := doJSON(t, d.app, http.MethodPost, "/auth/logout", nil, auth)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, data := doJSON(t, d.app, http.MethodGet, "/auth/session", nil, auth)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"expired":false}`, string(data))
		d.members.AssertExpectations(t)
	})
}

func TestChatHandler(t *testing.T) {
	at := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	t.Run("新增訊息", func(t *testing.T) {
		d := newTestApp()
		d.members.On("FindMember", mock.Anything, mock.Anything).Return(&domain.Member{}, nil).Twice()
		d.msgRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/messages", CreateMessageRequest{SenderID: "u1", RecipientID: "u2", Content: "hi"}, "")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var msg chatdomain.Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, "hi", msg.Content)
	})

	t.Run("新增訊息驗證失敗 400, 資料庫錯誤 501", func(t *testing.T) {
		d := newTestApp()
		resp, _ := doJSON(t, d.app, http.MethodPost, "/messages", CreateMessageRequest{SenderID: "u1", RecipientID: "u2", Content: " "}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		d.msgRepo.On("FindAll", mock.Anything).Return(nil, errprocess.Persistence(errors.New("conn refused"), "list messages")).Once()
		resp, data := doJSON(t, d.app, http.MethodGet, "/messages", nil, "")
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
		assert.Equal(t, errprocess.GenericMessage, messageOf(t, data))
	})

	t.Run("修改與刪除不存在的訊息 404", func(t *testing.T) {
		d := newTestApp()
		d.msgRepo.On("UpdateContent", mock.Anything, "missing", "x").Return(nil, errprocess.NotFound("message not found")).Once()
		d.msgRepo.On("Delete", mock.Anything, "missing").Return(nil, errprocess.NotFound("message not found")).Once()

		resp, _ := doJSON(t, d.app, http.MethodPut, "/messages", UpdateMessageRequest{ID: "missing", Content: "x"}, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, _ = doJSON(t, d.app, http.MethodDelete, "/messages", DeleteRequest{ID: "missing"}, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("最新訊息與總數", func(t *testing.T) {
		d := newTestApp()
		d.msgRepo.On("Recent", mock.Anything, 2).Return([]chatdomain.Message{{ID: "m2", Content: "b", CreatedAt: at}}, nil).Once()
		d.msgRepo.On("Count", mock.Anything).Return(int64(7), nil).Once()

		resp, data := doJSON(t, d.app, http.MethodGet, "/messages/recent?limit=2", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(data), `"id":"m2"`)

		resp, data = doJSON(t, d.app, http.MethodGet, "/messages/count", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"count":7}`, string(data))
	})

	t.Run("對話需要登入", func(t *testing.T) {
		d := newTestApp()
		d.msgRepo.On("FindBetween", mock.Anything, "u1", "u2").Return([]chatdomain.Message{
			{ID: "m1", Content: "hi", SenderID: "u1", RecipientID: "u2", CreatedAt: at},
		}, nil).Once()

		resp, _ := doJSON(t, d.app, http.MethodGet, "/messages/conversation/u2", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, data := doJSON(t, d.app, http.MethodGet, "/messages/conversation/u2", nil, bearer(t, "u1"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var view []chatdomain.ConversationEntry
		require.NoError(t, json.Unmarshal(data, &view))
		require.Len(t, view, 1)
		assert.True(t, view[0].FromCurrentUser)
	})

	t.Run("舊版標記已讀", func(t *testing.T) {
		d := newTestApp()
		d.msgRepo.On("CreateConversationReceipts", mock.Anything, "u2", "u1").Return(int64(2), nil).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/messages/mark-as-read", MarkAsReadRequest{SenderID: "u1", RecipientID: "u2"}, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Messages marked as read", messageOf(t, data))

		resp, _ = doJSON(t, d.app, http.MethodPost, "/messages/mark-as-read", MarkAsReadRequest{SenderID: "u1"}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		d.msgRepo.AssertExpectations(t)
	})

	t.Run("標記已讀回傳筆數", func(t *testing.T) {
		d := newTestApp()
		d.msgRepo.On("CreateReceipts", mock.Anything, "u2", []string{"a1", "nonexistent-id"}).Return(int64(1), nil).Once()
		d.msgRepo.On("CreateConversationReceipts", mock.Anything, "u2", "u1").Return(int64(0), nil).Once()

		resp, data := doJSON(t, d.app, http.MethodPost, "/messages/mark-read", MarkReadRequest{MessageIDs: []string{"a1", "nonexistent-id", "a1"}}, bearer(t, "u2"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"count":1}`, string(data))

		resp, data = doJSON(t, d.app, http.MethodPost, "/messages/mark-read", MarkReadRequest{ConversationUserID: "u1"}, bearer(t, "u2"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"count":0}`, string(data))

		resp, _ = doJSON(t, d.app, http.MethodPost, "/messages/mark-read", MarkReadRequest{}, bearer(t, "u2"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("未讀數與未讀摘要", func(t *testing.T) {
		d := newTestApp()
		d.read.On("UnreadCount", mock.Anything, "u2").Return(int64(3), nil).Once()
		d.read.On("UnreadRows", mock.Anything, "u2").Return([]chatdomain.UnreadRow{
			{MessageID: "a1", Content: "one", CreatedAt: at, SenderID: "u1", SenderName: "Alice"},
		}, nil).Once()
		d.read.On("UnreadSenders", mock.Anything, "u2").Return([]chatdomain.UnreadSender{{ID: "u1", Name: "Alice"}}, nil).Once()

		resp, data := doJSON(t, d.app, http.MethodGet, "/messages/unread-count", nil, bearer(t, "u2"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"count":3}`, string(data))

		resp, data = doJSON(t, d.app, http.MethodGet, "/messages/unread", nil, bearer(t, "u2"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var digests []chatdomain.UnreadDigest
		require.NoError(t, json.Unmarshal(data, &digests))
		require.Len(t, digests, 1)
		assert.Equal(t, "Alice", digests[0].SenderName)

		resp, data = doJSON(t, d.app, http.MethodGet, "/messages/unread/u2", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(data), "Alice")
		d.read.AssertExpectations(t)
	})

	t.Run("未讀查詢失敗 500", func(t *testing.T) {
		d := newTestApp()
		d.read.On("UnreadCount", mock.Anything, "u2").Return(int64(0), errprocess.Persistence(errors.New("timeout"), "count unread")).Once()

		resp, data := doJSON(t, d.app, http.MethodGet, "/messages/unread-count", nil, bearer(t, "u2"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, errprocess.GenericMessage, messageOf(t, data))
	})
}
