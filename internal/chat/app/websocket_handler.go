package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"unicode/utf8"

	"ping_chat_service/internal/chat/domain"
	"ping_chat_service/pkg/config"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"
	"ping_chat_service/pkg/middlewares"
	"ping_chat_service/pkg/validator"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const (
	writeWait           = 10 * time.Second
	defaultPingInterval = 10 * time.Minute
	// envelopeRoom json key 與 id 等欄位的空間
	envelopeRoom = 1024
)

// minReadLimit 最長合法訊息 (全為 4 byte rune) 加上 envelope
const minReadLimit = validator.MaxContentLength*utf8.UTFMax + envelopeRoom

// ChatWebsocketHandler 可包含所有需要的 UseCase
type ChatWebsocketHandler struct {
	hub       *EphemeralHub
	relay     *RelayUseCase
	readState *ReadStateUseCase
	cfg       config.RelayConfig
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	hub *EphemeralHub,
	relay *RelayUseCase,
	readState *ReadStateUseCase,
	cfg config.RelayConfig,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		hub:       hub,
		relay:     relay,
		readState: readState,
		cfg:       cfg,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	session := NewSession(h.cfg.SendBuffer)
	h.hub.Register(session)

	memberID, _ := conn.Locals(middlewares.TokenMemberID).(string)
	if memberID != "" {
		h.hub.Bind(session, memberID)
	}
	logger.Log.Info("websocket open",
		zap.String("connectionID", session.ID()),
		zap.String("userID", memberID),
		zap.Int("connections", h.hub.Count()))

	conn.SetReadLimit(readLimit(h.cfg.MaxMessageBytes))

	ctxClose, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	defer func() {
		userID := h.hub.MemberOf(session)
		cancel()
		h.hub.Unregister(session)
		wg.Wait()
		conn.Close()
		logger.Log.Info("websocket close", zap.String("connectionID", session.ID()), zap.String("userID", userID))
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Debug("websocket closed by client", zap.String("connectionID", session.ID()), zap.Int("code", code))
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("connectionID", session.ID()))
		return nil
	})

	//client發出ping
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	// 所有寫入都在同一個 goroutine, 包含定期 Ping
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writePump(ctxClose, conn, session)
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("connection closed", zap.String("connectionID", session.ID()))
			} else {
				//直接斷線 1006
				logger.Log.Warn("websocket read error", zap.String("connectionID", session.ID()), zap.Error(err))
			}
			return
		}
		h.execWebsocketAction(ctxClose, session, mt, message)
	}
}

// readLimit 設定值不得小於 minReadLimit, 否則合法訊息會讓連線以 1009 斷開
func readLimit(configured int) int64 {
	if configured < minReadLimit {
		return minReadLimit
	}
	return int64(configured)
}

func (h *ChatWebsocketHandler) writePump(ctx context.Context, conn *websocket.Conn, s *Session) {
	interval := h.cfg.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case b := <-s.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Log.Warn("write message error", zap.String("connectionID", s.ID()), zap.Error(err))
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				logger.Log.Warn("ping error", zap.String("connectionID", s.ID()), zap.Error(err))
				_ = conn.Close()
				return
			}
		case <-s.Done():
			flushAndClose(conn, s)
			return
		case <-ctx.Done():
			flushAndClose(conn, s)
			return
		}
	}
}

// flushAndClose 送出佇列中剩餘的訊息 (例如 shutdown 通知) 後送 close frame
func flushAndClose(conn *websocket.Conn, s *Session) {
	for {
		select {
		case b := <-s.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Log.Debug("flush message error", zap.String("connectionID", s.ID()), zap.Error(err))
				_ = conn.Close()
				return
			}
			continue
		default:
		}
		break
	}
	closeWebSocketConnection(conn, websocket.CloseGoingAway, "server shutdown")
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, s *Session, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, s, msg)

	//! close ping pong fiber會自動處理，故需使用setHandler處理
	default:
		h.sendError(s, "unsupported message type")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, s *Session, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Warn("drop malformed websocket frame", zap.String("connectionID", s.ID()), zap.Error(err))
		return
	}

	switch domain.Action(req.Action) {
	//訊息寫入db後傳給發送者與收件者
	case domain.ChatMessage:
		h.relay.HandleChatMessage(ctx, s, req)

	//只收訊息的連線先宣告身分
	case domain.Join:
		h.sendResponse(s, h.relay.Join(ctx, s, req))

	//將未讀訊息改為已讀
	case domain.MarkRead:
		h.sendResponse(s, h.markRead(ctx, s, req))

	//未讀數量
	case domain.GetUnread:
		resp := domain.WSResponse{Action: req.Action, Payload: map[string]interface{}{}}
		count, err := h.readState.UnreadCountFor(ctx, h.hub.MemberOf(s))
		if err != nil {
			resp.Error = errprocess.PublicMessage(err)
		} else {
			resp.Success = true
			resp.Payload["count"] = count
		}
		h.sendResponse(s, resp)

	case domain.Ping:
		h.sendResponse(s, domain.WSResponse{Action: string(domain.Pong), Success: true})

	default:
		h.sendError(s, "unknown action")
	}
}

func (h *ChatWebsocketHandler) markRead(ctx context.Context, s *Session, req domain.WSRequest) domain.WSResponse {
	resp := domain.WSResponse{Action: req.Action, Payload: map[string]interface{}{}}
	reader := h.hub.MemberOf(s)

	var (
		count int64
		err   error
	)
	switch {
	case reader == "":
		resp.Error = "identity required"
		return resp
	case req.ConversationUserID != "":
		count, err = h.readState.MarkConversationRead(ctx, reader, req.ConversationUserID)
	case len(req.MessageIDs) > 0:
		count, err = h.readState.MarkMessagesRead(ctx, reader, req.MessageIDs)
	default:
		resp.Error = "conversationUserId or messageIds required"
		return resp
	}

	if err != nil {
		logger.Log.Error("websocket mark read", zap.String("userID", reader), zap.Error(err))
		resp.Error = errprocess.PublicMessage(err)
		return resp
	}
	resp.Success = true
	resp.Payload["count"] = count
	return resp
}

// sendResponse - 排入 session 的待送佇列
func (h *ChatWebsocketHandler) sendResponse(s *Session, resp domain.WSResponse) {
	h.hub.Reply(s, resp)
}

func (h *ChatWebsocketHandler) sendError(s *Session, errorMsg string) {
	h.sendResponse(s, domain.WSResponse{
		Action:  string(domain.ActionError),
		Success: false,
		Error:   errorMsg,
	})
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		logger.Log.Debug("failed to send close message", zap.Error(err))
	}
	_ = conn.Close()
}
