package app

import (
	"encoding/json"
	"sync"

	"ping_chat_service/internal/chat/domain"
	"ping_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session 一條 websocket 連線, send 只由 writer goroutine 讀取
type Session struct {
	id        string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession create session, buffer 為待送訊息上限
func NewSession(buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		id:   uuid.New().String(),
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// ID connection id
func (s *Session) ID() string { return s.id }

// Send outbound frames
func (s *Session) Send() <-chan []byte { return s.send }

// Done closed when the session is unregistered
func (s *Session) Done() <-chan struct{} { return s.done }

// Close 可重複呼叫
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) enqueue(b []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- b:
		return true
	default:
		return false
	}
}

// EphemeralHub 線上連線的 registry, 依 memberID 索引
type EphemeralHub struct {
	mu       sync.RWMutex
	sessions map[*Session]string
	members  map[string]map[*Session]struct{}
}

// NewEphemeralHub create hub
func NewEphemeralHub() *EphemeralHub {
	return &EphemeralHub{
		sessions: map[*Session]string{},
		members:  map[string]map[*Session]struct{}{},
	}
}

// Register 加入尚未綁定身分的 session
func (h *EphemeralHub) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s]; !ok {
		h.sessions[s] = ""
	}
}

// Bind 綁定 session 與 memberID, 已綁定者不可改綁
func (h *EphemeralHub) Bind(s *Session, memberID string) bool {
	if memberID == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	current, ok := h.sessions[s]
	if !ok {
		return false
	}
	if current != "" {
		return current == memberID
	}

	h.sessions[s] = memberID
	set, ok := h.members[memberID]
	if !ok {
		set = map[*Session]struct{}{}
		h.members[memberID] = set
	}
	set[s] = struct{}{}
	return true
}

// MemberOf 綁定的 memberID, 未綁定回傳空字串
func (h *EphemeralHub) MemberOf(s *Session) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[s]
}

// Unregister 移除並關閉 session
func (h *EphemeralHub) Unregister(s *Session) {
	h.mu.Lock()
	memberID, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
		if set, exists := h.members[memberID]; exists {
			delete(set, s)
			if len(set) == 0 {
				delete(h.members, memberID)
			}
		}
	}
	h.mu.Unlock()

	s.Close()
}

// DeliverTo 送給指定 member 的所有 session, 回傳成功排入的數量
func (h *EphemeralHub) DeliverTo(resp domain.WSResponse, memberIDs ...string) int {
	h.mu.RLock()
	targets := map[*Session]struct{}{}
	for _, id := range memberIDs {
		for s := range h.members[id] {
			targets[s] = struct{}{}
		}
	}
	h.mu.RUnlock()

	return h.fanOut(resp, targets)
}

// Broadcast 送給所有 session
func (h *EphemeralHub) Broadcast(resp domain.WSResponse) int {
	h.mu.RLock()
	targets := make(map[*Session]struct{}, len(h.sessions))
	for s := range h.sessions {
		targets[s] = struct{}{}
	}
	h.mu.RUnlock()

	return h.fanOut(resp, targets)
}

// Reply 只回給 s
func (h *EphemeralHub) Reply(s *Session, resp domain.WSResponse) bool {
	return h.fanOut(resp, map[*Session]struct{}{s: {}}) == 1
}

func (h *EphemeralHub) fanOut(resp domain.WSResponse, targets map[*Session]struct{}) int {
	if len(targets) == 0 {
		return 0
	}

	b, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Error("marshal websocket response", zap.String("action", resp.Action), zap.Error(err))
		return 0
	}

	delivered := 0
	for s := range targets {
		if s.enqueue(b) {
			delivered++
			continue
		}
		logger.Log.Warn("drop websocket frame",
			zap.String("connectionID", s.ID()),
			zap.String("action", resp.Action))
	}
	return delivered
}

// Count 目前連線數
func (h *EphemeralHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown 通知所有 session 後關閉, writer 會先送完佇列再送 close frame
func (h *EphemeralHub) Shutdown(reason string) int {
	n := h.Broadcast(domain.ShutdownResponse(reason))
	h.CloseAll()
	return n
}

// CloseAll 關閉所有 session
func (h *EphemeralHub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = map[*Session]string{}
	h.members = map[string]map[*Session]struct{}{}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
