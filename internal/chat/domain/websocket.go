package domain

import "time"

// Action websocket action
type Action string

const (
	// ChatMessage inbound chat submission
	ChatMessage Action = "chatMessage"
	// MarkRead inbound mark conversation / messages read
	MarkRead Action = "markRead"
	// GetUnread inbound unread count
	GetUnread Action = "getUnread"
	// Join inbound announce identity without sending a message
	Join Action = "join"
	// Ping inbound application ping
	Ping Action = "ping"

	// NewMessage outbound delivered chat message
	NewMessage Action = "message"
	// NewUnreadMessage outbound unread signal, clients re-poll counters
	NewUnreadMessage Action = "newUnreadMessage"
	// Pong outbound reply of ping
	Pong Action = "pong"
	// ActionError outbound error
	ActionError Action = "error"
	// ServerShutdown outbound notice before the server closes every session
	ServerShutdown Action = "serverShutdown"
)

const (
	// DefaultUserName placeholder for blank display name
	DefaultUserName = "User"
	// AnonymousUser placeholder label for a submission without identity
	AnonymousUser = "Anonymous"
)

// WSRequest websocket Request
type WSRequest struct {
	Action             string   `json:"action"`
	Text               string   `json:"text"`
	UserID             string   `json:"userId"`
	UserName           string   `json:"userName"`
	RecipientID        string   `json:"recipientId"`
	ConversationUserID string   `json:"conversationUserId"`
	MessageIDs         []string `json:"messageIds"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// DeliveredMessage payload of NewMessage
type DeliveredMessage struct {
	MessageID    string
	Text         string
	UserID       string
	UserName     string
	ConnectionID string
	Timestamp    time.Time
	RecipientID  string
}

// Response NewMessage envelope
func (m DeliveredMessage) Response() WSResponse {
	return WSResponse{
		Action:  string(NewMessage),
		Success: true,
		Payload: map[string]interface{}{
			"messageId":    m.MessageID,
			"text":         m.Text,
			"userId":       m.UserID,
			"userName":     m.UserName,
			"connectionId": m.ConnectionID,
			"timestamp":    m.Timestamp.UTC().Format(time.RFC3339Nano),
			"recipientId":  m.RecipientID,
		},
	}
}

// UnreadSignalResponse NewUnreadMessage envelope
func UnreadSignalResponse(recipientID, messageID, senderID string) WSResponse {
	return WSResponse{
		Action:  string(NewUnreadMessage),
		Success: true,
		Payload: map[string]interface{}{
			"recipientId": recipientID,
			"messageId":   messageID,
			"senderId":    senderID,
		},
	}
}

// ShutdownResponse ServerShutdown envelope
func ShutdownResponse(reason string) WSResponse {
	return WSResponse{
		Action:  string(ServerShutdown),
		Success: true,
		Payload: map[string]interface{}{"reason": reason},
	}
}
