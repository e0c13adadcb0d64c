package domain

import "time"

// Message 表示一則一對一聊天訊息
type Message struct {
	ID          string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	SenderID    string        `gorm:"type:varchar(64);not null;index:idx_messages_pair,priority:1" json:"senderId"`
	RecipientID string        `gorm:"type:varchar(64);not null;index:idx_messages_pair,priority:2;index:idx_messages_recipient" json:"recipientId"`
	IsRead      bool          `gorm:"not null;default:false" json:"isRead"`
	CreatedAt   time.Time     `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	ReadBy      []ReadMessage `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"readBy,omitempty"`
}

// TableName gorm table name
func (Message) TableName() string { return "messages" }

// ReadMessage read receipt, (message_id, user_id) 只會有一筆
type ReadMessage struct {
	MessageID string    `gorm:"primaryKey;type:varchar(64)" json:"messageId"`
	UserID    string    `gorm:"primaryKey;type:varchar(64);index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName gorm table name
func (ReadMessage) TableName() string { return "read_messages" }

// RecentMessage recent messages view
type RecentMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationEntry 對話視圖的一則訊息
type ConversationEntry struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	FromCurrentUser bool      `json:"fromCurrentUser"`
	Timestamp       time.Time `json:"timestamp"`
}

// UnreadPreview 未讀訊息摘要
type UnreadPreview struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnreadDigest 依發送者分組的未讀訊息, Messages 由新到舊
type UnreadDigest struct {
	SenderID    string          `json:"senderId"`
	SenderName  string          `json:"senderName"`
	SenderImage *string         `json:"senderImage"`
	Messages    []UnreadPreview `json:"messages"`
}

// UnreadRow unread digest query row
type UnreadRow struct {
	MessageID   string    `db:"message_id"`
	Content     string    `db:"content"`
	CreatedAt   time.Time `db:"created_at"`
	SenderID    string    `db:"sender_id"`
	SenderName  string    `db:"sender_name"`
	SenderImage *string   `db:"sender_image"`
}

// UnreadSender 有未讀訊息的發送者
type UnreadSender struct {
	ID    string  `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Image *string `db:"image" json:"image"`
}
