package repository

import (
	"context"
	"errors"
	"fmt"

	"ping_chat_service/internal/chat/domain"
	errprocess "ping_chat_service/pkg/err"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const receiptBatchSize = 500

// MessageRepository 訊息與已讀紀錄的寫入端
type MessageRepository interface {
	AutoMigrate(ctx context.Context) error
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)
	FindAll(ctx context.Context) ([]domain.Message, error)
	UpdateContent(ctx context.Context, id, content string) (*domain.Message, error)
	Delete(ctx context.Context, id string) (*domain.Message, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.Message, error)
	// CreateReceipts 只記錄存在且收件者為 readerID 的訊息, 回傳新增筆數
	CreateReceipts(ctx context.Context, readerID string, messageIDs []string) (int64, error)
	// CreateConversationReceipts peer 寄給 reader 且尚未讀的訊息全部標記已讀
	CreateConversationReceipts(ctx context.Context, readerID, peerID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository create MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// AutoMigrate 建立 messages / read_messages, postgres 另外加上指向 member 的 FK
func (r *messageRepository) AutoMigrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&domain.Message{}, &domain.ReadMessage{}); err != nil {
		return fmt.Errorf("auto migrate messages: %w", err)
	}

	if db.Dialector.Name() != "postgres" || !db.Migrator().HasTable("member") {
		return nil
	}

	fks := map[string]string{
		"fk_messages_sender":    "sender_id",
		"fk_messages_recipient": "recipient_id",
	}
	for name, column := range fks {
		if db.Migrator().HasConstraint(&domain.Message{}, name) {
			continue
		}
		stmt := fmt.Sprintf(
			"ALTER TABLE messages ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES member(member_id) ON DELETE CASCADE",
			name, column)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", name, err)
		}
	}
	return nil
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return errprocess.Persistence(err, "create message")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errprocess.NotFound("message not found")
		}
		return nil, errprocess.Persistence(err, "get message")
	}
	return &msg, nil
}

// FindBetween 兩人之間的訊息, 依時間由舊到新
func (r *messageRepository) FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	msgs := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userA, userB, userB, userA).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, errprocess.Persistence(err, "find conversation")
	}
	return msgs, nil
}

func (r *messageRepository) FindAll(ctx context.Context) ([]domain.Message, error) {
	msgs := []domain.Message{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&msgs).Error; err != nil {
		return nil, errprocess.Persistence(err, "list messages")
	}
	return msgs, nil
}

func (r *messageRepository) UpdateContent(ctx context.Context, id, content string) (*domain.Message, error) {
	msg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(msg).Update("content", content).Error; err != nil {
		return nil, errprocess.Persistence(err, "update message")
	}
	msg.Content = content
	return msg, nil
}

// Delete 刪除訊息與其已讀紀錄
func (r *messageRepository) Delete(ctx context.Context, id string) (*domain.Message, error) {
	msg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&domain.ReadMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Message{}).Error
	})
	if err != nil {
		return nil, errprocess.Persistence(err, "delete message")
	}
	return msg, nil
}

func (r *messageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Message{}).Count(&count).Error; err != nil {
		return 0, errprocess.Persistence(err, "count messages")
	}
	return count, nil
}

// Recent 最新的 limit 筆訊息, 由新到舊
func (r *messageRepository) Recent(ctx context.Context, limit int) ([]domain.Message, error) {
	msgs := []domain.Message{}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, errprocess.Persistence(err, "recent messages")
	}
	return msgs, nil
}

func (r *messageRepository) CreateReceipts(ctx context.Context, readerID string, messageIDs []string) (int64, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}

	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		err := tx.Model(&domain.Message{}).
			Where("id IN ? AND recipient_id = ?", messageIDs, readerID).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}

		created, err = insertReceipts(tx, readerID, ids)
		return err
	})
	if err != nil {
		return 0, errprocess.Persistence(err, "create read receipts")
	}
	return created, nil
}

func (r *messageRepository) CreateConversationReceipts(ctx context.Context, readerID, peerID string) (int64, error) {
	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		err := tx.Model(&domain.Message{}).
			Where("sender_id = ? AND recipient_id = ?", peerID, readerID).
			Where("NOT EXISTS (SELECT 1 FROM read_messages rm WHERE rm.message_id = messages.id AND rm.user_id = ?)", readerID).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}

		created, err = insertReceipts(tx, readerID, ids)
		return err
	})
	if err != nil {
		return 0, errprocess.Persistence(err, "mark conversation read")
	}
	return created, nil
}

// insertReceipts ON CONFLICT DO NOTHING, is_read 同一個 transaction 內同步
func insertReceipts(tx *gorm.DB, readerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	receipts := make([]domain.ReadMessage, 0, len(ids))
	for _, id := range ids {
		receipts = append(receipts, domain.ReadMessage{MessageID: id, UserID: readerID})
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&receipts, receiptBatchSize)
	if res.Error != nil {
		return 0, res.Error
	}

	if err := tx.Model(&domain.Message{}).
		Where("id IN ? AND is_read = ?", ids, false).
		Update("is_read", true).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
