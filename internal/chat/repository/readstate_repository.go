package repository

import (
	"context"

	"ping_chat_service/internal/chat/domain"
	errprocess "ping_chat_service/pkg/err"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const notReadBy = "NOT EXISTS (SELECT 1 FROM read_messages rm WHERE rm.message_id = m.id AND rm.user_id = ?)"

// ReadStateRepository 未讀狀態查詢端, 以 read_messages 為準
type ReadStateRepository interface {
	UnreadCount(ctx context.Context, readerID string) (int64, error)
	UnreadRows(ctx context.Context, readerID string) ([]domain.UnreadRow, error)
	UnreadSenders(ctx context.Context, readerID string) ([]domain.UnreadSender, error)
}

type readStateRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewReadStateRepository create ReadStateRepository
func NewReadStateRepository(db *sqlx.DB) ReadStateRepository {
	var ph sq.PlaceholderFormat = sq.Question
	switch db.DriverName() {
	case "postgres", "pgx":
		ph = sq.Dollar
	}
	return &readStateRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(ph),
	}
}

func (r *readStateRepository) unread(readerID string, columns ...string) sq.SelectBuilder {
	return r.sb.Select(columns...).
		From("messages m").
		Where(sq.Eq{"m.recipient_id": readerID}).
		Where(notReadBy, readerID)
}

func (r *readStateRepository) UnreadCount(ctx context.Context, readerID string) (int64, error) {
	query, args, err := r.unread(readerID, "COUNT(*)").ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errprocess.Persistence(err, "count unread")
	}
	return count, nil
}

// UnreadRows 未讀訊息與發送者資料, 由新到舊
func (r *readStateRepository) UnreadRows(ctx context.Context, readerID string) ([]domain.UnreadRow, error) {
	query, args, err := r.unread(readerID,
		"m.id AS message_id",
		"m.content",
		"m.created_at",
		"m.sender_id",
		"u.name AS sender_name",
		"u.image AS sender_image",
	).
		Join("member u ON u.member_id = m.sender_id").
		OrderBy("m.created_at DESC", "m.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows := []domain.UnreadRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errprocess.Persistence(err, "select unread")
	}
	return rows, nil
}

// UnreadSenders 有未讀訊息的發送者, 最近發送者在前
func (r *readStateRepository) UnreadSenders(ctx context.Context, readerID string) ([]domain.UnreadSender, error) {
	query, args, err := r.unread(readerID, "u.member_id AS id", "u.name", "u.image").
		Join("member u ON u.member_id = m.sender_id").
		GroupBy("u.member_id", "u.name", "u.image").
		OrderBy("MAX(m.created_at) DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	senders := []domain.UnreadSender{}
	if err := r.db.SelectContext(ctx, &senders, query, args...); err != nil {
		return nil, errprocess.Persistence(err, "select unread senders")
	}
	return senders, nil
}
