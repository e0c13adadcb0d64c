package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ping_chat_service/internal/chat/domain"
	errprocess "ping_chat_service/pkg/err"
	"ping_chat_service/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var base = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*gorm.DB, *sqlx.DB) {
	t.Helper()
	logger.SetNewNop()

	dsn := filepath.Join(t.TempDir(), "chat.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.Exec(`CREATE TABLE member (member_id TEXT PRIMARY KEY, name TEXT NOT NULL, image TEXT)`).Error)
	require.NoError(t, gdb.Exec(`INSERT INTO member (member_id, name, image) VALUES ('u1', 'Alice', 'http://img/a.png'), ('u2', 'Bob', NULL), ('u3', 'Carol', NULL)`).Error)
	require.NoError(t, NewMessageRepository(gdb).AutoMigrate(context.Background()))

	return gdb, sqlx.NewDb(sqlDB, "sqlite3")
}

func seed(t *testing.T, repo MessageRepository, id, from, to string, minute int) *domain.Message {
	t.Helper()
	msg := &domain.Message{
		ID:          id,
		Content:     "content " + id,
		SenderID:    from,
		RecipientID: to,
		CreatedAt:   base.Add(time.Duration(minute) * time.Minute),
	}
	require.NoError(t, repo.Create(context.Background(), msg))
	return msg
}

func TestMessageRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	gdb, _ := newTestDB(t)
	repo := NewMessageRepository(gdb)

	seed(t, repo, "m1", "u1", "u2", 1)
	seed(t, repo, "m2", "u2", "u1", 2)
	seed(t, repo, "m3", "u1", "u3", 3)
	seed(t, repo, "m4", "u1", "u2", 4)

	t.Run("兩人對話雙向且依時間排序", func(t *testing.T) {
		msgs, err := repo.FindBetween(ctx, "u2", "u1")
		require.NoError(t, err)
		ids := []string{}
		for _, m := range msgs {
			ids = append(ids, m.ID)
		}
		assert.Equal(t, []string{"m1", "m2", "m4"}, ids)
	})

	t.Run("全部訊息與最新訊息", func(t *testing.T) {
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, "m1", all[0].ID)

		recent, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, "m4", recent[0].ID)
		assert.Equal(t, "m3", recent[1].ID)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("修改內容", func(t *testing.T) {
		msg, err := repo.UpdateContent(ctx, "m1", "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", msg.Content)

		got, err := repo.GetByID(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
		assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))
	})

	t.Run("不存在的訊息", func(t *testing.T) {
		_, err := repo.UpdateContent(ctx, "missing", "x")
		assert.ErrorIs(t, err, errprocess.ErrNotFound)

		_, err = repo.Delete(ctx, "missing")
		assert.ErrorIs(t, err, errprocess.ErrNotFound)
	})

	t.Run("刪除訊息連同已讀紀錄", func(t *testing.T) {
		n, err := repo.CreateReceipts(ctx, "u2", []string{"m4"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		deleted, err := repo.Delete(ctx, "m4")
		require.NoError(t, err)
		assert.Equal(t, "m4", deleted.ID)

		var receipts int64
		require.NoError(t, gdb.Model(&domain.ReadMessage{}).Where("message_id = ?", "m4").Count(&receipts).Error)
		assert.Zero(t, receipts)
	})
}

func TestMessageRepository_Receipts(t *testing.T) {
	ctx := context.Background()
	gdb, xdb := newTestDB(t)
	repo := NewMessageRepository(gdb)
	readState := NewReadStateRepository(xdb)

	seed(t, repo, "a1", "u1", "u2", 1)
	seed(t, repo, "a2", "u1", "u2", 2)
	seed(t, repo, "a3", "u1", "u2", 3)
	seed(t, repo, "c1", "u3", "u2", 4)
	seed(t, repo, "b1", "u2", "u1", 5)

	count, err := readState.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	t.Run("批次標記忽略不存在與非收件者的訊息", func(t *testing.T) {
		n, err := repo.CreateReceipts(ctx, "u2", []string{"a1", "nonexistent-id", "a1", "b1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		count, err := readState.UnreadCount(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		msg, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.True(t, msg.IsRead)

		sent, err := repo.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.False(t, sent.IsRead)
	})

	t.Run("重複標記為冪等", func(t *testing.T) {
		n, err := repo.CreateReceipts(ctx, "u2", []string{"a1"})
		require.NoError(t, err)
		assert.Zero(t, n)

		count, err := readState.UnreadCount(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("整段對話標記已讀", func(t *testing.T) {
		n, err := repo.CreateConversationReceipts(ctx, "u2", "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		count, err := readState.UnreadCount(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		n, err = repo.CreateConversationReceipts(ctx, "u2", "u1")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("空批次", func(t *testing.T) {
		n, err := repo.CreateReceipts(ctx, "u2", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestReadStateRepository_Digest(t *testing.T) {
	ctx := context.Background()
	gdb, xdb := newTestDB(t)
	repo := NewMessageRepository(gdb)
	readState := NewReadStateRepository(xdb)

	seed(t, repo, "a1", "u1", "u2", 1)
	seed(t, repo, "c1", "u3", "u2", 2)
	seed(t, repo, "a2", "u1", "u2", 3)
	seed(t, repo, "x1", "u2", "u1", 4)

	rows, err := readState.UnreadRows(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a2", rows[0].MessageID)
	assert.Equal(t, "Alice", rows[0].SenderName)
	require.NotNil(t, rows[0].SenderImage)
	assert.Equal(t, "http://img/a.png", *rows[0].SenderImage)
	assert.Equal(t, "c1", rows[1].MessageID)
	assert.Nil(t, rows[1].SenderImage)
	assert.Equal(t, "a1", rows[2].MessageID)

	senders, err := readState.UnreadSenders(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, senders, 2)
	assert.Equal(t, "u1", senders[0].ID)
	assert.Equal(t, "u3", senders[1].ID)

	empty, err := readState.UnreadRows(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNewReadStateRepository_Placeholder(t *testing.T) {
	t.Run("postgres 使用 $n", func(t *testing.T) {
		repo := NewReadStateRepository(sqlx.NewDb(nil, "postgres")).(*readStateRepository)
		query, args, err := repo.unread("u2", "COUNT(*)").ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "m.recipient_id = $1")
		assert.Contains(t, query, "rm.user_id = $2")
		assert.Equal(t, []interface{}{"u2", "u2"}, args)
	})

	t.Run("sqlite 使用 ?", func(t *testing.T) {
		repo := NewReadStateRepository(sqlx.NewDb(nil, "sqlite3")).(*readStateRepository)
		query, _, err := repo.unread("u2", "COUNT(*)").ToSql()
		require.NoError(t, err)
		assert.Contains(t, query, "m.recipient_id = ?")
		assert.NotContains(t, query, "$1")
	})
}
