package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"ping_chat_service/internal/chat/domain"
	"ping_chat_service/internal/chat/repository"
	memberdomain "ping_chat_service/internal/member/domain"
	errprocess "ping_chat_service/pkg/err"

	"github.com/cucumber/godog"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// memberBook in-memory MemberDirectory
type memberBook map[string]string

func (b memberBook) FindMember(_ context.Context, q *memberdomain.MemberQuery) (*memberdomain.Member, error) {
	if q == nil || q.MemberID == nil {
		return nil, errprocess.NotFound("member not found")
	}
	name, ok := b[*q.MemberID]
	if !ok {
		return nil, errprocess.NotFound("member not found")
	}
	return &memberdomain.Member{MemberID: *q.MemberID, Name: name}, nil
}

func (b memberBook) ListMembers(_ context.Context, exclude string) ([]memberdomain.Person, error) {
	people := []memberdomain.Person{}
	for id, name := range b {
		if id != exclude {
			people = append(people, memberdomain.Person{ID: id, Name: name})
		}
	}
	return people, nil
}

type relayWorld struct {
	t         *testing.T
	db        *gorm.DB
	members   memberBook
	hub       *EphemeralHub
	relay     *RelayUseCase
	messages  *MessageUseCase
	readState *ReadStateUseCase
	sessions  map[string]*Session
	inbox     map[string][]domain.WSResponse
	lastJoin  domain.WSResponse
}

func (w *relayWorld) reset(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	dsn := filepath.Join(w.t.TempDir(), "relay.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return ctx, err
	}
	if err := gdb.Exec(`CREATE TABLE member (member_id TEXT PRIMARY KEY, name TEXT NOT NULL, image TEXT)`).Error; err != nil {
		return ctx, err
	}
	msgRepo := repository.NewMessageRepository(gdb)
	if err := msgRepo.AutoMigrate(ctx); err != nil {
		return ctx, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return ctx, err
	}
	readRepo := repository.NewReadStateRepository(sqlx.NewDb(sqlDB, "sqlite3"))

	w.db = gdb
	w.members = memberBook{}
	w.hub = NewEphemeralHub()
	w.messages = NewMessageUseCase(msgRepo, w.members)
	w.readState = NewReadStateUseCase(msgRepo, readRepo)
	w.relay = NewRelayUseCase(w.hub, w.messages, w.members)
	w.sessions = map[string]*Session{}
	w.inbox = map[string][]domain.WSResponse{}
	w.lastJoin = domain.WSResponse{}
	return ctx, nil
}

func (w *relayWorld) close(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	w.hub.CloseAll()
	if sqlDB, dbErr := w.db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return ctx, err
}

func (w *relayWorld) memberNamed(id, name string) error {
	w.members[id] = name
	return w.db.Exec(`INSERT INTO member (member_id, name) VALUES (?, ?)`, id, name).Error
}

func (w *relayWorld) connected(id string) error {
	s := NewSession(16)
	w.hub.Register(s)
	if !w.hub.Bind(s, id) {
		return fmt.Errorf("bind %s failed", id)
	}
	w.sessions[id] = s
	return nil
}

func (w *relayWorld) connectedWithoutIdentity(label string) error {
	s := NewSession(16)
	w.hub.Register(s)
	w.sessions[label] = s
	return nil
}

func (w *relayWorld) join(label, id string) error {
	s, ok := w.sessions[label]
	if !ok {
		return fmt.Errorf("%s is not connected", label)
	}
	w.lastJoin = w.relay.Join(context.Background(), s, domain.WSRequest{Action: string(domain.Join), UserID: id})
	return nil
}

func (w *relayWorld) joinShouldSucceed() error {
	if !w.lastJoin.Success {
		return fmt.Errorf("join failed: %s", w.lastJoin.Error)
	}
	return nil
}

func (w *relayWorld) joinShouldFail() error {
	if w.lastJoin.Success || w.lastJoin.Error == "" {
		return fmt.Errorf("join should fail: %+v", w.lastJoin)
	}
	return nil
}

func (w *relayWorld) collect() error {
	for id, s := range w.sessions {
		for {
			select {
			case b := <-s.Send():
				var resp domain.WSResponse
				if err := json.Unmarshal(b, &resp); err != nil {
					return err
				}
				w.inbox[id] = append(w.inbox[id], resp)
				continue
			default:
			}
			break
		}
	}
	return nil
}

func (w *relayWorld) send(from, text, to string) error {
	s, ok := w.sessions[from]
	if !ok {
		return fmt.Errorf("%s is not connected", from)
	}
	w.relay.HandleChatMessage(context.Background(), s, domain.WSRequest{
		Action:      string(domain.ChatMessage),
		Text:        text,
		UserID:      from,
		RecipientID: to,
	})
	return w.collect()
}

func (w *relayWorld) shouldReceive(id, text, name string) error {
	for _, resp := range w.inbox[id] {
		if resp.Action == string(domain.NewMessage) && resp.Payload["text"] == text && resp.Payload["userName"] == name {
			return nil
		}
	}
	return fmt.Errorf("%s did not receive %q from %s: %+v", id, text, name, w.inbox[id])
}

func (w *relayWorld) shouldReceiveUnreadSignal(id string) error {
	for _, resp := range w.inbox[id] {
		if resp.Action == string(domain.NewUnreadMessage) && resp.Payload["recipientId"] == id {
			return nil
		}
	}
	return fmt.Errorf("%s did not receive unread signal", id)
}

func (w *relayWorld) shouldReceiveNothing(id string) error {
	if n := len(w.inbox[id]); n != 0 {
		return fmt.Errorf("%s received %d frames: %+v", id, n, w.inbox[id])
	}
	return nil
}

func (w *relayWorld) unreadCountIs(id string, want int) error {
	got, err := w.readState.UnreadCountFor(context.Background(), id)
	if err != nil {
		return err
	}
	if got != int64(want) {
		return fmt.Errorf("unread count of %s = %d, want %d", id, got, want)
	}
	return nil
}

func (w *relayWorld) totalMessagesIs(want int) error {
	got, err := w.messages.CountAll(context.Background())
	if err != nil {
		return err
	}
	if got != int64(want) {
		return fmt.Errorf("message count = %d, want %d", got, want)
	}
	return nil
}

func (w *relayWorld) markConversationRead(reader, peer string) error {
	_, err := w.readState.MarkConversationRead(context.Background(), reader, peer)
	return err
}

func initializeRelayScenario(t *testing.T, sc *godog.ScenarioContext) {
	w := &relayWorld{t: t}
	sc.Before(w.reset)
	sc.After(w.close)

	sc.Step(`^會員 "([^"]*)" 名稱 "([^"]*)"$`, w.memberNamed)
	sc.Step(`^"([^"]*)" 已連線$`, w.connected)
	sc.Step(`^"([^"]*)" 未帶身分連線$`, w.connectedWithoutIdentity)
	sc.Step(`^"([^"]*)" 以 "([^"]*)" 身分加入$`, w.join)
	sc.Step(`^加入應該成功$`, w.joinShouldSucceed)
	sc.Step(`^加入應該失敗$`, w.joinShouldFail)
	sc.Step(`^"([^"]*)" 傳送 "([^"]*)" 給 "([^"]*)"$`, w.send)
	sc.Step(`^"([^"]*)" 應該收到訊息 "([^"]*)" 來自 "([^"]*)"$`, w.shouldReceive)
	sc.Step(`^"([^"]*)" 應該收到未讀通知$`, w.shouldReceiveUnreadSignal)
	sc.Step(`^"([^"]*)" 不應該收到任何訊息$`, w.shouldReceiveNothing)
	sc.Step(`^"([^"]*)" 的未讀數為 (\d+)$`, w.unreadCountIs)
	sc.Step(`^訊息總數為 (\d+)$`, w.totalMessagesIs)
	sc.Step(`^"([^"]*)" 將與 "([^"]*)" 的對話標記已讀$`, w.markConversationRead)
}

func TestRelayFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "relay",
		ScenarioInitializer: func(sc *godog.ScenarioContext) { initializeRelayScenario(t, sc) },
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("relay feature tests failed")
	}
}
