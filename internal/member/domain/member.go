package domain

import (
	"time"

	"ping_chat_service/pkg/encrypt"
)

// MemberStatus 用來表示使用者狀態
type MemberStatus int

// 状态: 0=offline, 1=online, 2=ban ,3=delete
const (
	// MemberStatusOffLine 離線
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine 在線
	MemberStatusOnLine
	// MemberStatusBan 封鎖
	MemberStatusBan
	// MemberStatusDelete 刪除
	MemberStatusDelete
)

// Gender 性別
type Gender string

const (
	// GenderMale male
	GenderMale Gender = "MALE"
	// GenderFemale female
	GenderFemale Gender = "FEMALE"
)

// Member 用來表示使用者
type Member struct {
	ID        int64        `json:"-"`
	MemberID  string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Password  string       `json:"-"`
	Gender    *Gender      `json:"gender,omitempty"`
	Image     *string      `json:"image"`
	Status    MemberStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Person people list 顯示用
type Person struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

// MemberSession 用來表示使用者的 Session
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// RegisterParams 註冊參數
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}

// UpdateParams 更新個人資料, nil 表示不更新
type UpdateParams struct {
	MemberID string  `json:"id"`
	Name     *string `json:"name"`
	Gender   *string `json:"gender"`
	Image    *string `json:"image"`
}

// IsPasswordMatch 密碼驗證
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(m.Password, inputPwd)
}

// ToPerson people list view
func (m *Member) ToPerson() Person {
	return Person{ID: m.MemberID, Name: m.Name, Email: m.Email, Image: m.Image}
}

// IsExpired 檢查 Session 是否已過期
func (s *MemberSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiredAt)
}

// MemberQuery join conditions are used to query members
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
}
