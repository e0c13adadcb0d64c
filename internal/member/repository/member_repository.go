package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ping_chat_service/internal/member/domain"
	errprocess "ping_chat_service/pkg/err"
)

const memberColumns = "id, member_id, name, email, password, gender, image, status, created_at, updated_at"

const createMemberTable = `
CREATE TABLE IF NOT EXISTS member (
	id         BIGSERIAL PRIMARY KEY,
	member_id  VARCHAR(64)  NOT NULL UNIQUE,
	name       VARCHAR(50)  NOT NULL,
	email      VARCHAR(255) NOT NULL UNIQUE,
	password   TEXT         NOT NULL,
	gender     VARCHAR(10),
	image      TEXT,
	status     SMALLINT     NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
)`

// MemberRepository definition get Member info
type MemberRepository interface {
	Migrate(ctx context.Context) error
	CreateUser(ctx context.Context, member *domain.Member) error
	UpdateMemberStatus(ctx context.Context, member *domain.Member) error
	UpdateProfile(ctx context.Context, member *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
	ListMembers(ctx context.Context, excludeMemberID string) ([]domain.Member, error)
	DeleteMember(ctx context.Context, memberID string) (*domain.Member, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createMemberTable); err != nil {
		return fmt.Errorf("migrate member table: %w", err)
	}
	return nil
}

func (r *memberRepository) CreateUser(ctx context.Context, member *domain.Member) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO member(member_id, name, email, password, gender, image, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		member.MemberID, member.Name, member.Email, member.Password, genderParam(member.Gender), member.Image, int16(member.Status))

	if err := row.Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errprocess.Conflict("email already registered")
		}
		return errprocess.Persistence(err, "create member")
	}
	return nil
}

func (r *memberRepository) UpdateMemberStatus(ctx context.Context, member *domain.Member) error {
	_, err := r.db.Exec(ctx, "UPDATE member SET status = $1, updated_at = NOW() WHERE member_id = $2", int16(member.Status), member.MemberID)
	if err != nil {
		return errprocess.Persistence(err, "update member status")
	}
	return nil
}

func (r *memberRepository) UpdateProfile(ctx context.Context, member *domain.Member) error {
	row := r.db.QueryRow(ctx,
		`UPDATE member SET name = $1, gender = $2, image = $3, updated_at = NOW()
		 WHERE member_id = $4 RETURNING updated_at`,
		member.Name, genderParam(member.Gender), member.Image, member.MemberID)

	if err := row.Scan(&member.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errprocess.NotFound("member not found")
		}
		return errprocess.Persistence(err, "update member")
	}
	return nil
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT " + memberColumns + " FROM member WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
	}
	if len(params) == 0 {
		return nil, errprocess.Validation("member query needs at least one condition")
	}

	member, err := scanMember(r.db.QueryRow(ctx, queryStr, params...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errprocess.NotFound("no member found with given criteria")
		}
		return nil, errprocess.Persistence(err, "find member")
	}

	return member, nil
}

func (r *memberRepository) ListMembers(ctx context.Context, excludeMemberID string) ([]domain.Member, error) {
	queryStr := "SELECT " + memberColumns + " FROM member"
	params := []interface{}{}
	if excludeMemberID != "" {
		queryStr += " WHERE member_id <> $1"
		params = append(params, excludeMemberID)
	}
	queryStr += " ORDER BY name, id"

	rows, err := r.db.Query(ctx, queryStr, params...)
	if err != nil {
		return nil, errprocess.Persistence(err, "list members")
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errprocess.Persistence(err, "scan member")
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errprocess.Persistence(err, "list members")
	}
	return members, nil
}

// DeleteMember 刪除會員, messages / read_messages 由 FK ON DELETE CASCADE 清除
func (r *memberRepository) DeleteMember(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := scanMember(r.db.QueryRow(ctx,
		"DELETE FROM member WHERE member_id = $1 RETURNING "+memberColumns, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errprocess.NotFound("member not found")
		}
		return nil, errprocess.Persistence(err, "delete member")
	}
	return member, nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var (
		m      domain.Member
		gender *string
		status int16
	)
	if err := row.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Password, &gender, &m.Image, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = domain.MemberStatus(status)
	if gender != nil && *gender != "" {
		g := domain.Gender(*gender)
		m.Gender = &g
	}
	return &m, nil
}

func genderParam(g *domain.Gender) *string {
	if g == nil {
		return nil
	}
	s := string(*g)
	return &s
}
