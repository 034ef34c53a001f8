package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gamearena/arena-server/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	ErrGameUIDExists  = errors.New("game uid already exists")
)

// NewProfileParams carries the player-card fields collected at signup.
type NewProfileParams struct {
	Username   string
	GameUID    string
	Level      uint32
	Phone      string
	ActiveTime string
}

// startingTokens is the community token balance granted on signup.
const startingTokens = 100

// CreateWithProfile inserts the account and its player profile in one
// transaction so that a failed profile insert never leaves an orphan
// user.  Username and game UID uniqueness are checked up front to
// report a precise error, and backed by unique indexes so a race
// still surfaces as a duplicate-key failure rather than a duplicate
// row.
func (r *UserRepo) CreateWithProfile(ctx context.Context, email, password string, cost int, p NewProfileParams) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var taken string
	err = tx.QueryRowContext(ctx,
		`SELECT CASE WHEN username = ? THEN 'username' ELSE 'game_uid' END
		 FROM profiles WHERE username = ? OR game_uid = ? LIMIT 1`,
		p.Username, p.Username, p.GameUID).Scan(&taken)
	switch {
	case err == nil:
		if taken == "username" {
			return 0, ErrUsernameExists
		}
		return 0, ErrGameUIDExists
	case err != sql.ErrNoRows:
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,'PLAYER')",
		email, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	uid := uint64(id)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, username, game_uid, level, phone, active_time, tokens)
		 VALUES (?,?,?,?,?,?,?)`,
		uid, p.Username, p.GameUID, p.Level, p.Phone, p.ActiveTime, startingTokens)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uid, nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
