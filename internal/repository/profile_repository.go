package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/gamearena/arena-server/internal/model"
)

// ProfileRepo provides read access to player profiles for the
// directory pages and profile lookups.  Profile creation happens in
// UserRepo.CreateWithProfile so that account and card are inserted
// in one transaction.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo returns a new ProfileRepo bound to the given database.
func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = `user_id, username, game_uid, level, phone, active_time, tokens, profile_photo, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	var (
		p     model.Profile
		photo sql.NullString
	)
	err := row.Scan(&p.UserID, &p.Username, &p.GameUID, &p.Level, &p.Phone, &p.ActiveTime, &p.Tokens, &photo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if photo.Valid {
		v := photo.String
		p.ProfilePhoto = &v
	}
	return &p, nil
}

// GetByUserID returns one profile or sql.ErrNoRows.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	return scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ? LIMIT 1`, userID))
}

// List returns all player profiles, newest first.
func (r *ProfileRepo) List(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// Search matches the query against username and game UID as a
// substring, and against level when the query parses as a number.
// Results are newest first, mirroring List.
func (r *ProfileRepo) Search(ctx context.Context, query string) ([]*model.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx)
	}
	level := 0
	if n, err := strconv.Atoi(query); err == nil {
		level = n
	}
	like := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles
		 WHERE username LIKE ? OR game_uid LIKE ? OR level = ?
		 ORDER BY created_at DESC`, like, like, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func collectProfiles(rows *sql.Rows) ([]*model.Profile, error) {
	profiles := make([]*model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
