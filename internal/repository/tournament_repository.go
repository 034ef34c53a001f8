package repository

import (
	"context"
	"database/sql"

	"github.com/gamearena/arena-server/internal/model"
)

// TournamentRepo provides access to tournaments and their
// registrations.  The participant counter on the tournament row is
// only ever changed inside the same transaction as the registration
// insert, so the two can never drift apart.
type TournamentRepo struct {
	db *sql.DB
}

// NewTournamentRepo returns a new TournamentRepo bound to the given database.
func NewTournamentRepo(db *sql.DB) *TournamentRepo { return &TournamentRepo{db: db} }

const tournamentColumns = `id, title, description, match_type, entry_fee_tokens, prize_pool_tokens, max_participants, participants, start_time, created_at`

func scanTournament(row interface{ Scan(...any) error }) (*model.Tournament, error) {
	var t model.Tournament
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.MatchType, &t.EntryFeeTokens,
		&t.PrizePoolTokens, &t.MaxParticipants, &t.Participants, &t.StartTime, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tournaments ordered by start time ascending, the
// soonest first.
func (r *TournamentRepo) List(ctx context.Context) ([]*model.Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments ORDER BY start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tournaments := make([]*model.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// GetByID returns one tournament or sql.ErrNoRows.
func (r *TournamentRepo) GetByID(ctx context.Context, id uint64) (*model.Tournament, error) {
	return scanTournament(r.db.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ? LIMIT 1`, id))
}

// Register inserts a registration and increments the participant
// counter in one transaction.  The tournament row is locked first so
// concurrent registrations serialize on the cap check.  Returns
// ErrAlreadyRegistered for a duplicate, ErrTournamentFull when the
// cap is reached, sql.ErrNoRows when the tournament does not exist.
func (r *TournamentRepo) Register(ctx context.Context, tournamentID, userID uint64, teamName *string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var maxParticipants, participants uint32
	err = tx.QueryRowContext(ctx,
		`SELECT max_participants, participants FROM tournaments WHERE id = ? FOR UPDATE`,
		tournamentID).Scan(&maxParticipants, &participants)
	if err != nil {
		return err
	}
	if maxParticipants > 0 && participants >= maxParticipants {
		return ErrTournamentFull
	}

	var exists uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM tournament_registrations WHERE tournament_id = ? AND user_id = ? LIMIT 1`,
		tournamentID, userID).Scan(&exists)
	switch {
	case err == nil:
		return ErrAlreadyRegistered
	case err != sql.ErrNoRows:
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tournament_registrations (tournament_id, user_id, team_name) VALUES (?,?,?)`,
		tournamentID, userID, teamName); err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyRegistered
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tournaments SET participants = participants + 1 WHERE id = ?`,
		tournamentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListRegistrationsByUser returns the user's registrations, newest first.
func (r *TournamentRepo) ListRegistrationsByUser(ctx context.Context, userID uint64) ([]*model.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, user_id, team_name, created_at
		 FROM tournament_registrations WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]*model.TournamentRegistration, 0)
	for rows.Next() {
		var (
			reg  model.TournamentRegistration
			team sql.NullString
		)
		if err := rows.Scan(&reg.ID, &reg.TournamentID, &reg.UserID, &team, &reg.CreatedAt); err != nil {
			return nil, err
		}
		if team.Valid {
			v := team.String
			reg.TeamName = &v
		}
		regs = append(regs, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}
