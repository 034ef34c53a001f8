package model

import "time"

// Tournament represents a scheduled community tournament.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – tournament title.
//  Description     – longer description shown on the listing.
//  MatchType       – format played (1v1/2v2/4v4).
//  EntryFeeTokens  – entry fee in community tokens.
//  PrizePoolTokens – advertised prize pool in tokens.
//  MaxParticipants – registration cap (0 means unlimited).
//  Participants    – current registration count, kept in sync with
//                    tournament_registrations inside the same transaction.
//  StartTime       – when the tournament begins.
//  CreatedAt       – creation timestamp.
type Tournament struct {
	ID              uint64    // tournaments.id
	Title           string    // tournaments.title
	Description     string    // tournaments.description
	MatchType       string    // tournaments.match_type
	EntryFeeTokens  uint32    // tournaments.entry_fee_tokens
	PrizePoolTokens uint32    // tournaments.prize_pool_tokens
	MaxParticipants uint32    // tournaments.max_participants
	Participants    uint32    // tournaments.participants
	StartTime       time.Time // tournaments.start_time
	CreatedAt       time.Time // tournaments.created_at
}

// TournamentRegistration links a user to a tournament.  A user may
// register at most once per tournament.
//
// Fields:
//  ID           – primary key identifier.
//  TournamentID – tournament being entered.
//  UserID       – registering user.
//  TeamName     – optional team name for team formats.
//  CreatedAt    – registration timestamp.
type TournamentRegistration struct {
	ID           uint64    // tournament_registrations.id
	TournamentID uint64    // tournament_registrations.tournament_id
	UserID       uint64    // tournament_registrations.user_id
	TeamName     *string   // tournament_registrations.team_name (nullable)
	CreatedAt    time.Time // tournament_registrations.created_at
}
