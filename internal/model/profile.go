package model

import "time"

// Profile is the public player card shown in the player directory.
// Every user has exactly one profile, created together with the
// account.  Username and GameUID are unique across all players.
//
// Fields:
//  UserID       – owning user (also the primary key).
//  Username     – unique display name.
//  GameUID      – unique in-game identifier.
//  Level        – in-game level, used for search and display.
//  Phone        – contact phone number.
//  ActiveTime   – free-form text describing when the player is online.
//  Tokens       – community token balance (new accounts start with 100).
//  ProfilePhoto – optional avatar URL.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Profile struct {
	UserID       uint64    // profiles.user_id
	Username     string    // profiles.username
	GameUID      string    // profiles.game_uid
	Level        uint32    // profiles.level
	Phone        string    // profiles.phone
	ActiveTime   string    // profiles.active_time
	Tokens       int64     // profiles.tokens
	ProfilePhoto *string   // profiles.profile_photo (nullable)
	CreatedAt    time.Time // profiles.created_at
	UpdatedAt    time.Time // profiles.updated_at
}
