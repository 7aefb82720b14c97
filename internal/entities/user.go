package entities

import "time"

// User is a messaging contact identified by the provider sender id.
type User struct {
	SenderID     string    `json:"sender_id"`
	ProfileName  string    `json:"profile_name"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	IsBlocked    bool      `json:"is_blocked"`
}
