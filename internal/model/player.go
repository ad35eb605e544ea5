package model

import "time"

// PlayerID uniquely identifies a player for the lifetime of their connection
type PlayerID string

// Player represents a session member
type Player struct {
	ID          PlayerID  `json:"playerId"`
	DisplayName string    `json:"username"`
	Token       string    `json:"token"`
	JoinedAt    time.Time `json:"-"`
}
