package model

import "time"

// SessionCode is a human-readable identifier for joining sessions
type SessionCode string

// SessionState represents the current phase of a session
type SessionState string

const (
	SessionStateLobby      SessionState = "lobby"       // Waiting for players
	SessionStateInProgress SessionState = "in_progress" // Game running
	SessionStateFinished   SessionState = "finished"    // All players finished
)

// SessionConfig holds the tunable game parameters for a session
type SessionConfig struct {
	BoardLength        int `json:"boardLength"`
	TriviaSquares      int `json:"triviaSquares"`
	DiceFaces          int `json:"diceFaces"`
	MaxPlayers         int `json:"maxPlayers"`
	MinPlayers         int `json:"minPlayers"`
	WrongAnswerPenalty int `json:"wrongAnswerPenalty"`
}

// DefaultSessionConfig returns the default game parameters
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		BoardLength:        50,
		TriviaSquares:      10,
		DiceFaces:          6,
		MaxPlayers:         10,
		MinPlayers:         2,
		WrongAnswerPenalty: 5,
	}
}

// Session represents one lobby-then-game instance
type Session struct {
	Code   SessionCode   `json:"code"`
	State  SessionState  `json:"state"`
	Config SessionConfig `json:"config"`

	// Members in join order; join order becomes turn order at game start
	Members []Player `json:"members"`

	Board Board `json:"board"`

	// Frozen snapshot of member order at game start, used for turn rotation
	PlayerOrder []PlayerID `json:"playerOrder,omitempty"`

	// Index into PlayerOrder for the player whose turn it is
	TurnIndex int `json:"turnIndex"`

	// Positions maps player id to board index
	Positions map[PlayerID]int `json:"positions,omitempty"`

	// PendingQuestion is the outstanding trivia question, if any
	PendingQuestion *PendingQuestion `json:"pendingQuestion,omitempty"`

	// UsedQuestionIDs tracks questions already served this session
	UsedQuestionIDs map[QuestionID]bool `json:"usedQuestionIds,omitempty"`

	// FinishOrder lists players in the order they reached the finish square
	FinishOrder []PlayerID `json:"finishOrder,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetMember returns the member with the given player id, or nil if not present
func (s *Session) GetMember(playerID PlayerID) *Player {
	for i := range s.Members {
		if s.Members[i].ID == playerID {
			return &s.Members[i]
		}
	}
	return nil
}

// HasFinished reports whether the player has already crossed the finish line
func (s *Session) HasFinished(playerID PlayerID) bool {
	for _, id := range s.FinishOrder {
		if id == playerID {
			return true
		}
	}
	return false
}

// CurrentPlayer returns the id of the player whose turn it is.
// Only meaningful while the session is in progress.
func (s *Session) CurrentPlayer() PlayerID {
	if len(s.PlayerOrder) == 0 || s.TurnIndex < 0 || s.TurnIndex >= len(s.PlayerOrder) {
		return ""
	}
	return s.PlayerOrder[s.TurnIndex]
}

// IsActive reports whether the player is still racing: a current member
// that has not yet finished.
func (s *Session) IsActive(playerID PlayerID) bool {
	return s.GetMember(playerID) != nil && !s.HasFinished(playerID)
}

// ActiveCount returns the number of members still racing
func (s *Session) ActiveCount() int {
	count := 0
	for _, m := range s.Members {
		if !s.HasFinished(m.ID) {
			count++
		}
	}
	return count
}

// NextActiveIndex returns the index into PlayerOrder of the next still-racing
// player after the given index, wrapping around. Returns -1 if no player in
// the order is active.
func (s *Session) NextActiveIndex(from int) int {
	if len(s.PlayerOrder) == 0 {
		return -1
	}
	for step := 1; step <= len(s.PlayerOrder); step++ {
		idx := (from + step) % len(s.PlayerOrder)
		if s.IsActive(s.PlayerOrder[idx]) {
			return idx
		}
	}
	return -1
}
