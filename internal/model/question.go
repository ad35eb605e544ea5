package model

// QuestionID uniquely identifies a question within the loaded question set
type QuestionID string

// Question is a single trivia question served at trivia squares
type Question struct {
	ID            QuestionID `json:"id"`
	Text          string     `json:"text"`
	Choices       []string   `json:"choices,omitempty"`
	CorrectAnswer string     `json:"correctAnswer"`
	Image         string     `json:"image,omitempty"`
}

// PendingQuestion is a question awaiting an answer from one player.
// At most one exists per session at any time.
type PendingQuestion struct {
	Question Question `json:"question"`
	PlayerID PlayerID `json:"playerId"`
}
