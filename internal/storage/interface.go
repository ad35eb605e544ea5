package storage

import (
	"context"

	"github.com/quizrace/quizrace/internal/model"
)

// Storage defines the interface for session and question persistence.
// Connections are never stored; they live in the websocket hub.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	DeleteSession(ctx context.Context, code model.SessionCode) error
	SessionExists(ctx context.Context, code model.SessionCode) (bool, error)

	// Question set operations
	SaveQuestions(ctx context.Context, questions []model.Question) error
	GetQuestions(ctx context.Context) ([]model.Question, error)
}
