package memory

import (
	"context"
	"sync"

	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions  map[model.SessionCode]*model.Session
	questions []model.Question
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionCode]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Code] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, code model.SessionCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
	return nil
}

func (s *Storage) SessionExists(ctx context.Context, code model.SessionCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[code]
	return ok, nil
}

// Question set operations

func (s *Storage) SaveQuestions(ctx context.Context, questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = make([]model.Question, len(questions))
	copy(s.questions, questions)
	return nil
}

func (s *Storage) GetQuestions(ctx context.Context) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.questions == nil {
		return nil, model.ErrNoQuestionsLoaded
	}
	result := make([]model.Question, len(s.questions))
	copy(result, s.questions)
	return result, nil
}
