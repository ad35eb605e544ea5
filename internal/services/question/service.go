package question

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/quizrace/quizrace/internal/dependencies/random"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/storage"
)

//go:embed questions.json
var defaultQuestions []byte

// Service serves non-repeating trivia questions from the loaded question set
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger
}

// New creates a new question Service
func New(storage storage.Storage, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  random,
		logger:  logger.With(slog.String("component", "questions")),
	}
}

// LoadQuestions stores a question set, assigning sequential ids to any
// question without one
func (s *Service) LoadQuestions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return model.ErrNoQuestionsLoaded
	}
	loaded := make([]model.Question, len(questions))
	copy(loaded, questions)
	for i := range loaded {
		if loaded[i].ID == "" {
			loaded[i].ID = model.QuestionID(fmt.Sprintf("q%d", i+1))
		}
	}
	if err := s.storage.SaveQuestions(ctx, loaded); err != nil {
		return err
	}
	s.logger.Info("questions loaded", slog.Int("count", len(loaded)))
	return nil
}

// LoadDefaults loads the embedded question set
func (s *Service) LoadDefaults(ctx context.Context) error {
	var questions []model.Question
	if err := json.Unmarshal(defaultQuestions, &questions); err != nil {
		return fmt.Errorf("parsing embedded questions: %w", err)
	}
	return s.LoadQuestions(ctx, questions)
}

// LoadFromFile loads a question set from a JSON file
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading question file: %w", err)
	}
	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parsing question file %s: %w", path, err)
	}
	return s.LoadQuestions(ctx, questions)
}

// Count returns the total number of loaded questions
func (s *Service) Count(ctx context.Context) (int, error) {
	questions, err := s.storage.GetQuestions(ctx)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

// Next returns a uniformly random question whose id is not in excludeIDs.
// Returns ErrQuestionsExhausted when no question remains.
func (s *Service) Next(ctx context.Context, excludeIDs map[model.QuestionID]bool) (model.Question, error) {
	questions, err := s.storage.GetQuestions(ctx)
	if err != nil {
		return model.Question{}, err
	}

	remaining := questions[:0:0]
	for _, q := range questions {
		if !excludeIDs[q.ID] {
			remaining = append(remaining, q)
		}
	}
	if len(remaining) == 0 {
		return model.Question{}, model.ErrQuestionsExhausted
	}

	return remaining[s.random.Intn(len(remaining))], nil
}

// Interface for dependency injection
type ServiceInterface interface {
	LoadQuestions(ctx context.Context, questions []model.Question) error
	LoadDefaults(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) error
	Count(ctx context.Context) (int, error)
	Next(ctx context.Context, excludeIDs map[model.QuestionID]bool) (model.Question, error)
}

var _ ServiceInterface = (*Service)(nil)
