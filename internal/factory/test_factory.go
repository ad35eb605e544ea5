package factory

import (
	"context"
	"time"

	"github.com/quizrace/quizrace/internal/dependencies/mocks"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/storage/memory"
	"github.com/quizrace/quizrace/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, model.DefaultSessionConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestQuestions loads a small question set for testing
func (t *TestApp) LoadTestQuestions() error {
	questions := []model.Question{
		{ID: "q1", Text: "What is the capital of France?", Choices: []string{"Berlin", "Madrid", "Paris", "Rome"}, CorrectAnswer: "Paris"},
		{ID: "q2", Text: "What is 2 + 2?", CorrectAnswer: "4"},
		{ID: "q3", Text: "Which planet is known as the 'Red Planet'?", Choices: []string{"Venus", "Mars", "Jupiter", "Saturn"}, CorrectAnswer: "Mars"},
	}
	return t.QuestionService.LoadQuestions(context.Background(), questions)
}
