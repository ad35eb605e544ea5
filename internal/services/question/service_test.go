package question

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quizrace/quizrace/internal/dependencies/mocks"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/storage/memory"
	"github.com/quizrace/quizrace/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) loadThree() {
	err := s.service.LoadQuestions(s.ctx, []model.Question{
		{ID: "q1", Text: "What is the capital of France?", CorrectAnswer: "Paris"},
		{ID: "q2", Text: "What is 2 + 2?", CorrectAnswer: "4"},
		{ID: "q3", Text: "Which planet is known as the 'Red Planet'?", CorrectAnswer: "Mars"},
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestLoadQuestionsAssignsMissingIDs() {
	err := s.service.LoadQuestions(s.ctx, []model.Question{
		{Text: "first", CorrectAnswer: "a"},
		{ID: "custom", Text: "second", CorrectAnswer: "b"},
		{Text: "third", CorrectAnswer: "c"},
	})
	s.Require().NoError(err)

	stored, err := s.storage.GetQuestions(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.QuestionID("q1"), stored[0].ID)
	s.Equal(model.QuestionID("custom"), stored[1].ID)
	s.Equal(model.QuestionID("q3"), stored[2].ID)
}

func (s *ServiceSuite) TestLoadQuestionsFailsOnEmptySet() {
	err := s.service.LoadQuestions(s.ctx, nil)
	s.ErrorIs(err, model.ErrNoQuestionsLoaded)
}

func (s *ServiceSuite) TestCount() {
	s.loadThree()

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *ServiceSuite) TestNextPicksFromRemainder() {
	s.loadThree()

	// q1 and q3 excluded, only q2 remains regardless of the pick index
	q, err := s.service.Next(s.ctx, map[model.QuestionID]bool{"q1": true, "q3": true})
	s.Require().NoError(err)
	s.Equal(model.QuestionID("q2"), q.ID)
}

func (s *ServiceSuite) TestNextUsesRandomIndex() {
	s.loadThree()
	s.random.QueueIntn(2)

	q, err := s.service.Next(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(model.QuestionID("q3"), q.ID)
}

func (s *ServiceSuite) TestNextExhausted() {
	s.loadThree()

	_, err := s.service.Next(s.ctx, map[model.QuestionID]bool{"q1": true, "q2": true, "q3": true})
	s.ErrorIs(err, model.ErrQuestionsExhausted)
}

func (s *ServiceSuite) TestNextFailsWithoutLoadedSet() {
	_, err := s.service.Next(s.ctx, nil)
	s.ErrorIs(err, model.ErrNoQuestionsLoaded)
}

func (s *ServiceSuite) TestLoadDefaults() {
	s.Require().NoError(s.service.LoadDefaults(s.ctx))

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(20, count)

	// Every embedded question has an id and an answer
	stored, err := s.storage.GetQuestions(s.ctx)
	s.Require().NoError(err)
	for _, q := range stored {
		s.NotEmpty(q.ID)
		s.NotEmpty(q.Text)
		s.NotEmpty(q.CorrectAnswer)
	}
}

func (s *ServiceSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "questions.json")
	data := `[{"text":"What is 2 + 2?","correctAnswer":"4"}]`
	s.Require().NoError(os.WriteFile(path, []byte(data), 0o644))

	s.Require().NoError(s.service.LoadFromFile(s.ctx, path))

	count, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ServiceSuite) TestLoadFromFileFailsOnMissingFile() {
	err := s.service.LoadFromFile(s.ctx, filepath.Join(s.T().TempDir(), "nope.json"))
	s.Error(err)
}
