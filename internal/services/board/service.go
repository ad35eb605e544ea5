package board

import (
	"fmt"

	"github.com/quizrace/quizrace/internal/dependencies/random"
	"github.com/quizrace/quizrace/internal/model"
)

// Service generates board layouts
type Service struct {
	random random.Random
}

// New creates a new board Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// Generate produces a board of the given length with exactly triviaCount
// trivia squares. Square 0 is the start and the last square is the finish;
// neither is ever a trivia square. Trivia squares are chosen uniformly
// without replacement among the remaining squares.
func (s *Service) Generate(length, triviaCount int) (model.Board, error) {
	if length < 2 {
		return nil, fmt.Errorf("%w: board length %d, need at least 2", model.ErrInvalidBoardConfig, length)
	}
	if triviaCount < 0 || triviaCount > length-2 {
		return nil, fmt.Errorf("%w: %d trivia squares on a board of %d", model.ErrInvalidBoardConfig, triviaCount, length)
	}

	board := make(model.Board, length)
	for i := range board {
		board[i] = model.Square{Index: i}
	}
	board[0].IsStart = true
	board[length-1].IsFinish = true

	// Partial Fisher-Yates over the interior squares; the first triviaCount
	// entries after shuffling become trivia squares.
	interior := make([]int, length-2)
	for i := range interior {
		interior[i] = i + 1
	}
	for i := 0; i < triviaCount; i++ {
		j := i + s.random.Intn(len(interior)-i)
		interior[i], interior[j] = interior[j], interior[i]
		board[interior[i]].IsTrivia = true
	}

	return board, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Generate(length, triviaCount int) (model.Board, error)
}

var _ ServiceInterface = (*Service)(nil)
