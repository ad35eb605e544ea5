package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/quizrace/quizrace/internal/dependencies/clock"
	"github.com/quizrace/quizrace/internal/dependencies/random"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/services/board"
	"github.com/quizrace/quizrace/internal/services/question"
	"github.com/quizrace/quizrace/internal/services/session"
	"github.com/quizrace/quizrace/internal/storage"
	"github.com/quizrace/quizrace/internal/storage/memory"
	redisstorage "github.com/quizrace/quizrace/internal/storage/redis"
	"github.com/quizrace/quizrace/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	BoardService      *board.Service
	QuestionService   *question.Service
	HubManager        *ws.HubManager
	SessionController *session.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Game holds the game tuning parameters (optional)
	// If zero value, defaults to model.DefaultSessionConfig()
	Game model.SessionConfig
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Use default game config if not provided
	gameCfg := cfg.Game
	if gameCfg.BoardLength == 0 {
		gameCfg = model.DefaultSessionConfig()
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, gameCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, gameCfg model.SessionConfig, logger *slog.Logger) *App {
	boardService := board.New(rnd)
	questionService := question.New(store, rnd, logger)
	hubManager := ws.NewHubManager(logger)
	sessionController := session.NewController(store, boardService, questionService, clk, rnd, hubManager, gameCfg, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		BoardService:      boardService,
		QuestionService:   questionService,
		HubManager:        hubManager,
		SessionController: sessionController,
	}
}
