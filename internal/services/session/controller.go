package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/quizrace/quizrace/internal/dependencies/clock"
	"github.com/quizrace/quizrace/internal/dependencies/random"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/services/board"
	"github.com/quizrace/quizrace/internal/services/question"
	"github.com/quizrace/quizrace/internal/storage"
)

const (
	// CodeLength is the length of generated session codes
	CodeLength = 6
	// CodeAlphabet is the characters used in session codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the session registry and the game state machine.
// All mutations of one session are serialized through a per-code mutex;
// operations on different sessions run in parallel.
type Controller struct {
	storage         storage.Storage
	boardService    *board.Service
	questionService *question.Service
	clock           clock.Clock
	random          random.Random
	dispatcher      Dispatcher
	config          model.SessionConfig
	logger          *slog.Logger

	mu    sync.Mutex
	locks map[model.SessionCode]*sync.Mutex
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	boardService *board.Service,
	questionService *question.Service,
	clock clock.Clock,
	random random.Random,
	dispatcher Dispatcher,
	config model.SessionConfig,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:         storage,
		boardService:    boardService,
		questionService: questionService,
		clock:           clock,
		random:          random,
		dispatcher:      dispatcher,
		config:          config,
		logger:          logger.With(slog.String("component", "session")),
		locks:           make(map[model.SessionCode]*sync.Mutex),
	}
}

// emit is one message queued during a transition; an empty target means
// broadcast. Messages are sent only after the session state is saved.
type emit struct {
	to  model.PlayerID
	msg model.ServerMessage
}

// lockSession returns the mutex serializing access to one session
func (c *Controller) lockSession(code model.SessionCode) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[code] = lock
	}
	return lock
}

// dropLock discards the mutex of a destroyed session
func (c *Controller) dropLock(code model.SessionCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, code)
}

// flush sends queued messages after state has been persisted
func (c *Controller) flush(code model.SessionCode, events []emit) {
	for _, e := range events {
		if e.to == "" {
			c.dispatcher.Broadcast(code, e.msg)
		} else {
			c.dispatcher.Unicast(code, e.to, e.msg)
		}
	}
}

// CreateSession generates a new session with a fresh board and the creator
// as its first member
func (c *Controller) CreateSession(ctx context.Context, displayName, token string) (*model.Session, *model.Player, error) {
	now := c.clock.Now()

	// Generate unique session code, retrying on collision
	var code model.SessionCode
	for {
		code = model.SessionCode(c.random.String(CodeLength, CodeAlphabet))
		exists, err := c.storage.SessionExists(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if !exists {
			break
		}
	}

	gameBoard, err := c.boardService.Generate(c.config.BoardLength, c.config.TriviaSquares)
	if err != nil {
		return nil, nil, err
	}

	creator := model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: displayName,
		Token:       token,
		JoinedAt:    now,
	}

	session := &model.Session{
		Code:            code,
		State:           model.SessionStateLobby,
		Config:          c.config,
		Members:         []model.Player{creator},
		Board:           gameBoard,
		Positions:       make(map[model.PlayerID]int),
		UsedQuestionIDs: make(map[model.QuestionID]bool),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	c.logger.Info("session created",
		slog.String("code", string(code)),
		slog.String("player_id", string(creator.ID)),
	)

	return session, &creator, nil
}

// GetSession retrieves a session by code
func (c *Controller) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	return c.storage.GetSession(ctx, code)
}

// JoinSession adds a player to a session. Rejections are checked in order:
// unknown code, session full, name taken, token taken.
func (c *Controller) JoinSession(ctx context.Context, code model.SessionCode, displayName, token string) (*model.Session, *model.Player, error) {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	if len(session.Members) >= session.Config.MaxPlayers {
		return nil, nil, model.ErrSessionFull
	}
	for _, m := range session.Members {
		if m.DisplayName == displayName {
			return nil, nil, model.ErrNameTaken
		}
	}
	for _, m := range session.Members {
		if m.Token == token {
			return nil, nil, model.ErrTokenTaken
		}
	}

	player := model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: displayName,
		Token:       token,
		JoinedAt:    c.clock.Now(),
	}
	session.Members = append(session.Members, player)
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, nil, err
	}

	c.logger.Info("player joined",
		slog.String("code", string(code)),
		slog.String("player_id", string(player.ID)),
		slog.Int("member_count", len(session.Members)),
	)

	return session, &player, nil
}

// AnnounceLobby broadcasts the current member list to everyone in the session.
// Called by the connection layer once a new member's connection is registered.
func (c *Controller) AnnounceLobby(ctx context.Context, code model.SessionCode) error {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return err
	}

	c.dispatcher.Broadcast(code, model.NewLobbyUpdate(session.Members))
	return nil
}

// StartGame transitions a lobby to in-progress. Any current member may start;
// at least MinPlayers members are required. The member order is frozen as the
// turn order and all positions reset to the start square.
func (c *Controller) StartGame(ctx context.Context, code model.SessionCode, playerID model.PlayerID) error {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return err
	}

	if session.State != model.SessionStateLobby {
		return model.ErrGameAlreadyStarted
	}
	if session.GetMember(playerID) == nil {
		return model.ErrNotInSession
	}
	if len(session.Members) < session.Config.MinPlayers {
		return model.ErrInsufficientPlayers
	}

	session.PlayerOrder = make([]model.PlayerID, len(session.Members))
	session.Positions = make(map[model.PlayerID]int, len(session.Members))
	for i, m := range session.Members {
		session.PlayerOrder[i] = m.ID
		session.Positions[m.ID] = 0
	}
	session.TurnIndex = 0
	session.FinishOrder = nil
	session.State = model.SessionStateInProgress
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.logger.Info("game started",
		slog.String("code", string(code)),
		slog.Int("player_count", len(session.PlayerOrder)),
	)

	c.flush(code, []emit{
		{msg: model.NewGameStarted(session.Board, session.Positions, session.PlayerOrder)},
		{msg: model.NewCurrentPlayer(session.CurrentPlayer())},
	})
	return nil
}

// RollDice rolls for the current player, moves them (clamped to the finish
// square) and runs finish or trivia handling for the landing square
func (c *Controller) RollDice(ctx context.Context, code model.SessionCode, playerID model.PlayerID) error {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return err
	}

	if session.State == model.SessionStateFinished {
		return model.ErrGameFinished
	}
	if session.State != model.SessionStateInProgress {
		return model.ErrGameNotStarted
	}
	if session.CurrentPlayer() != playerID {
		return model.ErrNotPlayerTurn
	}
	if session.PendingQuestion != nil {
		return model.ErrQuestionPending
	}

	roll := 1 + c.random.Intn(session.Config.DiceFaces)
	lastIndex := session.Board.LastIndex()
	newPos := session.Positions[playerID] + roll
	if newPos > lastIndex {
		// Overshooting the finish lands exactly on it
		newPos = lastIndex
	}
	session.Positions[playerID] = newPos

	events := []emit{{msg: model.NewDiceRolled(playerID, roll, session.Positions)}}

	switch {
	case session.Board[newPos].IsFinish:
		c.handleFinish(session, playerID, &events)
	case session.Board[newPos].IsTrivia:
		c.handleTrivia(ctx, session, playerID, &events)
	default:
		c.advanceTurn(session, &events)
	}

	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.logger.Debug("dice rolled",
		slog.String("code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("roll", roll),
		slog.Int("position", newPos),
	)

	c.flush(code, events)
	return nil
}

// handleTrivia draws an unused question for the player. On exhaustion the
// square is treated as ordinary and the turn advances.
func (c *Controller) handleTrivia(ctx context.Context, session *model.Session, playerID model.PlayerID, events *[]emit) {
	q, err := c.questionService.Next(ctx, session.UsedQuestionIDs)
	if err != nil {
		if !errors.Is(err, model.ErrQuestionsExhausted) {
			c.logger.Error("question draw failed",
				slog.String("code", string(session.Code)),
				slog.String("error", err.Error()),
			)
		}
		c.advanceTurn(session, events)
		return
	}

	if session.UsedQuestionIDs == nil {
		session.UsedQuestionIDs = make(map[model.QuestionID]bool)
	}
	session.UsedQuestionIDs[q.ID] = true
	session.PendingQuestion = &model.PendingQuestion{Question: q, PlayerID: playerID}

	// The turn stays with the answering player until resolved
	*events = append(*events, emit{to: playerID, msg: model.NewTriviaQuestion(q)})
}

// AnswerTrivia resolves the pending question for its owning player.
// Answers are compared trimmed and case-insensitively. A wrong answer moves
// the player back by the configured penalty, clamped to the start square;
// the turn advances either way.
func (c *Controller) AnswerTrivia(ctx context.Context, code model.SessionCode, playerID model.PlayerID, answer string) error {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return err
	}

	if session.State == model.SessionStateFinished {
		return model.ErrGameFinished
	}
	if session.State != model.SessionStateInProgress {
		return model.ErrGameNotStarted
	}
	if session.PendingQuestion == nil {
		return model.ErrNoQuestionPending
	}
	if session.PendingQuestion.PlayerID != playerID {
		return model.ErrNotQuestionOwner
	}

	q := session.PendingQuestion.Question
	session.PendingQuestion = nil

	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
	events := []emit{{to: playerID, msg: model.NewTriviaResult(correct, q.CorrectAnswer)}}

	if !correct && session.Config.WrongAnswerPenalty > 0 {
		newPos := session.Positions[playerID] - session.Config.WrongAnswerPenalty
		if newPos < 0 {
			newPos = 0
		}
		if newPos != session.Positions[playerID] {
			session.Positions[playerID] = newPos
			events = append(events, emit{msg: model.NewPositionsUpdate(session.Positions)})
		}
	}

	if session.Board[session.Positions[playerID]].IsFinish {
		c.handleFinish(session, playerID, &events)
	} else {
		c.advanceTurn(session, &events)
	}

	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}

	c.logger.Debug("trivia answered",
		slog.String("code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("correct", correct),
	)

	c.flush(code, events)
	return nil
}

// handleFinish records a finish-line crossing exactly once per player,
// then either ends the game or passes the turn to the next racer
func (c *Controller) handleFinish(session *model.Session, playerID model.PlayerID, events *[]emit) {
	if session.HasFinished(playerID) {
		c.advanceTurn(session, events)
		return
	}

	session.FinishOrder = append(session.FinishOrder, playerID)
	*events = append(*events, emit{msg: model.NewPlayerWon(playerID, session.FinishOrder)})

	c.logger.Info("player finished",
		slog.String("code", string(session.Code)),
		slog.String("player_id", string(playerID)),
		slog.Int("place", len(session.FinishOrder)),
	)

	if len(session.FinishOrder) == len(session.PlayerOrder) {
		c.endGame(session, events)
		return
	}
	c.advanceTurn(session, events)
}

// advanceTurn passes the turn to the next player in the frozen order that is
// still connected and racing, wrapping around. When nobody is left racing
// the game ends.
func (c *Controller) advanceTurn(session *model.Session, events *[]emit) {
	next := session.NextActiveIndex(session.TurnIndex)
	if next == -1 {
		if session.State == model.SessionStateInProgress {
			c.endGame(session, events)
		}
		return
	}
	session.TurnIndex = next
	*events = append(*events, emit{msg: model.NewCurrentPlayer(session.CurrentPlayer())})
}

// endGame transitions to finished and broadcasts the podium
func (c *Controller) endGame(session *model.Session, events *[]emit) {
	session.State = model.SessionStateFinished

	podium := make([]model.PodiumPlayer, 0, 3)
	for _, id := range session.FinishOrder {
		if len(podium) == 3 {
			break
		}
		entry := model.PodiumPlayer{PlayerID: id}
		if m := session.GetMember(id); m != nil {
			entry.DisplayName = m.DisplayName
			entry.Token = m.Token
		}
		podium = append(podium, entry)
	}
	*events = append(*events, emit{msg: model.NewShowPodium(podium)})

	c.logger.Info("game finished",
		slog.String("code", string(session.Code)),
		slog.Int("finishers", len(session.FinishOrder)),
	)
}

// Disconnect removes a player from the session. The last member leaving
// destroys the session; the returned flag reports that. Removing the player
// holding the turn immediately re-resolves the turn, and a pending question
// owned by the player is discarded.
func (c *Controller) Disconnect(ctx context.Context, code model.SessionCode, playerID model.PlayerID) (destroyed bool, err error) {
	lock := c.lockSession(code)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, code)
	if err != nil {
		return false, err
	}

	idx := -1
	for i, m := range session.Members {
		if m.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, model.ErrNotInSession
	}

	wasCurrentTurn := session.State == model.SessionStateInProgress && session.CurrentPlayer() == playerID
	session.Members = append(session.Members[:idx], session.Members[idx+1:]...)

	if session.PendingQuestion != nil && session.PendingQuestion.PlayerID == playerID {
		session.PendingQuestion = nil
	}

	if len(session.Members) == 0 {
		if err := c.storage.DeleteSession(ctx, code); err != nil {
			return false, err
		}
		c.dropLock(code)
		c.logger.Info("session destroyed", slog.String("code", string(code)))
		return true, nil
	}

	events := []emit{{msg: model.NewLobbyUpdate(session.Members)}}

	if session.State == model.SessionStateInProgress {
		if session.ActiveCount() == 0 {
			c.endGame(session, &events)
		} else if wasCurrentTurn {
			c.advanceTurn(session, &events)
		}
	}

	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return false, err
	}

	c.logger.Info("player disconnected",
		slog.String("code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("member_count", len(session.Members)),
	)

	c.flush(code, events)
	return false, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context, displayName, token string) (*model.Session, *model.Player, error)
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	JoinSession(ctx context.Context, code model.SessionCode, displayName, token string) (*model.Session, *model.Player, error)
	AnnounceLobby(ctx context.Context, code model.SessionCode) error
	StartGame(ctx context.Context, code model.SessionCode, playerID model.PlayerID) error
	RollDice(ctx context.Context, code model.SessionCode, playerID model.PlayerID) error
	AnswerTrivia(ctx context.Context, code model.SessionCode, playerID model.PlayerID, answer string) error
	Disconnect(ctx context.Context, code model.SessionCode, playerID model.PlayerID) (bool, error)
}

var _ ControllerInterface = (*Controller)(nil)
