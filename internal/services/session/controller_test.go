package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quizrace/quizrace/internal/dependencies/mocks"
	"github.com/quizrace/quizrace/internal/model"
	"github.com/quizrace/quizrace/internal/services/board"
	"github.com/quizrace/quizrace/internal/services/question"
	"github.com/quizrace/quizrace/internal/storage/memory"
	"github.com/quizrace/quizrace/internal/testutil"
)

// recordingDispatcher captures dispatched messages for assertions
type recordingDispatcher struct {
	events []dispatched
}

type dispatched struct {
	code model.SessionCode
	to   model.PlayerID // empty for broadcasts
	msg  model.ServerMessage
}

func (d *recordingDispatcher) Broadcast(code model.SessionCode, msg model.ServerMessage) {
	d.events = append(d.events, dispatched{code: code, msg: msg})
}

func (d *recordingDispatcher) Unicast(code model.SessionCode, playerID model.PlayerID, msg model.ServerMessage) {
	d.events = append(d.events, dispatched{code: code, to: playerID, msg: msg})
}

func (d *recordingDispatcher) reset() {
	d.events = nil
}

type ControllerSuite struct {
	suite.Suite
	storage         *memory.Storage
	boardService    *board.Service
	questionService *question.Service
	clock           *mocks.MockClock
	random          *mocks.MockRandom
	dispatcher      *recordingDispatcher
	controller      *Controller
	ctx             context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

// Test config: board of 10 squares with trivia on 2 of them. With an empty
// Intn queue the mock random returns 0, so the trivia squares land on
// indices 1 and 2; square 9 is the finish.
func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.boardService = board.New(s.random)
	s.questionService = question.New(s.storage, s.random, testutil.NopLogger())
	s.dispatcher = &recordingDispatcher{}
	s.controller = NewController(
		s.storage,
		s.boardService,
		s.questionService,
		s.clock,
		s.random,
		s.dispatcher,
		model.SessionConfig{
			BoardLength:        10,
			TriviaSquares:      2,
			DiceFaces:          6,
			MaxPlayers:         3,
			MinPlayers:         2,
			WrongAnswerPenalty: 5,
		},
		testutil.NopLogger(),
	)
	s.ctx = context.Background()

	err := s.questionService.LoadQuestions(s.ctx, []model.Question{
		{ID: "q1", Text: "What is the capital of France?", Choices: []string{"Berlin", "Madrid", "Paris", "Rome"}, CorrectAnswer: "Paris"},
		{ID: "q2", Text: "What is 2 + 2?", CorrectAnswer: "4"},
		{ID: "q3", Text: "Which planet is known as the 'Red Planet'?", CorrectAnswer: "Mars"},
	})
	s.Require().NoError(err)
}

// createSession makes a session with the given code and one member
func (s *ControllerSuite) createSession(code, name, token string) (*model.Session, *model.Player) {
	s.random.QueueString(code)
	session, player, err := s.controller.CreateSession(s.ctx, name, token)
	s.Require().NoError(err)
	return session, player
}

// startedPair creates a two-player session and starts the game.
// Returns the code and the two player ids in turn order.
func (s *ControllerSuite) startedPair() (model.SessionCode, model.PlayerID, model.PlayerID) {
	session, alice := s.createSession("RACE42", "alice", "red")
	_, bob, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.StartGame(s.ctx, session.Code, alice.ID))
	s.dispatcher.reset()
	return session.Code, alice.ID, bob.ID
}

// setPosition adjusts a player's stored position directly
func (s *ControllerSuite) setPosition(code model.SessionCode, playerID model.PlayerID, pos int) {
	session, err := s.storage.GetSession(s.ctx, code)
	s.Require().NoError(err)
	session.Positions[playerID] = pos
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))
}

// broadcasts returns all broadcast messages in dispatch order
func (s *ControllerSuite) broadcasts() []model.ServerMessage {
	var out []model.ServerMessage
	for _, e := range s.dispatcher.events {
		if e.to == "" {
			out = append(out, e.msg)
		}
	}
	return out
}

// unicastsTo returns all messages sent to one player in dispatch order
func (s *ControllerSuite) unicastsTo(playerID model.PlayerID) []model.ServerMessage {
	var out []model.ServerMessage
	for _, e := range s.dispatcher.events {
		if e.to == playerID {
			out = append(out, e.msg)
		}
	}
	return out
}

// CreateSession tests

func (s *ControllerSuite) TestCreateSessionSucceeds() {
	session, player := s.createSession("RACE42", "alice", "red")

	s.Equal(model.SessionCode("RACE42"), session.Code)
	s.Equal(model.SessionStateLobby, session.State)
	s.Len(session.Members, 1)
	s.Equal("alice", player.DisplayName)
	s.Equal("red", player.Token)
	s.NotEmpty(player.ID)
	s.Len(session.Board, 10)
	s.True(session.Board[0].IsStart)
	s.True(session.Board[9].IsFinish)
	s.Equal(2, session.Board.TriviaCount())
}

func (s *ControllerSuite) TestCreateSessionRetriesOnCodeCollision() {
	s.createSession("TAKEN1", "alice", "red")

	s.random.QueueString("TAKEN1", "FRESH2")
	session, _, err := s.controller.CreateSession(s.ctx, "bob", "blue")
	s.Require().NoError(err)
	s.Equal(model.SessionCode("FRESH2"), session.Code)
}

func (s *ControllerSuite) TestCreateSessionIsPersisted() {
	session, _ := s.createSession("RACE42", "alice", "red")

	retrieved, err := s.controller.GetSession(s.ctx, session.Code)
	s.Require().NoError(err)
	s.Equal(session.Code, retrieved.Code)
}

// JoinSession tests

func (s *ControllerSuite) TestJoinSessionAppendsInJoinOrder() {
	session, alice := s.createSession("RACE42", "alice", "red")

	updated, bob, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)

	s.Len(updated.Members, 2)
	s.Equal(alice.ID, updated.Members[0].ID)
	s.Equal(bob.ID, updated.Members[1].ID)
	s.NotEqual(alice.ID, bob.ID)
}

func (s *ControllerSuite) TestJoinUnknownCodeFails() {
	_, _, err := s.controller.JoinSession(s.ctx, "NOSUCH", "bob", "blue")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestJoinFullSessionFails() {
	session, _ := s.createSession("RACE42", "alice", "red")
	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	_, _, err = s.controller.JoinSession(s.ctx, session.Code, "carol", "green")
	s.Require().NoError(err)

	_, _, err = s.controller.JoinSession(s.ctx, session.Code, "dave", "yellow")
	s.ErrorIs(err, model.ErrSessionFull)

	updated, _ := s.controller.GetSession(s.ctx, session.Code)
	s.Len(updated.Members, 3)
}

func (s *ControllerSuite) TestJoinNameTakenFails() {
	session, _ := s.createSession("RACE42", "alice", "red")

	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "alice", "blue")
	s.ErrorIs(err, model.ErrNameTaken)

	updated, _ := s.controller.GetSession(s.ctx, session.Code)
	s.Len(updated.Members, 1)
}

func (s *ControllerSuite) TestJoinTokenTakenFails() {
	session, _ := s.createSession("RACE42", "alice", "red")

	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "red")
	s.ErrorIs(err, model.ErrTokenTaken)
}

func (s *ControllerSuite) TestJoinRejectionOrderFullBeforeNameTaken() {
	session, _ := s.createSession("RACE42", "alice", "red")
	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	_, _, err = s.controller.JoinSession(s.ctx, session.Code, "carol", "green")
	s.Require().NoError(err)

	// Duplicate name on a full session reports Full, not NameTaken
	_, _, err = s.controller.JoinSession(s.ctx, session.Code, "alice", "yellow")
	s.ErrorIs(err, model.ErrSessionFull)
}

// AnnounceLobby tests

func (s *ControllerSuite) TestAnnounceLobbyBroadcastsMembers() {
	session, _ := s.createSession("RACE42", "alice", "red")
	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	s.dispatcher.reset()

	s.Require().NoError(s.controller.AnnounceLobby(s.ctx, session.Code))

	msgs := s.broadcasts()
	s.Require().Len(msgs, 1)
	update, ok := msgs[0].(model.LobbyUpdate)
	s.Require().True(ok)
	s.Len(update.Players, 2)
	s.Equal("alice", update.Players[0].DisplayName)
	s.Equal("bob", update.Players[1].DisplayName)
}

// StartGame tests

func (s *ControllerSuite) TestStartGameFreezesOrderAndBroadcasts() {
	session, alice := s.createSession("RACE42", "alice", "red")
	_, bob, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	s.dispatcher.reset()

	s.Require().NoError(s.controller.StartGame(s.ctx, session.Code, alice.ID))

	updated, _ := s.controller.GetSession(s.ctx, session.Code)
	s.Equal(model.SessionStateInProgress, updated.State)
	s.Equal([]model.PlayerID{alice.ID, bob.ID}, updated.PlayerOrder)
	s.Equal(0, updated.TurnIndex)
	s.Equal(0, updated.Positions[alice.ID])
	s.Equal(0, updated.Positions[bob.ID])

	msgs := s.broadcasts()
	s.Require().Len(msgs, 2)

	started, ok := msgs[0].(model.GameStarted)
	s.Require().True(ok)
	s.Len(started.Board, 10)
	s.Len(started.PlayerOrder, 2)
	s.Equal(0, started.InitialPositions[alice.ID])
	s.Equal(0, started.InitialPositions[bob.ID])

	turn, ok := msgs[1].(model.CurrentPlayer)
	s.Require().True(ok)
	s.Equal(alice.ID, turn.PlayerID)
}

func (s *ControllerSuite) TestStartGameFailsWhenAlreadyStarted() {
	code, alice, _ := s.startedPair()

	err := s.controller.StartGame(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
}

func (s *ControllerSuite) TestStartGameFailsForNonMember() {
	session, _ := s.createSession("RACE42", "alice", "red")
	_, _, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)

	err = s.controller.StartGame(s.ctx, session.Code, "stranger")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestStartGameFailsWithTooFewPlayers() {
	session, alice := s.createSession("RACE42", "alice", "red")

	err := s.controller.StartGame(s.ctx, session.Code, alice.ID)
	s.ErrorIs(err, model.ErrInsufficientPlayers)
}

// RollDice tests

func (s *ControllerSuite) TestRollDiceMovesAndAdvancesTurn() {
	code, alice, bob := s.startedPair()

	s.random.QueueIntn(2) // roll 3, lands on an ordinary square
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(3, session.Positions[alice])
	s.Equal(bob, session.CurrentPlayer())

	msgs := s.broadcasts()
	s.Require().Len(msgs, 2)

	rolled, ok := msgs[0].(model.DiceRolled)
	s.Require().True(ok)
	s.Equal(alice, rolled.PlayerID)
	s.Equal(3, rolled.Roll)
	s.Equal(3, rolled.PlayerPositions[alice])
	s.Equal(0, rolled.PlayerPositions[bob])

	turn, ok := msgs[1].(model.CurrentPlayer)
	s.Require().True(ok)
	s.Equal(bob, turn.PlayerID)
}

func (s *ControllerSuite) TestRollDiceFailsOutOfTurn() {
	code, _, bob := s.startedPair()

	err := s.controller.RollDice(s.ctx, code, bob)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
}

func (s *ControllerSuite) TestRollDiceFailsBeforeStart() {
	session, alice := s.createSession("RACE42", "alice", "red")

	err := s.controller.RollDice(s.ctx, session.Code, alice.ID)
	s.ErrorIs(err, model.ErrGameNotStarted)
}

func (s *ControllerSuite) TestRollDiceClampsOvershootToFinish() {
	code, alice, _ := s.startedPair()
	s.setPosition(code, alice, 7)

	s.random.QueueIntn(5) // roll 6 would land on 13; clamps to 9
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(9, session.Positions[alice])
	s.Equal([]model.PlayerID{alice}, session.FinishOrder)
}

func (s *ControllerSuite) TestRollDiceFailsWhileQuestionPending() {
	code, alice, _ := s.startedPair()

	s.random.QueueIntn(0, 0) // roll 1 onto a trivia square; question pick
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	err := s.controller.RollDice(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrQuestionPending)
}

// Trivia tests

func (s *ControllerSuite) TestTriviaQuestionGoesOnlyToRoller() {
	code, alice, bob := s.startedPair()

	s.random.QueueIntn(0, 0) // roll 1 onto trivia square 1; pick q1
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Require().NotNil(session.PendingQuestion)
	s.Equal(alice, session.PendingQuestion.PlayerID)
	s.True(session.UsedQuestionIDs["q1"])
	// Turn stays with the answering player
	s.Equal(alice, session.CurrentPlayer())

	aliceMsgs := s.unicastsTo(alice)
	s.Require().Len(aliceMsgs, 1)
	q, ok := aliceMsgs[0].(model.TriviaQuestion)
	s.Require().True(ok)
	s.Equal("What is the capital of France?", q.QuestionText)
	s.Len(q.Choices, 4)

	s.Empty(s.unicastsTo(bob))
	// No turn change was broadcast
	for _, msg := range s.broadcasts() {
		_, isTurn := msg.(model.CurrentPlayer)
		s.False(isTurn)
	}
}

func (s *ControllerSuite) TestAnswerTriviaCorrectAdvancesTurn() {
	code, alice, bob := s.startedPair()
	s.random.QueueIntn(0, 0)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))
	s.dispatcher.reset()

	// Comparison is trimmed and case-insensitive
	s.Require().NoError(s.controller.AnswerTrivia(s.ctx, code, alice, "  PARIS "))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Nil(session.PendingQuestion)
	s.Equal(1, session.Positions[alice])
	s.Equal(bob, session.CurrentPlayer())

	aliceMsgs := s.unicastsTo(alice)
	s.Require().Len(aliceMsgs, 1)
	result, ok := aliceMsgs[0].(model.TriviaResult)
	s.Require().True(ok)
	s.True(result.Correct)
	s.Equal("Paris", result.CorrectAnswer)

	msgs := s.broadcasts()
	s.Require().Len(msgs, 1)
	turn, ok := msgs[0].(model.CurrentPlayer)
	s.Require().True(ok)
	s.Equal(bob, turn.PlayerID)
}

func (s *ControllerSuite) TestAnswerTriviaWrongAppliesPenalty() {
	code, alice, bob := s.startedPair()
	s.random.QueueIntn(0, 0)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))
	// Move the player up the board so the penalty is not clamped
	s.setPosition(code, alice, 8)
	s.dispatcher.reset()

	s.Require().NoError(s.controller.AnswerTrivia(s.ctx, code, alice, "London"))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(3, session.Positions[alice])
	s.Equal(bob, session.CurrentPlayer())

	result := s.unicastsTo(alice)[0].(model.TriviaResult)
	s.False(result.Correct)
	s.Equal("Paris", result.CorrectAnswer)

	msgs := s.broadcasts()
	s.Require().Len(msgs, 2)
	update, ok := msgs[0].(model.PositionsUpdate)
	s.Require().True(ok)
	s.Equal(3, update.PlayerPositions[alice])
}

func (s *ControllerSuite) TestAnswerTriviaWrongClampsToStart() {
	code, alice, _ := s.startedPair()
	s.random.QueueIntn(0, 0) // lands on square 1
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	s.Require().NoError(s.controller.AnswerTrivia(s.ctx, code, alice, "London"))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(0, session.Positions[alice])
}

func (s *ControllerSuite) TestAnswerTriviaFailsForNonOwner() {
	code, alice, bob := s.startedPair()
	s.random.QueueIntn(0, 0)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	err := s.controller.AnswerTrivia(s.ctx, code, bob, "Paris")
	s.ErrorIs(err, model.ErrNotQuestionOwner)
}

func (s *ControllerSuite) TestAnswerTriviaFailsWithoutPending() {
	code, alice, _ := s.startedPair()

	err := s.controller.AnswerTrivia(s.ctx, code, alice, "Paris")
	s.ErrorIs(err, model.ErrNoQuestionPending)
}

func (s *ControllerSuite) TestTriviaExhaustionSkipsQuestion() {
	err := s.questionService.LoadQuestions(s.ctx, []model.Question{
		{ID: "q1", Text: "What is the capital of France?", CorrectAnswer: "Paris"},
	})
	s.Require().NoError(err)
	code, alice, bob := s.startedPair()

	s.random.QueueIntn(0, 0) // alice rolls onto trivia square 1, draws the only question
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))
	s.Require().NoError(s.controller.AnswerTrivia(s.ctx, code, alice, "Paris"))
	s.dispatcher.reset()

	s.random.QueueIntn(1) // bob rolls onto trivia square 2; no question left
	s.Require().NoError(s.controller.RollDice(s.ctx, code, bob))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Nil(session.PendingQuestion)
	// Treated as an ordinary square: turn passes straight back
	s.Equal(alice, session.CurrentPlayer())
	s.Empty(s.unicastsTo(bob))
}

// Finish and end-game tests

func (s *ControllerSuite) TestExactFinishLandingRecordsWinner() {
	code, alice, bob := s.startedPair()
	s.setPosition(code, alice, 4)

	s.random.QueueIntn(4) // roll 5, exact landing on square 9
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(model.SessionStateInProgress, session.State)
	s.Equal([]model.PlayerID{alice}, session.FinishOrder)
	s.Equal(bob, session.CurrentPlayer())

	msgs := s.broadcasts()
	s.Require().Len(msgs, 3)

	won, ok := msgs[1].(model.PlayerWon)
	s.Require().True(ok)
	s.Equal(alice, won.WinnerID)
	s.Equal([]model.PlayerID{alice}, won.FinishOrder)

	turn := msgs[2].(model.CurrentPlayer)
	s.Equal(bob, turn.PlayerID)
}

func (s *ControllerSuite) TestAllFinishedEndsGameWithPodium() {
	code, alice, bob := s.startedPair()

	s.setPosition(code, alice, 4)
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	s.setPosition(code, bob, 4)
	s.dispatcher.reset()
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, bob))

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(model.SessionStateFinished, session.State)
	s.Equal([]model.PlayerID{alice, bob}, session.FinishOrder)

	msgs := s.broadcasts()
	s.Require().Len(msgs, 3)

	won := msgs[1].(model.PlayerWon)
	s.Equal(bob, won.WinnerID)

	podium, ok := msgs[2].(model.ShowPodium)
	s.Require().True(ok)
	s.Require().Len(podium.PodiumPlayers, 2)
	s.Equal(alice, podium.PodiumPlayers[0].PlayerID)
	s.Equal("alice", podium.PodiumPlayers[0].DisplayName)
	s.Equal(bob, podium.PodiumPlayers[1].PlayerID)
}

func (s *ControllerSuite) TestActionsFailAfterGameFinished() {
	code, alice, bob := s.startedPair()

	s.setPosition(code, alice, 4)
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))
	s.setPosition(code, bob, 4)
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, bob))

	err := s.controller.RollDice(s.ctx, code, alice)
	s.ErrorIs(err, model.ErrGameFinished)

	err = s.controller.AnswerTrivia(s.ctx, code, alice, "anything")
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ControllerSuite) TestTurnRotationSkipsFinishedPlayers() {
	session, alice := s.createSession("RACE42", "alice", "red")
	_, bob, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	_, carol, err := s.controller.JoinSession(s.ctx, session.Code, "carol", "green")
	s.Require().NoError(err)
	s.Require().NoError(s.controller.StartGame(s.ctx, session.Code, alice.ID))
	code := session.Code

	// alice finishes on her first roll
	s.setPosition(code, alice.ID, 4)
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice.ID))

	// bob then carol roll onto ordinary squares; rotation skips alice
	s.random.QueueIntn(2)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, bob.ID))
	s.random.QueueIntn(2)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, carol.ID))

	updated, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(bob.ID, updated.CurrentPlayer())
}

// Disconnect tests

func (s *ControllerSuite) TestDisconnectLastMemberDestroysSession() {
	session, alice := s.createSession("RACE42", "alice", "red")

	destroyed, err := s.controller.Disconnect(s.ctx, session.Code, alice.ID)
	s.Require().NoError(err)
	s.True(destroyed)

	_, err = s.controller.GetSession(s.ctx, session.Code)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestDisconnectBroadcastsLobbyUpdate() {
	session, _ := s.createSession("RACE42", "alice", "red")
	_, bob, err := s.controller.JoinSession(s.ctx, session.Code, "bob", "blue")
	s.Require().NoError(err)
	s.dispatcher.reset()

	destroyed, err := s.controller.Disconnect(s.ctx, session.Code, bob.ID)
	s.Require().NoError(err)
	s.False(destroyed)

	msgs := s.broadcasts()
	s.Require().Len(msgs, 1)
	update := msgs[0].(model.LobbyUpdate)
	s.Require().Len(update.Players, 1)
	s.Equal("alice", update.Players[0].DisplayName)
}

func (s *ControllerSuite) TestDisconnectFailsForNonMember() {
	session, _ := s.createSession("RACE42", "alice", "red")

	_, err := s.controller.Disconnect(s.ctx, session.Code, "stranger")
	s.ErrorIs(err, model.ErrNotInSession)
}

func (s *ControllerSuite) TestDisconnectCurrentTurnPlayerAdvancesTurn() {
	code, alice, bob := s.startedPair()

	destroyed, err := s.controller.Disconnect(s.ctx, code, alice)
	s.Require().NoError(err)
	s.False(destroyed)

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(bob, session.CurrentPlayer())
	s.Nil(session.GetMember(alice))

	var sawTurn bool
	for _, msg := range s.broadcasts() {
		if turn, ok := msg.(model.CurrentPlayer); ok {
			sawTurn = true
			s.Equal(bob, turn.PlayerID)
		}
	}
	s.True(sawTurn)
}

func (s *ControllerSuite) TestDisconnectClearsOwnedPendingQuestion() {
	code, alice, _ := s.startedPair()
	s.random.QueueIntn(0, 0)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))

	_, err := s.controller.Disconnect(s.ctx, code, alice)
	s.Require().NoError(err)

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Nil(session.PendingQuestion)
}

func (s *ControllerSuite) TestDisconnectLastRacerEndsGame() {
	code, alice, bob := s.startedPair()

	s.setPosition(code, alice, 4)
	s.random.QueueIntn(4)
	s.Require().NoError(s.controller.RollDice(s.ctx, code, alice))
	s.dispatcher.reset()

	// bob leaves; alice already finished, so nobody is racing
	destroyed, err := s.controller.Disconnect(s.ctx, code, bob)
	s.Require().NoError(err)
	s.False(destroyed)

	session, _ := s.controller.GetSession(s.ctx, code)
	s.Equal(model.SessionStateFinished, session.State)

	var sawPodium bool
	for _, msg := range s.broadcasts() {
		if _, ok := msg.(model.ShowPodium); ok {
			sawPodium = true
		}
	}
	s.True(sawPodium)
}
