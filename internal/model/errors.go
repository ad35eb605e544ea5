package model

import "errors"

// Common errors used across the application
var (
	// Session registry errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session is full")
	ErrNameTaken       = errors.New("display name already taken")
	ErrTokenTaken      = errors.New("token already taken")
	ErrNotInSession    = errors.New("player is not in session")

	// State machine errors
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrGameNotStarted      = errors.New("game not started")
	ErrGameFinished        = errors.New("game is finished")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")
	ErrNotPlayerTurn       = errors.New("not this player's turn")
	ErrQuestionPending     = errors.New("a trivia question is pending")
	ErrNoQuestionPending   = errors.New("no trivia question is pending")
	ErrNotQuestionOwner    = errors.New("question belongs to another player")

	// Board generation errors
	ErrInvalidBoardConfig = errors.New("invalid board configuration")

	// Question source errors
	ErrQuestionsExhausted = errors.New("no unused questions remain")
	ErrNoQuestionsLoaded  = errors.New("no questions loaded")
)
