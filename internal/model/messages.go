package model

// MessageType tags every wire message
type MessageType string

const (
	// Inbound (client -> server)
	MessageCreateGame   MessageType = "createGame"
	MessageJoinGame     MessageType = "joinGame"
	MessageStartGame    MessageType = "startGame"
	MessageRollDice     MessageType = "rollDice"
	MessageAnswerTrivia MessageType = "answerTrivia"

	// Outbound (server -> client)
	MessageGameCreated     MessageType = "gameCreated"
	MessageLobbyUpdate     MessageType = "lobbyUpdate"
	MessageLobbyError      MessageType = "lobbyError"
	MessageGameStarted     MessageType = "gameStarted"
	MessageCurrentPlayer   MessageType = "currentPlayer"
	MessageDiceRolled      MessageType = "diceRolled"
	MessageTriviaQuestion  MessageType = "triviaQuestion"
	MessageTriviaResult    MessageType = "triviaResult"
	MessagePositionsUpdate MessageType = "positionsUpdate"
	MessagePlayerWon       MessageType = "playerWon"
	MessageShowPodium      MessageType = "showPodium"
)

// ClientMessage is the flat inbound envelope. Fields beyond Type are
// populated depending on the message type.
type ClientMessage struct {
	Type     MessageType `json:"type"`
	Username string      `json:"username,omitempty"`
	Token    string      `json:"token,omitempty"`
	GameCode string      `json:"gameCode,omitempty"`
	PlayerID string      `json:"playerId,omitempty"`
	Answer   string      `json:"answer,omitempty"`
}

// ServerMessage is implemented by every outbound message
type ServerMessage interface {
	serverMessage()
}

// GameCreated is sent to the creator with their new session code
type GameCreated struct {
	Type     MessageType `json:"type"`
	GameCode SessionCode `json:"gameCode"`
}

// LobbyUpdate carries the current member list to everyone in the session
type LobbyUpdate struct {
	Type    MessageType `json:"type"`
	Players []Player    `json:"players"`
}

// LobbyError reports a join or lobby failure to the requesting connection
type LobbyError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// GameStarted announces the transition out of the lobby
type GameStarted struct {
	Type             MessageType      `json:"type"`
	Board            Board            `json:"board"`
	InitialPositions map[PlayerID]int `json:"initialPositions"`
	PlayerOrder      []PlayerID       `json:"playerOrder"`
}

// CurrentPlayer announces whose turn it is
type CurrentPlayer struct {
	Type     MessageType `json:"type"`
	PlayerID PlayerID    `json:"playerId"`
}

// DiceRolled broadcasts a roll and the updated positions of all players
type DiceRolled struct {
	Type            MessageType      `json:"type"`
	PlayerID        PlayerID         `json:"playerId"`
	Roll            int              `json:"roll"`
	PlayerPositions map[PlayerID]int `json:"playerPositions"`
}

// TriviaQuestion is sent only to the player who landed on a trivia square.
// The correct answer is never included.
type TriviaQuestion struct {
	Type         MessageType `json:"type"`
	QuestionText string      `json:"questionText"`
	Choices      []string    `json:"choices,omitempty"`
	Image        string      `json:"image,omitempty"`
}

// TriviaResult reports correctness to the answering player
type TriviaResult struct {
	Type          MessageType `json:"type"`
	Correct       bool        `json:"correct"`
	CorrectAnswer string      `json:"correctAnswer"`
}

// PositionsUpdate broadcasts positions after a non-roll movement,
// such as a wrong-answer penalty
type PositionsUpdate struct {
	Type            MessageType      `json:"type"`
	PlayerPositions map[PlayerID]int `json:"playerPositions"`
}

// PlayerWon announces a player crossing the finish line
type PlayerWon struct {
	Type        MessageType `json:"type"`
	WinnerID    PlayerID    `json:"winnerId"`
	FinishOrder []PlayerID  `json:"finishOrder"`
}

// PodiumPlayer is one entry in the final standings
type PodiumPlayer struct {
	PlayerID    PlayerID `json:"playerId"`
	DisplayName string   `json:"username"`
	Token       string   `json:"token"`
}

// ShowPodium broadcasts the final standings when every player has finished
type ShowPodium struct {
	Type          MessageType    `json:"type"`
	PodiumPlayers []PodiumPlayer `json:"podiumPlayers"`
}

func (GameCreated) serverMessage()     {}
func (LobbyUpdate) serverMessage()     {}
func (LobbyError) serverMessage()      {}
func (GameStarted) serverMessage()     {}
func (CurrentPlayer) serverMessage()   {}
func (DiceRolled) serverMessage()      {}
func (TriviaQuestion) serverMessage()  {}
func (TriviaResult) serverMessage()    {}
func (PositionsUpdate) serverMessage() {}
func (PlayerWon) serverMessage()       {}
func (ShowPodium) serverMessage()      {}

// NewGameCreated builds a gameCreated message
func NewGameCreated(code SessionCode) GameCreated {
	return GameCreated{Type: MessageGameCreated, GameCode: code}
}

// NewLobbyUpdate builds a lobbyUpdate message from the current member list
func NewLobbyUpdate(members []Player) LobbyUpdate {
	players := make([]Player, len(members))
	copy(players, members)
	return LobbyUpdate{Type: MessageLobbyUpdate, Players: players}
}

// NewLobbyError builds a lobbyError message
func NewLobbyError(message string) LobbyError {
	return LobbyError{Type: MessageLobbyError, Message: message}
}

// NewGameStarted builds a gameStarted message
func NewGameStarted(board Board, positions map[PlayerID]int, order []PlayerID) GameStarted {
	return GameStarted{
		Type:             MessageGameStarted,
		Board:            board,
		InitialPositions: copyPositions(positions),
		PlayerOrder:      order,
	}
}

// NewCurrentPlayer builds a currentPlayer message
func NewCurrentPlayer(playerID PlayerID) CurrentPlayer {
	return CurrentPlayer{Type: MessageCurrentPlayer, PlayerID: playerID}
}

// NewDiceRolled builds a diceRolled message
func NewDiceRolled(playerID PlayerID, roll int, positions map[PlayerID]int) DiceRolled {
	return DiceRolled{
		Type:            MessageDiceRolled,
		PlayerID:        playerID,
		Roll:            roll,
		PlayerPositions: copyPositions(positions),
	}
}

// NewTriviaQuestion builds a triviaQuestion message from a question,
// omitting the correct answer
func NewTriviaQuestion(q Question) TriviaQuestion {
	return TriviaQuestion{
		Type:         MessageTriviaQuestion,
		QuestionText: q.Text,
		Choices:      q.Choices,
		Image:        q.Image,
	}
}

// NewTriviaResult builds a triviaResult message
func NewTriviaResult(correct bool, correctAnswer string) TriviaResult {
	return TriviaResult{Type: MessageTriviaResult, Correct: correct, CorrectAnswer: correctAnswer}
}

// NewPositionsUpdate builds a positionsUpdate message
func NewPositionsUpdate(positions map[PlayerID]int) PositionsUpdate {
	return PositionsUpdate{Type: MessagePositionsUpdate, PlayerPositions: copyPositions(positions)}
}

// NewPlayerWon builds a playerWon message
func NewPlayerWon(winnerID PlayerID, finishOrder []PlayerID) PlayerWon {
	order := make([]PlayerID, len(finishOrder))
	copy(order, finishOrder)
	return PlayerWon{Type: MessagePlayerWon, WinnerID: winnerID, FinishOrder: order}
}

// NewShowPodium builds a showPodium message
func NewShowPodium(podium []PodiumPlayer) ShowPodium {
	return ShowPodium{Type: MessageShowPodium, PodiumPlayers: podium}
}

// copyPositions snapshots a positions map so the message is immune to
// later session mutations
func copyPositions(positions map[PlayerID]int) map[PlayerID]int {
	out := make(map[PlayerID]int, len(positions))
	for id, pos := range positions {
		out[id] = pos
	}
	return out
}
