package session

import "github.com/quizrace/quizrace/internal/model"

// Dispatcher fans out server messages to the connections of a session.
// Delivery is best-effort: implementations must not fail the caller when a
// single connection cannot be written to.
type Dispatcher interface {
	// Broadcast sends a message to every connected member of the session
	Broadcast(code model.SessionCode, msg model.ServerMessage)

	// Unicast sends a message to a single member of the session
	Unicast(code model.SessionCode, playerID model.PlayerID, msg model.ServerMessage)
}
