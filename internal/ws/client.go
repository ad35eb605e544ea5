package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quizrace/quizrace/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client binds one websocket connection to at most one (session, player)
// pair and routes inbound messages to the session controller
type Client struct {
	handler *Handler
	conn    *websocket.Conn
	send    chan []byte
	logger  *slog.Logger

	// Binding, set once on a successful createGame/joinGame
	code     model.SessionCode
	playerID model.PlayerID
}

func newClient(handler *Handler, conn *websocket.Conn) *Client {
	return &Client{
		handler: handler,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		logger:  handler.logger,
	}
}

// bound reports whether the client has joined a session
func (c *Client) bound() bool {
	return c.code != ""
}

// enqueue queues a message directly for this connection, bypassing the hub.
// Used for replies before the client is bound to a session.
func (c *Client) enqueue(msg model.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal reply failed", slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("reply dropped - send buffer full")
	}
}

// readPump reads inbound messages until the connection closes, then runs
// disconnect handling
func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", slog.String("error", err.Error()))
			}
			return
		}

		var msg model.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// A malformed message never affects other connections; drop it
			c.logger.Warn("malformed message dropped", slog.String("error", err.Error()))
			continue
		}

		c.route(msg)
	}
}

// writePump writes queued messages and keepalive pings until the send
// channel closes or a write fails
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// route dispatches one inbound message. Precondition failures are logged
// and dropped; the sender sees no state change (lobby failures are the
// exception and produce a lobbyError reply).
func (c *Client) route(msg model.ClientMessage) {
	ctx := context.Background()

	switch msg.Type {
	case model.MessageCreateGame:
		c.handleCreateGame(ctx, msg)
	case model.MessageJoinGame:
		c.handleJoinGame(ctx, msg)
	case model.MessageStartGame:
		c.handleStartGame(ctx)
	case model.MessageRollDice:
		c.handleRollDice(ctx, msg)
	case model.MessageAnswerTrivia:
		c.handleAnswerTrivia(ctx, msg)
	default:
		c.logger.Warn("unknown message type", slog.String("type", string(msg.Type)))
	}
}

func (c *Client) handleCreateGame(ctx context.Context, msg model.ClientMessage) {
	if c.bound() {
		c.logger.Warn("createGame on already-bound connection dropped")
		return
	}

	sess, player, err := c.handler.controller.CreateSession(ctx, msg.Username, msg.Token)
	if err != nil {
		c.logger.Error("create session failed", slog.String("error", err.Error()))
		c.enqueue(model.NewLobbyError("Could not create game."))
		return
	}

	c.bind(sess.Code, player.ID)
	c.enqueue(model.NewGameCreated(sess.Code))
	if err := c.handler.controller.AnnounceLobby(ctx, sess.Code); err != nil {
		c.logger.Error("lobby announce failed", slog.String("error", err.Error()))
	}
}

func (c *Client) handleJoinGame(ctx context.Context, msg model.ClientMessage) {
	if c.bound() {
		c.logger.Warn("joinGame on already-bound connection dropped")
		return
	}

	code := model.SessionCode(msg.GameCode)
	sess, player, err := c.handler.controller.JoinSession(ctx, code, msg.Username, msg.Token)
	if err != nil {
		c.enqueue(model.NewLobbyError(joinErrorMessage(err)))
		return
	}

	c.bind(sess.Code, player.ID)
	if err := c.handler.controller.AnnounceLobby(ctx, sess.Code); err != nil {
		c.logger.Error("lobby announce failed", slog.String("error", err.Error()))
	}
}

func (c *Client) handleStartGame(ctx context.Context) {
	if !c.bound() {
		return
	}
	if err := c.handler.controller.StartGame(ctx, c.code, c.playerID); err != nil {
		c.logger.Info("startGame dropped",
			slog.String("session", string(c.code)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Client) handleRollDice(ctx context.Context, msg model.ClientMessage) {
	if !c.bound() || model.PlayerID(msg.PlayerID) != c.playerID {
		return
	}
	if err := c.handler.controller.RollDice(ctx, c.code, c.playerID); err != nil {
		c.logger.Info("rollDice dropped",
			slog.String("session", string(c.code)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Client) handleAnswerTrivia(ctx context.Context, msg model.ClientMessage) {
	if !c.bound() || model.PlayerID(msg.PlayerID) != c.playerID {
		return
	}
	if err := c.handler.controller.AnswerTrivia(ctx, c.code, c.playerID, msg.Answer); err != nil {
		c.logger.Info("answerTrivia dropped",
			slog.String("session", string(c.code)),
			slog.String("error", err.Error()),
		)
	}
}

// bind attaches the connection to its session and registers it with the hub
func (c *Client) bind(code model.SessionCode, playerID model.PlayerID) {
	c.code = code
	c.playerID = playerID
	c.logger = c.logger.With(
		slog.String("session", string(code)),
		slog.String("player_id", string(playerID)),
	)
	c.handler.hubs.GetOrCreateHub(code).Register(c)
}

// disconnect unbinds the connection and removes the player from the session
func (c *Client) disconnect() {
	if !c.bound() {
		return
	}

	if hub := c.handler.hubs.GetHub(c.code); hub != nil {
		hub.Unregister(c)
	}

	destroyed, err := c.handler.controller.Disconnect(context.Background(), c.code, c.playerID)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) && !errors.Is(err, model.ErrNotInSession) {
		c.logger.Error("disconnect handling failed", slog.String("error", err.Error()))
	}
	if destroyed {
		c.handler.hubs.RemoveHub(c.code)
	}
}

// joinErrorMessage maps join rejections to client-facing text
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return "Invalid game code."
	case errors.Is(err, model.ErrSessionFull):
		return "Lobby is full."
	case errors.Is(err, model.ErrNameTaken):
		return "Username already taken."
	case errors.Is(err, model.ErrTokenTaken):
		return "Piece color already taken."
	default:
		return "Could not join game."
	}
}
