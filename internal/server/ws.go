// internal/server/ws.go — WebSocket transport for a game session.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/votecraft/powerplays/internal/auth"
	"github.com/votecraft/powerplays/internal/game"
	"github.com/votecraft/powerplays/internal/models"
)

const (
	writeTimeout   = 5 * time.Second
	sendBufferSize = 64
)

// client is one WebSocket connection. Outbound messages go through the
// send channel so a single writer goroutine owns the connection.
type client struct {
	playerID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	closed   sync.Once
}

func (c *client) close() {
	c.closed.Do(func() { close(c.send) })
}

func (c *client) writeLoop() {
	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			return
		}
	}
}

// gameSession binds a PowerGame to its connected clients and wires the
// game's broadcast callbacks to them.
type gameSession struct {
	g          *game.PowerGame
	humanSeats int
	totalSeats int

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

func newGameSession(g *game.PowerGame, humanSeats, totalSeats int) *gameSession {
	sess := &gameSession{
		g:          g,
		humanSeats: humanSeats,
		totalSeats: totalSeats,
		clients:    make(map[uuid.UUID]*client),
	}
	g.BroadcastFn = sess.broadcast
	g.BroadcastToPlayerFn = sess.broadcastToPlayer
	return sess
}

func marshalEvent(ev game.GameEvent) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.Errorf("Marshal event %s: %v", ev.Type, err)
		return nil, false
	}
	return data, true
}

// broadcast queues an event for every connected client. A client whose
// send buffer is full misses the message; the next state sync catches
// them up.
func (sess *gameSession) broadcast(ev game.GameEvent) {
	data, ok := marshalEvent(ev)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, c := range sess.clients {
		select {
		case c.send <- data:
		default:
			logrus.Warnf("Game %s: dropping %s for slow client %s", sess.g.ID, ev.Type, c.playerID)
		}
	}
}

func (sess *gameSession) broadcastToPlayer(playerID uuid.UUID, ev game.GameEvent) {
	data, ok := marshalEvent(ev)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c, found := sess.clients[playerID]
	if !found {
		return
	}
	select {
	case c.send <- data:
	default:
		logrus.Warnf("Game %s: dropping %s for slow client %s", sess.g.ID, ev.Type, playerID)
	}
}

func (sess *gameSession) addClient(c *client) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if old, found := sess.clients[c.playerID]; found {
		old.close()
	}
	sess.clients[c.playerID] = c
}

func (sess *gameSession) removeClient(c *client) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.clients[c.playerID] == c {
		delete(sess.clients, c.playerID)
	}
}

// handleGameWS upgrades the connection, seats the player and pumps
// their actions into the game until the socket dies.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}
	uid, err := auth.AuthenticateJWT(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed game id")
		return
	}
	sess := s.session(id)
	if sess == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logrus.Warnf("Game %s: websocket accept for %s: %v", id, uid, err)
		return
	}
	user := s.lookupUser(uid)

	cl := &client{playerID: uid, conn: conn, send: make(chan []byte, sendBufferSize)}
	go cl.writeLoop()
	sess.addClient(cl)

	g := sess.g
	g.Mu.Lock()
	if g.Started || g.GameOver {
		g.HandleReconnect(uid, conn)
	} else {
		g.AddPlayer(&models.Player{ID: uid, User: user, Conn: conn, Connected: true})
		if countHumans(g) >= sess.humanSeats {
			g.AddAIPlayers(sess.totalSeats)
			g.Begin()
		}
	}
	g.Mu.Unlock()

	sess.readLoop(cl)
}

func countHumans(g *game.PowerGame) int {
	n := 0
	for _, p := range g.Players {
		if !p.IsAI {
			n++
		}
	}
	return n
}

// readLoop decodes client actions until the connection closes, then
// tears the client down and marks the player disconnected.
func (sess *gameSession) readLoop(cl *client) {
	ctx := context.Background()
	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, cl.conn, &action); err != nil {
			break
		}
		sess.g.Mu.Lock()
		sess.g.HandlePlayerAction(cl.playerID, action)
		sess.g.Mu.Unlock()
	}

	sess.removeClient(cl)
	cl.close()
	cl.conn.Close(websocket.StatusNormalClosure, "")

	sess.g.Mu.Lock()
	sess.g.HandleDisconnect(cl.playerID)
	sess.g.Mu.Unlock()
}
