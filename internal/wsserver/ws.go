// internal/wsserver/ws.go
//
// The persistent per-connection game channel.
// Each websocket gets a transient uuid identity and a read loop that decodes
// flat JSON action messages, validates payload shapes at the boundary, and
// hands normalized actions to the coordinator. Outbound events are written
// as {"type": ..., "data": ...} envelopes, serialized per connection.
//
// Boundary validation (rejected before the coordinator sees them):
//   - room codes must match ^[A-Z0-9]{6}$ after uppercasing
//   - secret codes and guesses must match ^\d{4}$

package wsserver

import (
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/coordinator"
)

// Time allowed to write a message to the peer.
const writeWait = 10 * time.Second

// Maximum message size allowed from peer.
const maxMessageSize = 512

var (
	roomCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	digitsRe   = regexp.MustCompile(`^\d{4}$`)
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced by the CORS layer in front; the upgrade
	// itself accepts any origin so file:// clients can play locally.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected player: socket plus a write lock, since the
// coordinator may emit to a connection from another player's read loop.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// envelope is the outbound wire shape.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (c *client) write(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(envelope{Type: event, Data: payload})
}

// clientRegistry maps connection ids to live clients.
type clientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{clients: make(map[string]*client)}
}

func (cr *clientRegistry) add(c *client) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.clients[c.id] = c
}

func (cr *clientRegistry) remove(id string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	delete(cr.clients, id)
}

func (cr *clientRegistry) get(id string) *client {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.clients[id]
}

// Send implements coordinator.Sender. Events addressed to connections that
// are already gone are dropped silently; the disconnect path owns cleanup.
func (s *Server) Send(conn string, event string, payload any) {
	c := s.clients.get(conn)
	if c == nil {
		return
	}
	if err := c.write(event, payload); err != nil {
		log.Debug().Err(err).Str("conn", conn).Str("event", event).Msg("write to client failed")
	}
}

// actionMessage is the inbound wire shape, flat like the events it answers.
type actionMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"roomCode"`
	SecretCode string `json:"secretCode"`
	Guess      string `json:"guess"`
}

// handleWebsocket upgrades the connection, assigns it a transient identity,
// and runs its read loop until the peer goes away. The coordinator is told
// about the disconnect exactly once, whatever ended the loop.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	s.clients.add(c)
	log.Info().Str("conn", c.id).Str("remote", conn.RemoteAddr().String()).Msg("client connected")

	defer func() {
		s.clients.remove(c.id)
		_ = conn.Close()
		s.coord.Disconnect(c.id)
		log.Info().Str("conn", c.id).Msg("client disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		var msg actionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("read error")
			}
			return
		}
		s.dispatch(c.id, msg)
	}
}

// dispatch validates one inbound action and routes it to the coordinator.
func (s *Server) dispatch(connID string, msg actionMessage) {
	// Actions that carry no room code.
	switch msg.Type {
	case "create-solo-room":
		s.coord.CreateSoloRoom(connID)
		return
	case "list-rooms":
		s.coord.ListRooms(connID)
		return
	}

	code := strings.ToUpper(strings.TrimSpace(msg.RoomCode))
	if !roomCodeRe.MatchString(code) {
		s.Send(connID, coordinator.EventRoomError,
			coordinator.RoomError{Message: "Room code must be 6 letters or numbers"})
		return
	}

	switch msg.Type {
	case "create-room":
		s.coord.CreateRoom(connID, code)
	case "join-room":
		s.coord.JoinRoom(connID, code)
	case "set-secret-code":
		if !digitsRe.MatchString(msg.SecretCode) {
			s.Send(connID, coordinator.EventRoomError,
				coordinator.RoomError{Message: "Secret code must be exactly 4 digits"})
			return
		}
		s.coord.SetSecret(connID, code, msg.SecretCode)
	case "submit-guess":
		if !digitsRe.MatchString(msg.Guess) {
			s.Send(connID, coordinator.EventRoomError,
				coordinator.RoomError{Message: "Guess must be exactly 4 digits"})
			return
		}
		s.coord.SubmitGuess(connID, code, msg.Guess)
	case "leave-room":
		s.coord.LeaveRoom(connID, code)
	default:
		log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("unknown action")
	}
}
