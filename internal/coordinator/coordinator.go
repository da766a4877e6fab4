// internal/coordinator/coordinator.go
//
// The multiplayer session coordinator: the protocol state machine between
// participant actions and room state.
// Responsibilities:
//   - Validate each action (create, join, set-code, guess, leave, disconnect)
//     against the registry and the target room.
//   - Mutate room state through the scoring engine and emit the resulting
//     events to the right connections.
//   - Schedule delayed room teardown after a game ends so in-flight events
//     still find the room.
//
// Locking discipline: one room's lock is held for the whole
// validate-mutate-snapshot sequence of one action; outbound events are built
// from that snapshot and sent only after the lock is released. Nothing here
// performs I/O while holding a room lock. Actions on different rooms never
// contend.

package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/game"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/room"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/store"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/stream"
)

// Sender delivers one event to one connection. The transport layer
// implements it; tests substitute a capture.
type Sender interface {
	Send(conn string, event string, payload any)
}

// Recorder persists finished match results. Writes are best effort; errors
// are logged and never affect gameplay.
type Recorder interface {
	Record(ctx context.Context, m store.MatchResult) error
}

// defaultCleanupDelay is how long a finished room stays reachable so
// in-flight event delivery can complete before lookups start failing.
const defaultCleanupDelay = 5 * time.Second

// How many times server-side code generation retries on a collision.
const generateRetries = 10

// Config wires a Coordinator. Registry and Sender are required; Recorder and
// Feed may be nil, and a zero CleanupDelay means the 5-second default.
type Config struct {
	Registry     *room.Registry
	Sender       Sender
	Recorder     Recorder
	Feed         *stream.Feed
	CleanupDelay time.Duration
}

// Coordinator owns no room state itself; it orchestrates the registry, the
// scoring engine, and the outbound event stream.
type Coordinator struct {
	registry     *room.Registry
	sender       Sender
	recorder     Recorder
	feed         *stream.Feed
	cleanupDelay time.Duration
}

// New constructs a Coordinator from cfg.
func New(cfg Config) *Coordinator {
	delay := cfg.CleanupDelay
	if delay == 0 {
		delay = defaultCleanupDelay
	}
	return &Coordinator{
		registry:     cfg.Registry,
		sender:       cfg.Sender,
		recorder:     cfg.Recorder,
		feed:         cfg.Feed,
		cleanupDelay: delay,
	}
}

// outbound is one queued event; actions collect these under the room lock
// and flush them afterwards.
type outbound struct {
	conn    string
	event   string
	payload any
}

func (c *Coordinator) flush(msgs []outbound) {
	for _, m := range msgs {
		if m.conn == "" {
			continue
		}
		c.sender.Send(m.conn, m.event, m.payload)
	}
}

func (c *Coordinator) fail(conn, message string) {
	c.sender.Send(conn, EventRoomError, RoomError{Message: message})
}

// CreateRoom creates a room keyed by code with conn seated as host. The code
// is assumed uppercase-normalized and format-checked by the boundary. On a
// code collision the caller gets room-error and decides whether to retry.
func (c *Coordinator) CreateRoom(conn, code string) {
	if _, err := c.registry.Create(code, conn); err != nil {
		log.Debug().Str("room", code).Msg("room code collision")
		c.fail(conn, "Room code already exists. Please try again.")
		return
	}
	log.Info().Str("room", code).Str("conn", conn).Int("rooms", c.registry.Len()).Msg("room created")
	c.sender.Send(conn, EventRoomCreated, RoomRef{RoomCode: code})
	c.feed.Publish(code, fmt.Sprintf("room %s created", code))
}

// CreateSoloRoom creates a single-player room with a server-held secret and
// a 7-guess budget. The room starts immediately; the caller plays the host
// seat and the guest seat belongs to the house.
func (c *Coordinator) CreateSoloRoom(conn string) {
	var r *room.Room
	var code string
	for i := 0; i < generateRetries; i++ {
		code = room.GenerateCode()
		var err error
		r, err = c.registry.CreateWith(code, conn, func(nr *room.Room) {
			nr.Solo = true
			nr.MaxAttempts = game.SoloMaxAttempts
			nr.GuestSecret = game.RandomSecret()
			nr.Ready()
		})
		if err == nil {
			break
		}
	}
	if r == nil {
		c.fail(conn, "Could not allocate a room code. Please try again.")
		return
	}

	r.Lock()
	state := TurnState{CurrentTurn: r.CurrentTurn}
	r.Unlock()

	log.Info().Str("room", code).Str("conn", conn).Msg("solo room created")
	c.sender.Send(conn, EventRoomCreated, RoomRef{RoomCode: code})
	c.sender.Send(conn, EventGameStart, state)
}

// JoinRoom seats conn as guest in the room keyed by code.
func (c *Coordinator) JoinRoom(conn, code string) {
	r, err := c.registry.Get(code)
	if err != nil {
		c.fail(conn, fmt.Sprintf("Room %s not found", code))
		return
	}

	r.Lock()
	switch {
	case r.RoleOf(conn) == room.RoleHost:
		r.Unlock()
		c.fail(conn, "You cannot join your own room")
		return
	case r.GuestConn != "" || r.Solo:
		r.Unlock()
		c.fail(conn, "Room is full")
		return
	}
	r.GuestConn = conn
	host := r.HostConn
	r.Unlock()

	log.Info().Str("room", code).Str("conn", conn).Msg("guest joined")
	c.flush([]outbound{
		{conn, EventRoomJoined, RoomRef{RoomCode: code}},
		{host, EventPlayerJoined, struct{}{}},
	})
	c.feed.Publish(code, "guest joined")
}

// SetSecret commits conn's 4-digit code in the room. Once both secrets are
// in and the guest seat is occupied, the match starts and both players are
// told whose turn it is.
func (c *Coordinator) SetSecret(conn, code, secret string) {
	r, err := c.registry.Get(code)
	if err != nil {
		c.fail(conn, "Room not found")
		return
	}
	if !game.ValidCode(secret) {
		c.fail(conn, "Secret code must be exactly 4 digits")
		return
	}

	var msgs []outbound
	r.Lock()
	role := r.RoleOf(conn)
	if role == room.RoleNone {
		r.Unlock()
		c.fail(conn, "You are not a player in this room")
		return
	}
	r.SetSecret(role, secret)
	if r.Ready() {
		state := TurnState{
			CurrentTurn:   r.CurrentTurn,
			HostAttempts:  r.HostAttempts,
			GuestAttempts: r.GuestAttempts,
		}
		msgs = append(msgs,
			outbound{r.HostConn, EventGameStart, state},
			outbound{r.GuestConn, EventGameStart, state},
		)
	}
	r.Unlock()

	if len(msgs) > 0 {
		log.Info().Str("room", code).Msg("game started")
		c.feed.Publish(code, "both codes set, game started")
	}
	c.flush(msgs)
}

// SubmitGuess scores conn's guess against the opponent's secret and advances
// the match: win, draw, turn change, or (solo) continued guessing. The guess
// result always goes to both players before any terminal or turn event.
func (c *Coordinator) SubmitGuess(conn, code, guess string) {
	r, err := c.registry.Get(code)
	if err != nil {
		c.fail(conn, "Room not found")
		return
	}
	if !game.ValidCode(guess) {
		c.fail(conn, "Guess must be exactly 4 digits")
		return
	}

	var msgs []outbound
	ended := false
	var result store.MatchResult

	r.Lock()
	active := r.Started && !r.Ended
	if active && !r.Solo {
		// A started room can lose a seat (guest leaves, or the host leaves
		// and the guest is promoted). It is not playable again until a new
		// guest has joined and committed a code.
		active = r.HostSecret != "" && r.GuestSecret != ""
	}
	if !active {
		r.Unlock()
		c.fail(conn, "Game is not active")
		return
	}
	role := r.RoleOf(conn)
	if role == room.RoleNone {
		r.Unlock()
		c.fail(conn, "You are not a player in this room")
		return
	}
	if r.CurrentTurn != role {
		r.Unlock()
		c.sender.Send(conn, EventNotYourTurn, struct{}{})
		return
	}
	if r.AttemptsOf(role) >= r.MaxAttempts {
		// Out of guesses. Hand the turn straight back so the opponent can
		// keep playing until they win or also run out.
		r.SwitchTurn()
		state := TurnState{
			CurrentTurn:   r.CurrentTurn,
			HostAttempts:  r.HostAttempts,
			GuestAttempts: r.GuestAttempts,
		}
		host, guest := r.HostConn, r.GuestConn
		r.Unlock()
		c.flush([]outbound{
			{conn, EventRoomError, RoomError{Message: "No attempts remaining"}},
			{host, EventTurnChange, state},
			{guest, EventTurnChange, state},
		})
		return
	}

	fb := game.Score(guess, r.SecretOf(role.Opposite()))
	attempt := r.AddGuess(role, guess, fb)
	win := game.IsWin(fb)

	host, guest := r.HostConn, r.GuestConn
	resultMsg := GuessResult{Guess: guess, Feedback: fb, Attempt: attempt, Player: role}
	msgs = append(msgs,
		outbound{host, EventGuessResult, resultMsg},
		outbound{guest, EventGuessResult, resultMsg},
	)

	endWith := func(winner string) {
		r.Ended = true
		ended = true
		end := GameEnd{
			Winner:        winner,
			HostAttempts:  r.HostAttempts,
			GuestAttempts: r.GuestAttempts,
			HostCode:      r.HostSecret,
			GuestCode:     r.GuestSecret,
		}
		msgs = append(msgs,
			outbound{host, EventGameEnd, end},
			outbound{guest, EventGameEnd, end},
		)
		mode := "versus"
		if r.Solo {
			mode = "solo"
		}
		result = store.MatchResult{
			RoomCode:      r.Code,
			Mode:          mode,
			Winner:        winner,
			HostAttempts:  r.HostAttempts,
			GuestAttempts: r.GuestAttempts,
		}
	}

	switch {
	case win:
		endWith(string(role))
	case r.Solo && attempt >= r.MaxAttempts:
		endWith(WinnerSecret)
	case r.Solo:
		// keep guessing; no turn to hand over
	case attempt >= r.MaxAttempts && r.AttemptsOf(role.Opposite()) >= r.MaxAttempts:
		endWith(WinnerDraw)
	default:
		// A maxed-out player does not end the game alone; the opponent
		// keeps taking turns until they win or also run out.
		r.SwitchTurn()
		state := TurnState{
			CurrentTurn:   r.CurrentTurn,
			HostAttempts:  r.HostAttempts,
			GuestAttempts: r.GuestAttempts,
		}
		msgs = append(msgs,
			outbound{host, EventTurnChange, state},
			outbound{guest, EventTurnChange, state},
		)
	}
	r.Unlock()

	c.flush(msgs)
	c.feed.Publish(code, fmt.Sprintf("%s guessed %s (attempt %d)", role, guess, attempt))

	if ended {
		log.Info().Str("room", code).Str("winner", result.Winner).Msg("game ended")
		c.feed.Publish(code, "game over: winner "+result.Winner)
		c.record(result)
		c.scheduleCleanup(code)
	}
}

// LeaveRoom removes conn from the room. A departing host with a guest
// present hands the room over rather than destroying the match: the guest is
// promoted to host with code, attempts, and history carried along, and the
// room stays joinable for a new guest.
func (c *Coordinator) LeaveRoom(conn, code string) {
	r, err := c.registry.Get(code)
	if err != nil {
		return
	}

	var msgs []outbound
	removed := false
	r.Lock()
	switch r.RoleOf(conn) {
	case room.RoleHost:
		if r.GuestConn != "" {
			r.PromoteGuest()
			msgs = append(msgs, outbound{r.HostConn, EventPlayerDisconnected, struct{}{}})
			log.Info().Str("room", code).Msg("host left, guest promoted")
		} else {
			removed = true
		}
	case room.RoleGuest:
		r.ClearGuest()
		msgs = append(msgs, outbound{r.HostConn, EventPlayerDisconnected, struct{}{}})
		log.Info().Str("room", code).Msg("guest left")
	default:
		r.Unlock()
		return
	}
	r.Unlock()

	if removed {
		c.registry.Remove(code)
		c.feed.Remove(code)
		log.Info().Str("room", code).Msg("room removed, no players left")
		return
	}
	c.flush(msgs)
	c.feed.Publish(code, "a player left the room")
}

// Disconnect handles the loss of a connection: the first room conn occupied
// is torn down and the remaining participant, if any, is notified. Safe to
// call for connections in no room, and idempotent when the room is already
// gone.
func (c *Coordinator) Disconnect(conn string) {
	for _, r := range c.registry.List() {
		r.Lock()
		role := r.RoleOf(conn)
		if role == room.RoleNone {
			r.Unlock()
			continue
		}
		other := r.ConnOf(role.Opposite())
		code := r.Code
		r.Unlock()

		if other != "" {
			c.sender.Send(other, EventPlayerDisconnected, struct{}{})
		}
		c.registry.Remove(code)
		c.feed.Publish(code, "a player disconnected, room closed")
		c.feed.Remove(code)
		log.Info().Str("room", code).Str("conn", conn).Msg("room removed on disconnect")
		return
	}
}

// ListRooms answers the debug listing: every live room's code, seat
// occupancy, and started flag.
func (c *Coordinator) ListRooms(conn string) {
	rooms := c.registry.List()
	summaries := make([]room.Summary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Snapshot())
	}
	c.sender.Send(conn, EventRoomsList, RoomsList{Rooms: summaries})
}

// Summaries exposes the same view as list-rooms for the HTTP debug route.
func (c *Coordinator) Summaries() []room.Summary {
	rooms := c.registry.List()
	out := make([]room.Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// record persists a finished match, best effort.
func (c *Coordinator) record(m store.MatchResult) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.recorder.Record(ctx, m); err != nil {
		log.Warn().Err(err).Str("room", m.RoomCode).Msg("record match")
	}
}

// scheduleCleanup removes the room after the delivery grace period. Lookups
// racing the timer still see the room until it fires; firing after the room
// is already gone is a no-op.
func (c *Coordinator) scheduleCleanup(code string) {
	time.AfterFunc(c.cleanupDelay, func() {
		c.registry.Remove(code)
		c.feed.Remove(code)
		log.Info().Str("room", code).Msg("room cleaned up after game end")
	})
}
