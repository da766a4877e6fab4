// internal/coordinator/events.go
//
// Outbound protocol vocabulary: event names and payload shapes sent to
// connected players. The wire envelope (how an event reaches a connection)
// belongs to the transport; this package only decides who gets what.

package coordinator

import (
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/game"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/room"
)

// Server → client event names.
const (
	EventRoomCreated        = "room-created"
	EventRoomJoined         = "room-joined"
	EventRoomError          = "room-error"
	EventPlayerJoined       = "player-joined"
	EventGameStart          = "game-start"
	EventGuessResult        = "guess-result"
	EventTurnChange         = "turn-change"
	EventGameEnd            = "game-end"
	EventNotYourTurn        = "not-your-turn"
	EventPlayerDisconnected = "player-disconnected"
	EventRoomsList          = "rooms-list"
)

// Winner values carried by game-end beyond the two roles.
const (
	WinnerDraw   = "draw"   // both players exhausted their attempts
	WinnerSecret = "secret" // solo: the code survived all attempts
)

// RoomRef names a room in room-created / room-joined.
type RoomRef struct {
	RoomCode string `json:"roomCode"`
}

// RoomError carries a human-readable validation failure, delivered only to
// the acting connection.
type RoomError struct {
	Message string `json:"message"`
}

// TurnState is the shared shape of game-start and turn-change.
type TurnState struct {
	CurrentTurn   room.Role `json:"currentTurn"`
	HostAttempts  int       `json:"hostAttempts"`
	GuestAttempts int       `json:"guestAttempts"`
}

// GuessResult reports one scored guess to both players.
type GuessResult struct {
	Guess    string          `json:"guess"`
	Feedback []game.Feedback `json:"feedback"`
	Attempt  int             `json:"attempt"`
	Player   room.Role       `json:"player"`
}

// GameEnd reports the terminal outcome, revealing both codes.
type GameEnd struct {
	Winner        string `json:"winner"`
	HostAttempts  int    `json:"hostAttempts"`
	GuestAttempts int    `json:"guestAttempts"`
	HostCode      string `json:"hostCode"`
	GuestCode     string `json:"guestCode"`
}

// RoomsList answers the list-rooms debug action.
type RoomsList struct {
	Rooms []room.Summary `json:"rooms"`
}
