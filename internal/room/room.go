// internal/room/room.go
//
// Authoritative state for one match between two participants.
// Responsibilities:
//   - Hold codes, turn ownership, attempt counts, and guess histories.
//   - Answer role questions (who is host, who is the opponent).
//   - Apply the small local mutations the coordinator asks for: guest join,
//     secret commit, guess append, turn switch, guest promotion.
//
// Locking: a Room is shared by both participants' connections. Callers must
// hold the room's lock (Lock/Unlock) for the whole validate-mutate-snapshot
// sequence of one action. No method here performs I/O.

package room

import (
	"sync"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/game"
)

// Role identifies which seat a participant occupies in a room.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleNone  Role = ""
)

// Opposite returns the other seat.
func (r Role) Opposite() Role {
	if r == RoleHost {
		return RoleGuest
	}
	return RoleHost
}

// VersusMaxAttempts is the per-player guess budget in a two-player match.
const VersusMaxAttempts = 5

// Room is one match's authoritative state, keyed by its code in the Registry.
// All fields are guarded by mu; the zero values of the optional fields
// ("" / nil) mean "absent".
type Room struct {
	mu sync.Mutex

	Code string // immutable after creation

	HostConn  string // connection identifier of the host
	GuestConn string // empty until a guest joins

	HostSecret  string // empty until the host commits a code
	GuestSecret string // empty until the guest commits a code

	HostAttempts  int
	GuestAttempts int
	MaxAttempts   int

	CurrentTurn Role // initially RoleHost
	Started     bool // set exactly once, never reverts
	Ended       bool // terminal; no guesses accepted once set

	HostHistory  []game.GuessRecord
	GuestHistory []game.GuessRecord

	// Solo marks a single-player room: the guest seat holds a server-chosen
	// secret and no connection, and the turn never leaves the host.
	Solo bool
}

// New constructs a Room owned by hostConn with versus defaults.
func New(code, hostConn string) *Room {
	return &Room{
		Code:        code,
		HostConn:    hostConn,
		MaxAttempts: VersusMaxAttempts,
		CurrentTurn: RoleHost,
	}
}

// Lock acquires exclusive access to the room state.
func (r *Room) Lock() { r.mu.Lock() }

// Unlock releases it.
func (r *Room) Unlock() { r.mu.Unlock() }

// RoleOf reports which seat conn occupies, or RoleNone.
func (r *Room) RoleOf(conn string) Role {
	switch {
	case conn != "" && conn == r.HostConn:
		return RoleHost
	case conn != "" && conn == r.GuestConn:
		return RoleGuest
	default:
		return RoleNone
	}
}

// ConnOf returns the connection identifier seated in role ("" if vacant).
func (r *Room) ConnOf(role Role) string {
	if role == RoleHost {
		return r.HostConn
	}
	return r.GuestConn
}

// SecretOf returns the secret committed by role ("" if not yet set).
func (r *Room) SecretOf(role Role) string {
	if role == RoleHost {
		return r.HostSecret
	}
	return r.GuestSecret
}

// AttemptsOf returns the attempt count for role.
func (r *Room) AttemptsOf(role Role) int {
	if role == RoleHost {
		return r.HostAttempts
	}
	return r.GuestAttempts
}

// SetSecret commits a secret for role.
func (r *Room) SetSecret(role Role, secret string) {
	if role == RoleHost {
		r.HostSecret = secret
	} else {
		r.GuestSecret = secret
	}
}

// Ready reports whether the match can run: both secrets committed and the
// guest seat occupied. The first time the condition holds it latches Started;
// Started itself never reverts even if the guest seat later empties.
func (r *Room) Ready() bool {
	ok := r.HostSecret != "" && r.GuestSecret != "" && r.GuestConn != ""
	if r.Solo {
		// The house secret in the guest seat is all a solo room needs.
		ok = r.GuestSecret != ""
	}
	if ok {
		r.Started = true
		return true
	}
	return false
}

// SwitchTurn hands the turn to the other seat. Solo rooms keep the turn on
// the host forever.
func (r *Room) SwitchTurn() {
	if r.Solo {
		return
	}
	r.CurrentTurn = r.CurrentTurn.Opposite()
}

// AddGuess appends a scored guess to role's history and consumes one attempt,
// returning the new attempt count.
func (r *Room) AddGuess(role Role, guess string, fb []game.Feedback) int {
	if role == RoleHost {
		r.HostAttempts++
		r.HostHistory = append(r.HostHistory, game.GuessRecord{Guess: guess, Feedback: fb, Attempt: r.HostAttempts})
		return r.HostAttempts
	}
	r.GuestAttempts++
	r.GuestHistory = append(r.GuestHistory, game.GuessRecord{Guess: guess, Feedback: fb, Attempt: r.GuestAttempts})
	return r.GuestAttempts
}

// PromoteGuest moves the guest into the host seat after the host leaves,
// carrying code, attempts, and history, and clears the guest seat. The match
// itself is preserved; a new guest may join afterwards.
func (r *Room) PromoteGuest() {
	r.HostConn = r.GuestConn
	r.GuestConn = ""
	r.HostSecret = r.GuestSecret
	r.GuestSecret = ""
	r.HostAttempts = r.GuestAttempts
	r.GuestAttempts = 0
	r.HostHistory = r.GuestHistory
	r.GuestHistory = nil
	r.CurrentTurn = RoleHost
}

// ClearGuest empties the guest seat after the guest leaves.
func (r *Room) ClearGuest() {
	r.GuestConn = ""
	r.GuestSecret = ""
	r.GuestAttempts = 0
	r.GuestHistory = nil
}

// Summary is the list-rooms view of a room: presence only, never secrets.
type Summary struct {
	Code    string `json:"code"`
	Host    bool   `json:"host"`
	Guest   bool   `json:"guest"`
	Started bool   `json:"gameStarted"`
}

// Snapshot returns the room's Summary. Callers need not hold the lock; the
// method takes it briefly itself.
func (r *Room) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		Code:    r.Code,
		Host:    r.HostConn != "",
		Guest:   r.GuestConn != "",
		Started: r.Started,
	}
}
