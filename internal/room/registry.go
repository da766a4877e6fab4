// internal/room/registry.go
//
// Process-wide mapping from room code to live Room.
// The registry is the single writer of room presence: creation, lookup and
// removal all go through it, and room-code uniqueness is enforced at insert.
// Room content mutation is the Room's own business (see room.go); the
// registry's RWMutex only guards the map itself, so actions on different
// rooms never serialize against each other here.

package room

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrCodeTaken is returned by Create when the room code is already live.
var ErrCodeTaken = errors.New("room code already exists")

// ErrNotFound is returned by Get when no live room has the code.
var ErrNotFound = errors.New("room not found")

// codeCharset and CodeLength define the external room handle format.
const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength  = 6
)

// Registry maps room codes to live rooms, safely under concurrent access.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create inserts a new room keyed by code with hostConn seated as host.
// Fails with ErrCodeTaken if the code is already present; the existing room
// is untouched in that case.
func (reg *Registry) Create(code, hostConn string) (*Room, error) {
	return reg.CreateWith(code, hostConn, nil)
}

// CreateWith is Create with a configure step applied to the new room before
// it becomes reachable through Get or List. Rooms that need non-default
// state (mode, attempt budget, a pre-seeded secret) use this so a racing
// lookup can never observe them half-configured.
func (reg *Registry) CreateWith(code, hostConn string, configure func(*Room)) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; ok {
		return nil, ErrCodeTaken
	}
	r := New(code, hostConn)
	if configure != nil {
		configure(r)
	}
	reg.rooms[code] = r
	return r, nil
}

// Get looks up a live room by code.
func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if r, ok := reg.rooms[code]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

// Remove deletes the room keyed by code. Removing an absent code is a no-op,
// which keeps disconnect handling idempotent.
func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// List returns the live rooms in no particular order.
func (reg *Registry) List() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r)
	}
	return out
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// GenerateCode returns a random 6-character code from [A-Z0-9]. Uniqueness is
// not guaranteed here; Create is the arbiter, and callers that generate codes
// server-side retry on ErrCodeTaken.
func GenerateCode() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeCharset[rand.IntN(len(codeCharset))]
	}
	return string(b)
}
