// internal/store/memory.go
//
// In-memory implementation of the SoloStore interface.
// Holds live single-player games for the HTTP fallback endpoints; these
// sessions are ephemeral by design and lost on restart.
//
// Characteristics:
//   - Stores *game.Solo objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Errors are returned for missing game IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/game"
)

// SoloStore defines the persistence interface for single-player sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type SoloStore interface {
	// Save persists or updates a game state.
	Save(ctx context.Context, g *game.Solo) error

	// Get retrieves a game by ID.
	// Returns an error if the game is not found.
	Get(ctx context.Context, id string) (*game.Solo, error)
}

// memory is an in-memory map-based SoloStore implementation.
type memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Solo // keyed by Solo.ID
}

// NewMemoryStore constructs a new in-memory SoloStore.
func NewMemoryStore() SoloStore {
	return &memory{games: make(map[string]*game.Solo)}
}

// Save adds or updates the game in the map.
func (m *memory) Save(ctx context.Context, g *game.Solo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

// Get looks up a game by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Solo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, errors.New("not found")
}
