// internal/stream/stream.go
//
// Optional per-room event feed backed by Kafka.
// Each room gets its own topic named after the room code; human-readable
// lifecycle lines (created/joined/start/guess/end/disconnect) are published
// to it, and the topic is deleted when the room goes away.
//
// The feed is strictly best effort: a nil *Feed, an unset broker address, or
// a broker that cannot be reached all degrade to no-ops. Gameplay never
// depends on it.

package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Feed publishes room lifecycle messages to per-room Kafka topics.
type Feed struct {
	addr string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// New constructs a Feed for the broker at addr. An empty addr returns nil,
// and every method on a nil Feed is a no-op.
func New(addr string) *Feed {
	if addr == "" {
		return nil
	}
	return &Feed{
		addr:    addr,
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish appends one message line to the room's topic, creating the topic
// and writer on first use. Failures are logged and swallowed.
func (f *Feed) Publish(roomCode, message string) {
	if f == nil {
		return
	}
	w := f.writerFor(roomCode)
	if w == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.WriteMessages(ctx, kafka.Message{Value: []byte(message)}); err != nil {
		log.Warn().Err(err).Str("room", roomCode).Msg("feed publish failed")
	}
}

// Remove tears down the room's writer and deletes its topic.
func (f *Feed) Remove(roomCode string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	w := f.writers[roomCode]
	delete(f.writers, roomCode)
	f.mu.Unlock()
	if w != nil {
		_ = w.Close()
	}

	conn, err := kafka.Dial("tcp", f.addr)
	if err != nil {
		log.Warn().Err(err).Str("topic", roomCode).Msg("feed dial failed, topic not removed")
		return
	}
	defer conn.Close()
	_ = conn.DeleteTopics(roomCode)
}

// Close shuts down all writers. Topics are left in place.
func (f *Feed) Close() {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for code, w := range f.writers {
		_ = w.Close()
		delete(f.writers, code)
	}
}

// writerFor returns (lazily creating) the writer for roomCode. Dialing the
// leader creates the topic when the broker allows auto topic creation.
func (f *Feed) writerFor(roomCode string) *kafka.Writer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.writers[roomCode]; ok {
		return w
	}

	if _, err := kafka.DialLeader(context.Background(), "tcp", f.addr, roomCode, 0); err != nil {
		log.Warn().Err(err).Str("topic", roomCode).Msg("feed topic creation failed")
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(f.addr),
		Topic:        roomCode,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchSize:    1,
	}
	f.writers[roomCode] = w
	return w
}
