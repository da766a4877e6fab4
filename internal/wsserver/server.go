// internal/wsserver/server.go
//
// HTTP and websocket wiring for the game server.
// Responsibilities:
//   - Router + middleware (JSON, CORS, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Websocket endpoint "/ws": the persistent per-connection game channel.
//   - Solo fallback endpoints: POST /game/new, POST /game/guess (same engine,
//     no websocket required).
//   - Debug endpoints: /debug/rooms (live rooms), /matches (recent results).
//
// Notes:
//   - All game-state authority lives in the coordinator; this package only
//     validates payload shapes, normalizes room codes, and moves bytes.
//   - CORS uses CLIENT_ORIGIN; defaults to allowing any origin for local play.

package wsserver

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/soukhyasn2698/CrackTheSecretCode/internal/coordinator"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/game"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/room"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/store"
	"github.com/soukhyasn2698/CrackTheSecretCode/internal/stream"
)

// Server bundles the router, the session coordinator, and the stores.
type Server struct {
	r       *chi.Mux
	coord   *coordinator.Coordinator
	solo    store.SoloStore
	matches *store.MatchStore

	clients *clientRegistry
}

// Config carries the server's collaborators. Matches and Feed may be nil.
type Config struct {
	Registry     *room.Registry
	Solo         store.SoloStore
	Matches      *store.MatchStore
	Feed         *stream.Feed
	CleanupDelay time.Duration
}

// New constructs a Server, installs middleware, and registers routes. The
// server is the coordinator's Sender: events addressed to a connection id are
// written to that connection's socket.
func New(cfg Config) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		solo:    cfg.Solo,
		matches: cfg.Matches,
		clients: newClientRegistry(),
	}

	var rec coordinator.Recorder
	if cfg.Matches != nil {
		rec = cfg.Matches
	}
	s.coord = coordinator.New(coordinator.Config{
		Registry:     cfg.Registry,
		Sender:       s,
		Recorder:     rec,
		Feed:         cfg.Feed,
		CleanupDelay: cfg.CleanupDelay,
	})

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(corsFromEnv())

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"crack-the-secret-code","endpoints":["/health","/ws","POST /game/new","POST /game/guess"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game channel
	s.r.Get("/ws", s.handleWebsocket)

	// Solo fallback (no websocket needed)
	s.r.With(jsonContentType).Post("/game/new", s.handleNewSolo)
	s.r.With(jsonContentType).Post("/game/guess", s.handleSoloGuess)

	// Debug: live rooms + recent results
	s.r.With(jsonContentType).Get("/debug/rooms", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"rooms": s.coord.Summaries()})
	})
	s.r.With(jsonContentType).Get("/matches", s.handleRecentMatches)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv builds the CORS handler. With CLIENT_ORIGIN set only that
// origin may connect; otherwise any origin is allowed, matching local play
// against a file:// or dev-server client.
func corsFromEnv() func(http.Handler) http.Handler {
	if origin := os.Getenv("CLIENT_ORIGIN"); origin != "" {
		return cors.New(cors.Options{
			AllowedOrigins:   []string{origin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler
	}
	return cors.Default().Handler
}

// ------------------------------ SOLO ---------------------------------------

// newSoloReq/Res payloads for POST /game/new.
type newSoloReq struct {
	Secret string `json:"secret"` // optional fixed secret (testing)
}
type newSoloRes struct {
	GameID      string `json:"gameId"`
	MaxAttempts int    `json:"maxAttempts"`
}

// handleNewSolo creates a new in-memory single-player game.
func (s *Server) handleNewSolo(w http.ResponseWriter, r *http.Request) {
	var req newSoloReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Secret != "" && !game.ValidCode(req.Secret) {
		http.Error(w, `{"error":"secret must be exactly 4 digits"}`, http.StatusBadRequest)
		return
	}

	g := game.NewSolo(req.Secret)
	if err := s.solo.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save solo game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(newSoloRes{GameID: g.ID, MaxAttempts: g.MaxAttempts})
}

// soloGuessReq/Res payloads for POST /game/guess.
type soloGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type soloGuessRes struct {
	Feedback []game.Feedback `json:"feedback"`
	Attempt  int             `json:"attempt"`
	State    string          `json:"state"`            // "playing" | "won" | "lost"
	Secret   string          `json:"secret,omitempty"` // revealed once finished
}

// handleSoloGuess applies a guess to an in-memory solo game and, when the
// game finishes, records the result best-effort.
func (s *Server) handleSoloGuess(w http.ResponseWriter, r *http.Request) {
	var req soloGuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.solo.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	fb, state, err := g.ApplyGuess(req.Guess)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.solo.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	res := soloGuessRes{Feedback: fb, Attempt: g.Attempts(), State: state}
	if g.Finished {
		res.Secret = g.Secret
		if s.matches != nil {
			winner := "host"
			if !g.Won {
				winner = coordinator.WinnerSecret
			}
			if err := s.matches.Record(r.Context(), store.MatchResult{
				RoomCode:     g.ID,
				Mode:         "solo",
				Winner:       winner,
				HostAttempts: g.Attempts(),
			}); err != nil {
				log.Warn().Err(err).Str("game", g.ID).Msg("record solo match")
			}
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// ------------------------------ DEBUG --------------------------------------

// handleRecentMatches returns the latest recorded results, newest first.
func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	if s.matches == nil {
		_ = json.NewEncoder(w).Encode([]store.MatchResult{})
		return
	}
	out, err := s.matches.Recent(r.Context(), 50)
	if err != nil {
		log.Error().Err(err).Msg("read recent matches")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}
