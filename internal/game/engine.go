// internal/game/engine.go
//
// Core scoring engine shared by every game mode.
// Responsibilities:
//   - Score guesses against secrets using the two-pass Mastermind algorithm.
//   - Create and drive single-player games (7 guesses against one secret).
//   - Generate random secrets and compact game identifiers.
//
// Notes:
//   - Score is a pure function; callers guarantee both strings are exactly
//     four digits 0–9 (the transport boundary enforces this).
//   - The multiplayer coordinator calls Score directly; Solo wraps it with
//     attempt accounting for the offline/no-opponent mode.

package game

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"math/rand/v2"
	"strings"
)

// Score implements the two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact positional matches as correct and consume both positions.
//
// Pass 2:
//   - For each unconsumed guess digit, scan unconsumed secret positions
//     left to right; the first digit match scores wrong-position and consumes
//     that secret position, otherwise the digit scores not-in-code.
//
// Consuming matched positions keeps repeated digits honest: secret "1123"
// vs guess "1111" scores correct, correct, not-in-code, not-in-code. Both
// 1s in the secret are spent by the exact matches, so the extra 1s in the
// guess earn nothing.
func Score(guess, secret string) []Feedback {
	res := make([]Feedback, CodeLength)
	var usedSecret, usedGuess [CodeLength]bool

	// First pass: exact positions.
	for i := 0; i < CodeLength; i++ {
		if guess[i] == secret[i] {
			res[i] = FeedbackCorrect
			usedSecret[i] = true
			usedGuess[i] = true
		}
	}

	// Second pass: displaced digits.
	for i := 0; i < CodeLength; i++ {
		if usedGuess[i] {
			continue
		}
		res[i] = FeedbackNotInCode
		for j := 0; j < CodeLength; j++ {
			if !usedSecret[j] && guess[i] == secret[j] {
				res[i] = FeedbackWrongPosition
				usedSecret[j] = true
				break
			}
		}
	}
	return res
}

// IsWin reports whether a feedback sequence is a winning one (all correct).
func IsWin(fb []Feedback) bool {
	for _, f := range fb {
		if f != FeedbackCorrect {
			return false
		}
	}
	return true
}

// ValidCode reports whether s is exactly CodeLength ASCII digits.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// RandomSecret returns a uniformly random 4-digit code (leading zeros allowed).
func RandomSecret() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// NewSolo constructs a single-player game.
// If withSecret is empty, a random secret is chosen.
func NewSolo(withSecret string) *Solo {
	secret := withSecret
	if secret == "" {
		secret = RandomSecret()
	}
	return &Solo{
		ID:          randomID(),
		Secret:      secret,
		MaxAttempts: SoloMaxAttempts,
	}
}

// ApplyGuess validates and scores a guess, mutating the game state.
// Returns the per-digit feedback, the new state string
// ("playing"/"won"/"lost"), or an error.
//
// State transitions:
//   - If all digits are correct → Finished = true, Won = true.
//   - Else if the history reaches MaxAttempts → Finished = true (loss).
func (g *Solo) ApplyGuess(guess string) ([]Feedback, string, error) {
	if g.Finished {
		return nil, g.State(), errors.New("game finished")
	}
	guess = strings.TrimSpace(guess)
	if !ValidCode(guess) {
		return nil, g.State(), errors.New("invalid guess")
	}

	fb := Score(guess, g.Secret)
	g.History = append(g.History, GuessRecord{
		Guess:    guess,
		Feedback: fb,
		Attempt:  len(g.History) + 1,
	})

	if IsWin(fb) {
		g.Finished, g.Won = true, true
	} else if len(g.History) >= g.MaxAttempts {
		g.Finished = true
	}
	return fb, g.State(), nil
}

// Attempts reports how many guesses have been consumed.
func (g *Solo) Attempts() int { return len(g.History) }

// State reports a coarse string representation of the current game state.
func (g *Solo) State() string {
	if g.Finished {
		if g.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}
