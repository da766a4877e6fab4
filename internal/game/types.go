// internal/game/types.go
//
// Core type definitions for the code-breaking engine.
// Defines:
//   - Feedback: per-digit result of a guess (correct/wrong-position/not-in-code).
//   - GuessRecord: one scored guess in a player's history.
//   - Solo: state for a single-player game against a server-held secret.

package game

// Feedback represents the evaluation result for a single digit in a guess.
// Possible values:
//   - "correct":        digit is right and in the right position.
//   - "wrong-position": digit exists in the secret but in a different position.
//   - "not-in-code":    digit does not exist in the secret at all.
type Feedback string

const (
	FeedbackCorrect       Feedback = "correct"
	FeedbackWrongPosition          = "wrong-position"
	FeedbackNotInCode              = "not-in-code"
)

// CodeLength is the fixed number of digits in every secret and guess.
const CodeLength = 4

// SoloMaxAttempts is the guess budget for a single-player game.
const SoloMaxAttempts = 7

// GuessRecord is one entry in a player's guess history.
type GuessRecord struct {
	Guess    string     `json:"guess"`
	Feedback []Feedback `json:"feedback"`
	Attempt  int        `json:"attempt"`
}

// Solo holds the state of a single-player game session.
type Solo struct {
	ID          string        // Unique game identifier (random hex string).
	Secret      string        // The server-held 4-digit code.
	MaxAttempts int           // Guess budget (typically 7).
	History     []GuessRecord // Scored guesses so far, in order.
	Finished    bool          // True once the game is over (won or out of attempts).
	Won         bool          // True if the game was finished with a win.
}
