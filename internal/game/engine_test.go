package game

import (
	"fmt"
	"testing"
)

func feedbackEqual(got []Feedback, want []Feedback) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestScore(t *testing.T) {
	cases := []struct {
		secret, guess string
		want          []Feedback
	}{
		// exact match
		{"1234", "1234", []Feedback{FeedbackCorrect, FeedbackCorrect, FeedbackCorrect, FeedbackCorrect}},
		// fully displaced
		{"1234", "4321", []Feedback{FeedbackWrongPosition, FeedbackWrongPosition, FeedbackWrongPosition, FeedbackWrongPosition}},
		// nothing shared
		{"1234", "5678", []Feedback{FeedbackNotInCode, FeedbackNotInCode, FeedbackNotInCode, FeedbackNotInCode}},
		// repeated digits are not double counted: the two exact 1s consume
		// both 1s in the secret, so the other two guess 1s score not-in-code
		{"1123", "1111", []Feedback{FeedbackCorrect, FeedbackCorrect, FeedbackNotInCode, FeedbackNotInCode}},
		// one exact, one displaced duplicate
		{"1213", "1122", []Feedback{FeedbackCorrect, FeedbackWrongPosition, FeedbackWrongPosition, FeedbackNotInCode}},
		{"0000", "0001", []Feedback{FeedbackCorrect, FeedbackCorrect, FeedbackCorrect, FeedbackNotInCode}},
	}
	for _, c := range cases {
		got := Score(c.guess, c.secret)
		if !feedbackEqual(got, c.want) {
			t.Fatalf("Score(%q, %q) = %v, want %v", c.guess, c.secret, got, c.want)
		}
	}
}

func TestScoreAlwaysFourClassifications(t *testing.T) {
	secrets := []string{"0000", "1234", "1123", "9876", "5055"}
	guesses := []string{"1111", "1234", "4321", "0909", "5505"}
	for _, s := range secrets {
		for _, g := range guesses {
			fb := Score(g, s)
			if len(fb) != CodeLength {
				t.Fatalf("Score(%q, %q) returned %d classifications", g, s, len(fb))
			}
			for i, f := range fb {
				switch f {
				case FeedbackCorrect, FeedbackWrongPosition, FeedbackNotInCode:
				default:
					t.Fatalf("Score(%q, %q)[%d] = %q, not a valid classification", g, s, i, f)
				}
			}
		}
	}
}

func TestScoreSelfGuessWins(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := RandomSecret()
		if !ValidCode(s) {
			t.Fatalf("RandomSecret() = %q, not a 4-digit code", s)
		}
		if !IsWin(Score(s, s)) {
			t.Fatalf("Score(%q, %q) is not a win", s, s)
		}
	}
}

func TestValidCode(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1234", true},
		{"0000", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"12 4", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidCode(c.in); got != c.ok {
			t.Fatalf("ValidCode(%q) = %v, want %v", c.in, got, c.ok)
		}
	}
}

func TestSoloWin(t *testing.T) {
	g := NewSolo("4071")
	fb, state, err := g.ApplyGuess("1234")
	if err != nil {
		t.Fatalf("ApplyGuess: %v", err)
	}
	if state != "playing" || g.Finished {
		t.Fatalf("state = %q after one wrong guess", state)
	}
	if IsWin(fb) {
		t.Fatalf("wrong guess scored as win: %v", fb)
	}

	_, state, err = g.ApplyGuess("4071")
	if err != nil {
		t.Fatalf("ApplyGuess: %v", err)
	}
	if state != "won" || !g.Won || !g.Finished {
		t.Fatalf("state = %q, Won = %v after correct guess", state, g.Won)
	}
	if g.Attempts() != 2 {
		t.Fatalf("Attempts() = %d, want 2", g.Attempts())
	}

	// Terminal: no more guesses accepted.
	if _, _, err := g.ApplyGuess("4071"); err == nil {
		t.Fatalf("ApplyGuess accepted after game finished")
	}
}

func TestSoloExhaustion(t *testing.T) {
	g := NewSolo("1234")
	for i := 0; i < SoloMaxAttempts; i++ {
		_, state, err := g.ApplyGuess("9999")
		if err != nil {
			t.Fatalf("guess %d: %v", i+1, err)
		}
		if i < SoloMaxAttempts-1 && state != "playing" {
			t.Fatalf("guess %d: state = %q, want playing", i+1, state)
		}
	}
	if g.State() != "lost" || g.Won {
		t.Fatalf("state = %q, Won = %v after exhausting attempts", g.State(), g.Won)
	}
	if g.Attempts() != SoloMaxAttempts {
		t.Fatalf("Attempts() = %d, want %d", g.Attempts(), SoloMaxAttempts)
	}
}

func TestSoloRejectsMalformedGuess(t *testing.T) {
	g := NewSolo("1234")
	for _, bad := range []string{"123", "12345", "abcd", ""} {
		if _, _, err := g.ApplyGuess(bad); err == nil {
			t.Fatalf("ApplyGuess(%q) accepted a malformed guess", bad)
		}
	}
	if g.Attempts() != 0 {
		t.Fatalf("malformed guesses consumed attempts: %d", g.Attempts())
	}
}

func TestHistoryRecordsAttemptNumbers(t *testing.T) {
	g := NewSolo("1234")
	for i := 1; i <= 3; i++ {
		guess := fmt.Sprintf("%04d", 5555+i)
		if _, _, err := g.ApplyGuess(guess); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		rec := g.History[len(g.History)-1]
		if rec.Attempt != i || rec.Guess != guess {
			t.Fatalf("history entry %d = %+v", i, rec)
		}
	}
}
