/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	MinPlayers   = 3
	MaxPlayers   = 20
	MinImpostors = 1
)

var (
	DefaultNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elena"}
	DefaultWords = []string{"Beach", "Mountain", "Forest", "City", "School", "Hospital", "Library", "Restaurant"}
)

// Setup holds the editable configuration shown on the setup screen.
//
// PlayersText and ImpostorsText are kept exactly as typed until the field is
// committed or a game is started. Players and Impostors are the last
// committed values.
type Setup struct {
	PlayersText   string
	ImpostorsText string
	Players       int
	Impostors     int
	Names         []string
	WordsText     string
}

// DefaultSetup returns the fixed configuration used by RestoreDefaults when
// no other defaults were provided.
func DefaultSetup() Setup {
	s, _ := NewSetup(len(DefaultNames), 1, DefaultWords)

	return s
}

// NewSetup builds a committed configuration. Names are taken from
// DefaultNames and padded with blanks when players exceeds their count.
func NewSetup(players, impostors int, words []string) (Setup, error) {
	if players < MinPlayers || players > MaxPlayers {
		return Setup{}, fmt.Errorf("%w: %d (must be between %d-%d inclusive)", ErrInvalidPlayers, players, MinPlayers, MaxPlayers)
	}
	if impostors < MinImpostors || impostors >= players {
		return Setup{}, fmt.Errorf("%w: %d (must be between %d-%d inclusive)", ErrInvalidImpostors, impostors, MinImpostors, players-1)
	}

	text := strings.Join(words, "\n")
	if len(ParseWords(text)) == 0 {
		return Setup{}, ErrEmptyWordPool
	}

	return Setup{
		PlayersText:   strconv.Itoa(players),
		ImpostorsText: strconv.Itoa(impostors),
		Players:       players,
		Impostors:     impostors,
		Names:         resizeNames(DefaultNames, players),
		WordsText:     text,
	}, nil
}

func (s Setup) clone() Setup {
	s.Names = slices.Clone(s.Names)

	return s
}

// Words returns the keyword pool parsed from WordsText.
func (s Setup) Words() []string {
	return ParseWords(s.WordsText)
}

// PlayerName returns the display name at i, falling back to "Player N".
func (s Setup) PlayerName(i int) string {
	if i >= 0 && i < len(s.Names) {
		if name := strings.TrimSpace(s.Names[i]); name != "" {
			return name
		}
	}

	return DefaultName(i)
}

// DefaultName is the positional label for player index i.
func DefaultName(i int) string {
	return "Player " + strconv.Itoa(i+1)
}

// ParseWords splits text on line breaks, trims every entry and drops empty
// lines and repeats.
func ParseWords(text string) []string {
	lines := strings.Split(text, "\n")

	words := make([]string, 0, len(lines))
	for _, line := range lines {
		word := strings.TrimSpace(line)
		if word == "" || slices.Contains(words, word) {
			continue
		}
		words = append(words, word)
	}

	return words
}

// parseCount reads a typed count. Values too large for an int saturate,
// so the callers' clamping still applies.
func parseCount(text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	return n, true
}

func clampPlayers(n int) int {
	return max(MinPlayers, min(MaxPlayers, n))
}

// clampImpostors keeps n within [1, players-1].
func clampImpostors(players, n int) int {
	if n < MinImpostors {
		return MinImpostors
	}
	if n >= players {
		return max(MinImpostors, players-1)
	}

	return n
}

// uiPlayers is the number of name fields shown while the player count is
// still being typed.
func uiPlayers(text string) int {
	n, ok := parseCount(text)
	if !ok {
		return 0
	}

	return max(0, min(MaxPlayers, n))
}

// resizeNames truncates or pads names to n entries without touching the
// names at retained indices.
func resizeNames(names []string, n int) []string {
	if len(names) >= n {
		return slices.Clone(names[:n])
	}

	out := make([]string, n)
	copy(out, names)

	return out
}
