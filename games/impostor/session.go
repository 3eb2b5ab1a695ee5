/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// NoPlayer marks an empty selection or elimination slot.
const NoPlayer = -1

var (
	ErrInvalidPlayers   = errors.New("invalid player count")
	ErrInvalidImpostors = errors.New("invalid impostor count")
	ErrEmptyWordPool    = errors.New("keyword pool is empty")
)

// Game is the state of one round of play, from role assignment to a win.
type Game struct {
	Impostors      []int
	Keyword        string
	Current        int
	Alive          []bool
	Selected       int
	LastEliminated int
}

func (g *Game) clone() *Game {
	c := *g
	c.Impostors = slices.Clone(g.Impostors)
	c.Alive = slices.Clone(g.Alive)

	return &c
}

// Players is the number of seats in this game.
func (g *Game) Players() int {
	return len(g.Alive)
}

// IsImpostor reports whether player i was dealt the impostor role.
func (g *Game) IsImpostor(i int) bool {
	_, found := slices.BinarySearch(g.Impostors, i)

	return found
}

// Tally counts the living impostors and crew.
func (g *Game) Tally() (impostors, crew int) {
	for i, alive := range g.Alive {
		switch {
		case !alive:
		case g.IsImpostor(i):
			impostors++
		default:
			crew++
		}
	}

	return impostors, crew
}

// Session is the whole state owned by one facilitator. Every transition is
// a value method that returns the next Session and leaves the receiver
// untouched.
//
// Remaining is the keyword pool still unused in this session. It survives
// Reset so consecutive games draw different words.
type Session struct {
	Defaults  Setup
	Setup     Setup
	Game      *Game
	Remaining []string
	Screen    Screen
}

// NewSession returns a session on the setup screen. defaults is also what
// RestoreDefaults goes back to.
func NewSession(defaults Setup) Session {
	return Session{
		Defaults: defaults.clone(),
		Setup:    defaults.clone(),
		Screen:   ScreenSetup,
	}
}

func (s Session) clone() Session {
	s.Defaults = s.Defaults.clone()
	s.Setup = s.Setup.clone()
	s.Remaining = slices.Clone(s.Remaining)
	if s.Game != nil {
		s.Game = s.Game.clone()
	}

	return s
}

func (s Session) editing() bool {
	return s.Screen == ScreenSetup
}

func (s Session) SetPlayersText(text string) Session {
	if !s.editing() {
		return s
	}

	next := s.clone()
	next.Setup.PlayersText = text
	next.Setup.Names = resizeNames(next.Setup.Names, uiPlayers(text))

	return next
}

func (s Session) SetImpostorsText(text string) Session {
	if !s.editing() {
		return s
	}

	next := s.clone()
	next.Setup.ImpostorsText = text

	return next
}

// CommitPlayers normalizes the player count when its field loses focus.
// Text that is not a number is replaced by the last committed value.
func (s Session) CommitPlayers() Session {
	if !s.editing() {
		return s
	}

	next := s.clone()

	n, ok := parseCount(next.Setup.PlayersText)
	if !ok {
		next.Setup.PlayersText = strconv.Itoa(next.Setup.Players)
		next.Setup.Names = resizeNames(next.Setup.Names, next.Setup.Players)

		return next
	}

	next.Setup = next.Setup.withPlayers(clampPlayers(n))

	return next
}

// CommitImpostors normalizes the impostor count when its field loses focus.
func (s Session) CommitImpostors() Session {
	if !s.editing() {
		return s
	}

	next := s.clone()

	n, ok := parseCount(next.Setup.ImpostorsText)
	if !ok {
		next.Setup.ImpostorsText = strconv.Itoa(next.Setup.Impostors)

		return next
	}

	next.Setup.Impostors = clampImpostors(next.Setup.Players, n)
	next.Setup.ImpostorsText = strconv.Itoa(next.Setup.Impostors)

	return next
}

// withPlayers commits a valid player count, resizing the name list and
// re-clamping the impostor count to fit.
func (s Setup) withPlayers(players int) Setup {
	s.Players = players
	s.PlayersText = strconv.Itoa(players)
	s.Names = resizeNames(s.Names, players)
	s.Impostors = clampImpostors(players, s.Impostors)
	s.ImpostorsText = strconv.Itoa(s.Impostors)

	return s
}

func (s Session) SetName(i int, name string) Session {
	if !s.editing() || i < 0 || i >= len(s.Setup.Names) {
		return s
	}

	next := s.clone()
	next.Setup.Names[i] = name

	return next
}

func (s Session) SetWordsText(text string) Session {
	if !s.editing() {
		return s
	}

	next := s.clone()
	next.Setup.WordsText = text

	return next
}

// pool is the keyword pool the next game draws from.
func (s Session) pool() []string {
	if len(s.Remaining) > 0 {
		return s.Remaining
	}

	return s.Setup.Words()
}

// AvailableWords is the number of keywords the next game can draw from.
func (s Session) AvailableWords() int {
	return len(s.pool())
}

// Start validates the configuration, deals roles and draws the keyword.
// On error the receiver is returned as is.
func (s Session) Start(src Source) (Session, error) {
	if !s.editing() {
		return s, nil
	}

	players, ok := parseCount(s.Setup.PlayersText)
	if !ok {
		return s, fmt.Errorf("%w: %q is not a number", ErrInvalidPlayers, s.Setup.PlayersText)
	}
	players = clampPlayers(players)

	impostors, ok := parseCount(s.Setup.ImpostorsText)
	if !ok {
		return s, fmt.Errorf("%w: %q is not a number", ErrInvalidImpostors, s.Setup.ImpostorsText)
	}
	impostors = clampImpostors(players, impostors)
	if impostors < MinImpostors || impostors >= players {
		return s, fmt.Errorf("%w: %d with %d players", ErrInvalidImpostors, impostors, players)
	}

	pool := s.pool()
	if len(pool) == 0 {
		return s, ErrEmptyWordPool
	}

	next := s.clone()

	next.Setup = next.Setup.withPlayers(players)
	next.Setup.Impostors = impostors
	next.Setup.ImpostorsText = strconv.Itoa(impostors)

	indexes := SampleDistinct(src, players, impostors)

	pick := src.IntN(len(pool))

	alive := make([]bool, players)
	for i := range alive {
		alive[i] = true
	}

	next.Game = &Game{
		Impostors:      indexes,
		Keyword:        pool[pick],
		Alive:          alive,
		Selected:       NoPlayer,
		LastEliminated: NoPlayer,
	}
	next.Remaining = slices.Delete(slices.Clone(pool), pick, pick+1)
	next.Screen = ScreenBlank

	return next, nil
}

// Advance leaves the pass-the-device screen: to the next player's role, or
// to voting once every player has seen theirs.
func (s Session) Advance() Session {
	if s.Screen != ScreenBlank || s.Game == nil {
		return s
	}

	next := s.clone()
	if next.Game.Current < next.Game.Players() {
		next.Screen = ScreenRole
	} else {
		next.Screen = ScreenVote
	}

	return next
}

// Acknowledge hides the current role and moves the cursor to the next player.
func (s Session) Acknowledge() Session {
	if s.Screen != ScreenRole || s.Game == nil {
		return s
	}

	next := s.clone()
	next.Game.Current++
	next.Screen = ScreenBlank

	return next
}

// Select records the voting candidate. Eligibility is checked by Confirm.
func (s Session) Select(i int) Session {
	if s.Screen != ScreenVote || s.Game == nil || i < 0 || i >= s.Game.Players() {
		return s
	}

	next := s.clone()
	next.Game.Selected = i

	return next
}

// Confirm eliminates the selected player and evaluates the win conditions
// against the remaining players. Confirming with nobody selected, or with
// an already eliminated player selected, changes nothing.
//
// Impostors win as soon as they equal the crew in number. That parity rule
// is part of the game and must not become a strict majority.
func (s Session) Confirm() Session {
	if s.Screen != ScreenVote || s.Game == nil {
		return s
	}

	i := s.Game.Selected
	if i == NoPlayer || !s.Game.Alive[i] {
		return s
	}

	next := s.clone()
	next.Game.Alive[i] = false
	next.Game.LastEliminated = i

	impostors, crew := next.Game.Tally()
	switch {
	case impostors == 0:
		next.Screen = ScreenWinCrew
	case impostors == crew:
		next.Screen = ScreenWinImpostors
	default:
		next.Screen = ScreenReveal
	}

	return next
}

// NextRound starts another vote with the same players still alive.
func (s Session) NextRound() Session {
	if s.Screen != ScreenReveal || s.Game == nil {
		return s
	}

	next := s.clone()
	next.Game.Selected = NoPlayer
	next.Screen = ScreenVote

	return next
}

// Tally counts the living impostors and crew of the current game.
func (s Session) Tally() (impostors, crew int) {
	if s.Game == nil {
		return 0, 0
	}

	return s.Game.Tally()
}

// Reset drops the current game and returns to setup. The configuration and
// the session keyword pool are kept.
func (s Session) Reset() Session {
	next := s.clone()
	next.Game = nil
	next.Screen = ScreenSetup

	return next
}

// RestoreDefaults puts the configuration back to its defaults and forgets
// which keywords were already drawn.
func (s Session) RestoreDefaults() Session {
	return NewSession(s.Defaults)
}

// ResetWordPool makes every configured keyword eligible again.
func (s Session) ResetWordPool() Session {
	next := s.clone()
	next.Remaining = next.Setup.Words()

	return next
}
