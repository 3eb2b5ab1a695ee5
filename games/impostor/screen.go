/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import "fmt"

// Screen is the view mode the controller is currently in.
type Screen int

const (
	ScreenSetup Screen = iota
	ScreenBlank
	ScreenRole
	ScreenVote
	ScreenReveal
	ScreenWinImpostors
	ScreenWinCrew
)

var screenNames = [...]string{
	ScreenSetup:        "setup",
	ScreenBlank:        "blank",
	ScreenRole:         "role",
	ScreenVote:         "vote",
	ScreenReveal:       "reveal",
	ScreenWinImpostors: "winImpostors",
	ScreenWinCrew:      "winCrew",
}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("Screen(%d)", int(s))
	}

	return screenNames[s]
}

// Terminal reports whether the game has been decided.
func (s Screen) Terminal() bool {
	return s == ScreenWinImpostors || s == ScreenWinCrew
}

func (s Screen) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(screenNames) {
		return nil, fmt.Errorf("unknown screen %d", int(s))
	}

	return []byte(screenNames[s]), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	for i, name := range screenNames {
		if name == string(text) {
			*s = Screen(i)

			return nil
		}
	}

	return fmt.Errorf("unknown screen %q", text)
}
