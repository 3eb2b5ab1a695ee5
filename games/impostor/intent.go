/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"errors"
	"fmt"
)

var ErrUnknownIntent = errors.New("unknown intent")

// Intent is a user action submitted by the view.
type Intent interface {
	Kind() string
}

type (
	EditPlayers     struct{ Text string }
	EditImpostors   struct{ Text string }
	BlurPlayers     struct{}
	BlurImpostors   struct{}
	EditWords       struct{ Text string }
	StartGame       struct{}
	ShowRole        struct{}
	HideRole        struct{}
	ResetWords      struct{}
	ResetConfig     struct{}
	SelectCandidate struct{ Index int }
	ConfirmVote     struct{}
	ContinueVoting  struct{}
	NewGame         struct{}
)

// EditName changes the name typed for player Index.
type EditName struct {
	Index int
	Text  string
}

func (EditPlayers) Kind() string     { return "edit_players" }
func (EditImpostors) Kind() string   { return "edit_impostors" }
func (BlurPlayers) Kind() string     { return "blur_players" }
func (BlurImpostors) Kind() string   { return "blur_impostors" }
func (EditName) Kind() string        { return "edit_name" }
func (EditWords) Kind() string       { return "edit_words" }
func (StartGame) Kind() string       { return "start_game" }
func (ShowRole) Kind() string        { return "show_role" }
func (HideRole) Kind() string        { return "hide_role" }
func (ResetWords) Kind() string      { return "reset_words" }
func (ResetConfig) Kind() string     { return "reset_config" }
func (SelectCandidate) Kind() string { return "select" }
func (ConfirmVote) Kind() string     { return "confirm" }
func (ContinueVoting) Kind() string  { return "next_round" }
func (NewGame) Kind() string         { return "new_game" }

// DecodeIntent builds an intent from its wire kind and arguments.
func DecodeIntent(kind, text string, index int) (Intent, error) {
	switch kind {
	case "edit_players":
		return EditPlayers{Text: text}, nil
	case "edit_impostors":
		return EditImpostors{Text: text}, nil
	case "blur_players":
		return BlurPlayers{}, nil
	case "blur_impostors":
		return BlurImpostors{}, nil
	case "edit_name":
		return EditName{Index: index, Text: text}, nil
	case "edit_words":
		return EditWords{Text: text}, nil
	case "start_game":
		return StartGame{}, nil
	case "show_role":
		return ShowRole{}, nil
	case "hide_role":
		return HideRole{}, nil
	case "reset_words":
		return ResetWords{}, nil
	case "reset_config":
		return ResetConfig{}, nil
	case "select":
		return SelectCandidate{Index: index}, nil
	case "confirm":
		return ConfirmVote{}, nil
	case "next_round":
		return ContinueVoting{}, nil
	case "new_game":
		return NewGame{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, kind)
}

// Apply is the single entry point for the view: it routes the intent to
// its transition. Only StartGame can fail, and a failed start leaves the
// session as it was.
func Apply(s Session, in Intent, src Source) (Session, error) {
	switch in := in.(type) {
	case EditPlayers:
		return s.SetPlayersText(in.Text), nil
	case EditImpostors:
		return s.SetImpostorsText(in.Text), nil
	case BlurPlayers:
		return s.CommitPlayers(), nil
	case BlurImpostors:
		return s.CommitImpostors(), nil
	case EditName:
		return s.SetName(in.Index, in.Text), nil
	case EditWords:
		return s.SetWordsText(in.Text), nil
	case StartGame:
		return s.Start(src)
	case ShowRole:
		return s.Advance(), nil
	case HideRole:
		return s.Acknowledge(), nil
	case ResetWords:
		return s.ResetWordPool(), nil
	case ResetConfig:
		return s.RestoreDefaults(), nil
	case SelectCandidate:
		return s.Select(in.Index), nil
	case ConfirmVote:
		return s.Confirm(), nil
	case ContinueVoting:
		return s.NextRound(), nil
	case NewGame:
		return s.Reset(), nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownIntent, in)
}
