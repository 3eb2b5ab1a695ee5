/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

// View is what a screen needs to be drawn. Each screen has its own
// concrete type, so a reveal without an eliminated player cannot exist.
type View interface {
	Screen() Screen
}

type Seat struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

type SetupView struct {
	PlayersText    string   `json:"players_text"`
	ImpostorsText  string   `json:"impostors_text"`
	Players        int      `json:"players"`
	Impostors      int      `json:"impostors"`
	Names          []string `json:"names"`
	Placeholders   []string `json:"placeholders"`
	WordsText      string   `json:"words_text"`
	AvailableWords int      `json:"available_words"`
}

// BlankView is the pass-the-device interstitial. Next is nil once every
// player has seen their role.
type BlankView struct {
	Next *Seat `json:"next,omitempty"`
}

// RoleView shows one player their role. Keyword is empty for impostors.
type RoleView struct {
	Player   Seat   `json:"player"`
	Impostor bool   `json:"impostor"`
	Keyword  string `json:"keyword,omitempty"`
}

type VoteView struct {
	Seats    []Seat `json:"seats"`
	Selected *int   `json:"selected,omitempty"`
}

type RevealView struct {
	Eliminated     Seat `json:"eliminated"`
	WasImpostor    bool `json:"was_impostor"`
	AliveImpostors int  `json:"alive_impostors"`
	AliveCrew      int  `json:"alive_crew"`
}

// WinView closes a game and lifts the secrets: who the impostors were and
// what the keyword was.
type WinView struct {
	ImpostorsWon   bool   `json:"impostors_won"`
	AliveImpostors int    `json:"alive_impostors"`
	AliveCrew      int    `json:"alive_crew"`
	Impostors      []Seat `json:"impostors"`
	Keyword        string `json:"keyword"`
}

func (SetupView) Screen() Screen  { return ScreenSetup }
func (BlankView) Screen() Screen  { return ScreenBlank }
func (RoleView) Screen() Screen   { return ScreenRole }
func (VoteView) Screen() Screen   { return ScreenVote }
func (RevealView) Screen() Screen { return ScreenReveal }

func (v WinView) Screen() Screen {
	if v.ImpostorsWon {
		return ScreenWinImpostors
	}

	return ScreenWinCrew
}

func (s Session) seat(i int) Seat {
	seat := Seat{
		Index: i,
		Name:  s.Setup.PlayerName(i),
	}
	if s.Game != nil && i < len(s.Game.Alive) {
		seat.Alive = s.Game.Alive[i]
	}

	return seat
}

// Render returns the view for the current screen.
func Render(s Session) View {
	g := s.Game
	if g == nil {
		return s.setupView()
	}

	switch s.Screen {
	case ScreenBlank:
		if g.Current < g.Players() {
			next := s.seat(g.Current)

			return BlankView{Next: &next}
		}

		return BlankView{}

	case ScreenRole:
		v := RoleView{
			Player:   s.seat(g.Current),
			Impostor: g.IsImpostor(g.Current),
		}
		if !v.Impostor {
			v.Keyword = g.Keyword
		}

		return v

	case ScreenVote:
		v := VoteView{
			Seats: make([]Seat, 0, g.Players()),
		}
		for i := range g.Alive {
			v.Seats = append(v.Seats, s.seat(i))
		}
		if g.Selected != NoPlayer {
			selected := g.Selected
			v.Selected = &selected
		}

		return v

	case ScreenReveal:
		impostors, crew := g.Tally()

		return RevealView{
			Eliminated:     s.seat(g.LastEliminated),
			WasImpostor:    g.IsImpostor(g.LastEliminated),
			AliveImpostors: impostors,
			AliveCrew:      crew,
		}

	case ScreenWinImpostors, ScreenWinCrew:
		impostors, crew := g.Tally()

		v := WinView{
			ImpostorsWon:   s.Screen == ScreenWinImpostors,
			AliveImpostors: impostors,
			AliveCrew:      crew,
			Keyword:        g.Keyword,
		}
		for _, i := range g.Impostors {
			v.Impostors = append(v.Impostors, s.seat(i))
		}

		return v
	}

	return s.setupView()
}

func (s Session) setupView() SetupView {
	placeholders := make([]string, len(s.Setup.Names))
	for i := range placeholders {
		placeholders[i] = DefaultName(i)
	}

	return SetupView{
		PlayersText:    s.Setup.PlayersText,
		ImpostorsText:  s.Setup.ImpostorsText,
		Players:        s.Setup.Players,
		Impostors:      s.Setup.Impostors,
		Names:          append([]string{}, s.Setup.Names...),
		Placeholders:   placeholders,
		WordsText:      s.Setup.WordsText,
		AvailableWords: s.AvailableWords(),
	}
}
