package impostor

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"testing/quick"
)

func newTestSession(t *testing.T, players, impostors int, words ...string) Session {
	t.Helper()

	setup, err := NewSetup(players, impostors, words)
	if err != nil {
		t.Fatalf("NewSetup(%d, %d, %q): %v", players, impostors, words, err)
	}

	return NewSession(setup)
}

func newTestSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// fixedSource replays values in order, wrapping each into [0, n).
type fixedSource struct {
	values []int
	next   int
}

func (f *fixedSource) IntN(n int) int {
	v := f.values[f.next%len(f.values)]
	f.next++

	return v % n
}

func mustStart(t *testing.T, s Session, src Source) Session {
	t.Helper()

	next, err := s.Start(src)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	return next
}

// toVote walks the reveal cycle and returns the session on the vote screen,
// along with the player indexes in the order they were shown.
func toVote(t *testing.T, s Session) (Session, []int) {
	t.Helper()

	var shown []int
	for range MaxPlayers + 1 {
		s = s.Advance()
		if s.Screen == ScreenVote {
			return s, shown
		}
		if s.Screen != ScreenRole {
			t.Fatalf("Advance from blank went to %s", s.Screen)
		}

		shown = append(shown, s.Game.Current)
		s = s.Acknowledge()
	}

	t.Fatal("reveal cycle never reached the vote screen")

	return s, nil
}

func eliminate(s Session, i int) Session {
	return s.Select(i).Confirm()
}

func crewIndexes(g *Game) []int {
	var crew []int
	for i := range g.Alive {
		if !g.IsImpostor(i) {
			crew = append(crew, i)
		}
	}

	return crew
}

func TestStartDealsRoles(t *testing.T) {
	words := []string{"Beach", "Forest", "City"}

	f := func(seed uint64, p, k uint8) bool {
		players := MinPlayers + int(p)%(MaxPlayers-MinPlayers+1)
		impostors := MinImpostors + int(k)%(players-1)

		s := newTestSession(t, players, impostors, words...)
		s, err := s.Start(newTestSource(seed))
		if err != nil {
			t.Errorf("Start(%d players, %d impostors): %v", players, impostors, err)
			return false
		}

		g := s.Game
		if len(g.Impostors) != impostors {
			t.Errorf("got %d impostors, want %d", len(g.Impostors), impostors)
			return false
		}
		for i, idx := range g.Impostors {
			if idx < 0 || idx >= players {
				t.Errorf("impostor index %d out of range [0, %d)", idx, players)
				return false
			}
			if i > 0 && g.Impostors[i-1] == idx {
				t.Errorf("duplicate impostor index %d", idx)
				return false
			}
		}
		if !slices.Contains(words, g.Keyword) {
			t.Errorf("keyword %q not in pool", g.Keyword)
			return false
		}
		if len(g.Alive) != players || slices.Contains(g.Alive, false) {
			t.Errorf("alive = %v, want %d players all alive", g.Alive, players)
			return false
		}

		return s.Screen == ScreenBlank && g.Current == 0 && g.Selected == NoPlayer && g.LastEliminated == NoPlayer
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}

func TestStartErrorsLeaveSessionUnchanged(t *testing.T) {
	tests := []struct {
		name string
		edit func(Session) Session
		want error
	}{
		{"players not a number", func(s Session) Session { return s.SetPlayersText("five") }, ErrInvalidPlayers},
		{"players empty", func(s Session) Session { return s.SetPlayersText("") }, ErrInvalidPlayers},
		{"impostors not a number", func(s Session) Session { return s.SetImpostorsText("x") }, ErrInvalidImpostors},
		{"no words", func(s Session) Session { return s.SetWordsText(" \n \n") }, ErrEmptyWordPool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.edit(newTestSession(t, 5, 1, "Beach"))

			after, err := before.Start(newTestSource(1))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Start error = %v, want %v", err, tt.want)
			}
			if after.Screen != ScreenSetup || after.Game != nil {
				t.Errorf("session moved to %s", after.Screen)
			}
			if after.Setup.PlayersText != before.Setup.PlayersText || after.Setup.ImpostorsText != before.Setup.ImpostorsText {
				t.Errorf("setup text changed")
			}
		})
	}
}

func TestStartNormalizesUncommittedText(t *testing.T) {
	s := newTestSession(t, 5, 1, "Beach").SetPlayersText("30").SetImpostorsText("25")

	s = mustStart(t, s, newTestSource(7))
	if s.Game.Players() != MaxPlayers {
		t.Errorf("players = %d, want %d", s.Game.Players(), MaxPlayers)
	}
	if len(s.Game.Impostors) != MaxPlayers-1 {
		t.Errorf("impostors = %d, want %d", len(s.Game.Impostors), MaxPlayers-1)
	}
	if s.Setup.PlayersText != "20" || s.Setup.ImpostorsText != "19" {
		t.Errorf("texts = %q/%q, want 20/19", s.Setup.PlayersText, s.Setup.ImpostorsText)
	}
	if len(s.Setup.Names) != MaxPlayers {
		t.Errorf("names = %d, want %d", len(s.Setup.Names), MaxPlayers)
	}
}

func TestStartRetriesOnCollision(t *testing.T) {
	src := &fixedSource{values: []int{2, 2, 2, 0, 1}}

	s := mustStart(t, newTestSession(t, 5, 2, "Beach", "Forest"), src)
	if want := []int{0, 2}; !slices.Equal(s.Game.Impostors, want) {
		t.Errorf("impostors = %v, want %v", s.Game.Impostors, want)
	}
	if s.Game.Keyword != "Forest" {
		t.Errorf("keyword = %q, want Forest", s.Game.Keyword)
	}
}

func TestRevealCycleVisitsEveryPlayerInOrder(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		s := mustStart(t, newTestSession(t, players, 1, "Beach"), newTestSource(uint64(players)))

		s, shown := toVote(t, s)

		want := make([]int, players)
		for i := range want {
			want[i] = i
		}
		if !slices.Equal(shown, want) {
			t.Errorf("%d players: shown %v, want %v", players, shown, want)
		}
		if s.Game.Current != players {
			t.Errorf("%d players: cursor = %d, want %d", players, s.Game.Current, players)
		}
	}
}

func TestRoleViewHidesKeywordFromImpostors(t *testing.T) {
	s := mustStart(t, newTestSession(t, 6, 2, "Beach"), newTestSource(3))

	for s.Screen != ScreenVote {
		s = s.Advance()
		if s.Screen != ScreenRole {
			continue
		}

		v, ok := Render(s).(RoleView)
		if !ok {
			t.Fatalf("Render on role screen = %T", Render(s))
		}
		if v.Impostor != s.Game.IsImpostor(s.Game.Current) {
			t.Errorf("player %d: impostor = %v", s.Game.Current, v.Impostor)
		}
		if v.Impostor && v.Keyword != "" {
			t.Errorf("impostor %d sees keyword %q", s.Game.Current, v.Keyword)
		}
		if !v.Impostor && v.Keyword != "Beach" {
			t.Errorf("crew %d sees keyword %q", s.Game.Current, v.Keyword)
		}

		s = s.Acknowledge()
	}
}

func TestAdvanceAndAcknowledgeOutOfPlace(t *testing.T) {
	s := newTestSession(t, 5, 1, "Beach")
	if got := s.Advance(); got.Screen != ScreenSetup {
		t.Errorf("Advance on setup went to %s", got.Screen)
	}

	s = mustStart(t, s, newTestSource(1))
	if got := s.Acknowledge(); got.Game.Current != 0 || got.Screen != ScreenBlank {
		t.Errorf("Acknowledge on blank moved cursor to %d on %s", got.Game.Current, got.Screen)
	}
}

func TestImpostorsWinAtParity(t *testing.T) {
	s := mustStart(t, newTestSession(t, 5, 1, "Beach", "Forest"), newTestSource(11))
	if got := s.AvailableWords(); got != 1 {
		t.Errorf("remaining pool = %d, want 1", got)
	}

	s, _ = toVote(t, s)
	crew := crewIndexes(s.Game)

	s = eliminate(s, crew[0])
	if imp, c := s.Tally(); s.Screen != ScreenReveal || imp != 1 || c != 3 {
		t.Fatalf("after one: %s with %d/%d", s.Screen, imp, c)
	}

	v := Render(s).(RevealView)
	if v.WasImpostor || v.Eliminated.Index != crew[0] || v.AliveImpostors != 1 || v.AliveCrew != 3 {
		t.Errorf("reveal view = %+v", v)
	}

	s = eliminate(s.NextRound(), crew[1])
	if imp, c := s.Tally(); s.Screen != ScreenReveal || imp != 1 || c != 2 {
		t.Fatalf("after two: %s with %d/%d", s.Screen, imp, c)
	}

	s = eliminate(s.NextRound(), crew[2])
	if imp, c := s.Tally(); s.Screen != ScreenWinImpostors || imp != 1 || c != 1 {
		t.Fatalf("after three: %s with %d/%d", s.Screen, imp, c)
	}

	win := Render(s).(WinView)
	if !win.ImpostorsWon || len(win.Impostors) != 1 || win.Impostors[0].Index != s.Game.Impostors[0] {
		t.Errorf("win view = %+v", win)
	}
}

func TestCrewWinsWhenImpostorsAreOut(t *testing.T) {
	s := mustStart(t, newTestSession(t, 5, 1, "Beach", "Forest"), newTestSource(5))
	s, _ = toVote(t, s)

	s = eliminate(s, s.Game.Impostors[0])
	if s.Screen != ScreenWinCrew {
		t.Fatalf("screen = %s, want winCrew", s.Screen)
	}
	if v := Render(s); v.Screen() != ScreenWinCrew {
		t.Errorf("view screen = %s", v.Screen())
	}
}

func TestEliminationIsIdempotent(t *testing.T) {
	s := mustStart(t, newTestSession(t, 7, 1, "Beach"), newTestSource(9))
	s, _ = toVote(t, s)
	crew := crewIndexes(s.Game)

	s = eliminate(s, crew[0]).NextRound()
	s = eliminate(s, crew[1]).NextRound()

	before := s.clone()
	after := eliminate(s, crew[0])

	if !slices.Equal(after.Game.Alive, before.Game.Alive) {
		t.Errorf("alive changed from %v to %v", before.Game.Alive, after.Game.Alive)
	}
	if after.Game.LastEliminated != crew[1] {
		t.Errorf("last eliminated = %d, want %d", after.Game.LastEliminated, crew[1])
	}
	if after.Screen != ScreenVote {
		t.Errorf("screen = %s, want vote", after.Screen)
	}
}

func TestConfirmWithoutSelection(t *testing.T) {
	s := mustStart(t, newTestSession(t, 4, 1, "Beach"), newTestSource(2))
	s, _ = toVote(t, s)

	got := s.Confirm()
	if got.Screen != ScreenVote || slices.Contains(got.Game.Alive, false) {
		t.Errorf("confirm without selection changed the game")
	}

	if got := s.Select(4).Select(-1); got.Game.Selected != NoPlayer {
		t.Errorf("out of range selection recorded as %d", got.Game.Selected)
	}
}

// Which players are voted out does not matter, only how many of each side.
func TestWinDependsOnlyOnCounts(t *testing.T) {
	f := func(seed uint64, order []uint8) bool {
		s := mustStart(t, newTestSession(t, 9, 3, "Beach"), newTestSource(seed))
		s, _ = toVote(t, s)

		for _, o := range order {
			if s.Screen.Terminal() {
				break
			}
			if s.Screen == ScreenReveal {
				s = s.NextRound()
			}

			s = eliminate(s, int(o)%9)

			imp, crew := s.Tally()
			switch {
			case imp == 0:
				if s.Screen != ScreenWinCrew {
					return false
				}
			case imp == crew:
				if s.Screen != ScreenWinImpostors {
					return false
				}
			default:
				if s.Screen != ScreenReveal && s.Screen != ScreenVote {
					return false
				}
			}
		}

		return true
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Error(err)
	}
}

func TestWordPoolDoesNotRepeat(t *testing.T) {
	words := []string{"Beach", "Mountain", "Forest", "City", "School", "Hospital"}

	f := func(seed uint64) bool {
		src := newTestSource(seed)
		s := newTestSession(t, 4, 1, words...)

		var drawn []string
		for range words {
			s = mustStart(t, s, src)
			if slices.Contains(drawn, s.Game.Keyword) {
				t.Errorf("keyword %q drawn twice in %q", s.Game.Keyword, drawn)
				return false
			}
			drawn = append(drawn, s.Game.Keyword)
			s = s.Reset()
		}

		slices.Sort(drawn)
		sorted := slices.Sorted(slices.Values(words))

		return slices.Equal(drawn, sorted)
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 50}); err != nil {
		t.Error(err)
	}
}

func TestResetWordPool(t *testing.T) {
	s := newTestSession(t, 4, 1, "Beach", "Forest", "City")
	s = mustStart(t, s, newTestSource(4)).Reset()
	s = mustStart(t, s, newTestSource(5)).Reset()

	if got := s.AvailableWords(); got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}

	s = s.ResetWordPool()
	if got := s.AvailableWords(); got != 3 {
		t.Errorf("available after reset = %d, want 3", got)
	}
	if !slices.Equal(s.Remaining, []string{"Beach", "Forest", "City"}) {
		t.Errorf("remaining = %q", s.Remaining)
	}
	if s.Screen != ScreenSetup {
		t.Errorf("screen = %s", s.Screen)
	}
}

func TestEditedWordsWaitForLeftoverPool(t *testing.T) {
	src := &fixedSource{values: []int{0}}

	s := newTestSession(t, 3, 1, "Beach", "Forest")
	s = mustStart(t, s, src).Reset().SetWordsText("Cat\nDog")

	if got := s.AvailableWords(); got != 1 {
		t.Fatalf("available = %d, want the 1 leftover word", got)
	}

	next := mustStart(t, s, src)
	if next.Game.Keyword != "Forest" {
		t.Errorf("keyword = %q, want the leftover %q", next.Game.Keyword, "Forest")
	}

	next = mustStart(t, next.Reset(), src)
	if next.Game.Keyword != "Cat" {
		t.Errorf("keyword = %q, want %q from the edited list once the pool ran out", next.Game.Keyword, "Cat")
	}

	s = s.ResetWordPool()
	if !slices.Equal(s.Remaining, []string{"Cat", "Dog"}) {
		t.Errorf("remaining after reset = %q, want the edited list", s.Remaining)
	}
}

func TestResetKeepsConfiguration(t *testing.T) {
	s := newTestSession(t, 4, 1, "Beach", "Forest").SetName(2, "Zoe")
	s = mustStart(t, s, newTestSource(8))
	s, _ = toVote(t, s)

	s = s.Reset()
	if s.Screen != ScreenSetup || s.Game != nil {
		t.Fatalf("reset left %s with game %v", s.Screen, s.Game)
	}
	if s.Setup.Names[2] != "Zoe" || s.Setup.Players != 4 {
		t.Errorf("setup changed: %+v", s.Setup)
	}
	if len(s.Remaining) != 1 {
		t.Errorf("remaining = %q, want one word left", s.Remaining)
	}
}

func TestRestoreDefaults(t *testing.T) {
	s := NewSession(DefaultSetup()).SetPlayersText("9").CommitPlayers().SetWordsText("Moon")
	s = mustStart(t, s, newTestSource(6))

	s = s.RestoreDefaults()
	if s.Screen != ScreenSetup || s.Game != nil || s.Remaining != nil {
		t.Fatalf("restore left %s, game %v, remaining %q", s.Screen, s.Game, s.Remaining)
	}
	if !slices.Equal(s.Setup.Names, DefaultNames) {
		t.Errorf("names = %q", s.Setup.Names)
	}
	if !slices.Equal(s.Setup.Words(), DefaultWords) {
		t.Errorf("words = %q", s.Setup.Words())
	}
	if s.Setup.Players != 5 || s.Setup.Impostors != 1 {
		t.Errorf("counts = %d/%d", s.Setup.Players, s.Setup.Impostors)
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := mustStart(t, newTestSession(t, 5, 1, "Beach"), newTestSource(12))
	s, _ = toVote(t, s)

	target := crewIndexes(s.Game)[0]
	_ = eliminate(s, target)

	if !s.Game.Alive[target] || s.Game.Selected != NoPlayer {
		t.Errorf("eliminating changed the original session")
	}

	setup := newTestSession(t, 5, 1, "Beach")
	_ = setup.SetName(0, "Changed")
	if setup.Setup.Names[0] != "Ana" {
		t.Errorf("SetName changed the original session")
	}
}

func TestSampleDistinct(t *testing.T) {
	f := func(seed uint64, n, k uint8) bool {
		size := int(n%20) + 1
		want := int(k) % (size + 1)

		got := SampleDistinct(newTestSource(seed), size, want)
		if len(got) != want || !slices.IsSorted(got) {
			return false
		}

		return len(slices.Compact(slices.Clone(got))) == want
	}

	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
