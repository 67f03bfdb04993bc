package session

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

func row(name, typeLine string, deficit int) wishlist.Row {
	return wishlist.Row{
		Identity: cards.IdentityOf(name),
		Name:     name,
		TypeLine: typeLine,
		Required: max(deficit, 1),
		Deficit:  deficit,
	}
}

func testData() Data {
	bolt := row("Bolt", "Instant", 1)
	shock := row("Shock", "Instant", 0)
	wraith := row("Bog Wraith", "Creature — Wraith", 2)
	return Data{
		Catalog:  []wishlist.Row{bolt, shock, wraith},
		Wishlist: []wishlist.Row{wraith, bolt},
		Stats:    []wishlist.Progress{{Label: "Top 20", Owned: 1, Total: 4}},
	}
}

// bigData returns n catalog rows named "Card 000".."Card n-1".
func bigData(n int) Data {
	var d Data
	for i := range n {
		r := row(fmt.Sprintf("Card %03d", i), "Instant", i%3)
		d.Catalog = append(d.Catalog, r)
		if r.Deficit > 0 {
			d.Wishlist = append(d.Wishlist, r)
		}
	}
	return d
}

func apply(t *testing.T, s State, cmds ...Command) State {
	t.Helper()
	for _, c := range cmds {
		s, _ = Apply(s, c)
	}
	return s
}

func typeQuery(s State, q string) State {
	for _, r := range q {
		s, _ = Apply(s, Insert(r))
	}
	return s
}

func names(s State) []string {
	var out []string
	rows := s.data.rows(s.dataset)
	for _, idx := range s.visible {
		out = append(out, rows[idx].Name)
	}
	return out
}

func currentName(s State) string {
	r, _ := s.Current()
	return r.Name
}

func TestNew(t *testing.T) {
	s := New(testData(), Options{})
	assert.Equal(t, Browsing, s.Mode())
	assert.Equal(t, FullCatalog, s.Dataset())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Dirty())
	assert.False(t, s.Clean().Dirty())

	empty := New(Data{}, Options{})
	assert.Equal(t, -1, empty.Cursor())
	assert.Equal(t, 0, empty.Len())
}

func TestSearchScenario(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdMoveDown)) // Shock
	require.Equal(t, "Shock", currentName(s))

	s = apply(t, s, Cmd(CmdEnterSearch))
	assert.Equal(t, Searching, s.Mode())
	assert.Equal(t, 3, s.Len(), "list unchanged until the query is edited")

	s = typeQuery(s, "bo")
	assert.Equal(t, []string{"Bolt", "Bog Wraith"}, names(s))
	assert.Equal(t, 0, s.Cursor(), "cursor resets when its card no longer matches")
	assert.Equal(t, "bo", s.Query())

	s = apply(t, s, Cmd(CmdCancelSearch))
	assert.Equal(t, Browsing, s.Mode())
	assert.Equal(t, []string{"Bolt", "Shock", "Bog Wraith"}, names(s))
	assert.Equal(t, "Shock", currentName(s))
	assert.Equal(t, "", s.Filter())
}

func TestCommitSearchIsSticky(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdJumpBottom), Cmd(CmdEnterSearch)) // Bog Wraith
	s = typeQuery(s, "BO")
	assert.Equal(t, "Bog Wraith", currentName(s), "cursor follows its card")

	s = apply(t, s, Cmd(CmdCommitSearch))
	assert.Equal(t, Browsing, s.Mode())
	assert.Equal(t, "BO", s.Filter())
	assert.Equal(t, []string{"Bolt", "Bog Wraith"}, names(s))

	// A new search that is cancelled restores the sticky filter.
	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "x")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, -1, s.Cursor())
	s = apply(t, s, Cmd(CmdCancelSearch))
	assert.Equal(t, "BO", s.Filter())
	assert.Equal(t, "Bog Wraith", currentName(s))

	// Committing without editing keeps the filter.
	s = apply(t, s, Cmd(CmdEnterSearch), Cmd(CmdCommitSearch))
	assert.Equal(t, "BO", s.Filter())
}

func TestSearchEditing(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdEnterSearch))

	same, eff := Apply(s, Cmd(CmdDeleteChar))
	assert.Equal(t, s, same, "deleting from an empty query is a no-op")
	assert.Equal(t, EffectNone, eff.Kind)

	s = typeQuery(s, "wraithé")
	assert.Equal(t, 0, s.Len())
	s = apply(t, s, Cmd(CmdDeleteChar))
	assert.Equal(t, "wraith", s.Query())
	assert.Equal(t, []string{"Bog Wraith"}, names(s))

	// Matching covers the type line too.
	s = apply(t, s, Cmd(CmdCancelSearch), Cmd(CmdEnterSearch))
	s = typeQuery(s, "instant")
	assert.Equal(t, []string{"Bolt", "Shock"}, names(s))

	// Navigation keys are not commands while searching.
	moved, _ := Apply(s, Cmd(CmdMoveDown))
	assert.Equal(t, s, moved)
}

func TestSearchIgnoresAccents(t *testing.T) {
	d := Data{Catalog: []wishlist.Row{row("Lórien Revealed", "Sorcery", 1), row("Shock", "Instant", 1)}}
	s := apply(t, New(d, Options{}), Cmd(CmdEnterSearch))
	s = typeQuery(s, "lorien")
	assert.Equal(t, []string{"Lórien Revealed"}, names(s))
}

func TestMalformedPatternFallsBackToLiteral(t *testing.T) {
	d := Data{Catalog: []wishlist.Row{
		row("Kaya's Guile", "Instant", 1),
		row("Fire // Ice", "Instant", 1),
		row("Ash [Promo]", "Instant", 1),
	}}
	s := apply(t, New(d, Options{}), Cmd(CmdEnterSearch))

	s = typeQuery(s, "[promo")
	assert.Equal(t, []string{"Ash [Promo]"}, names(s))

	s = apply(t, s, Cmd(CmdCancelSearch), Cmd(CmdEnterSearch))
	s = typeQuery(s, "^fire.*ice$")
	assert.Equal(t, []string{"Fire // Ice"}, names(s))
}

func TestBoundaryNavigation(t *testing.T) {
	s := New(testData(), Options{})

	up, eff := Apply(s, Cmd(CmdMoveUp))
	assert.Equal(t, s, up)
	assert.Equal(t, EffectNone, eff.Kind)

	s = apply(t, s, Cmd(CmdJumpBottom))
	assert.Equal(t, 2, s.Cursor())
	down, _ := Apply(s, Cmd(CmdMoveDown))
	assert.Equal(t, s, down)

	s = apply(t, s, Cmd(CmdJumpTop))
	assert.Equal(t, 0, s.Cursor())

	empty := New(Data{}, Options{})
	for _, k := range []Kind{CmdMoveDown, CmdMoveUp, CmdJumpTop, CmdJumpBottom, CmdPageDown, CmdPageUp, CmdSelect, CmdShowCard} {
		next, eff := Apply(empty, Cmd(k))
		assert.Equal(t, empty, next, k.String())
		assert.Equal(t, EffectNone, eff.Kind, k.String())
	}
}

func TestPagingAndScroll(t *testing.T) {
	s := New(bigData(50), Options{Height: 10})

	s = apply(t, s, Cmd(CmdPageDown))
	assert.Equal(t, 10, s.Cursor())
	assert.Equal(t, 1, s.Scroll())

	s = apply(t, s, Cmd(CmdJumpBottom))
	assert.Equal(t, 49, s.Cursor())
	assert.Equal(t, 40, s.Scroll())

	s = apply(t, s, Cmd(CmdPageDown))
	assert.Equal(t, 49, s.Cursor())

	s = apply(t, s, Cmd(CmdPageUp), Cmd(CmdPageUp))
	assert.Equal(t, 29, s.Cursor())
	assert.Equal(t, 29, s.Scroll())

	s = apply(t, s, Resize(5))
	assert.Equal(t, 29, s.Scroll())
	s = apply(t, s, Cmd(CmdJumpBottom), Resize(20))
	assert.Equal(t, 30, s.Scroll())

	vm := s.View()
	assert.Len(t, vm.Rows, 20)
	assert.Equal(t, 30, vm.Rows[0].Index)
	assert.True(t, vm.Rows[19].Selected)

	same, _ := Apply(s, Resize(0))
	assert.Equal(t, s, same)
}

func TestSwitchDataset(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdJumpBottom))

	s = apply(t, s, Cmd(CmdSwitchDataset))
	assert.Equal(t, Wishlist, s.Dataset())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, []string{"Bog Wraith", "Bolt"}, names(s))

	s = apply(t, s, Cmd(CmdSwitchDataset))
	assert.Equal(t, FullCatalog, s.Dataset())

	// A filter that still matches survives the switch.
	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "bolt")
	s = apply(t, s, Cmd(CmdCommitSearch), Cmd(CmdSwitchDataset))
	assert.Equal(t, "bolt", s.Filter())
	assert.Equal(t, []string{"Bolt"}, names(s))
	s = apply(t, s, Cmd(CmdSwitchDataset))

	// One that matches nothing is cleared with a message.
	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "shock")
	s = apply(t, s, Cmd(CmdCommitSearch), Cmd(CmdSwitchDataset))
	assert.Equal(t, "", s.Filter())
	assert.Equal(t, []string{"Bog Wraith", "Bolt"}, names(s))
	assert.Contains(t, s.Status(), "cleared")
}

func TestSelectConfirm(t *testing.T) {
	s := New(testData(), Options{DefaultAction: ActionAddCopy})
	s = apply(t, s, Cmd(CmdMoveDown), Cmd(CmdSelect))
	assert.Equal(t, ConfirmingAction, s.Mode())
	assert.Equal(t, cards.Identity("shock"), s.Target())
	assert.Equal(t, ActionAddCopy, s.Action())
	require.NotNil(t, s.View().Target)
	assert.Equal(t, "Shock", s.View().Target.Name)

	next, eff := Apply(s, Cmd(CmdConfirm))
	assert.Equal(t, Browsing, next.Mode())
	assert.Equal(t, EffectAddCopy, eff.Kind)
	assert.Equal(t, "Shock", eff.Target.Name)

	s = apply(t, s, Cmd(CmdCycleAction))
	assert.Equal(t, ActionRemoveCopy, s.Action())
	_, eff = Apply(s, Cmd(CmdConfirm))
	assert.Equal(t, EffectRemoveCopy, eff.Kind)

	s = apply(t, s, Cmd(CmdCycleAction))
	next, eff = Apply(s, Cmd(CmdConfirm))
	assert.Equal(t, EffectShowCard, eff.Kind)
	assert.Equal(t, OverlayCard, next.Overlay())

	s = apply(t, s, Cmd(CmdCycleAction))
	assert.Equal(t, ActionAddCopy, s.Action(), "actions wrap around")

	cancelled, eff := Apply(s, Cmd(CmdCancel))
	assert.Equal(t, Browsing, cancelled.Mode())
	assert.Equal(t, EffectNone, eff.Kind)
	assert.Equal(t, "Shock", currentName(cancelled))

	// Selecting again starts from the default action.
	s = apply(t, cancelled, Cmd(CmdSelect))
	assert.Equal(t, ActionAddCopy, s.Action())
}

func TestShowCardOverlayRestoresState(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "bo")
	s = apply(t, s, Cmd(CmdCommitSearch), Cmd(CmdMoveDown))
	before := s

	s, eff := Apply(s, Cmd(CmdShowCard))
	assert.Equal(t, EffectShowCard, eff.Kind)
	assert.Equal(t, "Bog Wraith", eff.Target.Name)
	require.NotNil(t, s.View().Card)
	assert.Equal(t, "Bog Wraith", s.View().Card.Name)

	// Other commands are ignored while the overlay is open.
	moved, _ := Apply(s, Cmd(CmdMoveUp))
	assert.Equal(t, s, moved)

	s = apply(t, s, Cmd(CmdDismiss))
	assert.Equal(t, before.Clean(), s.Clean())
}

func TestStatsOverlay(t *testing.T) {
	s := New(testData(), Options{})
	s, eff := Apply(s, Cmd(CmdShowStats))
	assert.Equal(t, EffectRenderStats, eff.Kind)
	assert.Equal(t, OverlayStats, s.Overlay())
	assert.Len(t, s.View().Stats, 1)

	s = apply(t, s, Cmd(CmdDismiss))
	assert.Equal(t, OverlayNone, s.Overlay())
}

func TestExport(t *testing.T) {
	s := New(testData(), Options{})

	_, eff := Apply(s, Cmd(CmdExport))
	require.Equal(t, EffectExport, eff.Kind)
	assert.Equal(t, "Bog Wraith", eff.Rows[0].Name)
	assert.Equal(t, "Bolt", eff.Rows[1].Name)

	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "bolt")
	s = apply(t, s, Cmd(CmdCommitSearch))
	_, eff = Apply(s, Cmd(CmdExport))
	require.Len(t, eff.Rows, 1)
	assert.Equal(t, "Bolt", eff.Rows[0].Name)

	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "shock")
	s = apply(t, s, Cmd(CmdCommitSearch))
	s, eff = Apply(s, Cmd(CmdExport))
	assert.Equal(t, EffectNone, eff.Kind)
	assert.Equal(t, "nothing to export", s.Status())
}

func TestRefresh(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdJumpBottom)) // Bog Wraith

	s, eff := Apply(s, Cmd(CmdRefresh))
	require.Equal(t, EffectStartRefresh, eff.Kind)
	first := eff.Token
	assert.Equal(t, uint64(1), first)
	assert.True(t, s.Refreshing())
	assert.Equal(t, OverlayRefreshing, s.Overlay())

	// Input other than cancel and quit is ignored during a refresh.
	moved, _ := Apply(s, Cmd(CmdMoveUp))
	assert.Equal(t, s, moved)

	newData := testData()
	newData.Catalog = append([]wishlist.Row{row("Counterspell", "Instant", 4)}, newData.Catalog...)

	stale := ApplyRefresh(s, RefreshResult{Token: first + 1, Data: newData})
	assert.Equal(t, s, stale)

	s = ApplyRefresh(s, RefreshResult{Token: first, Data: newData})
	assert.False(t, s.Refreshing())
	assert.Equal(t, OverlayNone, s.Overlay())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "Bog Wraith", currentName(s), "cursor follows its card across a refresh")
	assert.Equal(t, 3, s.Cursor())

	// A late duplicate is ignored.
	again := ApplyRefresh(s, RefreshResult{Token: first, Data: testData()})
	assert.Equal(t, s, again)
}

func TestRefreshFailureKeepsData(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdMoveDown))
	s, eff := Apply(s, Cmd(CmdRefresh))

	s = ApplyRefresh(s, RefreshResult{Token: eff.Token, Err: errors.New("fetch from mtggoldfish failed: timeout")})
	assert.False(t, s.Refreshing())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "Shock", currentName(s))
	assert.Contains(t, s.Status(), "refresh failed")
}

func TestCancelRefresh(t *testing.T) {
	s := New(testData(), Options{})
	s, start := Apply(s, Cmd(CmdRefresh))

	s, eff := Apply(s, Cmd(CmdCancelRefresh))
	assert.Equal(t, EffectCancelRefresh, eff.Kind)
	assert.Equal(t, start.Token, eff.Token)
	assert.False(t, s.Refreshing())

	late := ApplyRefresh(s, RefreshResult{Token: start.Token, Data: Data{}})
	assert.Equal(t, s, late)

	// Tokens keep increasing after a cancel.
	s, eff = Apply(s, Cmd(CmdRefresh))
	assert.Greater(t, eff.Token, start.Token)

	// Esc cancels too.
	s, eff = Apply(s, Cmd(CmdDismiss))
	assert.Equal(t, EffectCancelRefresh, eff.Kind)

	same, eff := Apply(s, Cmd(CmdCancelRefresh))
	assert.Equal(t, s, same)
	assert.Equal(t, EffectNone, eff.Kind)
}

func TestReseedDropsMissingTarget(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdMoveDown), Cmd(CmdSelect))
	require.Equal(t, ConfirmingAction, s.Mode())

	d := testData()
	d.Catalog = d.Catalog[:1]
	s = Reseed(s, d)
	assert.Equal(t, Browsing, s.Mode())
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, "Bolt", currentName(s))
}

func TestQuitFromAnyState(t *testing.T) {
	base := New(testData(), Options{})
	states := map[string]State{
		"browsing":   base,
		"searching":  apply(t, base, Cmd(CmdEnterSearch)),
		"confirming": apply(t, base, Cmd(CmdSelect)),
		"card":       apply(t, base, Cmd(CmdShowCard)),
		"refreshing": apply(t, base, Cmd(CmdRefresh)),
	}
	for name, s := range states {
		next, eff := Apply(s, Cmd(CmdQuit))
		assert.True(t, next.Quitting(), name)
		assert.Equal(t, EffectQuit, eff.Kind, name)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("show-card")
	require.NoError(t, err)
	assert.Equal(t, ActionShowCard, a)

	_, err = ParseAction("buy")
	assert.Error(t, err)
}

// checkInvariants verifies the cursor and scroll bounds.
func checkInvariants(t *testing.T, s State, step int) {
	t.Helper()
	if s.Len() == 0 {
		if s.Cursor() != -1 {
			t.Fatalf("step %d: cursor %d on empty list", step, s.Cursor())
		}
		return
	}
	if s.Cursor() < 0 || s.Cursor() >= s.Len() {
		t.Fatalf("step %d: cursor %d out of [0,%d)", step, s.Cursor(), s.Len())
	}
	if s.Cursor() < s.Scroll() || s.Cursor() >= s.Scroll()+s.height {
		t.Fatalf("step %d: cursor %d outside viewport at %d (height %d)", step, s.Cursor(), s.Scroll(), s.height)
	}
}

func TestRandomCommandSequences(t *testing.T) {
	kinds := []Kind{
		CmdSwitchDataset, CmdMoveDown, CmdMoveUp, CmdPageDown, CmdPageUp, CmdJumpTop,
		CmdJumpBottom, CmdEnterSearch, CmdInsertChar, CmdDeleteChar, CmdCommitSearch,
		CmdCancelSearch, CmdSelect, CmdCycleAction, CmdConfirm, CmdCancel, CmdShowCard,
		CmdDismiss, CmdShowStats, CmdExport, CmdRefresh, CmdCancelRefresh, CmdResize,
	}
	letters := []rune("card0123 x")

	rng := rand.New(rand.NewSource(42))
	s := New(bigData(60), Options{Height: 7})

	for step := range 5000 {
		cmd := Command{Kind: kinds[rng.Intn(len(kinds))]}
		switch cmd.Kind {
		case CmdInsertChar:
			cmd.Char = letters[rng.Intn(len(letters))]
		case CmdResize:
			cmd.Height = rng.Intn(12)
		}

		beforeID := s.currentID()
		beforeDataset := s.dataset
		beforeLen := s.Len()
		next, _ := Apply(s, cmd)

		// Filter edits follow the card under the cursor when it is still listed.
		if cmd.Kind == CmdInsertChar || cmd.Kind == CmdDeleteChar {
			if next.dataset == beforeDataset && beforeID != "" && containsID(next, beforeID) {
				if next.currentID() != beforeID {
					t.Fatalf("step %d: cursor left %s after %s (len %d -> %d)", step, beforeID, cmd.Kind, beforeLen, next.Len())
				}
			}
		}

		if next.Refreshing() && rng.Intn(2) == 0 {
			next = ApplyRefresh(next, RefreshResult{Token: next.PendingToken(), Data: bigData(40 + rng.Intn(40))})
		}

		s = next
		checkInvariants(t, s, step)
	}
}

func containsID(s State, id cards.Identity) bool {
	for _, v := range s.VisibleIdentities() {
		if v == id {
			return true
		}
	}
	return false
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := New(testData(), Options{})
	s = apply(t, s, Cmd(CmdEnterSearch))
	s = typeQuery(s, "bo")

	snapshot := append([]int(nil), s.visible...)
	next := typeQuery(s, "l")
	_ = next
	assert.True(t, reflect.DeepEqual(snapshot, s.visible))
}
