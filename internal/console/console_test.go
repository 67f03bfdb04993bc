package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/meta-collector/internal/session"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want []Key
	}{
		{"", []Key{Named(KeyEnter)}},
		{"j", []Key{Char('j')}},
		{"jjk", []Key{Char('j'), Char('j'), Char('k')}},
		{"<tab>", []Key{Named(KeyTab)}},
		{"<ESC>", []Key{Named(KeyEsc)}},
		{"/bolt", []Key{Char('/'), Char('b'), Char('o'), Char('l'), Char('t')}},
		{"ab<bs>c", []Key{Char('a'), Char('b'), Named(KeyBackspace), Char('c')}},
		{"<quit>", []Key{Named(KeyQuit)}},
		{"<nope>", []Key{Char('<'), Char('n'), Char('o'), Char('p'), Char('e'), Char('>')}},
		{"ló", []Key{Char('l'), Char('ó')}},
		{"<", []Key{Char('<')}},
		{"<>", []Key{Char('<'), Char('>')}},
		{"g\r\n", []Key{Char('g')}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLine(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("key %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	browsing := session.ViewModel{Mode: session.Browsing}
	searching := session.ViewModel{Mode: session.Searching}
	confirming := session.ViewModel{Mode: session.ConfirmingAction}
	card := session.ViewModel{Overlay: session.OverlayCard}
	refreshing := session.ViewModel{Overlay: session.OverlayRefreshing, Refreshing: true}

	tests := []struct {
		name string
		key  Key
		vm   session.ViewModel
		want session.Kind
	}{
		{"browse enter selects", Named(KeyEnter), browsing, session.CmdSelect},
		{"browse tab switches", Named(KeyTab), browsing, session.CmdSwitchDataset},
		{"browse j", Char('j'), browsing, session.CmdMoveDown},
		{"browse G", Char('G'), browsing, session.CmdJumpBottom},
		{"browse slash", Char('/'), browsing, session.CmdEnterSearch},
		{"browse q quits", Char('q'), browsing, session.CmdQuit},
		{"browse unknown", Char('z'), browsing, session.CmdNone},
		{"browse esc", Named(KeyEsc), browsing, session.CmdNone},
		{"search enter commits", Named(KeyEnter), searching, session.CmdCommitSearch},
		{"search esc cancels", Named(KeyEsc), searching, session.CmdCancelSearch},
		{"search bs deletes", Named(KeyBackspace), searching, session.CmdDeleteChar},
		{"search q is text", Char('q'), searching, session.CmdInsertChar},
		{"search quit key", Named(KeyQuit), searching, session.CmdQuit},
		{"search tab", Named(KeyTab), searching, session.CmdNone},
		{"confirm enter", Named(KeyEnter), confirming, session.CmdConfirm},
		{"confirm y", Char('y'), confirming, session.CmdConfirm},
		{"confirm n", Char('n'), confirming, session.CmdCancel},
		{"confirm tab cycles", Named(KeyTab), confirming, session.CmdCycleAction},
		{"confirm esc", Named(KeyEsc), confirming, session.CmdCancel},
		{"card esc dismisses", Named(KeyEsc), card, session.CmdDismiss},
		{"card j ignored", Char('j'), card, session.CmdNone},
		{"refresh x cancels", Char('x'), refreshing, session.CmdCancelRefresh},
		{"refresh esc cancels", Named(KeyEsc), refreshing, session.CmdCancelRefresh},
		{"refresh j ignored", Char('j'), refreshing, session.CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.key, tt.vm)
			if got.Kind != tt.want {
				t.Errorf("Translate(%v) = %v, want %v", tt.key, got.Kind, tt.want)
			}
		})
	}

	if cmd := Translate(Char('ó'), searching); cmd.Char != 'ó' {
		t.Errorf("expected inserted rune to be kept, got %q", cmd.Char)
	}
}

func TestReadKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys := ReadKeys(ctx, strings.NewReader("j\n\n/bolt\n"))

	var lines [][]Key
	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-keys:
			if !ok {
				if len(lines) != 3 {
					t.Fatalf("expected 3 lines, got %d", len(lines))
				}
				if lines[1][0] != Named(KeyEnter) {
					t.Errorf("expected enter for empty line, got %v", lines[1])
				}
				return
			}
			lines = append(lines, line)
		case <-timeout:
			t.Fatal("timed out reading keys")
		}
	}
}

func testRows() []wishlist.Row {
	return []wishlist.Row{
		{Identity: "lightning bolt", Name: "Lightning Bolt", TypeLine: "Instant", Colors: []string{"R"}, Required: 4, Owned: 1, Deficit: 3, Score: 1, ImageURI: "https://img/bolt.jpg"},
		{Identity: "counterspell", Name: "Counterspell", TypeLine: "Instant", Colors: []string{"U"}, Required: 4, Owned: 4, Deficit: 0, Score: 0.5},
	}
}

func TestRenderList(t *testing.T) {
	rows := testRows()
	s := session.New(session.Data{Catalog: rows, Wishlist: rows[:1]}, session.Options{Height: 10})

	var buf bytes.Buffer
	NewRenderer(&buf, RendererOptions{Title: "pauper"}).Render(s.View())
	out := buf.String()

	for _, want := range []string{"pauper catalog (2 cards)", "> ", "Lightning Bolt", "1/4", "Counterspell", "showing 1-2 of 2", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSearchAndConfirm(t *testing.T) {
	rows := testRows()
	s := session.New(session.Data{Catalog: rows}, session.Options{})
	s, _ = session.Apply(s, session.Cmd(session.CmdEnterSearch))
	s, _ = session.Apply(s, session.Insert('c'))

	var buf bytes.Buffer
	r := NewRenderer(&buf, RendererOptions{})
	r.Render(s.View())
	if !strings.Contains(buf.String(), "/c_") {
		t.Errorf("expected pending query, got:\n%s", buf.String())
	}

	s, _ = session.Apply(s, session.Cmd(session.CmdCommitSearch))
	s, _ = session.Apply(s, session.Cmd(session.CmdSelect))
	buf.Reset()
	r.Render(s.View())
	if !strings.Contains(buf.String(), "add-copy") {
		t.Errorf("expected action prompt, got:\n%s", buf.String())
	}
}

func TestRenderOverlays(t *testing.T) {
	rows := testRows()
	s := session.New(session.Data{
		Catalog: rows,
		Stats:   []wishlist.Progress{{Label: "Top 20", Owned: 5, Total: 8}},
	}, session.Options{})

	var buf bytes.Buffer
	withImages := NewRenderer(&buf, RendererOptions{ShowImages: true})

	card, _ := session.Apply(s, session.Cmd(session.CmdShowCard))
	withImages.Render(card.View())
	for _, want := range []string{"Lightning Bolt", "Colors: R", "Owned 1 of 4 required, 3 missing", "https://img/bolt.jpg"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in card overlay:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	stats, _ := session.Apply(s, session.Cmd(session.CmdShowStats))
	withImages.Render(stats.View())
	if !strings.Contains(buf.String(), "5/8") || !strings.Contains(buf.String(), "62.5%") {
		t.Errorf("unexpected stats overlay:\n%s", buf.String())
	}

	buf.Reset()
	refreshing, _ := session.Apply(s, session.Cmd(session.CmdRefresh))
	withImages.Render(refreshing.View())
	if !strings.Contains(buf.String(), "Refreshing") {
		t.Errorf("unexpected refresh overlay:\n%s", buf.String())
	}
}

func TestRenderEmpty(t *testing.T) {
	s := session.New(session.Data{}, session.Options{})

	var buf bytes.Buffer
	NewRenderer(&buf, RendererOptions{}).Render(s.View())
	if !strings.Contains(buf.String(), "No cards.") {
		t.Errorf("expected empty message, got:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Lórien Revealed", 6); got != "Lórie…" {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := truncate("Bolt", 6); got != "Bolt" {
		t.Errorf("unexpected truncation %q", got)
	}
}
