package console

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ramonehamilton/meta-collector/internal/session"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Renderer prints view models as plain text.
type Renderer struct {
	w          io.Writer
	title      string
	showImages bool
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	// Title is printed at the top of every frame, usually the format.
	Title string
	// ShowImages prints the image link in card details.
	ShowImages bool
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts RendererOptions) *Renderer {
	return &Renderer{w: w, title: opts.Title, showImages: opts.ShowImages}
}

const (
	nameWidth = 32
	typeWidth = 28
	barWidth  = 30
)

// Render prints one frame.
func (r *Renderer) Render(vm session.ViewModel) {
	switch vm.Overlay {
	case session.OverlayCard:
		if vm.Card != nil {
			r.card(*vm.Card)
			return
		}
	case session.OverlayStats:
		r.stats(vm.Stats)
		return
	case session.OverlayRefreshing:
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "Refreshing meta data...")
		fmt.Fprintln(r.w, "x or <esc> to cancel")
		return
	}

	r.list(vm)
}

func (r *Renderer) list(vm session.ViewModel) {
	fmt.Fprintln(r.w)
	header := fmt.Sprintf("%s %s (%d cards)", r.title, vm.Dataset, vm.Total)
	if vm.Filter != "" {
		header += fmt.Sprintf("  filter: %q", vm.Filter)
	}
	fmt.Fprintln(r.w, strings.TrimSpace(header))
	fmt.Fprintln(r.w, strings.Repeat("=", utf8.RuneCountInString(strings.TrimSpace(header))))

	if vm.Total == 0 {
		fmt.Fprintln(r.w, "No cards.")
	} else {
		fmt.Fprintf(r.w, "  %4s  %5s  %7s  %4s  %-*s  %s\n", "#", "Score", "Own/Req", "Need", nameWidth, "Name", "Type")
		for _, row := range vm.Rows {
			marker := " "
			if row.Selected {
				marker = ">"
			}
			fmt.Fprintf(r.w, "%s %4d  %5.3f  %7s  %4s  %-*s  %s\n",
				marker,
				row.Index+1,
				row.Row.Score,
				fmt.Sprintf("%d/%d", row.Row.Owned, row.Row.Required),
				deficit(row.Row.Deficit),
				nameWidth, truncate(row.Row.Name, nameWidth),
				truncate(row.Row.TypeLine, typeWidth))
		}
		fmt.Fprintf(r.w, "showing %d-%d of %d\n", vm.Offset+1, vm.Offset+len(vm.Rows), vm.Total)
	}

	switch vm.Mode {
	case session.Searching:
		fmt.Fprintf(r.w, "/%s_\n", vm.Query)
		fmt.Fprintln(r.w, "type to filter, <bs> delete, enter keep, <esc> cancel")
	case session.ConfirmingAction:
		name := ""
		if vm.Target != nil {
			name = vm.Target.Name
		}
		fmt.Fprintf(r.w, "%s %s?\n", vm.Action, name)
		fmt.Fprintln(r.w, "enter/y confirm, <tab> next action, <esc>/n cancel")
	default:
		fmt.Fprintln(r.w, "j/k move  d/u page  g/G ends  / search  <tab> dataset  enter select  s card  i stats  w export  r refresh  q quit")
	}

	if vm.Status != "" {
		fmt.Fprintf(r.w, "-- %s\n", vm.Status)
	}
}

func (r *Renderer) card(row wishlist.Row) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, row.Name)
	fmt.Fprintln(r.w, strings.Repeat("=", utf8.RuneCountInString(row.Name)))
	if row.ManaCost != "" {
		fmt.Fprintf(r.w, "├─ Cost: %s\n", row.ManaCost)
	}
	if row.TypeLine != "" {
		fmt.Fprintf(r.w, "├─ Type: %s\n", row.TypeLine)
	}
	colors := "colorless"
	if len(row.Colors) > 0 {
		colors = strings.Join(row.Colors, "")
	}
	fmt.Fprintf(r.w, "├─ Colors: %s\n", colors)
	fmt.Fprintf(r.w, "├─ Playability: %.3f\n", row.Score)
	if r.showImages && row.ImageURI != "" {
		fmt.Fprintf(r.w, "├─ Image: %s\n", row.ImageURI)
	}
	fmt.Fprintf(r.w, "└─ Owned %d of %d required, %d missing\n", row.Owned, row.Required, row.Deficit)
	fmt.Fprintln(r.w, "<esc> to close")
}

func (r *Renderer) stats(stats []wishlist.Progress) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "Collection Progress")
	fmt.Fprintln(r.w, "===================")
	for _, p := range stats {
		fmt.Fprintf(r.w, "%-20s %s %4d/%-4d (%.1f%%)\n", p.Label, bar(p.Percent()), p.Owned, p.Total, p.Percent())
	}
	fmt.Fprintln(r.w, "<esc> to close")
}

// Message prints a line outside of a frame.
func (r *Renderer) Message(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func bar(percent float64) string {
	filled := int(percent * barWidth / 100)
	filled = max(0, min(filled, barWidth))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func deficit(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}
