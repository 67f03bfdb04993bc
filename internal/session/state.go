// Package session is the interactive browsing state machine. State is a
// value; Apply returns the next state and the side effect the caller should
// perform. Nothing in this package blocks or performs I/O.
package session

import (
	"github.com/ramonehamilton/meta-collector/internal/cards"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Mode is the top-level state.
type Mode int

const (
	Browsing Mode = iota
	Searching
	ConfirmingAction
)

func (m Mode) String() string {
	switch m {
	case Searching:
		return "search"
	case ConfirmingAction:
		return "confirm"
	default:
		return "browse"
	}
}

// Dataset selects the rows being browsed.
type Dataset int

const (
	FullCatalog Dataset = iota
	Wishlist
)

// datasetCount is the number of datasets SwitchDataset cycles through.
const datasetCount = 2

func (d Dataset) String() string {
	if d == Wishlist {
		return "wishlist"
	}
	return "catalog"
}

// Action is what Confirm does with the selected card.
type Action int

const (
	ActionAddCopy Action = iota
	ActionRemoveCopy
	ActionShowCard
)

var actionNames = []string{"add-copy", "remove-copy", "show-card"}

func (a Action) String() string { return actionNames[a] }

// Next returns the action after a, wrapping around.
func (a Action) Next() Action { return (a + 1) % Action(len(actionNames)) }

// ParseAction parses an action name such as "add-copy".
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return ActionAddCopy, errs.Configuration("session.select_action", name, "expected add-copy, remove-copy or show-card")
}

// Overlay is a layer drawn over the list. Closing it restores the state
// underneath unchanged.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayCard
	OverlayStats
	OverlayRefreshing
)

// Data is the immutable row snapshot a session browses.
type Data struct {
	Catalog  []wishlist.Row // every corpus card, catalog order
	Wishlist []wishlist.Row // missing cards, wishlist order
	Stats    []wishlist.Progress
}

func (d Data) rows(ds Dataset) []wishlist.Row {
	if ds == Wishlist {
		return d.Wishlist
	}
	return d.Catalog
}

// Options configures a new session.
type Options struct {
	// Height is the number of visible rows.
	Height int
	// DefaultAction is preselected when a card is selected.
	DefaultAction Action
}

// DefaultHeight is used when Options.Height is not positive.
const DefaultHeight = 20

// State is the complete session state. The zero value is not usable; call
// New.
type State struct {
	data    Data
	mode    Mode
	dataset Dataset

	// filter is the sticky filter. applied is the text the visible list is
	// currently filtered by: filter while browsing, the pending query once
	// it has been edited.
	filter  string
	applied string
	query   string
	visible []int

	cursor int // index into visible, -1 when empty
	scroll int
	height int

	// Saved by EnterSearch for CancelSearch.
	priorFilter string
	priorID     cards.Identity

	target        cards.Identity
	action        Action
	defaultAction Action

	overlay Overlay
	card    wishlist.Row

	lastToken uint64
	pending   uint64 // in-flight refresh token, 0 when idle

	status string
	dirty  bool
	quit   bool
}

// New creates a session browsing the full catalog.
func New(data Data, opts Options) State {
	height := opts.Height
	if height < 1 {
		height = DefaultHeight
	}

	s := State{
		data:          data,
		mode:          Browsing,
		dataset:       FullCatalog,
		height:        height,
		action:        opts.DefaultAction,
		defaultAction: opts.DefaultAction,
		dirty:         true,
	}
	s.visible = s.filterRows(s.dataset, "")
	s.cursor = -1
	if len(s.visible) > 0 {
		s.cursor = 0
	}
	return s
}

// Mode returns the current mode.
func (s State) Mode() Mode { return s.mode }

// Dataset returns the dataset being browsed.
func (s State) Dataset() Dataset { return s.dataset }

// Filter returns the sticky filter.
func (s State) Filter() string { return s.filter }

// Query returns the pending search query.
func (s State) Query() string { return s.query }

// Cursor returns the cursor index into the filtered list, -1 when empty.
func (s State) Cursor() int { return s.cursor }

// Scroll returns the index of the first visible row.
func (s State) Scroll() int { return s.scroll }

// Len returns the length of the filtered list.
func (s State) Len() int { return len(s.visible) }

// Overlay returns the open overlay.
func (s State) Overlay() Overlay { return s.overlay }

// Action returns the action Confirm would perform.
func (s State) Action() Action { return s.action }

// Target returns the card awaiting confirmation.
func (s State) Target() cards.Identity { return s.target }

// Status returns the status line.
func (s State) Status() string { return s.status }

// Dirty reports whether the view must be rendered again.
func (s State) Dirty() bool { return s.dirty }

// Clean marks the state as rendered.
func (s State) Clean() State {
	s.dirty = false
	return s
}

// WithStatus replaces the status line, for effects that finish outside
// the state machine.
func (s State) WithStatus(status string) State {
	s.status = status
	s.dirty = true
	return s
}

// Quitting reports whether the session has ended.
func (s State) Quitting() bool { return s.quit }

// Refreshing reports whether a refresh is in flight.
func (s State) Refreshing() bool { return s.pending != 0 }

// PendingToken returns the in-flight refresh token, 0 when idle.
func (s State) PendingToken() uint64 { return s.pending }

// Data returns the snapshot being browsed.
func (s State) Data() Data { return s.data }

// Current returns the row under the cursor.
func (s State) Current() (wishlist.Row, bool) {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return wishlist.Row{}, false
	}
	return s.data.rows(s.dataset)[s.visible[s.cursor]], true
}

// VisibleIdentities returns the identities of the filtered list in order.
func (s State) VisibleIdentities() []cards.Identity {
	rows := s.data.rows(s.dataset)
	ids := make([]cards.Identity, len(s.visible))
	for i, idx := range s.visible {
		ids[i] = rows[idx].Identity
	}
	return ids
}

func (s State) currentID() cards.Identity {
	if r, ok := s.Current(); ok {
		return r.Identity
	}
	return ""
}

// setList installs a new filtered list and moves the cursor to id when it
// is still listed, otherwise to the top.
func (s *State) setList(visible []int, id cards.Identity) {
	s.visible = visible
	s.cursor = -1
	if len(visible) == 0 {
		s.scroll = 0
		return
	}

	s.cursor = 0
	if id != "" {
		rows := s.data.rows(s.dataset)
		for i, idx := range visible {
			if rows[idx].Identity == id {
				s.cursor = i
				break
			}
		}
	}
	s.follow()
}

// follow scrolls so the cursor is inside the viewport.
func (s *State) follow() {
	if s.cursor < 0 {
		s.scroll = 0
		return
	}
	if s.cursor < s.scroll {
		s.scroll = s.cursor
	}
	if s.cursor >= s.scroll+s.height {
		s.scroll = s.cursor - s.height + 1
	}
	s.scroll = max(0, min(s.scroll, len(s.visible)-s.height))
}

func (s State) rowByID(id cards.Identity) (wishlist.Row, bool) {
	for _, r := range s.data.rows(s.dataset) {
		if r.Identity == id {
			return r, true
		}
	}
	return wishlist.Row{}, false
}
