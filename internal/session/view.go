package session

import (
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// RowView is one visible row.
type RowView struct {
	Index    int // position in the filtered list
	Row      wishlist.Row
	Selected bool
}

// ViewModel is everything a renderer needs to draw the session.
type ViewModel struct {
	Mode    Mode
	Dataset Dataset
	Filter  string // text the list is filtered by
	Query   string // pending query while searching
	Rows    []RowView
	Cursor  int // index into the filtered list, -1 when empty
	Total   int // length of the filtered list
	Offset  int
	Height  int

	Action Action
	Target *wishlist.Row

	Overlay    Overlay
	Card       *wishlist.Row
	Stats      []wishlist.Progress
	Refreshing bool

	Status string
}

// View projects s into a view model.
func (s State) View() ViewModel {
	vm := ViewModel{
		Mode:       s.mode,
		Dataset:    s.dataset,
		Filter:     s.applied,
		Query:      s.query,
		Cursor:     s.cursor,
		Total:      len(s.visible),
		Offset:     s.scroll,
		Height:     s.height,
		Action:     s.action,
		Overlay:    s.overlay,
		Refreshing: s.pending != 0,
		Status:     s.status,
	}

	rows := s.data.rows(s.dataset)
	end := min(s.scroll+s.height, len(s.visible))
	for i := s.scroll; i < end; i++ {
		vm.Rows = append(vm.Rows, RowView{Index: i, Row: rows[s.visible[i]], Selected: i == s.cursor})
	}

	if s.mode == ConfirmingAction {
		if row, ok := s.rowByID(s.target); ok {
			vm.Target = &row
		}
	}

	switch s.overlay {
	case OverlayCard:
		card := s.card
		vm.Card = &card
	case OverlayStats:
		vm.Stats = s.data.Stats
	}

	return vm
}
