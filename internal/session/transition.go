package session

import (
	"fmt"
	"unicode/utf8"

	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Apply returns the state after cmd and the effect to perform. Commands
// that are not valid in the current state return s unchanged with
// EffectNone.
func Apply(s State, cmd Command) (State, Effect) {
	switch cmd.Kind {
	case CmdQuit:
		s.quit = true
		s.dirty = true
		return s, Effect{Kind: EffectQuit}
	case CmdResize:
		return resize(s, cmd.Height)
	}

	switch s.overlay {
	case OverlayRefreshing:
		if cmd.Kind == CmdCancelRefresh || cmd.Kind == CmdDismiss {
			return cancelRefresh(s)
		}
		return s, none()
	case OverlayCard, OverlayStats:
		if cmd.Kind == CmdDismiss {
			s.overlay = OverlayNone
			s.card = wishlist.Row{}
			s.dirty = true
		}
		return s, none()
	}

	switch s.mode {
	case Searching:
		return applySearching(s, cmd)
	case ConfirmingAction:
		return applyConfirming(s, cmd)
	default:
		return applyBrowsing(s, cmd)
	}
}

func applyBrowsing(s State, cmd Command) (State, Effect) {
	switch cmd.Kind {
	case CmdSwitchDataset:
		return switchDataset(s)
	case CmdMoveDown:
		return moveTo(s, s.cursor+1)
	case CmdMoveUp:
		return moveTo(s, s.cursor-1)
	case CmdPageDown:
		return moveTo(s, min(s.cursor+s.height, len(s.visible)-1))
	case CmdPageUp:
		return moveTo(s, max(s.cursor-s.height, 0))
	case CmdJumpTop:
		return moveTo(s, 0)
	case CmdJumpBottom:
		return moveTo(s, len(s.visible)-1)
	case CmdEnterSearch:
		s.mode = Searching
		s.query = ""
		s.priorFilter = s.filter
		s.priorID = s.currentID()
		s.status = ""
		s.dirty = true
		return s, none()
	case CmdSelect:
		row, ok := s.Current()
		if !ok {
			return s, none()
		}
		s.mode = ConfirmingAction
		s.target = row.Identity
		s.action = s.defaultAction
		s.status = ""
		s.dirty = true
		return s, none()
	case CmdShowCard:
		row, ok := s.Current()
		if !ok {
			return s, none()
		}
		s = openCard(s, row)
		return s, Effect{Kind: EffectShowCard, Target: row}
	case CmdShowStats:
		s.overlay = OverlayStats
		s.status = ""
		s.dirty = true
		return s, Effect{Kind: EffectRenderStats}
	case CmdExport:
		return export(s)
	case CmdRefresh:
		s.lastToken++
		s.pending = s.lastToken
		s.overlay = OverlayRefreshing
		s.status = ""
		s.dirty = true
		return s, Effect{Kind: EffectStartRefresh, Token: s.pending}
	}
	return s, none()
}

func applySearching(s State, cmd Command) (State, Effect) {
	switch cmd.Kind {
	case CmdInsertChar:
		if cmd.Char == 0 || cmd.Char == utf8.RuneError {
			return s, none()
		}
		return editQuery(s, s.query+string(cmd.Char))
	case CmdDeleteChar:
		if s.query == "" {
			return s, none()
		}
		_, size := utf8.DecodeLastRuneInString(s.query)
		return editQuery(s, s.query[:len(s.query)-size])
	case CmdCommitSearch:
		s.mode = Browsing
		s.filter = s.applied
		s.query = ""
		s.priorFilter, s.priorID = "", ""
		s.dirty = true
		return s, none()
	case CmdCancelSearch:
		s.mode = Browsing
		s.filter = s.priorFilter
		s.applied = s.priorFilter
		s.query = ""
		s.setList(s.filterRows(s.dataset, s.applied), s.priorID)
		s.priorFilter, s.priorID = "", ""
		s.dirty = true
		return s, none()
	}
	return s, none()
}

func applyConfirming(s State, cmd Command) (State, Effect) {
	switch cmd.Kind {
	case CmdCycleAction:
		s.action = s.action.Next()
		s.dirty = true
		return s, none()
	case CmdCancel:
		s.mode = Browsing
		s.target = ""
		s.dirty = true
		return s, none()
	case CmdConfirm:
		row, ok := s.rowByID(s.target)
		s.mode = Browsing
		s.target = ""
		s.dirty = true
		if !ok {
			return s, none()
		}
		switch s.action {
		case ActionRemoveCopy:
			return s, Effect{Kind: EffectRemoveCopy, Target: row}
		case ActionShowCard:
			s = openCard(s, row)
			return s, Effect{Kind: EffectShowCard, Target: row}
		default:
			return s, Effect{Kind: EffectAddCopy, Target: row}
		}
	}
	return s, none()
}

func moveTo(s State, cursor int) (State, Effect) {
	if len(s.visible) == 0 {
		return s, none()
	}
	cursor = max(0, min(cursor, len(s.visible)-1))
	if cursor == s.cursor {
		return s, none()
	}
	s.cursor = cursor
	s.follow()
	s.dirty = true
	return s, none()
}

func switchDataset(s State) (State, Effect) {
	next := (s.dataset + 1) % datasetCount
	s.status = ""

	visible := s.filterRows(next, s.filter)
	if s.filter != "" && len(visible) == 0 {
		s.status = fmt.Sprintf("filter %q cleared: no matches in %s", s.filter, next)
		s.filter = ""
		visible = s.filterRows(next, "")
	}
	s.applied = s.filter

	s.dataset = next
	s.scroll = 0
	s.setList(visible, "")
	s.dirty = true
	return s, none()
}

func editQuery(s State, query string) (State, Effect) {
	id := s.currentID()
	s.query = query
	s.applied = query
	s.setList(s.filterRows(s.dataset, query), id)
	s.dirty = true
	return s, none()
}

func openCard(s State, row wishlist.Row) State {
	s.overlay = OverlayCard
	s.card = row
	s.status = ""
	s.dirty = true
	return s
}

func export(s State) (State, Effect) {
	match := matcher(s.filter)
	var rows []wishlist.Row
	for _, r := range s.data.Wishlist {
		if match(r) {
			rows = append(rows, r)
		}
	}

	s.dirty = true
	if len(rows) == 0 {
		s.status = "nothing to export"
		return s, none()
	}
	s.status = fmt.Sprintf("exporting %d cards", len(rows))
	return s, Effect{Kind: EffectExport, Rows: rows}
}

func resize(s State, height int) (State, Effect) {
	if height < 1 || height == s.height {
		return s, none()
	}
	s.height = height
	s.follow()
	s.dirty = true
	return s, none()
}

func cancelRefresh(s State) (State, Effect) {
	if s.pending == 0 {
		return s, none()
	}
	token := s.pending
	s.pending = 0
	s.overlay = OverlayNone
	s.status = "refresh cancelled"
	s.dirty = true
	return s, Effect{Kind: EffectCancelRefresh, Token: token}
}

// ApplyRefresh folds a refresh result into s. Results for cancelled or
// superseded requests are ignored. A failed refresh keeps the current data
// and reports the error on the status line.
func ApplyRefresh(s State, result RefreshResult) State {
	if s.pending == 0 || result.Token != s.pending {
		return s
	}

	s.pending = 0
	s.overlay = OverlayNone
	s.dirty = true

	if result.Err != nil {
		s.status = "refresh failed: " + result.Err.Error()
		return s
	}

	s = Reseed(s, result.Data)
	s.status = "refreshed"
	return s
}

// Reseed swaps in new data, keeping the dataset, filter, mode and the card
// under the cursor when it is still listed. A pending confirmation whose
// card disappeared is dropped.
func Reseed(s State, data Data) State {
	id := s.currentID()
	s.data = data
	s.setList(s.filterRows(s.dataset, s.applied), id)

	if s.mode == ConfirmingAction {
		if _, ok := s.rowByID(s.target); !ok {
			s.mode = Browsing
			s.target = ""
		}
	}
	s.dirty = true
	return s
}
