package session

import (
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Kind names a command.
type Kind int

const (
	CmdNone Kind = iota
	CmdSwitchDataset
	CmdMoveDown
	CmdMoveUp
	CmdPageDown
	CmdPageUp
	CmdJumpTop
	CmdJumpBottom
	CmdEnterSearch
	CmdInsertChar
	CmdDeleteChar
	CmdCommitSearch
	CmdCancelSearch
	CmdSelect
	CmdCycleAction
	CmdConfirm
	CmdCancel
	CmdShowCard
	CmdDismiss
	CmdShowStats
	CmdExport
	CmdRefresh
	CmdCancelRefresh
	CmdResize
	CmdQuit
)

var kindNames = map[Kind]string{
	CmdNone:          "none",
	CmdSwitchDataset: "switch-dataset",
	CmdMoveDown:      "move-down",
	CmdMoveUp:        "move-up",
	CmdPageDown:      "page-down",
	CmdPageUp:        "page-up",
	CmdJumpTop:       "jump-top",
	CmdJumpBottom:    "jump-bottom",
	CmdEnterSearch:   "enter-search",
	CmdInsertChar:    "insert-char",
	CmdDeleteChar:    "delete-char",
	CmdCommitSearch:  "commit-search",
	CmdCancelSearch:  "cancel-search",
	CmdSelect:        "select",
	CmdCycleAction:   "cycle-action",
	CmdConfirm:       "confirm",
	CmdCancel:        "cancel",
	CmdShowCard:      "show-card",
	CmdDismiss:       "dismiss",
	CmdShowStats:     "show-stats",
	CmdExport:        "export",
	CmdRefresh:       "refresh",
	CmdCancelRefresh: "cancel-refresh",
	CmdResize:        "resize",
	CmdQuit:          "quit",
}

func (k Kind) String() string { return kindNames[k] }

// Command is one input event.
type Command struct {
	Kind   Kind
	Char   rune // CmdInsertChar
	Height int  // CmdResize
}

// Cmd returns a command without arguments.
func Cmd(kind Kind) Command { return Command{Kind: kind} }

// Insert returns a CmdInsertChar command.
func Insert(r rune) Command { return Command{Kind: CmdInsertChar, Char: r} }

// Resize returns a CmdResize command.
func Resize(height int) Command { return Command{Kind: CmdResize, Height: height} }

// EffectKind names the side effect a transition asks for.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectQuit
	EffectAddCopy
	EffectRemoveCopy
	EffectShowCard
	EffectRenderStats
	EffectExport
	EffectStartRefresh
	EffectCancelRefresh
)

// Effect is returned by Apply for the caller to carry out.
type Effect struct {
	Kind   EffectKind
	Target wishlist.Row   // add/remove/show card
	Rows   []wishlist.Row // export
	Token  uint64         // refresh
}

func none() Effect { return Effect{} }

// RefreshResult is the outcome of a refresh started by EffectStartRefresh.
type RefreshResult struct {
	Token uint64
	Data  Data
	Err   error
}
