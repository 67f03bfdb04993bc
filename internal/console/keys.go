// Package console is the line oriented terminal front end of a session:
// it decodes typed lines into keys, maps keys to session commands and
// prints view models.
package console

import (
	"strings"
	"unicode/utf8"

	"github.com/ramonehamilton/meta-collector/internal/session"
)

// Named keys. A line may spell them as <tab>, <esc>, <bs> or <quit>; an
// empty line is Enter.
const (
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeyEsc       = "esc"
	KeyBackspace = "bs"
	KeyQuit      = "quit"
)

var namedKeys = map[string]string{
	"enter":     KeyEnter,
	"cr":        KeyEnter,
	"tab":       KeyTab,
	"esc":       KeyEsc,
	"bs":        KeyBackspace,
	"backspace": KeyBackspace,
	"quit":      KeyQuit,
	"c-c":       KeyQuit,
}

// Key is a single keystroke: either a named key or a rune.
type Key struct {
	Name string
	Rune rune
}

// Named returns a named key.
func Named(name string) Key { return Key{Name: name} }

// Char returns a rune key.
func Char(r rune) Key { return Key{Rune: r} }

func (k Key) String() string {
	if k.Name != "" {
		return "<" + k.Name + ">"
	}
	return string(k.Rune)
}

// ParseLine splits one typed line into keys. An empty line is a single
// Enter. Angle bracket names that are not known keys are typed literally.
func ParseLine(line string) []Key {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return []Key{Named(KeyEnter)}
	}

	var keys []Key
	for i := 0; i < len(line); {
		if line[i] == '<' {
			if end := strings.IndexByte(line[i:], '>'); end > 1 {
				if name, ok := namedKeys[strings.ToLower(line[i+1:i+end])]; ok {
					keys = append(keys, Named(name))
					i += end + 1
					continue
				}
			}
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		keys = append(keys, Char(r))
		i += size
	}
	return keys
}

// Translate maps a key to the command it means in the state shown by vm.
// Keys with no meaning return CmdNone, which the session ignores.
func Translate(k Key, vm session.ViewModel) session.Command {
	if k.Name == KeyQuit {
		return session.Cmd(session.CmdQuit)
	}

	switch vm.Overlay {
	case session.OverlayRefreshing:
		if k.Name == KeyEsc || k.Rune == 'x' {
			return session.Cmd(session.CmdCancelRefresh)
		}
		if k.Rune == 'q' {
			return session.Cmd(session.CmdQuit)
		}
		return session.Cmd(session.CmdNone)
	case session.OverlayCard, session.OverlayStats:
		if k.Name == KeyEsc || k.Name == KeyEnter {
			return session.Cmd(session.CmdDismiss)
		}
		if k.Rune == 'q' {
			return session.Cmd(session.CmdQuit)
		}
		return session.Cmd(session.CmdNone)
	}

	switch vm.Mode {
	case session.Searching:
		return translateSearching(k)
	case session.ConfirmingAction:
		return translateConfirming(k)
	default:
		return translateBrowsing(k)
	}
}

func translateSearching(k Key) session.Command {
	switch k.Name {
	case KeyEnter:
		return session.Cmd(session.CmdCommitSearch)
	case KeyEsc:
		return session.Cmd(session.CmdCancelSearch)
	case KeyBackspace:
		return session.Cmd(session.CmdDeleteChar)
	case "":
		return session.Insert(k.Rune)
	}
	return session.Cmd(session.CmdNone)
}

func translateConfirming(k Key) session.Command {
	switch k.Name {
	case KeyEnter:
		return session.Cmd(session.CmdConfirm)
	case KeyEsc:
		return session.Cmd(session.CmdCancel)
	case KeyTab:
		return session.Cmd(session.CmdCycleAction)
	}

	switch k.Rune {
	case 'y':
		return session.Cmd(session.CmdConfirm)
	case 'n':
		return session.Cmd(session.CmdCancel)
	case 'q':
		return session.Cmd(session.CmdQuit)
	}
	return session.Cmd(session.CmdNone)
}

var browsingRunes = map[rune]session.Kind{
	'j': session.CmdMoveDown,
	'k': session.CmdMoveUp,
	'd': session.CmdPageDown,
	'u': session.CmdPageUp,
	'g': session.CmdJumpTop,
	'G': session.CmdJumpBottom,
	'/': session.CmdEnterSearch,
	's': session.CmdShowCard,
	'i': session.CmdShowStats,
	'w': session.CmdExport,
	'r': session.CmdRefresh,
	'x': session.CmdCancelRefresh,
	'q': session.CmdQuit,
}

func translateBrowsing(k Key) session.Command {
	switch k.Name {
	case KeyEnter:
		return session.Cmd(session.CmdSelect)
	case KeyTab:
		return session.Cmd(session.CmdSwitchDataset)
	case "":
		if kind, ok := browsingRunes[k.Rune]; ok {
			return session.Cmd(kind)
		}
	}
	return session.Cmd(session.CmdNone)
}
