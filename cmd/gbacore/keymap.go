package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/tholstrup/gbacore/addr"
)

// keymap is a fixed tcell.Key -> button-mask-bit mapping, generalized from
// jeebie/input/default_keys.go's DefaultKeyMap (z/x/Enter/Shift/arrows)
// to the GBA's 10-button pad, adding q/w for the shoulder buttons the
// Game Boy never had.
var keymap = map[rune]addr.Button{
	'z': addr.ButtonA,
	'x': addr.ButtonB,
	'q': addr.ButtonL,
	'w': addr.ButtonR,
}

var specialKeymap = map[tcell.Key]addr.Button{
	tcell.KeyEnter: addr.ButtonStart,
	tcell.KeyTab:   addr.ButtonSelect,
	tcell.KeyUp:    addr.ButtonUp,
	tcell.KeyDown:  addr.ButtonDown,
	tcell.KeyLeft:  addr.ButtonLeft,
	tcell.KeyRight: addr.ButtonRight,
}

// buttonFor resolves a tcell key event to a button bit, if any.
func buttonFor(ev *tcell.EventKey) (addr.Button, bool) {
	if b, ok := specialKeymap[ev.Key()]; ok {
		return b, true
	}
	if ev.Key() == tcell.KeyRune {
		if b, ok := keymap[ev.Rune()]; ok {
			return b, true
		}
	}
	return 0, false
}
