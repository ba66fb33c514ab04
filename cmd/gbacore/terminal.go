package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/tholstrup/gbacore/addr"
	"github.com/tholstrup/gbacore/gba"
	"github.com/tholstrup/gbacore/timing"
	"github.com/tholstrup/gbacore/video"
)

const (
	minTermWidth  = video.Width + 30
	minTermHeight = video.Height/2 + 4
	keyTimeout    = 100 * time.Millisecond
	disasmLines   = 8
)

// terminalRenderer drives an interactive tcell session, adapted from
// jeebie/backend/terminal.Backend's screen-init/poll/render loop,
// generalized from GB's 4-shade half-block rendering to true-color
// half-blocks (the GBA framebuffer has no fixed shade palette to quantize
// against).
type terminalRenderer struct {
	emu        *gba.Emulator
	screen     tcell.Screen
	limiter    timing.Limiter
	keyStates  map[addr.Button]time.Time
	showDebug  bool
	snapshotAt int
}

func newTerminalRenderer(emu *gba.Emulator) (*terminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	return &terminalRenderer{
		emu:       emu,
		screen:    screen,
		limiter:   timing.NewTickerLimiter(),
		keyStates: make(map[addr.Button]time.Time),
	}, nil
}

// Run drives the interactive loop until the user quits.
func (t *terminalRenderer) Run() error {
	defer t.screen.Fini()

	for {
		now := time.Now()
		for t.screen.HasPendingEvent() {
			switch ev := t.screen.PollEvent().(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'Q') {
					return nil
				}
				if ev.Key() == tcell.KeyF11 {
					t.showDebug = !t.showDebug
					continue
				}
				if ev.Key() == tcell.KeyF9 {
					t.snapshotAt++
					path := fmt.Sprintf("snapshot_%d.png", t.snapshotAt)
					if err := saveFrameSnapshot(t.emu.Screen(), path); err != nil {
						slog.Error("failed to save snapshot", "path", path, "error", err)
					} else {
						slog.Info("saved snapshot", "path", path)
					}
					continue
				}
				if b, ok := buttonFor(ev); ok {
					t.keyStates[b] = now
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		}

		mask := t.liveButtonMask(now)
		t.emu.Step(mask)
		t.render()
		t.screen.Show()

		t.limiter.WaitForNextFrame()
	}
}

func (t *terminalRenderer) liveButtonMask(now time.Time) uint16 {
	var mask uint16
	for b, last := range t.keyStates {
		if now.Sub(last) < keyTimeout {
			mask |= 1 << uint(b)
		} else {
			delete(t.keyStates, b)
		}
	}
	return mask
}

func (t *terminalRenderer) render() {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
		}
		return
	}

	t.screen.Clear()
	t.drawFrame(t.emu.Screen())

	if t.showDebug {
		t.drawDebug(video.Width+2, 0)
	}
}

// drawFrame renders the 240x160 framebuffer as 240x80 terminal cells,
// each cell an upper-half-block character whose foreground/background
// colors carry the top/bottom source pixel, per the teacher's half-block
// technique generalized to 16-bit true color.
func (t *terminalRenderer) drawFrame(fb *video.FrameBuffer) {
	for row := 0; row < video.Height/2; row++ {
		top := row * 2
		bottom := top + 1
		for x := 0; x < video.Width; x++ {
			fg := bgr555ToRGB(fb.At(x, top))
			bg := bgr555ToRGB(fb.At(x, bottom))
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x, row, '▀', nil, style)
		}
	}
}

func bgr555ToRGB(c uint16) tcell.Color {
	r := (c & 0x1F) * 255 / 31
	g := ((c >> 5) & 0x1F) * 255 / 31
	b := ((c >> 10) & 0x1F) * 255 / 31
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// drawDebug renders the register/interrupt overlay starting at (x0, 0).
func (t *terminalRenderer) drawDebug(x0, y0 int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	d := t.emu.Debug()

	line := y0
	t.drawText(x0, line, style, fmt.Sprintf("CPSR: %08X  thumb=%v  halted=%v", d.CPU.CPSR, d.CPU.Thumb, d.CPU.Halted))
	line++
	t.drawText(x0, line, style, fmt.Sprintf("IE=%04X IF=%04X IME=%04X", d.IE, d.IF, d.IME))
	line++
	for i := 0; i < 16; i += 4 {
		t.drawText(x0, line, style, fmt.Sprintf("%s %s %s %s",
			d.CPU.FormatRegister(i), d.CPU.FormatRegister(i+1), d.CPU.FormatRegister(i+2), d.CPU.FormatRegister(i+3)))
		line++
	}
	line++
	t.drawText(x0, line, style, fmt.Sprintf("line: %d", d.OAM.CurrentLine))
	line += 2

	t.drawText(x0, line, style, "disassembly:")
	line++
	for _, instr := range t.emu.Disassembly(disasmLines) {
		t.drawText(x0, line, style, fmt.Sprintf("%08X: %s", instr.Address, instr.Instruction))
		line++
	}
}

func (t *terminalRenderer) drawText(x, y int, style tcell.Style, s string) {
	for i, ch := range s {
		t.screen.SetContent(x+i, y, ch, nil, style)
	}
}
