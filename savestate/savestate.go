// Package savestate implements the versioned binary snapshot format
// described in spec.md §6/§7, grounded on
// IntuitionEngine's debug_snapshot.go (magic/version header, then a
// fixed field-by-field encoding/binary.Write/Read sequence) generalized
// from a single CPU+memory blob to every GBA subsystem's state.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tholstrup/gbacore/cpu"
	"github.com/tholstrup/gbacore/dma"
	"github.com/tholstrup/gbacore/interrupt"
	"github.com/tholstrup/gbacore/rtc"
	"github.com/tholstrup/gbacore/timer"
)

const (
	magic   uint32 = 0x454D4552 // "EMER"
	version uint32 = 1
)

// Source is the narrow view of an Emulator that savestate needs, kept as
// an interface so this package never imports gba (gba already imports
// savestate, avoiding an import cycle).
type Source interface {
	CPU() *cpu.CPU
	Interrupts() *interrupt.Controller
	Timers() *timer.Bank
	DMA() *dma.Controller
	RTC() *rtc.Chip
	EWRAM() []byte
	IWRAM() []byte
	Palette() []byte
	VRAM() []byte
	OAM() []byte
	MMIO() []byte
	SRAM() []byte
	FrameCount() uint64
	SetFrameCount(uint64)
	// SyncVideoRegs re-derives the PPU's internal register cache from the
	// freshly restored MMIO blob; the PPU keeps its own copy of offsets
	// 0x000-0x05E rather than reading the Bus's shadow array live, so a
	// restore must push the new values across that boundary explicitly.
	SyncVideoRegs()
}

// Save writes e's complete state to w in the documented binary layout.
// Per §7, a write error leaves w in a partial, caller-discarded state but
// never touches e.
func Save(w io.Writer, e Source) error {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, version); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.LittleEndian, e.FrameCount()); err != nil {
		return err
	}

	fields := []any{
		e.CPU().Snapshot(),
		e.Interrupts().Snapshot(),
		e.Timers().Snapshot(),
		e.DMA().Snapshot(),
		e.RTC().Snapshot(),
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("encoding snapshot field: %w", err)
		}
	}

	for _, blob := range [][]byte{e.EWRAM(), e.IWRAM(), e.MMIO(), e.Palette(), e.VRAM(), e.OAM(), e.SRAM()} {
		if _, err := buf.Write(blob); err != nil {
			return fmt.Errorf("encoding memory region: %w", err)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Load validates and decodes a save-state from r into e. Per §7's "clean
// failure, state unchanged" contract, the entire payload is read and
// validated into a temporary buffer before any field of e is mutated; a
// malformed magic, unsupported version, or short read leaves e untouched.
func Load(r io.Reader, e Source) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading save state: %w", err)
	}

	br := bytes.NewReader(data)

	var gotMagic, gotVersion uint32
	if err := binary.Read(br, binary.LittleEndian, &gotMagic); err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if gotMagic != magic {
		return fmt.Errorf("invalid save state magic: %#x", gotMagic)
	}
	if err := binary.Read(br, binary.LittleEndian, &gotVersion); err != nil {
		return fmt.Errorf("reading version: %w", err)
	}
	if gotVersion != version {
		return fmt.Errorf("unsupported save state version: %d", gotVersion)
	}

	var frameCount uint64
	if err := binary.Read(br, binary.LittleEndian, &frameCount); err != nil {
		return fmt.Errorf("reading frame count: %w", err)
	}

	var cpuSnap cpu.Snapshot
	var icSnap interrupt.Snapshot
	var timerSnap timer.Snapshot
	var dmaSnap dma.Snapshot
	var rtcSnap rtc.Snapshot
	for _, f := range []any{&cpuSnap, &icSnap, &timerSnap, &dmaSnap, &rtcSnap} {
		if err := binary.Read(br, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("reading snapshot field: %w", err)
		}
	}

	regions := [][]byte{e.EWRAM(), e.IWRAM(), e.MMIO(), e.Palette(), e.VRAM(), e.OAM(), e.SRAM()}
	blobs := make([][]byte, len(regions))
	for i, dst := range regions {
		blob := make([]byte, len(dst))
		if _, err := io.ReadFull(br, blob); err != nil {
			return fmt.Errorf("reading memory region %d: %w", i, err)
		}
		blobs[i] = blob
	}

	// Every read above succeeded: only now do we mutate e.
	e.CPU().Restore(cpuSnap)
	e.Interrupts().Restore(icSnap)
	e.Timers().Restore(timerSnap)
	e.DMA().Restore(dmaSnap)
	e.RTC().Restore(rtcSnap)
	for i, dst := range regions {
		copy(dst, blobs[i])
	}
	e.SyncVideoRegs()
	e.SetFrameCount(frameCount)
	return nil
}
