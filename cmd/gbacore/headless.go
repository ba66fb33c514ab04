package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tholstrup/gbacore/gba"
	"github.com/tholstrup/gbacore/video"
)

// runHeadless drives emu for the given number of frames with no terminal
// attached, optionally dumping periodic PNG snapshots, grounded on the
// teacher's headless branch of cmd/jeebie/main.go.
func runHeadless(emu *gba.Emulator, romName string, frames, snapshotInterval int, snapshotDir string) error {
	for i := 0; i < frames; i++ {
		emu.Step(0)

		if snapshotInterval > 0 && (i+1)%snapshotInterval == 0 {
			path := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.png", romName, i+1))
			if err := saveFrameSnapshot(emu.Screen(), path); err != nil {
				slog.Error("failed to save snapshot", "frame", i+1, "path", path, "error", err)
			} else {
				slog.Info("saved frame snapshot", "frame", i+1, "path", path)
			}
		}

		if i%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}

	return nil
}

// saveFrameSnapshot encodes fb as a PNG at path.
func saveFrameSnapshot(fb *video.FrameBuffer, path string) error {
	img := image.NewRGBA(image.Rect(0, 0, video.Width, video.Height))
	for y := 0; y < video.Height; y++ {
		for x := 0; x < video.Width; x++ {
			c := fb.At(x, y)
			r := uint8((c & 0x1F) * 255 / 31)
			g := uint8(((c >> 5) & 0x1F) * 255 / 31)
			b := uint8(((c >> 10) & 0x1F) * 255 / 31)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
