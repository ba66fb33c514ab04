// Package timing provides the real-time frame pacing used by the
// interactive terminal front end, grounded on jeebie/timing/limiter.go and
// jeebie/timing/ticker.go, generalized from the Game Boy's 70224-cycle/
// 4.194304MHz frame rate to the GBA's 280896-cycle/16.78MHz one.
package timing

import "time"

// GBA timing constants (§2).
const (
	CyclesPerFrame = 228 * 1232
	CPUFrequency   = 16777216
)

// TargetFPS is the GBA's exact vertical refresh rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration is the wall-clock duration of one frame at TargetFPS.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces a real-time frame loop.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	WaitForNextFrame()
	// Reset clears accumulated timing state, e.g. after a pause.
	Reset()
}

// NewNoOpLimiter returns a Limiter that never blocks, for headless mode.
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// TickerLimiter paces frames with a time.Ticker at the GBA's native rate.
type TickerLimiter struct {
	ticker *time.Ticker
}

// NewTickerLimiter creates a Limiter ticking at FrameDuration.
func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() { <-t.ticker.C }

func (t *TickerLimiter) Reset() { t.ticker.Reset(FrameDuration()) }

// Stop releases the underlying ticker.
func (t *TickerLimiter) Stop() { t.ticker.Stop() }
