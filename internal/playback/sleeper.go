package playback

import (
	"context"
	"sync"
	"time"
)

// Sleeper waits between keystrokes. Sleep must return early with the
// context's error once ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// WallClock sleeps for real.
type WallClock struct{}

// Sleep implements Sleeper.
func (WallClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// VirtualClock advances a simulated clock instead of sleeping. It is used to
// analyze a session's timing without waiting for it.
type VirtualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
	sleeps  []time.Duration
	// OnSleep, if set, runs after every recorded sleep with the sleep index.
	OnSleep func(i int, d time.Duration)
}

// Sleep implements Sleeper.
func (v *VirtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	v.elapsed += d
	v.sleeps = append(v.sleeps, d)
	i := len(v.sleeps) - 1
	hook := v.OnSleep
	v.mu.Unlock()
	if hook != nil {
		hook(i, d)
	}
	return ctx.Err()
}

// Elapsed returns the total simulated time.
func (v *VirtualClock) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.elapsed
}

// Sleeps returns a copy of every recorded sleep.
func (v *VirtualClock) Sleeps() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]time.Duration(nil), v.sleeps...)
}
