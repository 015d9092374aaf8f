package checkout

import (
	"context"
	"time"
)

// Clock abstracts timer waits so the poller can be driven by a virtual
// clock in tests instead of wall time.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is cancelled, returning ctx.Err()
	// in the cancelled case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by wall time.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Visibility is the capability telling the poller whether the host surface
// is currently in the foreground. The poller never touches a platform
// global directly; a headless client just uses AlwaysVisible.
type Visibility interface {
	IsVisible() bool
}

// VisibilityFunc adapts a plain function to the Visibility interface.
type VisibilityFunc func() bool

func (f VisibilityFunc) IsVisible() bool { return f() }

// AlwaysVisible is the Visibility for surfaces that are never backgrounded.
var AlwaysVisible = VisibilityFunc(func() bool { return true })
