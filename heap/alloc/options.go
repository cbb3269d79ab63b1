package alloc

import "log/slog"

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger for growth events. Fitting allocations never log.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithDirtyTracker reports every byte range the allocator writes to dt.
func WithDirtyTracker(dt DirtyTracker) Option {
	return func(a *Allocator) {
		a.dt = dt
	}
}

// WithGrowHook calls fn with the requested increment before each heap
// extension, successful or not.
func WithGrowHook(fn func(n int)) Option {
	return func(a *Allocator) {
		a.onGrow = fn
	}
}
