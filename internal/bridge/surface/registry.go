// Package surface tracks the host surface currently able to present
// verification UI.
//
// The registry is written only by host lifecycle hooks (attach, detach,
// reattach after a reconnect) and read by session controllers at the moment
// the engine becomes ready. Reads are lock-free snapshots.
package surface

import (
	"log/slog"
	"sync/atomic"

	"verifybridge/internal/bridge/ports"
)

// AttachObserver is notified after the attached surface changes.
type AttachObserver interface {
	SurfaceAttached(platform string)
	SurfaceDetached()
}

type holder struct {
	surface ports.Surface
}

type Registry struct {
	current  atomic.Pointer[holder]
	logger   *slog.Logger
	observer AttachObserver
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithObserver(o AttachObserver) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the attached surface or nil.
func (r *Registry) Current() ports.Surface {
	h := r.current.Load()
	if h == nil {
		return nil
	}
	return h.surface
}

// Attach makes s the current surface, replacing any previous one.
func (r *Registry) Attach(s ports.Surface) {
	if s == nil {
		return
	}
	prev := r.current.Swap(&holder{surface: s})
	if r.logger != nil {
		args := []any{"surface_id", s.ID(), "platform", s.Platform()}
		if prev != nil {
			args = append(args, "replaced_surface_id", prev.surface.ID())
		}
		r.logger.Info("host surface attached", args...)
	}
	if r.observer != nil {
		if prev != nil {
			r.observer.SurfaceDetached()
		}
		r.observer.SurfaceAttached(s.Platform())
	}
}

// Reattach restores a surface after a transient disconnect.
func (r *Registry) Reattach(s ports.Surface) {
	r.Attach(s)
}

// Detach clears the current surface if it is still s. A surface that was
// already replaced by a newer attach, even one reusing its ID, is left alone.
func (r *Registry) Detach(s ports.Surface) bool {
	h := r.current.Load()
	if h == nil || s == nil || h.surface != s {
		return false
	}
	if !r.current.CompareAndSwap(h, nil) {
		return false
	}
	if r.logger != nil {
		r.logger.Info("host surface detached", "surface_id", s.ID())
	}
	if r.observer != nil {
		r.observer.SurfaceDetached()
	}
	return true
}
