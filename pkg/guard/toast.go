package guard

import (
	"sync"
	"time"
)

const DefaultToastDuration = 3 * time.Second

// Surface renders the toast on the hosting page.
type Surface interface {
	Show(message string)
	Hide()
}

// Toast is an auto-dismissing notification. While one is visible further
// notifications are dropped. A nil *Toast is a valid no-op.
type Toast struct {
	mu       sync.Mutex
	surface  Surface
	duration time.Duration
	visible  bool
	timer    *time.Timer
}

func NewToast(surface Surface, duration time.Duration) *Toast {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Toast{surface: surface, duration: duration}
}

// Notify shows message and reports whether it was displayed.
func (t *Toast) Notify(message string) bool {
	if t == nil || t.surface == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.visible {
		return false
	}
	t.visible = true
	t.surface.Show(message)
	t.timer = time.AfterFunc(t.duration, t.Dismiss)
	return true
}

func (t *Toast) Dismiss() {
	if t == nil || t.surface == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.visible {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.visible = false
	t.surface.Hide()
}

func (t *Toast) Visible() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}
