package guard

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/sirupsen/logrus"
)

type State int

const (
	Uninstalled State = iota
	Installed
)

func (s State) String() string {
	if s == Installed {
		return "installed"
	}
	return "uninstalled"
}

const (
	DefaultLocationPoll  = 500 * time.Millisecond
	DefaultPopupSweep    = 2 * time.Second
	DefaultGestureWindow = 100 * time.Millisecond
)

// Observer receives every decision a guard makes.
type Observer func(guard string, action Action, d patterns.Decision)

type PopupOption func(*PopupGuard)

func WithToast(t *Toast) PopupOption {
	return func(g *PopupGuard) { g.toast = t }
}

func WithObserver(o Observer) PopupOption {
	return func(g *PopupGuard) { g.observer = o }
}

func WithIntervals(locationPoll, popupSweep, gestureWindow time.Duration) PopupOption {
	return func(g *PopupGuard) {
		if locationPoll > 0 {
			g.locationPoll = locationPoll
		}
		if popupSweep > 0 {
			g.popupSweep = popupSweep
		}
		if gestureWindow > 0 {
			g.gestureWindow = gestureWindow
		}
	}
}

// PopupGuard intercepts window.open, unrequested top-level navigation and
// cross-frame messages on the hosting page while it is installed.
type PopupGuard struct {
	host     Host
	eval     *Evaluator
	logger   *logrus.Logger
	toast    *Toast
	observer Observer
	now      func() time.Time

	locationPoll  time.Duration
	popupSweep    time.Duration
	gestureWindow time.Duration

	mu           sync.Mutex
	state        State
	original     OpenFunc
	popups       map[uint64]WindowHandle
	nextPopup    uint64
	gestureUntil time.Time
	lastLocation string
	stop         context.CancelFunc
	loops        *sync.WaitGroup
}

func NewPopupGuard(host Host, eval *Evaluator, logger *logrus.Logger, opts ...PopupOption) *PopupGuard {
	g := &PopupGuard{
		host:          host,
		eval:          eval,
		logger:        logger,
		now:           time.Now,
		locationPoll:  DefaultLocationPoll,
		popupSweep:    DefaultPopupSweep,
		gestureWindow: DefaultGestureWindow,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *PopupGuard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Install saves the host's window.open and replaces it with the guarded
// wrapper. It is a no-op when already installed or when the page is
// itself framed, and reports whether it installed.
func (g *PopupGuard) Install() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Installed {
		return false
	}
	if g.host.IsFramed() {
		g.logger.Debug("popup guard skipped: page is framed")
		return false
	}

	g.original = g.host.WindowOpen()
	g.host.SetWindowOpen(g.open)
	g.lastLocation = g.host.Location()
	g.popups = make(map[uint64]WindowHandle)

	ctx, cancel := context.WithCancel(context.Background())
	loops := &sync.WaitGroup{}
	loops.Add(2)
	go g.every(ctx, loops, g.locationPoll, g.checkLocation)
	go g.every(ctx, loops, g.popupSweep, g.sweepPopups)
	g.stop = cancel
	g.loops = loops
	g.state = Installed

	g.logger.WithField("location", g.lastLocation).Debug("popup guard installed")
	return true
}

// Uninstall restores the saved window.open, stops both timers and forgets
// tracked popups. It returns once the timers have exited.
func (g *PopupGuard) Uninstall() bool {
	g.mu.Lock()
	if g.state != Installed {
		g.mu.Unlock()
		return false
	}
	g.host.SetWindowOpen(g.original)
	g.stop()
	loops := g.loops
	g.stop = nil
	g.loops = nil
	g.popups = nil
	g.state = Uninstalled
	g.mu.Unlock()

	loops.Wait()
	g.toast.Dismiss()
	g.logger.Debug("popup guard uninstalled")
	return true
}

// RecordGesture opens the short user-initiated window for trusted click,
// keydown and touchstart events.
func (g *PopupGuard) RecordGesture(ev Event) {
	if !isGesture(ev) {
		return
	}
	g.mu.Lock()
	g.gestureUntil = g.now().Add(g.gestureWindow)
	g.mu.Unlock()
}

func (g *PopupGuard) userInitiatedLocked() bool {
	return !g.gestureUntil.IsZero() && !g.now().After(g.gestureUntil)
}

// InterceptMessage decides a message posted to the hosting page.
func (g *PopupGuard) InterceptMessage(origin, payload string) patterns.Decision {
	if g.State() != Installed {
		return patterns.Clean()
	}
	d := g.eval.Message(origin, g.host.Origin(), payload)
	g.report(ActionMessage, origin, d)
	return d
}

// TrackedPopups is the number of live windows opened through the guard.
func (g *PopupGuard) TrackedPopups() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.popups)
}

func (g *PopupGuard) open(rawURL, target, features string) WindowHandle {
	g.mu.Lock()
	original := g.original
	installed := g.state == Installed
	gesture := g.userInitiatedLocked()
	g.mu.Unlock()

	if original == nil {
		return nil
	}
	if !installed {
		return original(rawURL, target, features)
	}

	// the page's own origin, never its current location, which embedded
	// content may have moved
	d := g.eval.Navigation(rawURL, g.host.Origin(), gesture)
	g.report(ActionOpen, rawURL, d)
	if d.Blocked {
		return nil
	}

	handle := original(rawURL, target, features)
	if handle == nil {
		return nil
	}
	g.mu.Lock()
	if g.state == Installed {
		g.nextPopup++
		g.popups[g.nextPopup] = handle
	}
	g.mu.Unlock()
	return handle
}

func (g *PopupGuard) checkLocation() {
	current := g.host.Location()

	g.mu.Lock()
	if g.state != Installed || current == "" || current == g.lastLocation {
		g.mu.Unlock()
		return
	}
	if g.userInitiatedLocked() {
		g.lastLocation = current
		g.mu.Unlock()
		return
	}
	previous := g.lastLocation
	d := g.eval.Navigation(current, previous, false)
	if !d.Blocked {
		g.lastLocation = current
	}
	g.mu.Unlock()

	if d.Blocked {
		g.host.HistoryBack()
		g.report(ActionNavigation, current, d)
	}
}

func (g *PopupGuard) sweepPopups() {
	g.mu.Lock()
	if g.state != Installed {
		g.mu.Unlock()
		return
	}
	snapshot := make(map[uint64]WindowHandle, len(g.popups))
	for id, h := range g.popups {
		snapshot[id] = h
	}
	g.mu.Unlock()

	base := g.host.Origin()
	var drop []uint64
	for id, h := range snapshot {
		if h.Closed() {
			drop = append(drop, id)
			continue
		}
		target := h.URL()
		d := g.eval.Navigation(target, base, true)
		if d.Blocked {
			h.Close()
			drop = append(drop, id)
			g.report(ActionSweep, target, d)
		}
	}

	if len(drop) == 0 {
		return
	}
	g.mu.Lock()
	for _, id := range drop {
		delete(g.popups, id)
	}
	g.mu.Unlock()
}

func (g *PopupGuard) every(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, fn func()) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

func (g *PopupGuard) report(action Action, subject string, d patterns.Decision) {
	if g.observer != nil {
		g.observer("popup", action, d)
	}
	if !d.Blocked {
		return
	}
	g.logger.WithFields(logrus.Fields{
		"action":  string(action),
		"target":  subject,
		"verdict": string(d.Verdict),
		"rule":    d.Rule,
		"match":   d.Match,
	}).Info("blocked by popup guard")
	g.toast.Notify(blockedMessage(action))
}

func blockedMessage(action Action) string {
	switch action {
	case ActionNavigation:
		return "Blocked a redirect"
	case ActionMessage:
		return "Blocked a message from embedded content"
	default:
		return "Blocked a popup"
	}
}
