package guard

import (
	"context"
	"strings"
	"sync"
)

// RoutePolicy maps a route to the guards it activates. The popup guard
// runs on playback routes; the content guard runs on its own, narrower
// list and never on discovery pages.
type RoutePolicy struct {
	PlaybackRoutes     []string `json:"playback_routes"`
	ContentGuardRoutes []string `json:"content_guard_routes"`
}

func (p RoutePolicy) Active(route string) bool {
	return matchRoute(p.PlaybackRoutes, route)
}

func (p RoutePolicy) ContentGuard(route string) bool {
	return p.Active(route) && matchRoute(p.ContentGuardRoutes, route)
}

func matchRoute(prefixes []string, route string) bool {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	route = "/" + strings.Trim(route, "/")
	for _, p := range prefixes {
		p = "/" + strings.Trim(p, "/")
		if p == "/" {
			continue
		}
		if route == p || strings.HasPrefix(route, p+"/") {
			return true
		}
	}
	return false
}

// Session scopes both guards and any in-flight fetches to one viewing
// route. Close tears everything down and is safe to call more than once.
type Session struct {
	route   string
	active  bool
	popup   *PopupGuard
	content *ContentGuard

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewSession(parent context.Context, route string, policy RoutePolicy, popup *PopupGuard, content *ContentGuard) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		route:   route,
		active:  policy.Active(route),
		popup:   popup,
		content: content,
		ctx:     ctx,
		cancel:  cancel,
	}
	if s.active && popup != nil {
		popup.Install()
	}
	if policy.ContentGuard(route) && content != nil {
		content.Enable()
	}
	return s
}

func (s *Session) Route() string {
	return s.route
}

func (s *Session) Active() bool {
	return s.active
}

// Context is cancelled when the session closes; upstream fetches started
// for this route should use it.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		defer s.cancel()
		defer func() {
			if s.content != nil {
				s.content.Disable()
			}
		}()
		if s.popup != nil {
			s.popup.Uninstall()
		}
	})
}
