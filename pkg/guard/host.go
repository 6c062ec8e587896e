package guard

// OpenFunc is the window-opening primitive of the hosting page. A nil
// handle means nothing was opened.
type OpenFunc func(url, target, features string) WindowHandle

// WindowHandle is a window created through OpenFunc.
type WindowHandle interface {
	URL() string
	Close()
	Closed() bool
}

// Host is the hosting page as seen by the guards.
type Host interface {
	WindowOpen() OpenFunc
	SetWindowOpen(fn OpenFunc)
	Location() string
	Origin() string
	HistoryBack()
	// IsFramed reports whether the page itself runs inside a frame.
	IsFramed() bool
}

// Event is an input event observed on the hosting page.
type Event struct {
	Type    string
	Trusted bool
}

// Action names the primitive a decision was made for.
type Action string

const (
	ActionOpen       Action = "open"
	ActionNavigation Action = "navigation"
	ActionMessage    Action = "message"
	ActionSweep      Action = "popup-sweep"
	ActionResource   Action = "resource"
	ActionElement    Action = "element"
)

func isGesture(ev Event) bool {
	if !ev.Trusted {
		return false
	}
	switch ev.Type {
	case "click", "keydown", "touchstart":
		return true
	}
	return false
}
