package guard

import (
	"io"
	"sync"

	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/sirupsen/logrus"
)

type fakeWindow struct {
	mu     sync.Mutex
	url    string
	closed bool
}

func (w *fakeWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *fakeWindow) navigate(u string) {
	w.mu.Lock()
	w.url = u
	w.mu.Unlock()
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

func (w *fakeWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

type fakeHost struct {
	mu       sync.Mutex
	open     OpenFunc
	location string
	origin   string
	framed   bool
	backs    int
	opened   []string
}

func newFakeHost() *fakeHost {
	h := &fakeHost{
		location: "https://app.example.com/watch/42",
		origin:   "https://app.example.com",
	}
	h.open = h.nativeOpen
	return h
}

func (h *fakeHost) nativeOpen(u, _, _ string) WindowHandle {
	h.mu.Lock()
	h.opened = append(h.opened, u)
	h.mu.Unlock()
	return &fakeWindow{url: u}
}

func (h *fakeHost) WindowOpen() OpenFunc {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

func (h *fakeHost) SetWindowOpen(fn OpenFunc) {
	h.mu.Lock()
	h.open = fn
	h.mu.Unlock()
}

func (h *fakeHost) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

func (h *fakeHost) navigate(u string) {
	h.mu.Lock()
	h.location = u
	h.mu.Unlock()
}

func (h *fakeHost) Origin() string { return h.origin }

func (h *fakeHost) HistoryBack() {
	h.mu.Lock()
	h.backs++
	h.mu.Unlock()
}

func (h *fakeHost) IsFramed() bool { return h.framed }

func (h *fakeHost) backCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.backs
}

func (h *fakeHost) openedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.opened)
}

type fakeSurface struct {
	mu    sync.Mutex
	shown []string
	hides int
}

func (s *fakeSurface) Show(message string) {
	s.mu.Lock()
	s.shown = append(s.shown, message)
	s.mu.Unlock()
}

func (s *fakeSurface) Hide() {
	s.mu.Lock()
	s.hides++
	s.mu.Unlock()
}

func (s *fakeSurface) shownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shown)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEvaluator() *Evaluator {
	return NewEvaluator(patterns.MustDefault(), []string{"partner.example.net"})
}
