package guard

import (
	"strings"
	"sync"

	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
	"github.com/sirupsen/logrus"
)

// ContentGuard filters ad-related loads and DOM insertions on the hosting
// page. It is off until enabled and only playback routes enable it.
type ContentGuard struct {
	eval     *Evaluator
	logger   *logrus.Logger
	observer Observer

	mu      sync.RWMutex
	enabled bool
}

func NewContentGuard(eval *Evaluator, logger *logrus.Logger, observer Observer) *ContentGuard {
	return &ContentGuard{eval: eval, logger: logger, observer: observer}
}

func (c *ContentGuard) Enable() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
}

func (c *ContentGuard) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

func (c *ContentGuard) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

func (c *ContentGuard) CheckResource(rawURL string, kind ResourceKind) patterns.Decision {
	if !c.Enabled() {
		return patterns.Clean()
	}
	d := c.eval.Resource(rawURL, kind)
	c.report(ActionResource, rawURL, d)
	return d
}

// CheckElement decides an element about to be inserted into the page.
func (c *ContentGuard) CheckElement(tag string, attrs map[string]string) patterns.Decision {
	if !c.Enabled() {
		return patterns.Clean()
	}
	tag = strings.ToLower(tag)
	var d patterns.Decision
	switch tag {
	case "a":
		d = c.eval.Table().Classify(patterns.TargetAnchor, attrs["href"])
	case "script":
		d = c.eval.Resource(attrs["src"], ResourceScript)
	case "iframe", "frame", "embed", "object":
		src := attrs["src"]
		if src == "" {
			src = attrs["data"]
		}
		d = c.eval.Resource(src, ResourceFrame)
	case "img":
		d = c.eval.Resource(attrs["src"], ResourceImage)
	case "video", "audio", "source", "track":
		d = c.eval.Resource(attrs["src"], ResourceMedia)
	case "link":
		d = c.eval.Resource(attrs["href"], ResourceStylesheet)
	case "div", "aside", "section", "ins":
		marker := strings.TrimSpace(attrs["id"] + " " + attrs["class"])
		d = c.eval.Table().Classify(patterns.TargetAnchor, marker)
	default:
		d = patterns.Clean()
	}
	c.report(ActionElement, tag, d)
	return d
}

func (c *ContentGuard) report(action Action, subject string, d patterns.Decision) {
	if c.observer != nil {
		c.observer("content", action, d)
	}
	if d.Blocked {
		c.logger.WithFields(logrus.Fields{
			"action":  string(action),
			"target":  subject,
			"verdict": string(d.Verdict),
			"rule":    d.Rule,
		}).Debug("blocked by content guard")
	}
}
