package response

import "github.com/NeuralTrust/TrustFrame/pkg/patterns"

type GuardPolicyOutput struct {
	Route           string   `json:"route"`
	Active          bool     `json:"active"`
	ContentGuard    bool     `json:"content_guard"`
	PatternVersion  string   `json:"pattern_version"`
	AllowDomains    []string `json:"allow_domains"`
	LocationPollMs  int64    `json:"location_poll_ms"`
	PopupSweepMs    int64    `json:"popup_sweep_ms"`
	GestureWindowMs int64    `json:"gesture_window_ms"`
	ToastMs         int64    `json:"toast_ms"`
}

type GuardDecisionOutput struct {
	Action         string `json:"action"`
	PatternVersion string `json:"pattern_version"`
	patterns.Decision
}
