package request

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/guard"
)

// GuardDecideRequest asks the server to evaluate one guard decision with
// the live pattern table.
type GuardDecideRequest struct {
	Action        string            `json:"action"`
	Route         string            `json:"route"`
	URL           string            `json:"url"`
	BaseURL       string            `json:"base_url"`
	UserInitiated bool              `json:"user_initiated"`
	Origin        string            `json:"origin"`
	SelfOrigin    string            `json:"self_origin"`
	Payload       string            `json:"payload"`
	Kind          string            `json:"kind"`
	Tag           string            `json:"tag"`
	Attrs         map[string]string `json:"attrs"`
}

func (r *GuardDecideRequest) Validate() error {
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	switch guard.Action(r.Action) {
	case guard.ActionOpen, guard.ActionNavigation:
		if r.BaseURL == "" {
			return domain.NewInvalidInputError("base_url", "", "is required")
		}
	case guard.ActionMessage:
		if r.SelfOrigin == "" {
			return domain.NewInvalidInputError("self_origin", "", "is required")
		}
	case guard.ActionResource:
		if r.URL == "" {
			return domain.ErrMissingURL
		}
		switch guard.ResourceKind(r.Kind) {
		case guard.ResourceMedia, guard.ResourceManifest, guard.ResourceImage, guard.ResourceScript,
			guard.ResourceStylesheet, guard.ResourceFrame, guard.ResourceXHR:
		default:
			return domain.NewInvalidInputError("kind", r.Kind, "unknown resource kind")
		}
	case guard.ActionElement:
		if r.Tag == "" {
			return domain.NewInvalidInputError("tag", "", "is required")
		}
	default:
		return domain.NewInvalidInputError("action", r.Action, fmt.Sprintf("expected one of %s, %s, %s, %s, %s",
			guard.ActionOpen, guard.ActionNavigation, guard.ActionMessage, guard.ActionResource, guard.ActionElement))
	}
	return nil
}
