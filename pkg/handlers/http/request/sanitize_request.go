package request

import (
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
)

type SanitizeRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

func (r *SanitizeRequest) Validate() error {
	if strings.TrimSpace(r.HTML) == "" {
		return domain.ErrMissingHTML
	}
	if strings.TrimSpace(r.URL) == "" {
		return domain.ErrMissingURL
	}
	return nil
}
