package response

import "github.com/NeuralTrust/TrustFrame/pkg/dispatcher"

// StreamOutput is the /extract-stream body.
type StreamOutput struct {
	Success     bool   `json:"success"`
	StreamURL   string `json:"streamUrl,omitempty"`
	HLSURL      string `json:"hls_url,omitempty"`
	Source      string `json:"source"`
	Pattern     string `json:"pattern,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
	IframeURL   string `json:"iframeUrl,omitempty"`
	Error       string `json:"error,omitempty"`
	OriginalURL string `json:"original_url,omitempty"`
}

func NewStreamOutput(d dispatcher.Delivery) StreamOutput {
	return StreamOutput{
		Success:     d.Success,
		StreamURL:   d.StreamURL,
		HLSURL:      d.HLSURL,
		Source:      d.Source,
		Pattern:     d.Pattern,
		Fallback:    d.Fallback,
		IframeURL:   d.IframeURL,
		Error:       d.Error,
		OriginalURL: d.OriginalURL,
	}
}
