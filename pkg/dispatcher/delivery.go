package dispatcher

type Strategy string

const (
	StrategyDirect      Strategy = "direct"
	StrategyScrape      Strategy = "scrape"
	StrategyUnframe     Strategy = "unframe"
	StrategySanitize    Strategy = "sanitize"
	StrategyPassthrough Strategy = "passthrough"
)

// Fallback reasons, as reported by Delivery.Reason.
const (
	ReasonNoStream       = "no_stream"
	ReasonCircuitOpen    = "circuit_open"
	ReasonTimeout        = "timeout"
	ReasonUpstreamStatus = "upstream_status"
	ReasonNetwork        = "network"
)

const (
	SourceDirect  = "direct"
	SourceScraped = "scraped"
	SourceIframe  = "iframe"
	SourceProxy   = "proxy"
)

// Delivery tells the player how to load a watch URL. A fallback delivery
// always carries a usable IframeURL.
type Delivery struct {
	Success       bool     `json:"success"`
	Strategy      Strategy `json:"strategy"`
	StreamURL     string   `json:"streamUrl,omitempty"`
	HLSURL        string   `json:"hls_url,omitempty"`
	IframeURL     string   `json:"iframeUrl,omitempty"`
	Source        string   `json:"source"`
	Pattern       string   `json:"pattern,omitempty"`
	Fallback      bool     `json:"fallback,omitempty"`
	GuardRequired bool     `json:"guardRequired"`
	Error         string   `json:"error,omitempty"`
	OriginalURL   string   `json:"original_url,omitempty"`

	upstreamStatus int
	reason         string
}

// UpstreamStatus is the status the embed page answered with when a scrape
// failed on a non-2xx response, or 0.
func (d Delivery) UpstreamStatus() int {
	return d.upstreamStatus
}

// Reason is a short label for why the delivery fell back, or "".
func (d Delivery) Reason() string {
	return d.reason
}
