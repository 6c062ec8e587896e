package dispatcher

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustFrame/pkg/common"
	"github.com/NeuralTrust/TrustFrame/pkg/domain"
	"github.com/NeuralTrust/TrustFrame/pkg/domain/mediation"
	"github.com/NeuralTrust/TrustFrame/pkg/extractor"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/cache"
	"github.com/NeuralTrust/TrustFrame/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustFrame/pkg/sanitizer"
	"github.com/NeuralTrust/TrustFrame/pkg/utils"
	"github.com/sirupsen/logrus"
)

const defaultLookupTimeout = 250 * time.Millisecond

type Config struct {
	ScrapeTimeout time.Duration
	UserAgent     string
	// ProxyBase prefixes the proxy routes handed out in iframe URLs.
	ProxyBase     string
	LookupTimeout time.Duration
}

// Dispatcher picks and executes a delivery strategy for a watch URL. Every
// failure past input validation degrades to an iframe delivery.
type Dispatcher struct {
	cfg       Config
	providers *Registry
	fetcher   httpx.Fetcher
	extractor *extractor.Extractor
	framing   cache.FramingMemory
	breakers  *httpx.HostBreakers
	logger    *logrus.Logger
}

func New(
	cfg Config,
	providers *Registry,
	fetcher httpx.Fetcher,
	framing cache.FramingMemory,
	breakers *httpx.HostBreakers,
	logger *logrus.Logger,
) *Dispatcher {
	if cfg.ScrapeTimeout <= 0 {
		cfg.ScrapeTimeout = common.DefaultScrapeTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = common.DefaultDesktopUserAgent
	}
	if cfg.ProxyBase == "" {
		cfg.ProxyBase = "/proxy"
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	cfg.ProxyBase = strings.TrimSuffix(cfg.ProxyBase, "/")
	if providers == nil {
		providers, _ = NewRegistry(nil)
	}
	return &Dispatcher{
		cfg:       cfg,
		providers: providers,
		fetcher:   fetcher,
		extractor: extractor.New(),
		framing:   framing,
		breakers:  breakers,
		logger:    logger,
	}
}

func (d *Dispatcher) Providers() *Registry {
	return d.providers
}

// Resolve applies the decision table to req, first match wins:
// a manifest URL is returned as is, scrapeable providers are scraped,
// framing-hostile providers are unframed and everything else is handed to
// an iframe under the runtime guard.
func (d *Dispatcher) Resolve(ctx context.Context, req *mediation.Request) Delivery {
	raw := req.RawURL()

	switch req.SourceType() {
	case mediation.SourceEmbedSanitized:
		return Delivery{
			Success:     true,
			Strategy:    StrategySanitize,
			IframeURL:   d.proxyURL("sanitized", raw),
			Source:      SourceProxy,
			OriginalURL: raw,
		}
	case mediation.SourceEmbedRaw:
		return d.iframe(ctx, req.Host(), raw, nil)
	}

	if extractor.IsManifestURL(raw) {
		return Delivery{
			Success:     true,
			Strategy:    StrategyDirect,
			StreamURL:   raw,
			Source:      SourceDirect,
			OriginalURL: raw,
		}
	}

	provider, ok := d.providers.Match(req.Provider(), req.Host())
	if ok {
		switch provider.Mode {
		case ModeScrape:
			return d.scrape(ctx, req.URL(), raw)
		case ModeUnframe:
			return Delivery{
				Success:     true,
				Strategy:    StrategyUnframe,
				IframeURL:   d.proxyURL(provider.Name, raw),
				Source:      SourceProxy,
				OriginalURL: raw,
			}
		}
	}
	return d.iframe(ctx, req.Host(), raw, nil)
}

// Extract scrapes rawURL regardless of provider.
func (d *Dispatcher) Extract(ctx context.Context, rawURL string) (Delivery, error) {
	u, err := mediation.ParseTargetURL(rawURL)
	if err != nil {
		return Delivery{}, err
	}
	raw := strings.TrimSpace(rawURL)
	if extractor.IsManifestURL(raw) {
		return Delivery{
			Success:     true,
			Strategy:    StrategyDirect,
			StreamURL:   raw,
			Source:      SourceDirect,
			OriginalURL: raw,
		}, nil
	}
	return d.scrape(ctx, u, raw), nil
}

// Fetch performs one bounded GET of target through the host's breaker,
// with the upstream User-Agent and a Referer on the target origin. Framing
// headers seen on the answer are learned even when it is not 2xx.
func (d *Dispatcher) Fetch(ctx context.Context, target *url.URL, timeout time.Duration) (*httpx.Page, error) {
	if timeout <= 0 {
		timeout = d.cfg.ScrapeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	host := strings.ToLower(target.Hostname())
	var page *httpx.Page
	fetch := func() error {
		p, err := d.fetcher.Fetch(ctx, target.String(), httpx.FetchOptions{
			UserAgent: d.userAgent(ctx),
			Referer:   httpx.Origin(target) + "/",
		})
		page = p
		return err
	}
	var err error
	if d.breakers != nil {
		err = d.breakers.For(host).Execute(fetch)
	} else {
		err = fetch()
	}
	if page != nil {
		d.Learn(ctx, host, page.StatusCode, page.Header)
	}
	return page, err
}

func (d *Dispatcher) scrape(ctx context.Context, target *url.URL, raw string) Delivery {
	host := strings.ToLower(target.Hostname())
	log := d.logger.WithFields(logrus.Fields{"url": raw, "host": host})

	page, err := d.Fetch(ctx, target, d.cfg.ScrapeTimeout)
	if err != nil {
		if errors.Is(err, domain.ErrCircuitOpen) {
			log.Debug("scrape skipped, breaker open")
		} else {
			log.WithError(err).Warn("embed page fetch failed")
		}
		del := d.iframe(ctx, host, raw, err)
		del.upstreamStatus = domain.UpstreamStatus(err)
		return del
	}

	base, _ := url.Parse(page.URL)
	if base == nil {
		base = target
	}
	m, ok := d.extractor.Extract(string(page.Body), base)
	if !ok {
		log.Debug("no stream url in embed page")
		return d.iframe(ctx, host, raw, domain.ErrNoStreamFound)
	}
	log.WithField("pattern", m.Pattern).Debug("stream url extracted")
	return Delivery{
		Success:     true,
		Strategy:    StrategyScrape,
		StreamURL:   m.URL,
		HLSURL:      m.URL,
		Source:      SourceScraped,
		Pattern:     m.Pattern,
		OriginalURL: raw,
	}
}

// iframe builds the passthrough delivery. A non-nil cause marks it as a
// fallback. Hosts known to refuse framing go through the unframe route.
func (d *Dispatcher) iframe(ctx context.Context, host, raw string, cause error) Delivery {
	del := Delivery{
		Success:       cause == nil,
		Strategy:      StrategyPassthrough,
		IframeURL:     raw,
		Source:        SourceIframe,
		Fallback:      cause != nil,
		GuardRequired: true,
		OriginalURL:   raw,
	}
	if cause != nil {
		del.Error = cause.Error()
		del.Source = SourceScraped
		del.reason = fallbackReason(cause)
	}
	if d.hostile(ctx, host) {
		del.Strategy = StrategyUnframe
		del.IframeURL = d.proxyURL("unframe", raw)
	}
	return del
}

func (d *Dispatcher) hostile(ctx context.Context, host string) bool {
	if d.framing == nil || host == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.LookupTimeout)
	defer cancel()
	hostile, err := d.framing.Hostile(ctx, host)
	if err != nil {
		d.logger.WithError(err).WithField("host", host).Debug("framing policy lookup failed")
		return false
	}
	return hostile
}

// localKnowledge is implemented by framing memories that can answer from
// process memory alone.
type localKnowledge interface {
	KnownLocally(host string) bool
}

// Learn records host as framing-hostile when header carries a blocking
// X-Frame-Options or CSP frame-ancestors directive. A 2xx answer without
// one clears a previous verdict.
func (d *Dispatcher) Learn(ctx context.Context, host string, status int, header http.Header) {
	if d.framing == nil || header == nil {
		return
	}
	xfo := header.Get("X-Frame-Options")
	csp := header.Get("Content-Security-Policy")
	if !sanitizer.HasFramingRestriction(xfo, csp) {
		if status >= 200 && status < 300 {
			d.unlearn(ctx, host)
		}
		return
	}
	reason := "frame-ancestors"
	if sanitizer.HasFramingRestriction(xfo, "") {
		reason = "x-frame-options"
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.LookupTimeout)
	defer cancel()
	if err := d.framing.Remember(ctx, host, reason); err == nil {
		d.logger.WithFields(logrus.Fields{"host": host, "reason": reason}).Debug("framing-hostile host learned")
	}
}

func (d *Dispatcher) unlearn(ctx context.Context, host string) {
	if lk, ok := d.framing.(localKnowledge); ok {
		if !lk.KnownLocally(host) {
			return
		}
	} else if !d.hostile(ctx, host) {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.LookupTimeout)
	defer cancel()
	if err := d.framing.Forget(ctx, host); err != nil {
		d.logger.WithError(err).WithField("host", host).Debug("failed to clear framing policy")
		return
	}
	d.logger.WithField("host", host).Debug("host no longer refuses framing")
}

func (d *Dispatcher) proxyURL(route, raw string) string {
	return d.cfg.ProxyBase + "/" + route + "?url=" + url.QueryEscape(raw)
}

func (d *Dispatcher) userAgent(ctx context.Context) string {
	clientUA, _ := ctx.Value(common.ClientUAContextKey).(string)
	return utils.UpstreamUserAgent(clientUA, d.cfg.UserAgent)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoStreamFound):
		return ReasonNoStream
	case errors.Is(err, domain.ErrCircuitOpen):
		return ReasonCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case domain.UpstreamStatus(err) != 0:
		return ReasonUpstreamStatus
	default:
		return ReasonNetwork
	}
}
