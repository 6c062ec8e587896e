package dispatcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/domain"
)

type Mode string

const (
	// ModeScrape providers expose a manifest inside their embed HTML.
	ModeScrape Mode = "scrape"
	// ModeUnframe providers refuse to be framed and are re-served through
	// their own proxy route.
	ModeUnframe Mode = "unframe"
)

type Provider struct {
	Name  string   `mapstructure:"name" yaml:"name" json:"name"`
	Hosts []string `mapstructure:"hosts" yaml:"hosts" json:"hosts"`
	Mode  Mode     `mapstructure:"mode" yaml:"mode" json:"mode"`
}

func (p Provider) matchesHost(host string) bool {
	for _, h := range p.Hosts {
		h = strings.ToLower(strings.TrimPrefix(h, "."))
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Registry resolves providers by explicit name or by the host of the URL.
type Registry struct {
	byName map[string]Provider
	order  []string
}

func NewRegistry(providers []Provider) (*Registry, error) {
	r := &Registry{byName: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		if p.Name == "" {
			return nil, fmt.Errorf("provider without name")
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", p.Name)
		}
		switch p.Mode {
		case ModeScrape, ModeUnframe:
		default:
			return nil, fmt.Errorf("provider %q: unknown mode %q", p.Name, p.Mode)
		}
		hosts := make([]string, 0, len(p.Hosts))
		for _, h := range p.Hosts {
			if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
				hosts = append(hosts, h)
			}
		}
		p.Hosts = hosts
		r.byName[p.Name] = p
		r.order = append(r.order, p.Name)
	}
	sort.Strings(r.order)
	return r, nil
}

// Lookup finds a provider by name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

// Match returns the provider that declares name, or failing that the one
// whose hosts cover host.
func (r *Registry) Match(name, host string) (Provider, bool) {
	if name != "" {
		if p, err := r.Lookup(name); err == nil {
			return p, true
		}
	}
	host = strings.ToLower(host)
	for _, n := range r.order {
		if p := r.byName[n]; p.matchesHost(host) {
			return p, true
		}
	}
	return Provider{}, false
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
