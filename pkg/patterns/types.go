package patterns

import "regexp"

type Verdict string

const (
	VerdictSuspicious      Verdict = "suspicious"
	VerdictAdDomain        Verdict = "ad-domain"
	VerdictDownloadTrigger Verdict = "download-trigger"
	VerdictAllowedDomain   Verdict = "allowed-domain"
	VerdictClean           Verdict = "clean"
)

// Blocks reports whether the verdict vetoes the action it was computed for.
func (v Verdict) Blocks() bool {
	switch v {
	case VerdictSuspicious, VerdictAdDomain, VerdictDownloadTrigger:
		return true
	default:
		return false
	}
}

func (v Verdict) Valid() bool {
	switch v {
	case VerdictSuspicious, VerdictAdDomain, VerdictDownloadTrigger, VerdictAllowedDomain, VerdictClean:
		return true
	default:
		return false
	}
}

// Target is the kind of input a rule is evaluated against.
type Target string

const (
	TargetURL     Target = "url"
	TargetScript  Target = "script"
	TargetHandler Target = "handler"
	TargetAnchor  Target = "anchor"
	TargetMessage Target = "message"
)

func (t Target) Valid() bool {
	switch t {
	case TargetURL, TargetScript, TargetHandler, TargetAnchor, TargetMessage:
		return true
	default:
		return false
	}
}

type Rule struct {
	Name     string   `yaml:"name" mapstructure:"name" json:"name"`
	Pattern  string   `yaml:"pattern" mapstructure:"pattern" json:"pattern"`
	Verdict  Verdict  `yaml:"verdict" mapstructure:"verdict" json:"verdict"`
	Priority int      `yaml:"priority" mapstructure:"priority" json:"priority"`
	Targets  []Target `yaml:"targets" mapstructure:"targets" json:"targets"`

	re *regexp.Regexp
}

func (r *Rule) appliesTo(target Target) bool {
	for _, t := range r.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// Decision is the outcome of classifying a single input. Match holds the
// matched substring for diagnostics.
type Decision struct {
	Blocked bool    `json:"blocked"`
	Verdict Verdict `json:"verdict"`
	Rule    string  `json:"rule,omitempty"`
	Match   string  `json:"match,omitempty"`
}

func Clean() Decision {
	return Decision{Blocked: false, Verdict: VerdictClean}
}

func Allowed(rule, match string) Decision {
	return Decision{Blocked: false, Verdict: VerdictAllowedDomain, Rule: rule, Match: match}
}

func Blocked(verdict Verdict, rule, match string) Decision {
	return Decision{Blocked: true, Verdict: verdict, Rule: rule, Match: match}
}
