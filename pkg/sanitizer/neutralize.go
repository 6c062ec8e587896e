package sanitizer

import (
	"regexp"
	"strings"

	"github.com/NeuralTrust/TrustFrame/pkg/patterns"
)

var (
	locationAssignRe = regexp.MustCompile(`\b(?:window|top|self|parent|document)\.location(?:\.href)?\s*=\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `]\s*;?`)
	locationCallRe   = regexp.MustCompile(`\b(?:window|top|self|parent|document)\.location\.(?:replace|assign)\s*\(\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `]\s*\)\s*;?`)
	timerBlockRe     = regexp.MustCompile(`\bset(?:Timeout|Interval)\s*\(\s*(?:function\s*\w*\s*\([^)]*\)|\([^)]*\)\s*=>|\w+\s*=>)\s*\{([^{}]*)\}\s*(?:,[^;)]*)?\)\s*;?`)
	timerOpenRe      = regexp.MustCompile(`window\.open\s*\(\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `]`)
)

// neutralizer comments out navigation statements whose target is
// classified as blocked. The comment keeps the target but drops the
// statement, so a second pass finds nothing to rewrite.
type neutralizer struct {
	table *patterns.Table
}

func (n neutralizer) blocked(target string) bool {
	return n.table.Matches(patterns.TargetURL, target) || n.table.Matches(patterns.TargetScript, target)
}

func (n neutralizer) rewrite(code string) (string, int) {
	count := 0
	code = timerBlockRe.ReplaceAllStringFunc(code, func(block string) string {
		body := timerBlockRe.FindStringSubmatch(block)[1]
		m := timerOpenRe.FindStringSubmatch(body)
		if m == nil || !n.blocked(m[1]) {
			return block
		}
		count++
		return comment("timed window", m[1])
	})
	for _, re := range []*regexp.Regexp{locationAssignRe, locationCallRe} {
		code = re.ReplaceAllStringFunc(code, func(stmt string) string {
			target := re.FindStringSubmatch(stmt)[1]
			if !n.blocked(target) {
				return stmt
			}
			count++
			return comment("navigation", target)
		})
	}
	return code, count
}

func comment(kind, target string) string {
	return "/* neutralized " + kind + ": " + strings.ReplaceAll(target, "*/", "*\\/") + " */"
}
