package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable_Compiles(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, table.Version)
	assert.NotEmpty(t, table.RulesFor(TargetURL))
	assert.NotEmpty(t, table.RulesFor(TargetScript))
	assert.NotEmpty(t, table.RulesFor(TargetHandler))
	assert.NotEmpty(t, table.RulesFor(TargetAnchor))
	assert.NotEmpty(t, table.RulesFor(TargetMessage))
}

func TestClassify_URL(t *testing.T) {
	table := MustDefault()

	tests := []struct {
		name    string
		input   string
		blocked bool
		verdict Verdict
	}{
		{"ad network", "https://ad.doubleclick.net/ddm/clk/123", true, VerdictAdDomain},
		{"pop-under network", "https://www.popads.net/pop.js", true, VerdictAdDomain},
		{"download", "https://files.example.com/setup.exe", true, VerdictDownloadTrigger},
		{"redirect", "https://go.example.com/redirect?to=x", true, VerdictSuspicious},
		{"offer marker", "https://example.com/claim-your-prize", true, VerdictSuspicious},
		{"popup keyword", "https://example.com/popup.html", true, VerdictSuspicious},
		{"allow-listed player", "https://www.youtube.com/embed/abc?redirect=1", false, VerdictAllowedDomain},
		{"plain page", "https://player.example.org/embed/42", false, VerdictClean},
		{"empty", "", false, VerdictClean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := table.Classify(TargetURL, tt.input)
			assert.Equal(t, tt.blocked, d.Blocked)
			assert.Equal(t, tt.verdict, d.Verdict)
			if tt.verdict != VerdictClean {
				assert.NotEmpty(t, d.Rule)
				assert.NotEmpty(t, d.Match)
			}
		})
	}
}

func TestClassify_Script(t *testing.T) {
	table := MustDefault()

	blocked := []string{
		`var w = window.open("https://x.example");`,
		`showPopup()`,
		`// Advertisement slot`,
		`loadAds(); var ads = [];`,
		`startDownload()`,
		`location = "/files/pack.rar"`,
	}
	for _, in := range blocked {
		assert.True(t, table.Matches(TargetScript, in), in)
	}

	clean := []string{
		`jwplayer("player").setup({file: "/hls/index.m3u8"});`,
		`var loads = 3; var padsize = 2;`,
	}
	for _, in := range clean {
		assert.False(t, table.Matches(TargetScript, in), in)
	}
}

func TestClassify_Anchor(t *testing.T) {
	table := MustDefault()

	assert.True(t, table.Matches(TargetAnchor, "https://example.com/special-offer"))
	assert.True(t, table.Matches(TargetAnchor, "https://example.com/go?clickid=77"))
	assert.True(t, table.Matches(TargetAnchor, "/promo/summer"))
	assert.False(t, table.Matches(TargetAnchor, "https://example.com/episodes/2"))
}

func TestClassify_PriorityAndTies(t *testing.T) {
	table := &Table{
		Version: "test",
		Rules: []Rule{
			{Name: "kw", Pattern: `(?i)promo`, Verdict: VerdictSuspicious, Priority: 10, Targets: []Target{TargetURL}},
			{Name: "allow", Pattern: `^https://trusted\.example/`, Verdict: VerdictAllowedDomain, Priority: 10, Targets: []Target{TargetURL}},
			{Name: "ads", Pattern: `doubleclick\.net`, Verdict: VerdictAdDomain, Priority: 90, Targets: []Target{TargetURL}},
		},
	}
	require.NoError(t, table.Compile())

	d := table.Classify(TargetURL, "https://trusted.example/promo")
	assert.False(t, d.Blocked)
	assert.Equal(t, "allow", d.Rule)

	d = table.Classify(TargetURL, "https://trusted.example/?u=doubleclick.net")
	assert.True(t, d.Blocked)
	assert.Equal(t, "ads", d.Rule)

	d = table.Classify(TargetURL, "https://other.example/promo")
	assert.True(t, d.Blocked)
	assert.Equal(t, VerdictSuspicious, d.Verdict)

	// Rules only apply to their own targets.
	assert.False(t, table.Matches(TargetScript, "promo"))
}

func TestClassify_Uncompiled(t *testing.T) {
	table := &Table{Version: "x", Rules: []Rule{{Name: "a", Pattern: "a", Verdict: VerdictSuspicious, Targets: []Target{TargetURL}}}}
	assert.Equal(t, Clean(), table.Classify(TargetURL, "a"))

	var nilTable *Table
	assert.Equal(t, Clean(), nilTable.Classify(TargetURL, "a"))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"no version", Table{}},
		{"bad regex", Table{Version: "v", Rules: []Rule{{Name: "r", Pattern: "(", Verdict: VerdictSuspicious, Targets: []Target{TargetURL}}}}},
		{"bad verdict", Table{Version: "v", Rules: []Rule{{Name: "r", Pattern: "a", Verdict: "maybe", Targets: []Target{TargetURL}}}}},
		{"bad target", Table{Version: "v", Rules: []Rule{{Name: "r", Pattern: "a", Verdict: VerdictSuspicious, Targets: []Target{"cookie"}}}}},
		{"no targets", Table{Version: "v", Rules: []Rule{{Name: "r", Pattern: "a", Verdict: VerdictSuspicious}}}},
		{"no name", Table{Version: "v", Rules: []Rule{{Pattern: "a", Verdict: VerdictSuspicious, Targets: []Target{TargetURL}}}}},
		{"duplicate", Table{Version: "v", Rules: []Rule{
			{Name: "r", Pattern: "a", Verdict: VerdictSuspicious, Targets: []Target{TargetURL}},
			{Name: "r", Pattern: "b", Verdict: VerdictSuspicious, Targets: []Target{TargetURL}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Compile())
		})
	}
}

func TestVerdict_Blocks(t *testing.T) {
	assert.True(t, VerdictSuspicious.Blocks())
	assert.True(t, VerdictAdDomain.Blocks())
	assert.True(t, VerdictDownloadTrigger.Blocks())
	assert.False(t, VerdictAllowedDomain.Blocks())
	assert.False(t, VerdictClean.Blocks())
}
