package patterns

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed default_patterns.yaml
var defaultPatterns []byte

type LoadOptions struct {
	// File replaces the embedded table when set.
	File string
	// Extra holds rules decoded from configuration.
	Extra []map[string]interface{}
}

// Default returns the compiled embedded table.
func Default() (*Table, error) {
	return Parse(defaultPatterns)
}

// MustDefault panics if the embedded table does not compile.
func MustDefault() *Table {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse pattern table: %w", err)
	}
	if err := t.Compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern table %s: %w", path, err)
	}
	return Parse(data)
}

// Load builds the runtime table from the embedded default, an optional file
// override and extra configured rules.
func Load(opts LoadOptions) (*Table, error) {
	var (
		base *Table
		err  error
	)
	if opts.File != "" {
		base, err = LoadFile(opts.File)
	} else {
		base, err = Default()
	}
	if err != nil {
		return nil, err
	}
	if len(opts.Extra) == 0 {
		return base, nil
	}
	extra, err := DecodeRules(opts.Extra)
	if err != nil {
		return nil, err
	}
	return base.With(extra)
}

// DecodeRules turns loosely typed configuration maps into rules. Targets may
// be a list or a comma separated string.
func DecodeRules(raw []map[string]interface{}) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for i, m := range raw {
		var r Rule
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       splitListHook,
			WeaklyTypedInput: true,
			Result:           &r,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(m); err != nil {
			return nil, fmt.Errorf("extra rule #%d: %w", i, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func splitListHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice {
		return data, nil
	}
	var out []string
	for _, part := range strings.Split(data.(string), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}
