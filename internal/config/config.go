package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"helixcatalog/internal/bank"
)

//go:embed data/default.hcl
var defaultHCL []byte

const (
	// DefaultPlaceholder is used when a layout names no placeholders.
	DefaultPlaceholder = "New Preset"
	// DefaultDescription is used when a layout names no default description.
	DefaultDescription = "Factory preset."
	// CatchAllTitle is the title of the single group given to setlists the
	// layout does not describe.
	CatchAllTitle = "All Presets"
)

// Config is a decoded catalog layout.
type Config struct {
	Placeholders       []string
	DefaultDescription string
	Setlists           []Setlist
}

// Setlist describes the groups of every setlist whose name contains one of
// the Match substrings. Matching ignores case, spaces and underscores.
type Setlist struct {
	Label  string
	Match  []string
	Groups []Group
}

// Group is a titled half-open range [From, To) of preset indices.
type Group struct {
	Title       string
	From        int
	To          int
	Description string
}

// Contains reports whether index falls into the group.
func (g Group) Contains(index int) bool {
	return index >= g.From && index < g.To
}

type fileRoot struct {
	Placeholders       []string       `hcl:"placeholders,optional"`
	DefaultDescription *string        `hcl:"default_description,optional"`
	Setlists           []*setlistBody `hcl:"setlist,block"`
}

type setlistBody struct {
	Label  string       `hcl:"label,label"`
	Match  []string     `hcl:"match"`
	Groups []*groupBody `hcl:"group,block"`
}

type groupBody struct {
	Title       string  `hcl:"title,label"`
	From        int     `hcl:"from"`
	To          int     `hcl:"to"`
	Description *string `hcl:"description,optional"`
}

var defaultConfig = sync.OnceValue(func() *Config {
	cfg, err := Parse(defaultHCL, "default.hcl")
	if err != nil {
		panic(fmt.Sprintf("config: embedded layout: %v", err))
	}
	return cfg
})

// Default returns the embedded layout for the stock setlists.
func Default() *Config {
	return defaultConfig()
}

// LoadFile reads and parses the layout at path.
func LoadFile(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes an HCL layout. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := &Config{
		Placeholders:       root.Placeholders,
		DefaultDescription: DefaultDescription,
	}
	if len(cfg.Placeholders) == 0 {
		cfg.Placeholders = []string{DefaultPlaceholder}
	}
	if root.DefaultDescription != nil {
		cfg.DefaultDescription = *root.DefaultDescription
	}

	for _, sb := range root.Setlists {
		s, err := translateSetlist(sb)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		cfg.Setlists = append(cfg.Setlists, s)
	}
	return cfg, nil
}

// evalContext exposes slots_per_bank and slot("09A"), which turns a
// bank/slot label into the preset index it addresses.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"slots_per_bank": cty.NumberIntVal(bank.SlotsPerBank),
		},
		Functions: map[string]function.Function{
			"slot": slotFunc,
		},
	}
}

var slotFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "label", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		index, err := bank.Parse(args[0].AsString())
		if err != nil {
			return cty.UnknownVal(cty.Number), err
		}
		return cty.NumberIntVal(int64(index)), nil
	},
})

func translateSetlist(sb *setlistBody) (Setlist, error) {
	if len(sb.Match) == 0 {
		return Setlist{}, fmt.Errorf("setlist %q: match must not be empty", sb.Label)
	}
	for _, m := range sb.Match {
		if matchKey(m) == "" {
			return Setlist{}, fmt.Errorf("setlist %q: match entries must not be blank", sb.Label)
		}
	}
	s := Setlist{Label: sb.Label, Match: sb.Match}
	for _, gb := range sb.Groups {
		if gb.From < 0 || gb.To <= gb.From {
			return Setlist{}, fmt.Errorf("setlist %q: group %q: invalid range [%d, %d)", sb.Label, gb.Title, gb.From, gb.To)
		}
		g := Group{Title: gb.Title, From: gb.From, To: gb.To}
		if gb.Description != nil {
			g.Description = *gb.Description
		}
		s.Groups = append(s.Groups, g)
	}
	return s, nil
}

// IsPlaceholder reports whether name, ignoring surrounding whitespace, marks
// an unused slot.
func (c *Config) IsPlaceholder(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range c.Placeholders {
		if name == strings.TrimSpace(p) {
			return true
		}
	}
	return false
}

// GroupsFor returns the groups of the first setlist layout matching name. A
// setlist without a layout gets one catch-all group covering count presets.
func (c *Config) GroupsFor(name string, count int) []Group {
	key := matchKey(name)
	for _, s := range c.Setlists {
		for _, m := range s.Match {
			if strings.Contains(key, matchKey(m)) {
				return s.Groups
			}
		}
	}
	return []Group{{
		Title:       CatchAllTitle,
		From:        0,
		To:          count,
		Description: "All presets in this setlist.",
	}}
}

// GroupFor returns the group holding preset index of setlist name.
func (c *Config) GroupFor(name string, count, index int) (Group, bool) {
	for _, g := range c.GroupsFor(name, count) {
		if g.Contains(index) {
			return g, true
		}
	}
	return Group{}, false
}

func matchKey(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}
