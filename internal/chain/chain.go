// Package chain reconstructs the ordered signal chain of one Helix DSP from
// the raw block map stored in a preset's tone.
package chain

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/buger/jsonparser"
	"github.com/spf13/cast"

	"helixcatalog/internal/models"
)

// DefaultPosition is assumed for blocks that carry no @position.
const DefaultPosition = 99

// Block is one audible stage of a chain.
type Block struct {
	Key       string           `json:"key"`
	DSP       int              `json:"dsp"`
	Path      int              `json:"path"`
	Position  int              `json:"position"`
	Model     string           `json:"model"`
	Category  string           `json:"category"`
	Alias     string           `json:"alias"`
	Hardware  string           `json:"hardware"`
	Authority models.Authority `json:"authority"`
	Enabled   bool             `json:"enabled"`
	Stereo    bool             `json:"stereo"`
	Type      string           `json:"type,omitempty"`
}

// PathName returns "A" for path 0 and "B" for path 1.
func (b Block) PathName() string {
	if b.Path == 1 {
		return "B"
	}
	return "A"
}

// Chain is the ordered block list of one DSP, sorted by (path, position, key).
type Chain struct {
	DSP    int     `json:"dsp"`
	Blocks []Block `json:"blocks"`
}

// Path returns the blocks on one path, in chain order.
func (c Chain) Path(path int) []Block {
	var out []Block
	for _, b := range c.Blocks {
		if b.Path == path {
			out = append(out, b)
		}
	}
	return out
}

// Builder extracts the chains of a single preset. Cabinets are deduplicated
// across all chains built by the same Builder, so use one per preset.
type Builder struct {
	resolver *models.Resolver
	cabs     map[string]struct{}
}

// NewBuilder returns a Builder resolving identifiers with r.
func NewBuilder(r *models.Resolver) *Builder {
	return &Builder{
		resolver: r,
		cabs:     make(map[string]struct{}),
	}
}

// Build reads the raw block map of DSP dsp. Entries that are not block
// objects with a string @model are ignored, as are routing blocks.
func (b *Builder) Build(dsp int, raw json.RawMessage) Chain {
	c := Chain{DSP: dsp, Blocks: []Block{}}
	if len(raw) == 0 {
		return c
	}

	var candidates []Block
	_ = jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.Object {
			return nil
		}
		blk, ok := b.parseBlock(dsp, string(key), value)
		if ok {
			candidates = append(candidates, blk)
		}
		return nil
	})

	slices.SortFunc(candidates, compareBlocks)

	for _, blk := range candidates {
		if blk.Category == models.CategoryCab {
			if _, dup := b.cabs[blk.Model]; dup {
				continue
			}
			b.cabs[blk.Model] = struct{}{}
		}
		c.Blocks = append(c.Blocks, blk)
	}
	return c
}

func compareBlocks(x, y Block) int {
	return cmp.Or(
		cmp.Compare(x.Path, y.Path),
		cmp.Compare(x.Position, y.Position),
		cmp.Compare(x.Key, y.Key),
	)
}

func (b *Builder) parseBlock(dsp int, key string, value []byte) (Block, bool) {
	model, err := jsonparser.GetString(value, "@model")
	if err != nil || model == "" {
		return Block{}, false
	}

	res := b.resolver.Resolve(model)
	if res.IsRouting() {
		return Block{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal(value, &fields); err != nil {
		return Block{}, false
	}

	return Block{
		Key:       key,
		DSP:       dsp,
		Path:      intField(fields, "@path", 0),
		Position:  intField(fields, "@position", DefaultPosition),
		Model:     model,
		Category:  res.Category,
		Alias:     res.Alias,
		Hardware:  res.Hardware,
		Authority: res.Authority,
		Enabled:   boolField(fields, "@enabled", true),
		Stereo:    boolField(fields, "@stereo", false),
		Type:      cast.ToString(fields["@type"]),
	}, true
}

func intField(fields map[string]any, name string, def int) int {
	v, ok := fields[name]
	if !ok || v == nil {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return n
}

func boolField(fields map[string]any, name string, def bool) bool {
	v, ok := fields[name]
	if !ok || v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}
