package catalog

import (
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"helixcatalog/internal/bank"
	"helixcatalog/internal/config"
	"helixcatalog/internal/models"
	"helixcatalog/internal/preset"
)

// Setlist is the decoded content of one container, in sequence order.
type Setlist struct {
	Name    string
	Presets []*preset.Preset
}

// Entry is one occurrence of a preset in an index.
type Entry struct {
	Setlist string `json:"setlist"`
	Label   string `json:"label"`
	Name    string `json:"name"`
	Anchor  string `json:"anchor"`
}

// Item is a preset in the primary catalog.
type Item struct {
	Entry
	Decoded          string         `json:"decoded"`
	Description      string         `json:"description"`
	Group            string         `json:"group,omitempty"`
	GroupDescription string         `json:"group_description,omitempty"`
	Artists          []string       `json:"artists,omitempty"`
	Genres           []string       `json:"genres,omitempty"`
	Pickup           *Pickup        `json:"pickup,omitempty"`
	Preset           *preset.Preset `json:"preset"`
}

// Index maps a key to its occurrences in first-seen order.
type Index = orderedmap.OrderedMap[string, []Entry]

// Catalog is the output of one indexing pass.
type Catalog struct {
	Presets       []Item                                   `json:"presets"`
	Hardware      *Index                                   `json:"hardware"`
	Manufacturers *orderedmap.OrderedMap[string, []string] `json:"manufacturers"`
	Artists       *Index                                   `json:"artists"`
	Genres        *Index                                   `json:"genres"`
	Pickups       *orderedmap.OrderedMap[string, *Index]   `json:"pickups"`
}

type options struct {
	config   *config.Config
	resolver *models.Resolver
}

// Option customizes Build.
type Option func(*options)

// WithConfig sets the layout used for placeholder names, groups and the
// default description.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithResolver sets the resolver whose manufacturer table groups the
// hardware index.
func WithResolver(r *models.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// Anchor returns the cross-reference id of a preset: the setlist name with
// whitespace removed, a dash, and the bank/slot label.
func Anchor(setlist, label string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, setlist)
	return compact + "-" + label
}

// Build indexes setlists in order. Presets named with a placeholder are
// left out of the catalog and every index.
func Build(setlists []Setlist, ann *Annotations, opts ...Option) *Catalog {
	o := options{config: config.Default(), resolver: models.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{
		Presets:       []Item{},
		Hardware:      orderedmap.New[string, []Entry](),
		Manufacturers: orderedmap.New[string, []string](),
		Artists:       orderedmap.New[string, []Entry](),
		Genres:        orderedmap.New[string, []Entry](),
		Pickups:       orderedmap.New[string, *Index](),
	}

	for _, s := range setlists {
		for _, p := range s.Presets {
			if o.config.IsPlaceholder(p.Name) {
				continue
			}
			c.add(s, p, ann, o)
		}
	}
	return c
}

func (c *Catalog) add(s Setlist, p *preset.Preset, ann *Annotations, o options) {
	name := p.TrimmedName()
	label := bank.Label(p.Index)
	entry := Entry{
		Setlist: s.Name,
		Label:   label,
		Name:    name,
		Anchor:  Anchor(s.Name, label),
	}

	item := Item{
		Entry:       entry,
		Decoded:     name,
		Description: o.config.DefaultDescription,
		Preset:      p,
	}
	if g, ok := o.config.GroupFor(s.Name, len(s.Presets), p.Index); ok {
		item.Group = g.Title
		item.GroupDescription = g.Description
	}

	for _, hw := range hardware(p) {
		appendEntry(c.Hardware, hw, entry)
		c.addManufacturer(o.resolver.Manufacturer(hw), hw)
	}

	if a, ok := ann.Lookup(name); ok {
		if a.Decoded != "" {
			item.Decoded = a.Decoded
		}
		if a.Description != "" {
			item.Description = a.Description
		}
		item.Artists = distinct(a.Artists)
		item.Genres = distinct(a.Genres)
		item.Pickup = a.Pickup

		for _, artist := range item.Artists {
			appendEntry(c.Artists, artist, entry)
		}
		for _, genre := range item.Genres {
			appendEntry(c.Genres, genre, entry)
		}
		if a.Pickup != nil {
			byPosition, ok := c.Pickups.Get(a.Pickup.Type)
			if !ok {
				byPosition = orderedmap.New[string, []Entry]()
				c.Pickups.Set(a.Pickup.Type, byPosition)
			}
			appendEntry(byPosition, a.Pickup.Position, entry)
		}
	}

	c.Presets = append(c.Presets, item)
}

func (c *Catalog) addManufacturer(maker, hw string) {
	names, _ := c.Manufacturers.Get(maker)
	for _, n := range names {
		if n == hw {
			return
		}
	}
	c.Manufacturers.Set(maker, append(names, hw))
}

// hardware returns the distinct curated hardware names of the amp and preamp
// blocks of p, in chain order.
func hardware(p *preset.Preset) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, b := range p.Blocks() {
		if b.Category != models.CategoryAmp && b.Category != models.CategoryPreamp {
			continue
		}
		if b.Authority != models.Exact || b.Hardware == "" {
			continue
		}
		if _, dup := seen[b.Hardware]; dup {
			continue
		}
		seen[b.Hardware] = struct{}{}
		out = append(out, b.Hardware)
	}
	return out
}

// distinct returns values trimmed, without blanks or repeats, in order.
func distinct(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func appendEntry(idx *Index, key string, e Entry) {
	entries, _ := idx.Get(key)
	idx.Set(key, append(entries, e))
}

// Lookup finds a catalog item by setlist name and bank/slot label. Setlist
// names match case-insensitively.
func (c *Catalog) Lookup(setlist, label string) (Item, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, it := range c.Presets {
		if strings.EqualFold(it.Setlist, strings.TrimSpace(setlist)) && it.Label == label {
			return it, true
		}
	}
	return Item{}, false
}

// Keys returns the keys of an index in insertion order.
func Keys[V any](m *orderedmap.OrderedMap[string, V]) []string {
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
