package models

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/models.yaml
var embeddedTable []byte

// OtherManufacturer groups hardware no manufacturer rule matches.
const OtherManufacturer = "Other"

type tableFile struct {
	Manufacturers []manufacturer `yaml:"manufacturers"`
	Models        []modelEntry   `yaml:"models"`
}

type manufacturer struct {
	Name  string   `yaml:"name"`
	Match []string `yaml:"match"`
}

type modelEntry struct {
	ID     string `yaml:"id"`
	Record `yaml:",inline"`
}

// Resolver looks identifiers up in a curated table and falls back to Guess.
// It is safe for concurrent use; the table is never modified after load.
type Resolver struct {
	table         map[string]Record
	manufacturers []manufacturer

	mu   sync.RWMutex
	memo map[string]Resolution
}

// NewResolver builds a resolver over an already loaded table.
func NewResolver(table map[string]Record) *Resolver {
	if table == nil {
		table = map[string]Record{}
	}
	return &Resolver{
		table: table,
		memo:  make(map[string]Resolution),
	}
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	r, err := Load(strings.NewReader(string(embeddedTable)))
	if err != nil {
		panic(fmt.Errorf("embedded model table: %w", err))
	}
	return r
})

// Default returns the resolver over the embedded knowledge base.
func Default() *Resolver {
	return defaultResolver()
}

// Load reads a YAML knowledge base. Later duplicates of an identifier replace
// earlier ones.
func Load(r io.Reader) (*Resolver, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to parse model table: %w", err)
	}

	table := make(map[string]Record, len(tf.Models))
	for i, m := range tf.Models {
		if m.ID == "" {
			return nil, fmt.Errorf("model entry %d has no id", i)
		}
		if m.Category == "" {
			return nil, fmt.Errorf("model %s has no category", m.ID)
		}
		table[m.ID] = m.Record
	}

	res := NewResolver(table)
	res.manufacturers = tf.Manufacturers
	return res, nil
}

// LoadFile reads a YAML knowledge base from disk.
func LoadFile(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of curated identifiers.
func (r *Resolver) Len() int {
	return len(r.table)
}

// Resolve maps an identifier to its record. It never fails.
func (r *Resolver) Resolve(id string) Resolution {
	r.mu.RLock()
	res, ok := r.memo[id]
	r.mu.RUnlock()
	if ok {
		return res
	}

	if rec, ok := r.table[id]; ok {
		res = Resolution{ID: id, Record: rec, Authority: Exact}
	} else {
		res = Resolution{ID: id, Record: Guess(id), Authority: Fallback}
	}

	r.mu.Lock()
	r.memo[id] = res
	r.mu.Unlock()
	return res
}

// Manufacturer returns the maker of a hardware name, matched
// case-insensitively against the manufacturer table in order.
func (r *Resolver) Manufacturer(hardware string) string {
	lower := strings.ToLower(hardware)
	for _, m := range r.manufacturers {
		for _, key := range m.Match {
			if strings.Contains(lower, strings.ToLower(key)) {
				return m.Name
			}
		}
	}
	return OtherManufacturer
}
