package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/annotations.yaml
var annotationsYAML []byte

// Pickup is a recommended pickup configuration.
type Pickup struct {
	Type     string `json:"type" yaml:"type"`
	Position string `json:"position" yaml:"position"`
	Notes    string `json:"notes,omitempty" yaml:"notes"`
}

// Annotation holds the curated notes about one preset name.
type Annotation struct {
	Name        string   `yaml:"name"`
	Decoded     string   `yaml:"decoded"`
	Description string   `yaml:"description"`
	Artists     []string `yaml:"artists"`
	Genres      []string `yaml:"genres"`
	Pickup      *Pickup  `yaml:"pickup"`
}

// Annotations is a read-only table of annotations keyed by trimmed preset
// name. A nil *Annotations is an empty table.
type Annotations struct {
	byName map[string]Annotation
}

type annotationsFile struct {
	Presets []Annotation `yaml:"presets"`
}

var defaultAnnotations = sync.OnceValue(func() *Annotations {
	a, err := LoadAnnotations(bytes.NewReader(annotationsYAML))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded annotations: %v", err))
	}
	return a
})

// DefaultAnnotations returns the embedded notes on the factory presets.
func DefaultAnnotations() *Annotations {
	return defaultAnnotations()
}

// LoadAnnotations decodes an annotations document. Later entries for the
// same name replace earlier ones.
func LoadAnnotations(r io.Reader) (*Annotations, error) {
	var file annotationsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}

	a := &Annotations{byName: make(map[string]Annotation, len(file.Presets))}
	for i, ann := range file.Presets {
		key := strings.TrimSpace(ann.Name)
		if key == "" {
			return nil, fmt.Errorf("annotation %d: missing name", i)
		}
		if ann.Pickup != nil && (ann.Pickup.Type == "" || ann.Pickup.Position == "") {
			return nil, fmt.Errorf("annotation %q: pickup needs type and position", key)
		}
		ann.Name = key
		a.byName[key] = ann
	}
	return a, nil
}

// LoadAnnotationsFile reads an annotations document from path.
func LoadAnnotationsFile(path string) (*Annotations, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotations %s: %w", path, err)
	}
	defer f.Close()

	a, err := LoadAnnotations(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Lookup returns the annotation for a preset name. The name is trimmed
// before the lookup.
func (a *Annotations) Lookup(name string) (Annotation, bool) {
	if a == nil {
		return Annotation{}, false
	}
	ann, ok := a.byName[strings.TrimSpace(name)]
	return ann, ok
}

// Len returns the number of annotated names.
func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byName)
}
