// Package preset turns one raw container record into a decoded preset:
// display name, global settings, snapshot names and the two DSP chains.
package preset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/spf13/cast"

	"helixcatalog/internal/chain"
	"helixcatalog/internal/container"
	"helixcatalog/internal/models"
)

// PlaceholderName is the name the editor gives to unused slots.
const PlaceholderName = "New Preset"

// Snapshots is the number of snapshot slots stored per preset.
const Snapshots = 8

// Preset is the immutable result of decoding one record.
type Preset struct {
	Index     int            `json:"index"`
	Name      string         `json:"name"`
	Tempo     *float64       `json:"tempo,omitempty"`
	Topology0 string         `json:"topology0,omitempty"`
	Topology1 string         `json:"topology1,omitempty"`
	Snapshots []string       `json:"snapshots"`
	Chains    [2]chain.Chain `json:"chains"`
}

// Blocks returns the blocks of both DSPs, DSP 0 first.
func (p *Preset) Blocks() []chain.Block {
	out := make([]chain.Block, 0, len(p.Chains[0].Blocks)+len(p.Chains[1].Blocks))
	out = append(out, p.Chains[0].Blocks...)
	return append(out, p.Chains[1].Blocks...)
}

// TrimmedName is the display name without surrounding whitespace.
func (p *Preset) TrimmedName() string {
	return strings.TrimSpace(p.Name)
}

// Decode builds the preset stored at position index of its container.
// Missing meta or tone sections are not errors: the preset gets the
// placeholder name and no blocks.
func Decode(index int, rec container.Record, r *models.Resolver) *Preset {
	p := &Preset{
		Index:     index,
		Name:      PlaceholderName,
		Snapshots: []string{},
	}
	if name, err := jsonparser.GetString(rec.Meta, "name"); err == nil {
		p.Name = name
	}

	if len(rec.Tone) == 0 {
		p.Chains = [2]chain.Chain{{DSP: 0, Blocks: []chain.Block{}}, {DSP: 1, Blocks: []chain.Block{}}}
		return p
	}

	if global, _, _, err := jsonparser.Get(rec.Tone, "global"); err == nil {
		p.Tempo = tempo(global)
		p.Topology0 = scalar(global, "@topology0")
		p.Topology1 = scalar(global, "@topology1")
	}

	for i := 0; i < Snapshots; i++ {
		snap, dt, _, err := jsonparser.Get(rec.Tone, fmt.Sprintf("snapshot%d", i))
		if err != nil || dt != jsonparser.Object {
			continue
		}
		if valid, _ := jsonparser.GetBoolean(snap, "@valid"); !valid {
			continue
		}
		name, err := jsonparser.GetString(snap, "@name")
		if err != nil {
			name = fmt.Sprintf("Snapshot %d", i)
		}
		p.Snapshots = append(p.Snapshots, name)
	}

	b := chain.NewBuilder(r)
	for dsp := range p.Chains {
		raw, dt, _, err := jsonparser.Get(rec.Tone, fmt.Sprintf("dsp%d", dsp))
		if err != nil || dt != jsonparser.Object {
			raw = nil
		}
		p.Chains[dsp] = b.Build(dsp, json.RawMessage(raw))
	}
	return p
}

func tempo(global []byte) *float64 {
	raw, dt, _, err := jsonparser.Get(global, "@tempo")
	if err != nil || (dt != jsonparser.Number && dt != jsonparser.String) {
		return nil
	}
	v, err := cast.ToFloat64E(string(raw))
	if err != nil {
		return nil
	}
	return &v
}

func scalar(obj []byte, key string) string {
	raw, dt, _, err := jsonparser.Get(obj, key)
	if err != nil {
		return ""
	}
	switch dt {
	case jsonparser.String, jsonparser.Number, jsonparser.Boolean:
		return string(raw)
	}
	return ""
}
