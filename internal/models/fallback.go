package models

import (
	"fmt"
	"strings"
	"unicode"
)

// structuralPrefixes are the firmware namespaces identifiers start with.
var structuralPrefixes = []string{"HD2_", "HX2_", "VIC_", "L6SPB_"}

// categoryTokens maps the leading token after the namespace to a category.
// Longer tokens come first so "Compressor" wins over "Comp".
var categoryTokens = []struct {
	token    string
	category string
}{
	{"RingModulator", CategoryMod},
	{"Compressor", CategoryComp},
	{"Tremolo", CategoryMod},
	{"Flanger", CategoryMod},
	{"Vibrato", CategoryMod},
	{"Preamp", CategoryPreamp},
	{"Reverb", CategoryReverb},
	{"Phaser", CategoryMod},
	{"Rotary", CategoryMod},
	{"Chorus", CategoryMod},
	{"FXLoop", CategoryFXLoop},
	{"Looper", CategoryLooper},
	{"Filter", CategoryFilter},
	{"VolPan", CategoryUtility},
	{"Delay", CategoryDelay},
	{"Synth", CategorySynth},
	{"Pitch", CategoryPitch},
	{"Dist", CategoryDrive},
	{"Gate", CategoryGate},
	{"Comp", CategoryComp},
	{"Poly", CategoryPitch},
	{"DM4", CategoryDrive},
	{"DL4", CategoryDelay},
	{"MM4", CategoryMod},
	{"FM4", CategorySynth},
	{"Amp", CategoryAmp},
	{"Cab", CategoryCab},
	{"App", CategoryRouting},
	{"Wah", CategoryWah},
	{"EQ", CategoryEQ},
}

// Guess builds a best-effort record from the shape of an identifier alone.
func Guess(id string) Record {
	rec := Record{
		Category: CategoryUnknown,
		Hardware: fmt.Sprintf("unresolved: `%s`", id),
	}

	rest, ok := stripStructuralPrefix(id)
	if !ok {
		rec.Alias = aliasOr(splitWords(id), id)
		return rec
	}

	for _, ct := range categoryTokens {
		if !strings.HasPrefix(rest, ct.token) || !atBoundary(rest[len(ct.token):]) {
			continue
		}
		rec.Category = ct.category
		rec.Alias = aliasOr(splitWords(rest[len(ct.token):]), ct.token)
		return rec
	}

	rec.Alias = aliasOr(splitWords(rest), id)
	return rec
}

func stripStructuralPrefix(id string) (string, bool) {
	for _, p := range structuralPrefixes {
		if strings.HasPrefix(id, p) {
			return id[len(p):], true
		}
	}
	return id, false
}

// atBoundary reports whether rest can follow a category token: it must start
// a new word or be empty.
func atBoundary(rest string) bool {
	if rest == "" {
		return true
	}
	r := []rune(rest)[0]
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '_'
}

func aliasOr(words []string, fallback string) string {
	if len(words) > 0 {
		return strings.Join(words, " ")
	}
	if fallback == "" {
		return CategoryUnknown
	}
	return fallback
}

// splitWords splits a CamelCase string at upper-case boundaries. Runs of
// capitals stay together ("USDouble" -> "US", "Double") and underscores are
// treated as separators.
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}
