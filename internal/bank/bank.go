// Package bank maps a preset's sequence index within a setlist to the
// bank/slot label shown on the hardware ("01A", "01B", ... "32D").
//
// Label is the only place labels are computed; everything that prints or
// links a preset position goes through it.
package bank

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SlotsPerBank is the number of presets in one bank (slots A-D).
const SlotsPerBank = 4

// MaxProgram is the highest MIDI program change value.
const MaxProgram = 127

// maxBank keeps the index of the last slot of a bank within int.
const maxBank = math.MaxInt / SlotsPerBank

// Label returns the bank/slot label for a zero-based sequence index.
func Label(index int) string {
	if index < 0 {
		panic(fmt.Sprintf("bank: negative sequence index %d", index))
	}
	bank := index/SlotsPerBank + 1
	slot := rune('A' + index%SlotsPerBank)
	return fmt.Sprintf("%02d%c", bank, slot)
}

// Parse is the inverse of Label. It accepts an optional leading zero and a
// lower-case slot letter ("2a" and "02A" are the same preset).
func Parse(label string) (int, error) {
	l := strings.ToUpper(strings.TrimSpace(label))
	if len(l) < 2 {
		return 0, fmt.Errorf("label %q too short", label)
	}

	ch := l[len(l)-1]
	if ch < 'A' || ch >= 'A'+SlotsPerBank {
		return 0, fmt.Errorf("slot must be A-D, got %q", string(ch))
	}

	bank, err := strconv.Atoi(l[:len(l)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid bank in label %q: %w", label, err)
	}
	if bank < 1 {
		return 0, errors.New("bank must be at least 1")
	}
	if bank > maxBank {
		return 0, fmt.Errorf("bank %d out of range", bank)
	}

	return (bank-1)*SlotsPerBank + int(ch-'A'), nil
}

// Program returns the MIDI program change number that recalls the preset at
// label within the active setlist.
func Program(label string) (uint8, error) {
	idx, err := Parse(label)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx > MaxProgram {
		return 0, fmt.Errorf("label %s is beyond program %d", label, MaxProgram)
	}
	return uint8(idx), nil
}
