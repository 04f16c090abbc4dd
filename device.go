package main

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// bankSelectLSB is the controller Helix reads as a setlist selector.
const bankSelectLSB uint8 = 32

// Sender transmits MIDI messages.
type Sender interface {
	Send(msg midi.Message) error
}

// Helix is an open MIDI output connected to a Helix unit.
type Helix struct {
	out    drivers.Out
	logger *zap.Logger
}

// OpenHelix opens out. The returned closer releases the port and the
// driver.
func OpenHelix(out drivers.Out, logger *zap.Logger) (*Helix, func(), error) {
	if err := out.Open(); err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", out, err)
	}

	closer := func() {
		_ = out.Close()
		drivers.Close()
	}
	logger.Debug("Opened Helix MIDI output port.", zap.String("port", out.String()))
	return &Helix{out: out, logger: logger}, closer, nil
}

// Send transmits a MIDI message to the Helix output port.
func (h *Helix) Send(msg midi.Message) error {
	if !h.out.IsOpen() {
		if err := h.out.Open(); err != nil {
			return err
		}
	}
	h.logger.Debug("MIDI out.", zap.String("msg", msg.String()))
	return h.out.Send(msg.Bytes())
}

// findOutPort returns the MIDI output whose name best matches hint.
func findOutPort(hint string) (drivers.Out, error) {
	outs := midi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	i, err := matchPort(names, hint)
	if err != nil {
		return nil, err
	}
	return outs[i], nil
}

// matchPort picks a port by name: an exact case-insensitive match wins,
// then the first port whose name contains hint.
func matchPort(names []string, hint string) (int, error) {
	if len(names) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}

	want := strings.ToLower(strings.TrimSpace(hint))
	if want == "" {
		return -1, fmt.Errorf("empty MIDI port name")
	}
	for i, name := range names {
		if strings.ToLower(strings.TrimSpace(name)) == want {
			return i, nil
		}
	}
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), want) {
			return i, nil
		}
	}

	return -1, fmt.Errorf("no MIDI output contains %q (have %s)", hint, strings.Join(names, ", "))
}
