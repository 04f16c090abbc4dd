package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/zap"

	"helixcatalog/internal/bank"
)

var (
	recallChannel uint8
	recallSetlist int
	recallPort    string
)

var recallCmd = &cobra.Command{
	Use:   "recall <label>",
	Short: "Select a preset on connected Helix hardware by bank/slot label",
	Long: `Sends the MIDI messages that select a preset, e.g. "02B".

With --setlist the setlist is chosen first with CC 32. The preset is then
selected with a program change on --channel.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecall,
}

func init() {
	recallCmd.Flags().Uint8Var(&recallChannel, "channel", 1, "MIDI channel (1-16)")
	recallCmd.Flags().IntVar(&recallSetlist, "setlist", -1, "Setlist number to select first (0-based, -1 keeps the current one)")
	recallCmd.Flags().StringVar(&recallPort, "port", "helix", "Substring of the MIDI output port name")
}

func runRecall(cmd *cobra.Command, args []string) error {
	msgs, err := recallMessages(recallChannel, recallSetlist, args[0])
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	logger.Debug("Available MIDI outputs.", zap.String("ports", midi.GetOutPorts().String()))
	out, err := findOutPort(recallPort)
	if err != nil {
		return fmt.Errorf("could not find Helix MIDI out port: %w", err)
	}

	helix, closer, err := OpenHelix(out, logger)
	if err != nil {
		return fmt.Errorf("failed to open Helix output: %w", err)
	}
	defer closer()

	if err := sendAll(helix, msgs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recalled %s.\n", args[0])
	return nil
}

// recallMessages returns the messages selecting the preset at label on a
// 1-based channel. A negative setlist leaves the current setlist alone.
func recallMessages(channel uint8, setlist int, label string) ([]midi.Message, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("channel must be 1-16, got %d", channel)
	}
	program, err := bank.Program(label)
	if err != nil {
		return nil, err
	}
	if setlist > 127 {
		return nil, fmt.Errorf("setlist must be 0-127, got %d", setlist)
	}

	ch := channel - 1
	var msgs []midi.Message
	if setlist >= 0 {
		msgs = append(msgs, midi.ControlChange(ch, bankSelectLSB, uint8(setlist)))
	}
	return append(msgs, midi.ProgramChange(ch, program)), nil
}

func sendAll(s Sender, msgs []midi.Message) error {
	for _, m := range msgs {
		if err := s.Send(m); err != nil {
			return fmt.Errorf("send %s: %w", m, err)
		}
	}
	return nil
}
