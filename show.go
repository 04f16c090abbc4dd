package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"helixcatalog/internal/catalog"
	"helixcatalog/internal/chain"
	"helixcatalog/internal/models"
)

var showCmd = &cobra.Command{
	Use:   "show <path>...",
	Short: "Print a terminal summary of every preset's signal chain",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var (
	setlistStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	presetStyle   = lipgloss.NewStyle().Bold(true)
	groupStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#2196F3"))
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	guessStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// summaryOrder lists the categories shown in a preset's one-line summary.
var summaryOrder = []string{
	models.CategoryAmp, models.CategoryPreamp, models.CategoryCab,
	models.CategoryDrive, models.CategoryDelay, models.CategoryMod,
	models.CategoryReverb, models.CategoryComp,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	res, err := a.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	setlist, group := "", ""
	for _, it := range res.Catalog.Presets {
		if it.Setlist != setlist {
			setlist, group = it.Setlist, ""
			fmt.Fprintln(w, setlistStyle.Render(setlist))
		}
		if it.Group != "" && it.Group != group {
			group = it.Group
			fmt.Fprintln(w, "  "+groupStyle.Render(group))
		}
		renderItem(w, it)
	}
	for _, s := range res.Skipped {
		fmt.Fprintln(w, skippedStyle.Render("skipped "+s.File+": "+s.Error))
	}
	return nil
}

func renderItem(w io.Writer, it catalog.Item) {
	title := it.Label + "  " + it.Name
	if it.Decoded != it.Name {
		title += "  (" + it.Decoded + ")"
	}
	fmt.Fprintln(w, "    "+presetStyle.Render(title))

	p := it.Preset
	if p.Tempo != nil && *p.Tempo > 0 {
		fmt.Fprintf(w, "      Tempo: %.0f BPM\n", *p.Tempo)
	}
	if len(p.Snapshots) > 0 {
		fmt.Fprintf(w, "      Snapshots: %s\n", strings.Join(p.Snapshots, ", "))
	}
	if it.Pickup != nil {
		fmt.Fprintf(w, "      Pickup: %s, %s\n", it.Pickup.Type, it.Pickup.Position)
	}
	for _, c := range p.Chains {
		if len(c.Blocks) == 0 {
			continue
		}
		fmt.Fprintf(w, "      DSP%d: %s\n", c.DSP, renderChain(c))
	}
	if line := summarize(p.Blocks()); line != "" {
		fmt.Fprintln(w, "      "+line)
	}
}

func renderChain(c chain.Chain) string {
	var parts []string
	for _, b := range c.Blocks {
		label := b.PathName() + ":" + b.Alias
		switch {
		case !b.Enabled:
			label = disabledStyle.Render(label)
		case b.Authority != models.Exact:
			label = guessStyle.Render(label + "?")
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " > ")
}

// summarize lists the hardware behind each block, grouped by category.
func summarize(blocks []chain.Block) string {
	byCategory := make(map[string][]string)
	var other []string
	for _, b := range blocks {
		name := b.Alias
		if b.Authority == models.Exact && b.Hardware != "" {
			name = b.Hardware
		}
		if isSummaryCategory(b.Category) {
			byCategory[b.Category] = append(byCategory[b.Category], name)
		} else {
			other = append(other, name)
		}
	}

	var parts []string
	for _, cat := range summaryOrder {
		if names := byCategory[cat]; len(names) > 0 {
			parts = append(parts, cat+": "+strings.Join(names, ", "))
		}
	}
	if len(other) > 0 {
		parts = append(parts, "Other: "+strings.Join(other, ", "))
	}
	return strings.Join(parts, " | ")
}

func isSummaryCategory(cat string) bool {
	for _, c := range summaryOrder {
		if c == cat {
			return true
		}
	}
	return false
}
