package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"helixcatalog/internal/app"
	"helixcatalog/internal/bank"
	"helixcatalog/internal/catalog"
	"helixcatalog/internal/ctxlog"
	"helixcatalog/internal/models"
)

var (
	exportOut    string
	exportPretty bool
)

var exportCmd = &cobra.Command{
	Use:   "export <path>...",
	Short: "Decode presets and write the catalog with its indices as JSON",
	Long: `Decodes every .hls/.hlx file under the given paths and writes the
catalog document consumed by report renderers: presets, hardware,
manufacturers, artists, genres, pickups and the files that were skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var getCmd = &cobra.Command{
	Use:   "get <file> <label>",
	Short: "Print one decoded preset as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <model-id>...",
	Short: "Print what model identifiers resolve to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "Indent the JSON output")
}

// exportDoc is the document written by export.
type exportDoc struct {
	RunID string `json:"run_id"`
	*catalog.Catalog
	Skipped []app.Skipped `json:"skipped"`
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	res, err := a.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	doc := exportDoc{RunID: res.RunID, Catalog: res.Catalog, Skipped: res.Skipped}
	if err := writeJSON(w, doc, exportPretty); err != nil {
		return err
	}
	ctxlog.FromContext(cmd.Context()).Info("Catalog exported.",
		zap.String("out", exportOut),
		zap.Int("presets", len(res.Catalog.Presets)),
	)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	index, err := bank.Parse(args[1])
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	s, err := a.DecodeFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.Presets) {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%s holds %d presets, no %s", s.Name, len(s.Presets), bank.Label(index))}
	}
	return writeJSON(cmd.OutOrStdout(), s.Presets[index], true)
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	out := make([]models.Resolution, 0, len(args))
	for _, id := range args {
		out = append(out, a.Resolver().Resolve(id))
	}
	return writeJSON(cmd.OutOrStdout(), out, true)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	var (
		asJSON []byte
		err    error
	)
	if pretty {
		asJSON, err = json.MarshalIndent(v, "", "  ")
	} else {
		asJSON, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	asJSON = append(asJSON, '\n')
	_, err = w.Write(asJSON)
	return err
}
