package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"helixcatalog/internal/app"
	"helixcatalog/internal/catalog"
	"helixcatalog/internal/models"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <path>...",
	Short: "Serve the catalog as Model Context Protocol tools over stdio",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMCP,
}

// Index kinds accepted by the list-index tool.
const (
	indexHardware = "hardware"
	indexArtist   = "artist"
	indexGenre    = "genre"
	indexPickup   = "pickup"
)

// catalogTools answers MCP tool calls from one decoded catalog.
type catalogTools struct {
	result   *app.Result
	resolver *models.Resolver
	logger   *zap.Logger
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	res, err := a.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	t := &catalogTools{result: res, resolver: a.Resolver(), logger: logger.Named("mcp")}
	s := server.NewMCPServer(
		"Helix Catalog MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	t.register(s)

	t.logger.Info("Starting Helix catalog MCP server.", zap.Int("presets", len(res.Catalog.Presets)))
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (t *catalogTools) register(s *server.MCPServer) {
	schemaTool := mcp.NewTool("helix_describe-schema",
		mcp.WithDescription("Returns the JSON schema of a decoded Helix preset as returned by helix_get-preset."),
	)
	s.AddTool(schemaTool, t.describeSchema)

	getPresetTool := mcp.NewTool("helix_get-preset",
		mcp.WithDescription("Returns a decoded preset with its signal chain and curated notes."),
		mcp.WithString("setlist", mcp.Required(), mcp.Description("The setlist name (e.g., FACTORY 1).")),
		mcp.WithString("label", mcp.Required(), mcp.Description("The bank/slot label of the preset (e.g., 01A, 12D).")),
	)
	s.AddTool(getPresetTool, t.getPreset)

	resolveTool := mcp.NewTool("helix_resolve-model",
		mcp.WithDescription("Resolves a Helix model identifier (e.g., HD2_AmpBritPlexiBrt) to its category, alias and real-world hardware."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The model identifier.")),
	)
	s.AddTool(resolveTool, t.resolveModel)

	listIndexTool := mcp.NewTool("helix_list-index",
		mcp.WithDescription("Lists one cross-reference index of the catalog."),
		mcp.WithString("kind", mcp.Required(),
			mcp.Enum(indexHardware, indexArtist, indexGenre, indexPickup),
			mcp.Description("The index to list: hardware, artist, genre or pickup."),
		),
	)
	s.AddTool(listIndexTool, t.listIndex)
}

func (t *catalogTools) describeSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.logger.Debug("Handling schema request.")

	r := &jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&catalog.Item{})
	schema.Title = "Helix preset"

	asJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return mcp.NewToolResultText(string(asJSON)), nil
}

func (t *catalogTools) getPreset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setlist, err := request.RequireString("setlist")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Debug("Handling get preset request.", zap.String("setlist", setlist), zap.String("label", label))

	it, ok := t.result.Catalog.Lookup(setlist, label)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no preset %s in setlist %q", label, setlist)), nil
	}

	asJSON, err := json.MarshalIndent(&it, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preset to JSON: %w", err)
	}
	return mcp.NewToolResultText(string(asJSON)), nil
}

func (t *catalogTools) resolveModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Debug("Handling resolve request.", zap.String("id", id))

	asJSON, err := json.MarshalIndent(t.resolver.Resolve(id), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resolution: %w", err)
	}
	return mcp.NewToolResultText(string(asJSON)), nil
}

func (t *catalogTools) listIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Debug("Handling list index request.", zap.String("kind", kind))

	var v any
	c := t.result.Catalog
	switch kind {
	case indexHardware:
		v = c.Hardware
	case indexArtist:
		v = c.Artists
	case indexGenre:
		v = c.Genres
	case indexPickup:
		v = c.Pickups
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown index %q", kind)), nil
	}

	asJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal index: %w", err)
	}
	return mcp.NewToolResultText(string(asJSON)), nil
}

