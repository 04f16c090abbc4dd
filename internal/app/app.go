package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"helixcatalog/internal/catalog"
	"helixcatalog/internal/config"
	"helixcatalog/internal/container"
	"helixcatalog/internal/ctxlog"
	"helixcatalog/internal/models"
	"helixcatalog/internal/preset"
)

// Config names the optional data files that replace the embedded defaults.
type Config struct {
	ModelsPath      string
	AnnotationsPath string
	LayoutPath      string
	Workers         int
}

// App holds the read-only tables shared by every run.
type App struct {
	logger      *zap.Logger
	resolver    *models.Resolver
	annotations *catalog.Annotations
	layout      *config.Config
	workers     int
}

// Skipped records a file that could not be decoded.
type Skipped struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Result is the outcome of one run.
type Result struct {
	RunID    string            `json:"run_id"`
	Setlists []catalog.Setlist `json:"-"`
	Catalog  *catalog.Catalog  `json:"catalog"`
	Skipped  []Skipped         `json:"skipped"`
}

// New loads the tables named by cfg, falling back to the embedded ones.
func New(cfg Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		logger:      logger,
		resolver:    models.Default(),
		annotations: catalog.DefaultAnnotations(),
		layout:      config.Default(),
		workers:     cfg.Workers,
	}
	if a.workers <= 0 {
		a.workers = runtime.GOMAXPROCS(0)
	}

	var err error
	if cfg.ModelsPath != "" {
		if a.resolver, err = models.LoadFile(cfg.ModelsPath); err != nil {
			return nil, fmt.Errorf("failed to load model table: %w", err)
		}
	}
	if cfg.AnnotationsPath != "" {
		if a.annotations, err = catalog.LoadAnnotationsFile(cfg.AnnotationsPath); err != nil {
			return nil, fmt.Errorf("failed to load annotations: %w", err)
		}
	}
	if cfg.LayoutPath != "" {
		if a.layout, err = config.LoadFile(cfg.LayoutPath); err != nil {
			return nil, fmt.Errorf("failed to load catalog layout: %w", err)
		}
	}

	logger.Debug("Tables loaded.",
		zap.Int("models", a.resolver.Len()),
		zap.Int("annotations", a.annotations.Len()),
		zap.Int("setlist_layouts", len(a.layout.Setlists)),
		zap.Int("workers", a.workers),
	)
	return a, nil
}

// Resolver returns the model resolver in use.
func (a *App) Resolver() *models.Resolver { return a.resolver }

// Layout returns the catalog layout in use.
func (a *App) Layout() *config.Config { return a.layout }

type fileResult struct {
	setlist catalog.Setlist
	err     error
}

// Run decodes every preset file found under paths and builds the catalog.
// Files that fail to decode are logged and listed in Result.Skipped.
func (a *App) Run(ctx context.Context, paths []string) (*Result, error) {
	runID := uuid.NewString()
	logger := a.logger.With(zap.String("run_id", runID))
	ctx = ctxlog.WithLogger(ctx, logger)

	files, err := Discover(paths)
	if err != nil {
		return nil, err
	}
	logger.Info("Discovered preset files.", zap.Int("count", len(files)))

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := a.DecodeFile(gctx, file)
			var decErr *container.DecodeError
			if errors.As(err, &decErr) {
				results[i] = fileResult{err: err}
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = fileResult{setlist: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, Skipped: []Skipped{}}
	for i, r := range results {
		if r.err != nil {
			logger.Warn("Skipping undecodable file.", zap.String("file", files[i]), zap.Error(r.err))
			res.Skipped = append(res.Skipped, Skipped{File: files[i], Error: r.err.Error()})
			continue
		}
		res.Setlists = append(res.Setlists, r.setlist)
	}

	res.Catalog = catalog.Build(res.Setlists, a.annotations,
		catalog.WithConfig(a.layout),
		catalog.WithResolver(a.resolver),
	)
	logger.Info("Catalog built.",
		zap.Int("setlists", len(res.Setlists)),
		zap.Int("presets", len(res.Catalog.Presets)),
		zap.Int("hardware", res.Catalog.Hardware.Len()),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// DecodeFile reads one container and decodes its presets. Presets are
// decoded in parallel; the result keeps sequence order.
func (a *App) DecodeFile(ctx context.Context, path string) (catalog.Setlist, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Setlist{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := container.Open(path, data)
	if err != nil {
		return catalog.Setlist{}, fmt.Errorf("%s: %w", path, err)
	}

	presets := make([]*preset.Preset, len(c.Records))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, rec := range c.Records {
		g.Go(func() error {
			presets[i] = preset.Decode(i, rec, a.resolver)
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("Decoded container.", zap.String("file", path), zap.String("setlist", c.Name), zap.Int("presets", len(presets)))
	return catalog.Setlist{Name: c.Name, Presets: presets}, nil
}
