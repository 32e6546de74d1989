package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/grid"
	"github.com/couchcryptid/climate-grid-etl/internal/observability"
	"github.com/couchcryptid/climate-grid-etl/internal/product"
)

// RasterToolkit performs the raster operations of a run.
type RasterToolkit interface {
	// Convert copies an ASCII grid to a GeoTIFF and assigns its reference system.
	Convert(ctx context.Context, src, dst string) error
	// Clip cuts src to the region geometry and writes dst in the region CRS.
	Clip(ctx context.Context, src, dst string, region domain.Region) error
}

// ExtentProjector reprojects a region extent for the metadata document.
type ExtentProjector interface {
	ExtentPolygon(b orb.Bound) (orb.Polygon, error)
}

// Uploader stores a finished file. Upload never fails the run; it reports
// success as a bool.
type Uploader interface {
	Upload(ctx context.Context, localPath string) bool
	Key(localPath string) string
}

// Notifier announces finished products.
type Notifier interface {
	Publish(ctx context.Context, event domain.ProductEvent) error
}

// Options configures a run.
type Options struct {
	InputDir            string
	Layout              grid.Layout
	Prefix              string
	Lookups             domain.Lookups
	Metadata            domain.MetadataSettings
	ExcludedRegionCodes []string
}

// Summary counts what a run did.
type Summary struct {
	Groups               int
	Files                int
	Products             int
	UploadsOK            int
	UploadsFailed        int // includes uploads skipped with storage disabled
	MemberErrors         int
	NotificationFailures int
}

// Pipeline runs the grid-to-product sequence once over an input folder.
type Pipeline struct {
	opts      Options
	toolkit   RasterToolkit
	source    domain.RegionSource
	projector ExtentProjector
	uploader  Uploader
	notifier  Notifier // nil disables product events
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(opts Options, toolkit RasterToolkit, source domain.RegionSource, projector ExtentProjector,
	uploader Uploader, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		opts:      opts,
		toolkit:   toolkit,
		source:    source,
		projector: projector,
		uploader:  uploader,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the region features have been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("regions not loaded yet")
	}
	return nil
}

// Run processes every grid under the input folder. Lookup misses, toolkit
// failures and local write errors abort the run; upload and notification
// failures are logged and counted. The summary reflects the work done up to
// the point of failure.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	start := time.Now()
	p.metrics.RunRunning.Set(1)
	defer func() {
		p.metrics.RunRunning.Set(0)
		p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	p.logger.Info("run started", "input", p.opts.InputDir, "prefix", p.opts.Prefix)

	if err := grid.EnsureOutputDirs(p.opts.Layout, p.logger); err != nil {
		return sum, err
	}

	groups, err := grid.Classify(p.opts.InputDir, grid.Extension)
	if err != nil {
		return sum, err
	}
	sum.Groups = groups.Len()
	p.metrics.GridsDiscovered.Add(float64(groups.Len()))
	p.logger.Info("classified input grids", "groups", groups.Len(), "files", groups.FileCount())
	if groups.Len() == 0 {
		p.logger.Warn("no grid files found", "input", p.opts.InputDir, "extension", grid.Extension)
		return sum, nil
	}

	regions, err := p.source.FetchRegions(ctx)
	if err != nil {
		return sum, fmt.Errorf("fetch regions: %w", err)
	}
	targets, err := domain.ClipTargets(regions, p.opts.Lookups, p.opts.ExcludedRegionCodes)
	if err != nil {
		return sum, err
	}
	p.ready.Store(true)
	p.logger.Info("regions loaded", "regions", len(regions), "targets", len(targets))

	for _, stem := range groups.Stems() {
		p.logger.Info("processing grid group", "stem", stem)
		for _, path := range groups.Paths(stem) {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			if err := p.processFile(ctx, path, targets, &sum); err != nil {
				return sum, err
			}
		}
	}

	p.logger.Info("run complete",
		"groups", sum.Groups,
		"files", sum.Files,
		"products", sum.Products,
		"uploads_ok", sum.UploadsOK,
		"uploads_failed", sum.UploadsFailed,
		"member_errors", sum.MemberErrors,
		"duration", time.Since(start),
	)
	return sum, nil
}

// processFile converts one grid and produces a product for every clip target.
func (p *Pipeline) processFile(ctx context.Context, path string, targets []domain.ClipTarget, sum *Summary) error {
	header, err := grid.ReadHeader(path)
	if err != nil {
		return err
	}
	name, err := domain.ParseGridName(domain.Stem(path), p.opts.Lookups)
	if err != nil {
		return err
	}
	productName := name.ProductName(p.opts.Metadata.DateRange)
	p.logger.Info("converting grid",
		"path", path,
		"product", productName,
		"ncols", header.NCols,
		"nrows", header.NRows,
		"cellsize", header.CellSize,
	)

	converted := filepath.Join(p.opts.Layout.Converted, productName+".tif")
	if err := p.toolkit.Convert(ctx, path, converted); err != nil {
		return fmt.Errorf("convert %s: %w", path, err)
	}

	regionDir := filepath.Join(p.opts.Layout.Regions, domain.RegionFolder(path))
	if err := os.MkdirAll(regionDir, 0o755); err != nil {
		return fmt.Errorf("create region folder: %w", err)
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processRegion(ctx, converted, regionDir, productName, name, target, sum); err != nil {
			return err
		}
	}

	sum.Files++
	p.metrics.FilesProcessed.Inc()
	return nil
}

// processRegion clips, packages, describes and uploads one region product.
func (p *Pipeline) processRegion(ctx context.Context, converted, regionDir, productName string,
	name domain.GridName, target domain.ClipTarget, sum *Summary,
) error {
	p.logger.Info("processing region", "region", target.Name, "code", target.Code, "title", target.Title)

	clipped := filepath.Join(regionDir, domain.ClippedName(productName, target.Name)+".tif")
	if err := p.toolkit.Clip(ctx, converted, clipped, target.Region); err != nil {
		return fmt.Errorf("clip %s to region %s: %w", converted, target.Code, err)
	}

	archive, err := product.Package(clipped, p.opts.Layout.Zipped, p.logger)
	if err != nil {
		return err
	}
	if n := len(archive.Failed); n > 0 {
		sum.MemberErrors += n
		p.metrics.ArchiveMemberErrors.Add(float64(n))
	}
	p.logger.Info("created archive", "path", archive.Path, "members", len(archive.Members), "region", target.Name)
	archiveOK := p.upload(ctx, archive.Path, sum)

	// The metadata document is written after the archive so it is never bundled.
	extent, err := p.projector.ExtentPolygon(target.Extent())
	if err != nil {
		return fmt.Errorf("region %s extent: %w", target.Code, err)
	}
	doc, err := domain.BuildMetadata(domain.MetadataInput{
		ProductPath: clipped,
		Prefix:      p.opts.Prefix,
		Extent:      extent,
		RegionTitle: target.Title,
		PeriodName:  name.Period,
	}, p.opts.Metadata)
	if err != nil {
		return err
	}
	mdPath, err := product.WriteMetadata(doc, p.opts.Layout.Zipped, domain.MetadataFileName(clipped))
	if err != nil {
		return err
	}
	p.logger.Info("metadata created", "path", mdPath)
	mdOK := p.upload(ctx, mdPath, sum)

	sum.Products++
	p.metrics.ProductsCreated.Inc()

	p.notify(ctx, domain.NewProductEvent(
		domain.Stem(clipped), target, name.Period,
		p.uploader.Key(archive.Path), p.uploader.Key(mdPath),
		archiveOK && mdOK,
	), sum)
	return nil
}

func (p *Pipeline) upload(ctx context.Context, path string, sum *Summary) bool {
	if p.uploader.Upload(ctx, path) {
		sum.UploadsOK++
		return true
	}
	sum.UploadsFailed++
	return false
}

func (p *Pipeline) notify(ctx context.Context, event domain.ProductEvent, sum *Summary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Publish(ctx, event); err != nil {
		sum.NotificationFailures++
		p.metrics.NotificationFailures.Inc()
		p.logger.Warn("product notification failed", "product", event.Product, "error", err)
	}
}
