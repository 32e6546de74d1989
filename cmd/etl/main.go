// Command etl converts climatology ASCII grids into per-region GeoTIFF
// products, packages them with JSON metadata and uploads both to object
// storage.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-grid-etl/internal/adapter/arcgis"
	"github.com/couchcryptid/climate-grid-etl/internal/adapter/gdal"
	"github.com/couchcryptid/climate-grid-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climate-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-grid-etl/internal/config"
	"github.com/couchcryptid/climate-grid-etl/internal/domain"
	"github.com/couchcryptid/climate-grid-etl/internal/geo"
	"github.com/couchcryptid/climate-grid-etl/internal/grid"
	"github.com/couchcryptid/climate-grid-etl/internal/observability"
	"github.com/couchcryptid/climate-grid-etl/internal/pipeline"
	"github.com/couchcryptid/climate-grid-etl/internal/storage"
)

const jobName = "climate-grid-etl"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// overrides holds command-line values that replace environment configuration
// when the flag is given.
type overrides struct {
	regionsLayer string
	inputDir     string
	bucket       string
	prefix       string
	outputDir    string
}

func (o *overrides) apply(changed func(name string) bool, cfg *config.Config) {
	if changed("regions-layer") {
		cfg.RegionsLayerURL = o.regionsLayer
	}
	if changed("files-input-folder") {
		cfg.InputDir = o.inputDir
	}
	if changed("bucket-name") {
		cfg.BucketName = o.bucket
	}
	if changed("s3prefix") {
		cfg.UploadPrefix = o.prefix
	}
	if changed("output-folder") {
		cfg.OutputDir = o.outputDir
	}
}

func newRootCmd() *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "climate-grid-etl",
		Short: "Export climatology ASCII grids as region-wise zip archives with JSON metadata and upload them",
		Long: `Converts every Esri ASCII grid under the input folder, clips it to each
regional council boundary, zips each clipped raster with its sidecar files,
writes a JSON metadata document next to the archive and uploads both.

Settings come from the environment; flags override them.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Run errors are logged here; flag and argument errors are printed by cobra.
			cmd.SilenceErrors = true
			cfg, err := config.Load()
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}
			o.apply(cmd.Flags().Changed, cfg)
			if err := cfg.Validate(); err != nil {
				slog.Error("invalid configuration", "error", err)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.regionsLayer, "regions-layer", "r", "", "hosted feature layer URL for regions (default $REGIONS_LAYER_URL)")
	f.StringVarP(&o.inputDir, "files-input-folder", "f", "", "folder where Esri ASCII grid files are stored (default $INPUT_DIR)")
	f.StringVarP(&o.bucket, "bucket-name", "b", "", "bucket to upload files to (default $BUCKET_NAME)")
	f.StringVarP(&o.prefix, "s3prefix", "p", "", "prefix for the uploaded files (default $UPLOAD_PREFIX)")
	f.StringVarP(&o.outputDir, "output-folder", "o", "", "folder for converted, clipped and zipped output (default $OUTPUT_DIR)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, logCloser, err := observability.NewLogger(cfg)
	if err != nil {
		slog.Error("failed to open log output", "error", err)
		return err
	}
	defer logCloser.Close()

	if err := execute(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}
	return nil
}

func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting",
		"regions_layer", cfg.RegionsLayerURL,
		"input", cfg.InputDir,
		"output", cfg.OutputDir,
		"storage", cfg.StorageBackend,
		"bucket", cfg.BucketName,
		"prefix", cfg.UploadPrefix,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()

	projector, err := geo.NewReprojector(geo.NZTM2000, geo.WGS84)
	if err != nil {
		return err
	}

	source := arcgis.NewCachedSource(arcgis.NewClient(cfg.RegionsLayerURL, cfg.FeatureTimeout, metrics, logger))

	store := storage.Select(ctx, cfg, logger)
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	uploader := storage.NewUploader(store, cfg.UploadPrefix, cfg.UploadTimeout, metrics, logger)

	// Product notifications are optional (enabled via KAFKA_BROKERS).
	var notifier pipeline.Notifier
	if cfg.NotificationsEnabled() {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		notifier = publisher
		logger.Info("product notifications enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(pipeline.Options{
		InputDir: cfg.InputDir,
		Layout:   grid.NewLayout(cfg.OutputDir),
		Prefix:   cfg.UploadPrefix,
		Lookups:  domain.DefaultLookups(),
		Metadata: domain.MetadataSettings{
			DateRange:  cfg.DateRangeLabel,
			Resolution: cfg.GridResolution,
			DateMin:    cfg.DateMin,
			DateMax:    cfg.DateMax,
		},
		ExcludedRegionCodes: cfg.ExcludedRegionCodes,
	}, gdal.New(logger), source, projector, uploader, notifier, logger, metrics)

	if cfg.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.MetricsAddr, p, metrics.Gatherer(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	summary, runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, jobName); err != nil {
			logger.Warn("metrics push failed", "error", err)
		}
		cancel()
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("processing and upload completed",
		"products", summary.Products,
		"uploads_ok", summary.UploadsOK,
		"uploads_failed", summary.UploadsFailed,
		"bucket", cfg.BucketName,
	)
	return nil
}
