package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/batch"
	"github.com/abdul-hamid-achik/logomark/internal/journal"
	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/abdul-hamid-achik/logomark/internal/metrics"
	"github.com/abdul-hamid-achik/logomark/internal/output"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/abdul-hamid-achik/logomark/internal/processor/video"
	"github.com/abdul-hamid-achik/logomark/internal/storage"
	"github.com/abdul-hamid-achik/logomark/internal/tracing"
	"github.com/abdul-hamid-achik/logomark/internal/version"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type runOptions struct {
	output      string
	logo        string
	scale       float64
	margin      int
	parallel    int
	dryRun      bool
	journal     string
	metricsFile string
	publish     bool
	failOnError bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [input_dir]",
		Short: "Watermark every image and video in a folder",
		Long: `Watermark every file directly inside input_dir.

Each file is classified by trying to decode it as an image. Anything that
is not a recognized image format is treated as a video and re-encoded with
ffmpeg. A file that fails never stops the batch.

Examples:
  logomark run                                   # ./stories -> ./stories_processed
  logomark run shoot --output shoot_out --parallel 4
  logomark run shoot --dry-run                   # show what would be written
  logomark run shoot --publish --journal run.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output directory (default stories_processed)")
	f.StringVarP(&opts.logo, "logo", "l", "", "Logo PNG with transparency (default logo.png)")
	f.Float64Var(&opts.scale, "scale", overlay.DefaultScaleFraction, "Logo width as a fraction of the target width")
	f.IntVar(&opts.margin, "margin", overlay.DefaultMarginPx, "Gap in pixels between the logo and the bottom/right edges")
	f.IntVarP(&opts.parallel, "parallel", "p", 1, "Number of files processed at once")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Classify files and plan outputs without writing anything")
	f.StringVar(&opts.journal, "journal", "", "Append a JSON line per file to this path")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	f.BoolVar(&opts.publish, "publish", false, "Upload outputs to the configured bucket")
	f.BoolVar(&opts.failOnError, "fail-on-error", false, "Exit with status 2 when any file failed")

	return cmd
}

// applyFlags layers explicitly set flags over the loaded configuration.
func (o *runOptions) applyFlags(cmd *cobra.Command, args []string, a *app) {
	cfg := a.cfg
	if len(args) == 1 {
		cfg.InputDir = args[0]
	}
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputDir = o.output
	}
	if f.Changed("logo") {
		cfg.LogoPath = o.logo
	}
	if f.Changed("scale") {
		cfg.ScaleFraction = o.scale
	}
	if f.Changed("margin") {
		cfg.MarginPx = o.margin
	}
	if f.Changed("parallel") {
		cfg.Parallel = o.parallel
	}
	if f.Changed("journal") {
		cfg.Journal = o.journal
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
}

func (a *app) runBatch(cmd *cobra.Command, args []string, opts *runOptions) error {
	opts.applyFlags(cmd, args, a)
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	shutdown, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    "logomark",
		ServiceVersion: version.Short(),
		Environment:    "cli",
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		Enabled:        cfg.Tracing.Enabled,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("tracing shutdown failed", "error", err)
			}
		}()
	}

	logo, err := overlay.LoadLogo(cfg.LogoPath)
	if err != nil {
		return err
	}

	showBar := !opts.dryRun && isTerminal(a.printer.ErrOut())
	runnerOpts := []batch.Option{
		batch.WithObserver(output.NewBatchObserver(a.printer, showBar)),
	}

	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return apperror.Configuration(err, "cannot open journal")
		}
		defer func() { _ = j.Close() }()
		runnerOpts = append(runnerOpts, batch.WithObserver(j))
	}

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.NewRecorder()
		runnerOpts = append(runnerOpts, batch.WithObserver(rec))
	}

	if opts.publish && !opts.dryRun {
		pub, err := newPublisher(ctx, cfg.Publish, rec)
		if err != nil {
			return err
		}
		runnerOpts = append(runnerOpts, batch.WithPublisher(pub))
	}

	vc := video.NewFFmpegCompositor(cfg.VideoSettings())
	if err := vc.Available(); err != nil {
		log.Warn("ffmpeg unavailable, video files will fail", "error", err)
	}
	runnerOpts = append(runnerOpts, batch.WithVideoCompositor(vc))

	runner, err := batch.New(batch.Config{
		Policy:   cfg.Policy(),
		Parallel: cfg.Parallel,
		DryRun:   opts.dryRun,
	}, runnerOpts...)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx, cfg.InputDir, logo, cfg.OutputDir)
	if err != nil {
		return err
	}

	if rec != nil {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if a.printer.IsJSON() {
		if err := a.printer.JSON(report); err != nil {
			return err
		}
	}

	if opts.failOnError && report.HasFailures() {
		return &ExitCodeError{Code: ExitFileFailed, Err: errSilent}
	}
	return nil
}

func newPublisher(ctx context.Context, cfg storage.Config, rec *metrics.Recorder) (*storage.Publisher, error) {
	minioStore, err := storage.NewMinIOStorage(&cfg)
	if err != nil {
		return nil, apperror.Configuration(err, "publish target misconfigured")
	}
	if err := minioStore.EnsureBucket(ctx); err != nil {
		return nil, apperror.Configuration(err, fmt.Sprintf("bucket %s unavailable", cfg.Bucket))
	}

	var store storage.Storage = minioStore
	if rec != nil {
		store = metrics.NewInstrumentedStorage(minioStore, rec)
	}
	return storage.NewPublisher(store, cfg.Prefix), nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
