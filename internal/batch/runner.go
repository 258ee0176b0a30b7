package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/processor"
	imageproc "github.com/abdul-hamid-achik/logomark/internal/processor/image"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/abdul-hamid-achik/logomark/internal/processor/video"
	"github.com/abdul-hamid-achik/logomark/internal/tracing"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Publisher copies a finished output somewhere else and returns its
// location.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

type Config struct {
	Policy   overlay.Policy
	Parallel int
	DryRun   bool
}

func DefaultConfig() Config {
	return Config{
		Policy:   overlay.DefaultPolicy(),
		Parallel: 1,
	}
}

// Runner watermarks every file of an input directory. A Runner holds no
// per-run state and may be reused.
type Runner struct {
	config    Config
	prober    media.Prober
	images    processor.Compositor
	videos    processor.Compositor
	publisher Publisher
	observers multiObserver
}

type Option func(*Runner)

func WithProber(p media.Prober) Option {
	return func(r *Runner) { r.prober = p }
}

func WithImageCompositor(c processor.Compositor) Option {
	return func(r *Runner) { r.images = c }
}

func WithVideoCompositor(c processor.Compositor) Option {
	return func(r *Runner) { r.videos = c }
}

func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// New builds a Runner. Compositors not supplied through options are built
// from cfg.Policy with default settings.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}

	r := &Runner{config: cfg, prober: media.FileProber{}}
	for _, opt := range opts {
		opt(r)
	}

	if r.images == nil {
		pc := processor.DefaultConfig()
		pc.Policy = cfg.Policy
		r.images = imageproc.NewWatermarkCompositor(pc)
	}
	if r.videos == nil {
		vc := video.DefaultVideoConfig()
		vc.Policy = cfg.Policy
		r.videos = video.NewFFmpegCompositor(vc)
	}

	return r, nil
}

func (r *Runner) Config() Config {
	return r.config
}

// Run processes every file in inputDir and writes results to outputDir.
// Per-file problems become Failure outcomes in the report; an error is
// returned only when the batch cannot start.
func (r *Runner) Run(ctx context.Context, inputDir string, logo *overlay.Logo, outputDir string) (*Report, error) {
	if logo == nil {
		return nil, apperror.ErrLogoMissing
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := Discover(inputDir)
	if err != nil {
		return nil, apperror.Configuration(err, "input directory unreadable")
	}

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)

	ctx, span := tracing.StartBatchSpan(ctx, runID, inputDir, r.config.Parallel)
	defer span.End()

	report := &Report{
		RunID:     runID,
		InputDir:  inputDir,
		OutputDir: outputDir,
		DryRun:    r.config.DryRun,
		StartedAt: time.Now(),
		Items:     make([]Outcome, 0, len(files)),
	}

	total := len(files)
	log.Info("batch started", "input_dir", inputDir, "output_dir", outputDir, "files", total, "parallel", r.config.Parallel, "dry_run", r.config.DryRun)
	r.observers.OnStart(runID, total)

	var (
		mu   sync.Mutex
		done int
	)
	record := func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		report.Items = append(report.Items, o)
		done++
		r.observers.OnFileDone(done, total, o)
	}

	var g errgroup.Group
	g.SetLimit(r.config.Parallel)

	for _, path := range files {
		if ctx.Err() != nil {
			record(cancelled(path))
			continue
		}
		path := path
		g.Go(func() error {
			record(r.processFile(ctx, path, logo, outputDir))
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now()
	report.Finalize()
	tracing.RecordBatchSummary(ctx, report.Summary.Total, report.Summary.Succeeded, report.Summary.Failed)

	log.Info("batch finished",
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"planned", report.Summary.Planned,
		"duration_ms", report.Elapsed().Milliseconds(),
	)
	r.observers.OnFinish(report)

	return report, nil
}

func (r *Runner) processFile(ctx context.Context, path string, logo *overlay.Logo, outputDir string) (out Outcome) {
	start := time.Now()
	ctx = logger.WithFile(ctx, path)
	log := logger.FromContext(ctx)
	ctx, _ = tracing.StartFileSpan(ctx, path)

	var desc media.Descriptor
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while processing file", "panic", rec, "stack", string(debug.Stack()))
			err := apperror.WrapPath(fmt.Errorf("panic: %v", rec), apperror.ErrInternal, path)
			out = failure(path, desc, err, time.Since(start))
		}
		var spanErr error
		if out.Failed() {
			spanErr = errors.New(out.Reason)
		}
		tracing.EndFileSpan(ctx, string(out.Kind), out.Status, spanErr)
	}()

	if ctx.Err() != nil {
		return cancelled(path)
	}

	desc, err := r.prober.Probe(ctx, path)
	if err != nil {
		if isCancel(err) {
			return cancelled(path)
		}
		log.Warn("probe failed", "error", err)
		return failure(path, desc, err, time.Since(start))
	}

	output := media.OutputPath(outputDir, path, desc.Kind)

	var comp processor.Compositor
	switch desc.Kind {
	case media.KindImage:
		comp = r.images
	case media.KindVideo:
		comp = r.videos
	default:
		err := apperror.WrapPath(fmt.Errorf("unknown media kind %q", desc.Kind), apperror.ErrInternal, path)
		return failure(path, desc, err, time.Since(start))
	}

	if r.config.DryRun {
		log.Debug("planned", "kind", desc.Kind, "output", output)
		o := success(desc, output, time.Since(start))
		o.Status = StatusPlanned
		return o
	}

	written, err := comp.Render(ctx, desc, logo, output)
	if err != nil {
		if isCancel(err) {
			return cancelled(path)
		}
		log.Warn("render failed", "kind", desc.Kind, "compositor", comp.Name(), "error", err)
		return failure(path, desc, err, time.Since(start))
	}

	out = success(desc, written, time.Since(start))

	if r.publisher != nil {
		loc, err := r.publisher.Publish(ctx, written)
		if err != nil {
			err = apperror.WrapPath(err, apperror.ErrPublishFailed, path)
			log.Warn("publish failed", "output", written, "error", err)
			o := failure(path, desc, err, time.Since(start))
			o.OutputPath = written
			return o
		}
		out.Published = loc
		out.Duration = time.Since(start)
	}

	log.Info("file processed", "kind", desc.Kind, "output", written, "duration_ms", out.Duration.Milliseconds())
	return out
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
