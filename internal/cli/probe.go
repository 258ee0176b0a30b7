package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/logomark/internal/logger"
	"github.com/abdul-hamid-achik/logomark/internal/media"
	"github.com/abdul-hamid-achik/logomark/internal/output"
	"github.com/abdul-hamid-achik/logomark/internal/processor/video"
	"github.com/spf13/cobra"
)

type probeResult struct {
	media.Descriptor
	Error string `json:"error,omitempty"`
}

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>...",
		Short: "Show how files would be classified",
		Long: `Show the kind, MIME type and dimensions logomark sees for each file.

Videos are inspected with ffprobe when it is installed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.probeFiles(cmd, args)
		},
	}
}

func (a *app) probeFiles(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	vc := video.NewFFmpegCompositor(a.cfg.VideoSettings())
	canDescribe := vc.Available() == nil
	if !canDescribe {
		log.Debug("ffprobe unavailable, video details skipped")
	}

	prober := media.FileProber{}
	results := make([]probeResult, 0, len(args))
	failed := 0
	for _, path := range args {
		desc, err := prober.Probe(ctx, path)
		if err == nil && desc.Kind == media.KindVideo && canDescribe {
			desc, err = vc.Describe(ctx, desc)
		}
		res := probeResult{Descriptor: desc}
		if err != nil {
			failed++
			res.Path = path
			res.Error = err.Error()
		}
		results = append(results, res)
	}

	if a.printer.IsJSON() {
		if err := a.printer.JSON(results); err != nil {
			return err
		}
	} else {
		table := output.NewTableWriter(a.stdout, []string{"FILE", "KIND", "MIME", "SIZE", "DIMENSIONS", "DURATION"}, a.printer.IsQuiet())
		for _, r := range results {
			if r.Error != "" {
				a.printer.Error("%s: %s", r.Path, r.Error)
				continue
			}
			table.Append([]string{
				r.Name(),
				string(r.Kind),
				r.MIME,
				humanBytes(r.Size),
				dimensions(r.Width, r.Height),
				duration(r.Descriptor),
			})
		}
		table.Render()
	}

	if failed > 0 {
		return &ExitCodeError{Code: ExitError, Err: errSilent}
	}
	return nil
}

func dimensions(w, h int) string {
	if w == 0 || h == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", w, h)
}

func duration(d media.Descriptor) string {
	if d.Kind != media.KindVideo || d.Duration == 0 {
		return "-"
	}
	return d.DurationTime().Round(10 * time.Millisecond).String()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
