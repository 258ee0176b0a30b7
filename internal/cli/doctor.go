package cli

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/logomark/internal/health"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/abdul-hamid-achik/logomark/internal/processor/video"
	"github.com/abdul-hamid-achik/logomark/internal/storage"
	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	var logoPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that logomark's external tools are ready",
		Long: `Check the logo, ffmpeg, ffprobe and the publish bucket.

Videos need ffmpeg and ffprobe; image-only batches run without them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("logo") {
				a.cfg.LogoPath = logoPath
			}
			return a.doctor(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&logoPath, "logo", "l", "", "Logo image to check (overrides config)")
	return cmd
}

func (a *app) doctor(ctx context.Context) error {
	vc := video.NewFFmpegCompositor(a.cfg.VideoSettings())

	checker := health.NewChecker().
		Add("ffmpeg", vc.FFmpegVersion).
		Add("ffprobe", vc.FFprobeVersion).
		Add("logo", func(ctx context.Context) (string, error) {
			logo, err := overlay.LoadLogo(a.cfg.LogoPath)
			if err != nil {
				return a.cfg.LogoPath, err
			}
			return fmt.Sprintf("%s (%dx%d)", logo.Path(), logo.Width(), logo.Height()), nil
		})

	if a.cfg.Publish.Enabled() {
		store, err := storage.NewMinIOStorage(&a.cfg.Publish)
		if err != nil {
			checker.Add("storage", func(context.Context) (string, error) { return a.cfg.Publish.Endpoint, err })
		} else {
			checker.Add("storage", func(ctx context.Context) (string, error) {
				return store.URL(a.cfg.Publish.Prefix), store.HealthCheck(ctx)
			})
		}
	} else {
		checker.Skip("storage", "publishing not configured")
	}

	resp := checker.CheckAll(ctx)

	if a.printer.IsJSON() {
		if err := a.printer.JSON(resp); err != nil {
			return err
		}
	} else {
		for _, c := range resp.Components {
			switch c.Status {
			case health.StatusHealthy:
				a.printer.Success("%-8s %s", c.Name, c.Detail)
			case health.StatusSkipped:
				a.printer.Warn("%-8s %s", c.Name, c.Detail)
			default:
				a.printer.Error("%-8s %s", c.Name, c.Error)
			}
		}
	}

	if !resp.Healthy() {
		return &ExitCodeError{Code: ExitError, Err: errSilent}
	}
	return nil
}
