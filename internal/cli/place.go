package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
	"github.com/abdul-hamid-achik/logomark/internal/processor/overlay"
	"github.com/spf13/cobra"
)

type placeOptions struct {
	target   string
	logoSize string
	logo     string
	scale    float64
	margin   int
}

type placeResult struct {
	TargetWidth  int               `json:"target_width"`
	TargetHeight int               `json:"target_height"`
	LogoWidth    int               `json:"logo_width"`
	LogoHeight   int               `json:"logo_height"`
	Policy       overlay.Policy    `json:"policy"`
	Placement    overlay.Placement `json:"placement"`
}

func newPlaceCmd(a *app) *cobra.Command {
	opts := &placeOptions{}

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Compute where the logo lands on a frame",
		Long: `Print the logo size and position for a target of the given size.

The logo size comes from --logo-size, or from the logo file when omitted.

Examples:
  logomark place --target 1080x1920 --logo-size 400x200
  logomark place --target 3840x2160 --scale 0.2 --margin 48`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.place(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.target, "target", "", "Target size as WIDTHxHEIGHT (required)")
	f.StringVar(&opts.logoSize, "logo-size", "", "Logo size as WIDTHxHEIGHT")
	f.StringVarP(&opts.logo, "logo", "l", "", "Logo file to read the size from")
	f.Float64Var(&opts.scale, "scale", overlay.DefaultScaleFraction, "Logo width as a fraction of the target width")
	f.IntVar(&opts.margin, "margin", overlay.DefaultMarginPx, "Gap in pixels to the bottom/right edges")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func (a *app) place(cmd *cobra.Command, opts *placeOptions) error {
	tw, th, err := parseSize(opts.target)
	if err != nil {
		return apperror.Configuration(err, "invalid --target")
	}

	var lw, lh int
	if opts.logoSize != "" {
		if lw, lh, err = parseSize(opts.logoSize); err != nil {
			return apperror.Configuration(err, "invalid --logo-size")
		}
	} else {
		path := a.cfg.LogoPath
		if opts.logo != "" {
			path = opts.logo
		}
		logo, err := overlay.LoadLogo(path)
		if err != nil {
			return err
		}
		lw, lh = logo.Width(), logo.Height()
	}

	policy := a.cfg.Policy()
	if cmd.Flags().Changed("scale") {
		policy.ScaleFraction = opts.scale
	}
	if cmd.Flags().Changed("margin") {
		policy.MarginPx = opts.margin
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	pl := overlay.Compute(tw, th, lw, lh, policy)

	if a.printer.IsJSON() {
		return a.printer.JSON(placeResult{
			TargetWidth:  tw,
			TargetHeight: th,
			LogoWidth:    lw,
			LogoHeight:   lh,
			Policy:       policy,
			Placement:    pl,
		})
	}

	if a.printer.IsQuiet() {
		fmt.Fprintln(a.stdout, pl.String())
		return nil
	}

	a.printer.Header("Placement")
	a.printer.KeyValue("target", fmt.Sprintf("%dx%d", tw, th))
	a.printer.KeyValue("logo", fmt.Sprintf("%dx%d", lw, lh))
	a.printer.KeyValue("scale", strconv.FormatFloat(policy.ScaleFraction, 'g', 4, 64))
	a.printer.KeyValue("margin", fmt.Sprintf("%dpx", policy.MarginPx))
	a.printer.KeyValue("size", fmt.Sprintf("%dx%d", pl.Width, pl.Height))
	a.printer.KeyValue("position", fmt.Sprintf("x=%d y=%d", pl.X, pl.Y))
	return nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q must look like 1080x1920", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad width: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("size %q: bad height: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("size %q must be positive", s)
	}
	return width, height, nil
}
