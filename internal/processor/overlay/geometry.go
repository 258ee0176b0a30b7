// Package overlay computes where and how large the logo is drawn on a target
// and holds the decoded logo asset shared by a batch run.
package overlay

import (
	"fmt"
	"math"

	"github.com/abdul-hamid-achik/logomark/internal/apperror"
)

const (
	DefaultScaleFraction = 1.0 / 3.0
	DefaultMarginPx      = 30
)

// Policy controls logo sizing and inset. ScaleFraction applies to the target
// width only; the logo height follows from its own aspect ratio.
type Policy struct {
	ScaleFraction float64 `yaml:"scale_fraction" json:"scale_fraction"`
	MarginPx      int     `yaml:"margin_px" json:"margin_px"`
}

func DefaultPolicy() Policy {
	return Policy{
		ScaleFraction: DefaultScaleFraction,
		MarginPx:      DefaultMarginPx,
	}
}

func (p Policy) Validate() error {
	if math.IsNaN(p.ScaleFraction) || p.ScaleFraction <= 0 || p.ScaleFraction > 1 {
		return apperror.Wrap(fmt.Errorf("scale fraction must be in (0, 1], got %v", p.ScaleFraction), apperror.ErrInvalidPolicy)
	}
	if p.MarginPx < 0 {
		return apperror.Wrap(fmt.Errorf("margin must not be negative, got %d", p.MarginPx), apperror.ErrInvalidPolicy)
	}
	return nil
}

// Placement is the logo rectangle in target pixel coordinates.
type Placement struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

func (p Placement) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", p.Width, p.Height, p.X, p.Y)
}

// Compute sizes the logo to a fraction of the target width, keeps the logo's
// aspect ratio, and anchors it to the bottom-right corner inset by the margin.
// The origin is clamped to zero when the target is too small to fit the
// overlay plus margin.
func Compute(targetW, targetH, logoW, logoH int, p Policy) Placement {
	outW := max(1, int(math.Round(float64(targetW)*p.ScaleFraction)))

	outH := 1
	if logoW > 0 {
		outH = max(1, int(math.Round(float64(outW)*float64(logoH)/float64(logoW))))
	}

	return Placement{
		Width:  outW,
		Height: outH,
		X:      max(0, targetW-outW-p.MarginPx),
		Y:      max(0, targetH-outH-p.MarginPx),
	}
}
