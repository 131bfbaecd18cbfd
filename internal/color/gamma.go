package color

import (
	"fmt"
	"math"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// DefaultGamma is the encoding exponent applied to 8-bit samples.
const DefaultGamma = 0.45

// GammaCodec maps between 8-bit samples and normalised gamma-encoded floats.
type GammaCodec struct {
	gamma float64
}

// NewGammaCodec returns a codec for the given exponent, which must be > 0.
func NewGammaCodec(gamma float64) (GammaCodec, error) {
	if !(gamma > 0) || math.IsInf(gamma, 0) {
		return GammaCodec{}, fmt.Errorf("%w: gamma must be > 0, got %v", ir.ErrInvalidArgument, gamma)
	}
	return GammaCodec{gamma: gamma}, nil
}

// Gamma returns the codec exponent.
func (g GammaCodec) Gamma() float64 { return g.gamma }

// CorrectSample computes (v/255)^gamma for a single sample on the 0-255 scale.
func (g GammaCodec) CorrectSample(v float64) float64 {
	return math.Pow(v/255.0, g.gamma)
}

// ExpandSample inverts CorrectSample and rounds to the nearest 8-bit value.
// Inputs outside [0,1] are clamped.
func (g GammaCodec) ExpandSample(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	}
	return clamp8(math.Pow(v, 1/g.gamma) * 255.0)
}

// Correct gamma-corrects every sample of img into [0,1].
func (g GammaCodec) Correct(img *ir.Image) *ir.Planar {
	out := ir.NewPlanar(img.Height, img.Width)
	// 256-entry table; every input is an exact 8-bit value.
	var lut [256]float64
	for i := range lut {
		lut[i] = g.CorrectSample(float64(i))
	}
	for i := 0; i < img.Width*img.Height; i++ {
		for c := 0; c < ir.Channels; c++ {
			out.Planes[c].Pix[i] = lut[img.Pixels[i*ir.Channels+c]]
		}
	}
	return out
}

// Expand converts gamma-corrected planes back to an 8-bit image.
func (g GammaCodec) Expand(pl *ir.Planar) *ir.Image {
	out := ir.NewImage(pl.Cols, pl.Rows)
	for i := 0; i < pl.Rows*pl.Cols; i++ {
		for c := 0; c < ir.Channels; c++ {
			out.Pixels[i*ir.Channels+c] = g.ExpandSample(pl.Planes[c].Pix[i])
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
