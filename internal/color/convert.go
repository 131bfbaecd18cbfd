package color

import (
	"fmt"
	"math"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// Coefficients are the luma weights applied to gamma-corrected R′G′B′.
type Coefficients struct {
	Kr, Kg, Kb float64
}

// BT601 is the fixed luma/chroma coefficient set.
var BT601 = Coefficients{Kr: 0.299, Kg: 0.587, Kb: 0.114}

func (k Coefficients) validate() error {
	for _, w := range []float64{k.Kr, k.Kg, k.Kb} {
		if !(w > 0 && w < 1) {
			return fmt.Errorf("%w: luma weight %v outside (0,1)", ir.ErrInvalidArgument, w)
		}
	}
	if sum := k.Kr + k.Kg + k.Kb; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: luma weights sum to %v, want 1", ir.ErrInvalidArgument, sum)
	}
	return nil
}

// Converter performs RGB′ ↔ Y′PbPr ↔ Y′CbCr conversion. It is immutable and
// safe for concurrent use.
type Converter struct {
	k     Coefficients
	gamma GammaCodec
}

// NewConverter validates the coefficients and gamma exponent.
func NewConverter(k Coefficients, gamma float64) (*Converter, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	g, err := NewGammaCodec(gamma)
	if err != nil {
		return nil, err
	}
	return &Converter{k: k, gamma: g}, nil
}

// Coefficients returns the luma weights in use.
func (cv *Converter) Coefficients() Coefficients { return cv.k }

// GammaCodec returns the gamma codec in use.
func (cv *Converter) GammaCodec() GammaCodec { return cv.gamma }

// RGBToYPbPr converts gamma-corrected R′G′B′ in [0,1] to Y′PbPr.
// Y′ lands in [0,1] and Pb, Pr in [-0.5,0.5] for in-range input.
func (cv *Converter) RGBToYPbPr(rgb *ir.Planar) *ir.Planar {
	k := cv.k
	out := ir.NewPlanar(rgb.Rows, rgb.Cols)
	r, g, b := rgb.Planes[0].Pix, rgb.Planes[1].Pix, rgb.Planes[2].Pix
	yp, pb, pr := out.Planes[0].Pix, out.Planes[1].Pix, out.Planes[2].Pix
	for i := range yp {
		y := k.Kr*r[i] + k.Kg*g[i] + k.Kb*b[i]
		yp[i] = y
		pb[i] = 0.5 * (b[i] - y) / (1 - k.Kb)
		pr[i] = 0.5 * (r[i] - y) / (1 - k.Kr)
	}
	return out
}

// ImageToYPbPr gamma-corrects a raw 8-bit image before converting it.
func (cv *Converter) ImageToYPbPr(img *ir.Image) *ir.Planar {
	return cv.RGBToYPbPr(cv.gamma.Correct(img))
}

// YPbPrToRGB inverts RGBToYPbPr. The result is not clamped.
func (cv *Converter) YPbPrToRGB(ypbpr *ir.Planar) *ir.Planar {
	k := cv.k
	out := ir.NewPlanar(ypbpr.Rows, ypbpr.Cols)
	yp, pb, pr := ypbpr.Planes[0].Pix, ypbpr.Planes[1].Pix, ypbpr.Planes[2].Pix
	r, g, b := out.Planes[0].Pix, out.Planes[1].Pix, out.Planes[2].Pix
	for i := range yp {
		r[i] = 2*pr[i]*(1-k.Kr) + yp[i]
		b[i] = 2*pb[i]*(1-k.Kb) + yp[i]
		g[i] = (yp[i] - k.Kr*r[i] - k.Kb*b[i]) / k.Kg
	}
	return out
}

// RGBToYCbCr converts an 8-bit RGB image to 8-bit Y′CbCr: gamma correction,
// Y′PbPr, +0.5 chroma bias, then scaling to 0-255.
func (cv *Converter) RGBToYCbCr(img *ir.Image) *ir.Image {
	ypbpr := cv.ImageToYPbPr(img)
	out := ir.NewImage(img.Width, img.Height)
	for i := 0; i < img.Width*img.Height; i++ {
		out.Pixels[i*3] = clamp8(ypbpr.Planes[0].Pix[i] * 255)
		out.Pixels[i*3+1] = clamp8((ypbpr.Planes[1].Pix[i] + 0.5) * 255)
		out.Pixels[i*3+2] = clamp8((ypbpr.Planes[2].Pix[i] + 0.5) * 255)
	}
	return out
}

// YCbCrPlanarToRGB converts float Y′CbCr on the 0-255 scale, as produced by
// the inverse transform, back to 8-bit RGB. Values are not rounded to 8 bits
// before conversion.
func (cv *Converter) YCbCrPlanarToRGB(ycbcr *ir.Planar) *ir.Image {
	ypbpr := ir.NewPlanar(ycbcr.Rows, ycbcr.Cols)
	for i := range ypbpr.Planes[0].Pix {
		ypbpr.Planes[0].Pix[i] = ycbcr.Planes[0].Pix[i] / 255
		ypbpr.Planes[1].Pix[i] = ycbcr.Planes[1].Pix[i]/255 - 0.5
		ypbpr.Planes[2].Pix[i] = ycbcr.Planes[2].Pix[i]/255 - 0.5
	}
	return cv.gamma.Expand(cv.YPbPrToRGB(ypbpr))
}

// YCbCrToRGB inverts RGBToYCbCr.
func (cv *Converter) YCbCrToRGB(img *ir.Image) *ir.Image {
	pl := ir.NewPlanar(img.Height, img.Width)
	for c := 0; c < ir.Channels; c++ {
		pl.Planes[c] = img.Channel(c)
	}
	return cv.YCbCrPlanarToRGB(pl)
}
