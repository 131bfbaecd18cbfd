package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davesmith10/dctcodec/internal/ir"
	"github.com/davesmith10/dctcodec/internal/testimg"
)

func newConverter(t *testing.T) *Converter {
	t.Helper()
	cv, err := NewConverter(BT601, DefaultGamma)
	require.NoError(t, err)
	return cv
}

func TestRGBToYPbPrPrimaries(t *testing.T) {
	cv := newConverter(t)
	kr, kg, kb := BT601.Kr, BT601.Kg, BT601.Kb

	cases := []struct {
		name string
		rgb  [3]float64
		want [3]float64
	}{
		{"red", [3]float64{1, 0, 0}, [3]float64{kr, -0.5 * kr / (1 - kb), 0.5}},
		{"green", [3]float64{0, 1, 0}, [3]float64{kg, -0.5 * kg / (1 - kb), -0.5 * kg / (1 - kr)}},
		{"blue", [3]float64{0, 0, 1}, [3]float64{kb, 0.5, -0.5 * kb / (1 - kr)}},
		{"white", [3]float64{1, 1, 1}, [3]float64{1, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := cv.RGBToYPbPr(ir.PlanarFromPixels(1, 1, [][3]float64{tc.rgb}))
			got := out.Pixel(0, 0)
			for c := range got {
				assert.InDelta(t, tc.want[c], got[c], 1e-10, "channel %d", c)
			}
		})
	}
}

func TestImageToYPbPrRange(t *testing.T) {
	cv := newConverter(t)
	img := testimg.Natural(96, 64)

	out := cv.ImageToYPbPr(img)
	require.Equal(t, img.Height, out.Rows)
	require.Equal(t, img.Width, out.Cols)
	for _, v := range out.Planes[0].Pix {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
	for c := 1; c < 3; c++ {
		for _, v := range out.Planes[c].Pix {
			require.GreaterOrEqual(t, v, -0.5)
			require.LessOrEqual(t, v, 0.5)
		}
	}
}

func TestYPbPrToRGBInverts(t *testing.T) {
	cv := newConverter(t)
	rgbPrime := cv.GammaCodec().Correct(testimg.Natural(64, 64))

	back := cv.YPbPrToRGB(cv.RGBToYPbPr(rgbPrime))
	for c := 0; c < ir.Channels; c++ {
		for i, v := range back.Planes[c].Pix {
			require.InDelta(t, rgbPrime.Planes[c].Pix[i], v, 1e-9)
		}
	}
}

func TestRGBToYCbCr(t *testing.T) {
	cv := newConverter(t)
	img := testimg.Natural(80, 60)

	ycc := cv.RGBToYCbCr(img)
	require.NoError(t, ycc.Validate())
	assert.Equal(t, img.Width, ycc.Width)
	assert.Equal(t, img.Height, ycc.Height)

	// Mid-grey has no chroma.
	grey := cv.RGBToYCbCr(testimg.Solid(1, 1, 128, 128, 128))
	assert.InDelta(t, 128, int(grey.Pixels[1]), 1)
	assert.InDelta(t, 128, int(grey.Pixels[2]), 1)
}

func TestYCbCrToRGBInverts(t *testing.T) {
	cv := newConverter(t)
	img := testimg.Natural(128, 128)

	back := cv.YCbCrToRGB(cv.RGBToYCbCr(img))
	assert.Less(t, rms(img, back), 3.0)
}

func TestNewConverterRejectsBadWeights(t *testing.T) {
	_, err := NewConverter(Coefficients{Kr: 0.3, Kg: 0.3, Kb: 0.3}, DefaultGamma)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, err = NewConverter(Coefficients{Kr: 0, Kg: 0.886, Kb: 0.114}, DefaultGamma)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, err = NewConverter(BT601, 0)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)
}
