package dct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davesmith10/dctcodec/internal/ir"
)

const tol = 1e-10

func cosine(n, m int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Cos((float64(i) + 0.5) * float64(m) * math.Pi / float64(n))
	}
	return x
}

func requireClose(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i], got[i], tol, "index %d", i)
	}
}

// pseudo fills a plane with deterministic non-trivial values.
func pseudo(rows, cols int) *ir.Plane {
	p := ir.NewPlane(rows, cols)
	for i := range p.Pix {
		p.Pix[i] = math.Sin(float64(i)*1.7) * 100
	}
	return p
}

func TestForwardOnes(t *testing.T) {
	for _, n := range []int{1, 3, 8, 11} {
		x := make([]float64, n)
		for i := range x {
			x[i] = 1
		}
		want := make([]float64, n)
		want[0] = float64(n)
		requireClose(t, want, Forward(x))
	}
}

func TestForwardImpulse(t *testing.T) {
	const n = 8
	x := make([]float64, n)
	x[0] = 1
	want := make([]float64, n)
	for k := range want {
		want[k] = math.Cos(float64(k) * math.Pi / n / 2)
	}
	requireClose(t, want, Forward(x))
}

func TestForwardCosineSpike(t *testing.T) {
	const n = 8
	for m := 0; m < n; m++ {
		want := make([]float64, n)
		want[m] = n / 2.0
		if m == 0 {
			want[m] = n
		}
		requireClose(t, want, Forward(cosine(n, m)))
	}
}

func TestInverseVector(t *testing.T) {
	for _, n := range []int{2, 5, 8} {
		for m := 0; m < n; m++ {
			x := cosine(n, m)
			x[0] += 0.25 * float64(m)
			requireClose(t, x, Inverse(Forward(x)))
		}
	}
}

func TestDCT1DRoundTrip(t *testing.T) {
	for _, shape := range [][2]int{{8, 8}, {8, 5}, {3, 8}, {1, 7}, {6, 1}} {
		x := pseudo(shape[0], shape[1])
		for axis := 0; axis < 2; axis++ {
			y, err := DCT1D(x, axis)
			require.NoError(t, err)
			z, err := IDCT1D(y, axis)
			require.NoError(t, err)
			requireClose(t, x.Pix, z.Pix)
		}
	}
}

func TestDCT1DAxes(t *testing.T) {
	// A single row holds the vector; axis 1 must match Forward exactly,
	// and the transposed column along axis 0 must match as well.
	v := cosine(8, 3)
	row := ir.PlaneFrom([][]float64{v})
	col := ir.NewPlane(8, 1)
	copy(col.Pix, v)

	y, err := DCT1D(row, 1)
	require.NoError(t, err)
	requireClose(t, Forward(v), y.Pix)

	y, err = DCT1D(col, 0)
	require.NoError(t, err)
	requireClose(t, Forward(v), y.Pix)
}

func TestDCT1DInvalidAxis(t *testing.T) {
	for _, axis := range []int{-1, 2} {
		_, err := DCT1D(pseudo(8, 8), axis)
		assert.ErrorIs(t, err, ir.ErrInvalidArgument)
		_, err = IDCT1D(pseudo(8, 8), axis)
		assert.ErrorIs(t, err, ir.ErrInvalidArgument)
	}
}

func TestDCT2DOuterCosines(t *testing.T) {
	const n = 8
	expected := func(a, b int) float64 {
		scale := func(m int) float64 {
			if m == 0 {
				return n
			}
			return n / 2.0
		}
		return scale(a) * scale(b)
	}
	for a := 0; a < n; a++ {
		for _, b := range []int{a, n - 1 - a} {
			ca, cb := cosine(n, a), cosine(n, b)
			x := ir.NewPlane(n, n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					x.Set(i, j, ca[i]*cb[j])
				}
			}
			y, err := DCT2D(x)
			require.NoError(t, err)

			want := ir.NewPlane(n, n)
			want.Set(a, b, expected(a, b))
			requireClose(t, want.Pix, y.Pix)
		}
	}
}

func TestDCT2DConstantBlock(t *testing.T) {
	x := ir.NewPlane(8, 8)
	for i := range x.Pix {
		x.Pix[i] = 37
	}
	y, err := DCT2D(x)
	require.NoError(t, err)
	assert.InDelta(t, 64*37.0, y.At(0, 0), 1e-9)
	for i := 1; i < len(y.Pix); i++ {
		assert.InDelta(t, 0, y.Pix[i], 1e-9)
	}
}

func TestDCT2DRoundTrip(t *testing.T) {
	for _, shape := range [][2]int{{8, 8}, {8, 3}, {5, 8}, {2, 2}, {13, 9}} {
		x := pseudo(shape[0], shape[1])
		y, err := DCT2D(x)
		require.NoError(t, err)
		z, err := IDCT2D(y)
		require.NoError(t, err)
		requireClose(t, x.Pix, z.Pix)
	}
}

func TestDCT2DOrderIndependent(t *testing.T) {
	x := pseudo(8, 6)
	a, err := DCT1D(x, 1)
	require.NoError(t, err)
	a, err = DCT1D(a, 0)
	require.NoError(t, err)

	b, err := DCT2D(x)
	require.NoError(t, err)
	requireClose(t, b.Pix, a.Pix)
}
