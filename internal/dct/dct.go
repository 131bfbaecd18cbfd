// Package dct implements the unnormalised type-II DCT and its inverse as
// direct products against precomputed cosine bases.
//
// Forward, for a length-N signal:
//
//	X[k] = sum_{n=0}^{N-1} x[n] * cos(pi/N * (n+0.5) * k)
//
// Inverse:
//
//	x[k] = 2/N * (0.5*X[0] + sum_{n=1}^{N-1} X[n] * cos(pi*n/N * (k+0.5)))
//
// A constant signal of value v transforms to N*v at index 0 and zero
// elsewhere. The 2D transforms apply the 1D transform along axis 0 and then
// axis 1; the transform is separable, so the order does not change the result.
package dct

import (
	"fmt"
	"math"
	"sync"

	"github.com/davesmith10/dctcodec/internal/ir"
)

type bases struct {
	fwd *ir.Plane
	inv *ir.Plane
}

// cache holds one immutable basis pair per transform length.
var cache sync.Map // int -> *bases

func basesFor(n int) *bases {
	if b, ok := cache.Load(n); ok {
		return b.(*bases)
	}
	fwd := ir.NewPlane(n, n)
	inv := ir.NewPlane(n, n)
	size := float64(n)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			fwd.Set(k, i, math.Cos(math.Pi/size*(float64(i)+0.5)*float64(k)))
			// The DC term carries half weight.
			if i == 0 {
				inv.Set(k, i, 1/size)
			} else {
				inv.Set(k, i, math.Cos(math.Pi*float64(i)/size*(float64(k)+0.5))*2/size)
			}
		}
	}
	b, _ := cache.LoadOrStore(n, &bases{fwd: fwd, inv: inv})
	return b.(*bases)
}

// Basis returns the n x n forward matrix, row k holding frequency k.
// The returned plane is shared and must not be modified.
func Basis(n int) *ir.Plane { return basesFor(n).fwd }

// InverseBasis returns the n x n inverse matrix, including the 2/N scale.
// The returned plane is shared and must not be modified.
func InverseBasis(n int) *ir.Plane { return basesFor(n).inv }

// DCT1D transforms every line of x along axis (0: down columns, 1: along rows).
func DCT1D(x *ir.Plane, axis int) (*ir.Plane, error) {
	return apply(x, axis, false)
}

// IDCT1D inverts DCT1D along the same axis.
func IDCT1D(x *ir.Plane, axis int) (*ir.Plane, error) {
	return apply(x, axis, true)
}

// DCT2D is DCT1D along axis 0 followed by axis 1.
func DCT2D(x *ir.Plane) (*ir.Plane, error) {
	y, err := DCT1D(x, 0)
	if err != nil {
		return nil, err
	}
	return DCT1D(y, 1)
}

// IDCT2D inverts DCT2D.
func IDCT2D(x *ir.Plane) (*ir.Plane, error) {
	y, err := IDCT1D(x, 0)
	if err != nil {
		return nil, err
	}
	return IDCT1D(y, 1)
}

// Forward transforms a single vector.
func Forward(x []float64) []float64 {
	return mulVec(Basis(len(x)), x)
}

// Inverse inverts Forward.
func Inverse(x []float64) []float64 {
	return mulVec(InverseBasis(len(x)), x)
}

func apply(x *ir.Plane, axis int, inverse bool) (*ir.Plane, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil block", ir.ErrInvalidArgument)
	}
	var n int
	switch axis {
	case 0:
		n = x.Rows
	case 1:
		n = x.Cols
	default:
		return nil, fmt.Errorf("%w: axis must be 0 or 1, got %d", ir.ErrInvalidArgument, axis)
	}
	out := ir.NewPlane(x.Rows, x.Cols)
	if n == 0 {
		return out, nil
	}
	b := basesFor(n)
	m := b.fwd
	if inverse {
		m = b.inv
	}

	if axis == 0 {
		// out = M * X
		for k := 0; k < x.Rows; k++ {
			mk := m.Row(k)
			dst := out.Row(k)
			for i, w := range mk {
				src := x.Row(i)
				for j, v := range src {
					dst[j] += w * v
				}
			}
		}
		return out, nil
	}

	// out = X * M^T
	for r := 0; r < x.Rows; r++ {
		src := x.Row(r)
		dst := out.Row(r)
		for k := range dst {
			dst[k] = dot(m.Row(k), src)
		}
	}
	return out, nil
}

func mulVec(m *ir.Plane, x []float64) []float64 {
	out := make([]float64, len(x))
	for k := range out {
		out[k] = dot(m.Row(k), x)
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i, v := range a {
		s += v * b[i]
	}
	return s
}
