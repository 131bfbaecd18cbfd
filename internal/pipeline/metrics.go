package pipeline

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// RMSE returns the root-mean-square sample difference between two images on
// the 0-255 scale.
func RMSE(a, b *ir.Image) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pixels) != len(b.Pixels) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ir.ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	if len(a.Pixels) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a.Pixels {
		d := float64(a.Pixels[i]) - float64(b.Pixels[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a.Pixels))), nil
}

// CountNonZero returns the number of nonzero samples in img.
func CountNonZero(img *ir.Image) int {
	return lo.CountBy(img.Pixels, func(v byte) bool { return v != 0 })
}

// NonZero returns the number of nonzero quantised coefficients.
func (c *Compressed) NonZero() int {
	return lo.SumBy(c.Channels[:], func(ch Channel) int {
		return lo.SumBy(ch.Blocks, func(b *ir.Coefficients) int {
			return lo.CountBy(b.Vals, func(v int32) bool { return v != 0 })
		})
	})
}

// Coefficients returns the total number of quantised coefficients.
func (c *Compressed) Coefficients() int {
	return lo.SumBy(c.Channels[:], func(ch Channel) int {
		return lo.SumBy(ch.Blocks, func(b *ir.Coefficients) int { return len(b.Vals) })
	})
}
