// Package quant divides DCT coefficient blocks by an 8x8 quantisation table
// and rounds them to integers. It also applies the DC level shift used around
// quantisation.
package quant

import (
	"fmt"
	"math"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// Size is the edge length of a quantisation table.
const Size = 8

// LevelShift is subtracted from the DC coefficient before quantisation and
// added back after dequantisation.
const LevelShift = 128

// Table is a row-major 8x8 matrix of strictly positive divisors.
type Table [Size * Size]int

// Standard is the JPEG luminance table (Annex K). It is applied to all three
// channels unless a chroma reduction is configured.
var Standard = Table{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// DefaultQuality leaves the base table unscaled.
const DefaultQuality = 50

func (t *Table) At(y, x int) int { return t[y*Size+x] }

// Validate rejects tables with a non-positive entry.
func (t *Table) Validate() error {
	for i, q := range t {
		if q <= 0 {
			return fmt.Errorf("%w: quantisation entry [%d,%d] = %d, must be > 0",
				ir.ErrInvalidArgument, i/Size, i%Size, q)
		}
	}
	return nil
}

// ClampQuality limits quality to 1-100.
func ClampQuality(quality int) int {
	return max(1, min(100, quality))
}

// ScaleTable scales a base table by a quality factor (1-100) using the IJG
// formula. Quality 50 returns the base table.
func ScaleTable(base Table, quality int) Table {
	quality = ClampQuality(quality)

	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}

	var table Table
	for i, q := range base {
		table[i] = max(1, min(255, (q*scale+50)/100))
	}
	return table
}

// Tables returns per-channel tables for Y, Cb, Cr. Chroma is scaled at
// quality - chromaReduction; a reduction of 0 yields three identical tables.
func Tables(quality, chromaReduction int) [ir.Channels]Table {
	luma := ScaleTable(Standard, quality)
	chroma := ScaleTable(Standard, ClampQuality(quality-chromaReduction))
	return [ir.Channels]Table{luma, chroma, chroma}
}

func checkShape(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows > Size || cols > Size {
		return fmt.Errorf("%w: block %dx%d does not fit a %dx%d table",
			ir.ErrInvalidArgument, rows, cols, Size, Size)
	}
	return nil
}

// Quantize divides each coefficient by the matching table entry and rounds
// to the nearest integer. Blocks smaller than 8x8 use the top-left corner of
// the table.
func Quantize(block *ir.Plane, t *Table) (*ir.Coefficients, error) {
	if err := checkShape(block.Rows, block.Cols); err != nil {
		return nil, err
	}
	out := ir.NewCoefficients(block.Rows, block.Cols)
	for y := 0; y < block.Rows; y++ {
		for x := 0; x < block.Cols; x++ {
			out.Vals[y*block.Cols+x] = int32(math.Round(block.At(y, x) / float64(t.At(y, x))))
		}
	}
	return out, nil
}

// Dequantize multiplies each value by the matching table entry.
func Dequantize(block *ir.Coefficients, t *Table) (*ir.Plane, error) {
	if err := checkShape(block.Rows, block.Cols); err != nil {
		return nil, err
	}
	out := ir.NewPlane(block.Rows, block.Cols)
	for y := 0; y < block.Rows; y++ {
		for x := 0; x < block.Cols; x++ {
			out.Set(y, x, float64(block.At(y, x))*float64(t.At(y, x)))
		}
	}
	return out, nil
}

// ShiftDC adds delta to the zero-frequency coefficient in place.
func ShiftDC(block *ir.Plane, delta float64) {
	if len(block.Pix) > 0 {
		block.Pix[0] += delta
	}
}
