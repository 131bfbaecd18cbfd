// Package testimg generates deterministic rasters for tests.
package testimg

import (
	"math"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// Natural returns a smooth, photo-like width x height image: broad gradients,
// low-frequency shading and a soft-edged disc. Every sample is in [16, 240],
// so none of them is zero.
func Natural(width, height int) *ir.Image {
	img := ir.NewImage(width, height)
	cx, cy := 0.6*float64(width), 0.4*float64(height)
	radius := 0.25 * math.Min(float64(width), float64(height))
	for y := 0; y < height; y++ {
		fy := float64(y) / float64(height)
		for x := 0; x < width; x++ {
			fx := float64(x) / float64(width)
			shade := math.Sin(2*math.Pi*(1.5*fx+0.1)) * math.Cos(2*math.Pi*fy)

			r := 120 + 60*fx + 40*shade
			g := 100 + 70*fy - 30*shade
			b := 150 - 50*fx + 25*math.Sin(2*math.Pi*(fx+fy))

			// Disc blends in over a 12px band.
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			t := smoothstep(radius+6, radius-6, d)
			r = lerp(r, 200, t)
			g = lerp(g, 170, t)
			b = lerp(b, 60, t)

			i := (y*width + x) * ir.Channels
			img.Pixels[i] = clamp(r)
			img.Pixels[i+1] = clamp(g)
			img.Pixels[i+2] = clamp(b)
		}
	}
	return img
}

// Textured returns Natural with hard edges and per-sample noise layered on
// top: a band of 16px stripes across the top quarter, a saturated rectangle,
// a dark diagonal line and deterministic noise in [-5, 5]. Samples stay in
// [16, 240].
func Textured(width, height int) *ir.Image {
	img := Natural(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var d [ir.Channels]int
			if y < height/4 && (x/16)%2 == 0 {
				d = [ir.Channels]int{30, 30, 30}
			}
			if x >= width/8 && x < 3*width/8 && y >= 5*height/8 && y < 7*height/8 {
				d[0] += 50
				d[2] -= 40
			}
			if x-y > -2 && x-y < 2 {
				d = [ir.Channels]int{d[0] - 60, d[1] - 60, d[2] - 60}
			}

			i := (y*width + x) * ir.Channels
			for c := 0; c < ir.Channels; c++ {
				v := int(img.Pixels[i+c]) + d[c] + noise(x, y, c)
				img.Pixels[i+c] = uint8(max(16, min(240, v)))
			}
		}
	}
	return img
}

// noise hashes (x, y, c) to an integer in [-5, 5].
func noise(x, y, c int) int {
	h := uint32(x)*0x9E3779B1 ^ uint32(y)*0x85EBCA77 ^ uint32(c)*0xC2B2AE3D
	h ^= h >> 15
	h *= 0x2C1B3C6D
	h ^= h >> 12
	h *= 0x297A2D39
	h ^= h >> 15
	return int(h%11) - 5
}

// Solid returns a width x height image filled with one colour.
func Solid(width, height int, r, g, b uint8) *ir.Image {
	img := ir.NewImage(width, height)
	for i := 0; i < len(img.Pixels); i += ir.Channels {
		img.Pixels[i], img.Pixels[i+1], img.Pixels[i+2] = r, g, b
	}
	return img
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := (x - edge0) / (edge1 - edge0)
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(v float64) uint8 {
	return uint8(math.Max(16, math.Min(240, math.Round(v))))
}
