package ir

import "fmt"

// Channels is the number of interleaved channels carried by an Image.
const Channels = 3

// Image is the 8-bit raster passed between raster I/O, colour conversion and
// the pipeline. Pixels are stored as three interleaved bytes per pixel
// (R,G,B or Y,Cb,Cr), row-major order.
type Image struct {
	Width  int
	Height int
	Pixels []byte // len = Width * Height * 3
}

// NewImage allocates a zeroed width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*Channels),
	}
}

// Validate reports whether the pixel buffer matches the declared dimensions.
func (im *Image) Validate() error {
	if im == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if im.Width <= 0 || im.Height <= 0 {
		return fmt.Errorf("%w: image dimensions %dx%d", ErrInvalidArgument, im.Width, im.Height)
	}
	if expected := im.Width * im.Height * Channels; len(im.Pixels) != expected {
		return fmt.Errorf("%w: expected %d pixel bytes for %dx%d, got %d",
			ErrInvalidArgument, expected, im.Width, im.Height, len(im.Pixels))
	}
	return nil
}

// Channel extracts channel c as a float plane.
func (im *Image) Channel(c int) *Plane {
	p := NewPlane(im.Height, im.Width)
	for i := range p.Pix {
		p.Pix[i] = float64(im.Pixels[i*Channels+c])
	}
	return p
}

// Plane is a single row-major channel of float samples. It is used for whole
// channels as well as for individual blocks.
type Plane struct {
	Rows int
	Cols int
	Pix  []float64 // len = Rows * Cols
}

// NewPlane allocates a zeroed rows x cols plane.
func NewPlane(rows, cols int) *Plane {
	return &Plane{Rows: rows, Cols: cols, Pix: make([]float64, rows*cols)}
}

// PlaneFrom wraps row slices into a plane. All rows must have equal length.
func PlaneFrom(rows [][]float64) *Plane {
	if len(rows) == 0 {
		return &Plane{}
	}
	p := NewPlane(len(rows), len(rows[0]))
	for y, row := range rows {
		copy(p.Pix[y*p.Cols:(y+1)*p.Cols], row)
	}
	return p
}

func (p *Plane) At(y, x int) float64 { return p.Pix[y*p.Cols+x] }

func (p *Plane) Set(y, x int, v float64) { p.Pix[y*p.Cols+x] = v }

// Row returns row y as a sub-slice of Pix.
func (p *Plane) Row(y int) []float64 { return p.Pix[y*p.Cols : (y+1)*p.Cols] }

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	c := &Plane{Rows: p.Rows, Cols: p.Cols, Pix: make([]float64, len(p.Pix))}
	copy(c.Pix, p.Pix)
	return c
}

// Planar is a three-channel float image, used for gamma-corrected RGB′ and
// Y′PbPr stages.
type Planar struct {
	Rows   int
	Cols   int
	Planes [Channels]*Plane
}

// NewPlanar allocates three zeroed planes.
func NewPlanar(rows, cols int) *Planar {
	pl := &Planar{Rows: rows, Cols: cols}
	for c := range pl.Planes {
		pl.Planes[c] = NewPlane(rows, cols)
	}
	return pl
}

// PlanarFromPixels builds a planar image from interleaved float triples,
// e.g. [][3]float64{{1, 0, 0}} for a single red pixel.
func PlanarFromPixels(rows, cols int, px [][Channels]float64) *Planar {
	pl := NewPlanar(rows, cols)
	for i, v := range px {
		for c := 0; c < Channels; c++ {
			pl.Planes[c].Pix[i] = v[c]
		}
	}
	return pl
}

// Pixel returns the three channel values at (y, x).
func (pl *Planar) Pixel(y, x int) [Channels]float64 {
	i := y*pl.Cols + x
	return [Channels]float64{pl.Planes[0].Pix[i], pl.Planes[1].Pix[i], pl.Planes[2].Pix[i]}
}

// Coefficients is a quantised coefficient block. It has the same shape as the
// block it was computed from.
type Coefficients struct {
	Rows int
	Cols int
	Vals []int32 // len = Rows * Cols
}

// NewCoefficients allocates a zeroed rows x cols block.
func NewCoefficients(rows, cols int) *Coefficients {
	return &Coefficients{Rows: rows, Cols: cols, Vals: make([]int32, rows*cols)}
}

func (c *Coefficients) At(y, x int) int32 { return c.Vals[y*c.Cols+x] }
