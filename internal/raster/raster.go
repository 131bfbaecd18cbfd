// Package raster moves images between encoded files and ir.Image.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/davesmith10/dctcodec/internal/ir"
)

// DefaultJPEGQuality is used by Encode when no quality is given.
const DefaultJPEGQuality = 95

// Decoded holds the result of decoding an input raster.
type Decoded struct {
	Image  *ir.Image
	Format string // "png", "jpeg", "gif"
	ICC    []byte // embedded ICC profile (JPEG only), nil if absent
}

// Decode decodes a PNG, JPEG or GIF file from memory into an 8-bit RGB image.
func Decode(data []byte) (*Decoded, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var icc []byte
	if format == "jpeg" {
		app2, err := scanAPP2(data)
		if err != nil {
			return nil, fmt.Errorf("scanning JPEG markers: %w", err)
		}
		if icc, err = ExtractICC(app2); err != nil {
			return nil, fmt.Errorf("extracting ICC: %w", err)
		}
	}

	return &Decoded{Image: FromImage(src), Format: format, ICC: icc}, nil
}

// FromImage copies any image.Image into an ir.Image with bounds starting at
// (0,0). Transparent pixels end up composited over black.
func FromImage(src image.Image) *ir.Image {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}

	out := ir.NewImage(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		dst := out.Pixels[y*out.Width*ir.Channels:]
		for x := 0; x < out.Width; x++ {
			copy(dst[x*ir.Channels:x*ir.Channels+ir.Channels], row[x*4:x*4+3])
		}
	}
	return out
}

// ToImage converts an ir.Image into an opaque *image.RGBA.
func ToImage(img *ir.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i := 0; i < img.Width*img.Height; i++ {
		copy(dst.Pix[i*4:i*4+3], img.Pixels[i*ir.Channels:i*ir.Channels+ir.Channels])
		dst.Pix[i*4+3] = 0xff
	}
	return dst
}

// Encode writes img as "png" or "jpeg". quality applies to JPEG only; zero
// selects DefaultJPEGQuality.
func Encode(w io.Writer, img *ir.Image, format string, quality int) error {
	if err := img.Validate(); err != nil {
		return err
	}
	switch format {
	case "png":
		return png.Encode(w, ToImage(img))
	case "jpeg", "jpg":
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, ToImage(img), &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported output format: %q", format)
	}
}

// ImageInfo contains metadata about an encoded raster.
type ImageInfo struct {
	Width         int
	Height        int
	Format        string
	NumComponents int
	ColorModel    string
	ICC           []byte // extracted ICC profile, nil if absent
}

// GetInfo reads raster metadata and any ICC profile without decoding pixels.
func GetInfo(data []byte) (*ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	name, comps := colorModelName(cfg.ColorModel)
	info := &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		NumComponents: comps,
		ColorModel:    name,
	}
	if format == "jpeg" {
		app2, err := scanAPP2(data)
		if err != nil {
			return nil, fmt.Errorf("scanning JPEG markers: %w", err)
		}
		if info.ICC, err = ExtractICC(app2); err != nil {
			return nil, fmt.Errorf("extracting ICC: %w", err)
		}
	}
	return info, nil
}

// colorModelName reports a name and component count for the standard library
// colour models.
func colorModelName(m color.Model) (string, int) {
	if _, ok := m.(color.Palette); ok {
		return "Paletted", 1
	}
	switch m {
	case color.GrayModel, color.Gray16Model:
		return "Grayscale", 1
	case color.YCbCrModel:
		return "YCbCr", 3
	case color.CMYKModel:
		return "CMYK", 4
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "RGB", 4
	}
	return "Unknown", 0
}
