// Package pipeline chains colour conversion, block partitioning, the DCT and
// quantisation into Compress, and runs the inverse chain in Decompress.
//
// The compressed form is a sparse coefficient structure, not a bit-packed
// stream: no entropy coding is performed here. internal/container serializes
// it with a general-purpose compressor.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davesmith10/dctcodec/internal/block"
	"github.com/davesmith10/dctcodec/internal/color"
	"github.com/davesmith10/dctcodec/internal/dct"
	"github.com/davesmith10/dctcodec/internal/ir"
	"github.com/davesmith10/dctcodec/internal/quant"
)

// Options controls pipeline construction. Zero values select the defaults.
type Options struct {
	Quality         int          // IJG quality 1-100; 50 keeps the standard table (default 50)
	ChromaReduction int          // quality reduction for Cb/Cr tables (default 0)
	Gamma           float64      // gamma exponent (default 0.45)
	BlockShape      block.Shape  // at most 8x8 (default 8x8)
	Workers         int          // concurrent channel workers (default NumCPU)
	Logger          *slog.Logger // debug stage timings (default discard)
}

// Pipeline holds immutable configuration and is safe for concurrent use.
type Pipeline struct {
	quality         int
	chromaReduction int
	shape           block.Shape
	workers         int
	tables          [ir.Channels]quant.Table
	conv            *color.Converter
	log             *slog.Logger
}

// Channel is the quantised content of one Y′, Cb or Cr channel.
type Channel struct {
	Grid   block.Grid
	Blocks []*ir.Coefficients // row-major grid order
}

// Compressed is the output of Compress.
type Compressed struct {
	Width           int
	Height          int
	Quality         int
	ChromaReduction int
	Gamma           float64
	BlockShape      block.Shape
	Channels        [ir.Channels]Channel
}

// New validates opts and builds a pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Quality == 0 {
		opts.Quality = quant.DefaultQuality
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("%w: quality %d outside 1-100", ir.ErrInvalidArgument, opts.Quality)
	}
	if opts.ChromaReduction < 0 || opts.ChromaReduction >= 100 {
		return nil, fmt.Errorf("%w: chroma reduction %d outside 0-99", ir.ErrInvalidArgument, opts.ChromaReduction)
	}
	if opts.Gamma == 0 {
		opts.Gamma = color.DefaultGamma
	}
	if opts.BlockShape == (block.Shape{}) {
		opts.BlockShape = block.DefaultShape
	}
	if s := opts.BlockShape; s.Rows <= 0 || s.Cols <= 0 || s.Rows > quant.Size || s.Cols > quant.Size {
		return nil, fmt.Errorf("%w: block shape %dx%d must be within 1x1..%dx%d",
			ir.ErrInvalidArgument, s.Rows, s.Cols, quant.Size, quant.Size)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	conv, err := color.NewConverter(color.BT601, opts.Gamma)
	if err != nil {
		return nil, err
	}
	tables := quant.Tables(opts.Quality, opts.ChromaReduction)
	for c := range tables {
		if err := tables[c].Validate(); err != nil {
			return nil, fmt.Errorf("channel %d table: %w", c, err)
		}
	}

	return &Pipeline{
		quality:         opts.Quality,
		chromaReduction: opts.ChromaReduction,
		shape:           opts.BlockShape,
		workers:         opts.Workers,
		tables:          tables,
		conv:            conv,
		log:             opts.Logger,
	}, nil
}

// Tables returns the per-channel quantisation tables (copies).
func (p *Pipeline) Tables() [ir.Channels]quant.Table { return p.tables }

// Converter returns the colour converter in use.
func (p *Pipeline) Converter() *color.Converter { return p.conv }

// Compress runs RGB → Y′CbCr → blocks → DCT → DC shift → quantisation.
func (p *Pipeline) Compress(img *ir.Image) (*Compressed, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	start := time.Now()

	// 1. Colour conversion
	ycc := p.conv.RGBToYCbCr(img)
	p.log.Debug("converted to YCbCr", "width", img.Width, "height", img.Height, "elapsed", time.Since(start))

	// 2. Per-channel split, transform, quantise
	out := &Compressed{
		Width:           img.Width,
		Height:          img.Height,
		Quality:         p.quality,
		ChromaReduction: p.chromaReduction,
		Gamma:           p.conv.GammaCodec().Gamma(),
		BlockShape:      p.shape,
	}
	var g errgroup.Group
	g.SetLimit(p.workers)
	for c := 0; c < ir.Channels; c++ {
		c := c
		g.Go(func() error {
			ch, err := p.compressChannel(ycc.Channel(c), &p.tables[c])
			if err != nil {
				return fmt.Errorf("channel %d: %w", c, err)
			}
			out.Channels[c] = ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	p.log.Debug("compressed", "blocks", len(out.Channels[0].Blocks)*ir.Channels,
		"nonzero", out.NonZero(), "elapsed", time.Since(start))
	return out, nil
}

func (p *Pipeline) compressChannel(plane *ir.Plane, t *quant.Table) (Channel, error) {
	tiles, grid, err := block.Split(plane, p.shape, block.Truncate)
	if err != nil {
		return Channel{}, err
	}
	blocks := make([]*ir.Coefficients, len(tiles))
	for i, tile := range tiles {
		coeffs, err := dct.DCT2D(tile)
		if err != nil {
			return Channel{}, fmt.Errorf("block %d: %w", i, err)
		}
		quant.ShiftDC(coeffs, -quant.LevelShift)
		if blocks[i], err = quant.Quantize(coeffs, t); err != nil {
			return Channel{}, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return Channel{Grid: grid, Blocks: blocks}, nil
}

// Decompress runs dequantisation → DC shift → IDCT → reassembly → RGB.
// The result is an approximation of the compressed image.
func (p *Pipeline) Decompress(c *Compressed) (*ir.Image, error) {
	if err := p.check(c); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	start := time.Now()

	ycc := ir.NewPlanar(c.Height, c.Width)
	var g errgroup.Group
	g.SetLimit(p.workers)
	for ch := 0; ch < ir.Channels; ch++ {
		ch := ch
		g.Go(func() error {
			plane, err := p.decompressChannel(c.Channels[ch], &p.tables[ch])
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			if plane.Rows != c.Height || plane.Cols != c.Width {
				return fmt.Errorf("channel %d: %w: reassembled %dx%d, want %dx%d",
					ch, ir.ErrInvalidArgument, plane.Cols, plane.Rows, c.Width, c.Height)
			}
			ycc.Planes[ch] = plane
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	img := p.conv.YCbCrPlanarToRGB(ycc)
	p.log.Debug("decompressed", "width", c.Width, "height", c.Height, "elapsed", time.Since(start))
	return img, nil
}

func (p *Pipeline) decompressChannel(ch Channel, t *quant.Table) (*ir.Plane, error) {
	tiles := make([]*ir.Plane, len(ch.Blocks))
	for i, qb := range ch.Blocks {
		coeffs, err := quant.Dequantize(qb, t)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		quant.ShiftDC(coeffs, quant.LevelShift)
		if tiles[i], err = dct.IDCT2D(coeffs); err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return block.Unsplit(tiles, ch.Grid)
}

func (p *Pipeline) check(c *Compressed) error {
	if c == nil {
		return fmt.Errorf("%w: nil compressed data", ir.ErrInvalidArgument)
	}
	if c.Quality != p.quality || c.ChromaReduction != p.chromaReduction {
		return fmt.Errorf("%w: data quantised at quality %d/reduction %d, pipeline uses %d/%d",
			ir.ErrInvalidArgument, c.Quality, c.ChromaReduction, p.quality, p.chromaReduction)
	}
	// The inverse gamma must match the one applied at compression.
	if g := p.conv.GammaCodec().Gamma(); c.Gamma != g {
		return fmt.Errorf("%w: data gamma-corrected with %v, pipeline uses %v", ir.ErrInvalidArgument, c.Gamma, g)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image dimensions %dx%d", ir.ErrInvalidArgument, c.Width, c.Height)
	}
	for i, ch := range c.Channels {
		if len(ch.Blocks) != ch.Grid.Len() {
			return fmt.Errorf("%w: channel %d has %d blocks for a %dx%d grid",
				ir.ErrInvalidArgument, i, len(ch.Blocks), ch.Grid.Rows, ch.Grid.Cols)
		}
		for j, b := range ch.Blocks {
			if b == nil {
				return fmt.Errorf("%w: channel %d block %d is nil", ir.ErrInvalidArgument, i, j)
			}
			if len(b.Vals) != b.Rows*b.Cols {
				return fmt.Errorf("%w: channel %d block %d holds %d values for %dx%d",
					ir.ErrInvalidArgument, i, j, len(b.Vals), b.Rows, b.Cols)
			}
		}
	}
	return nil
}
