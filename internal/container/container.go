// Package container serializes pipeline.Compressed values.
//
// Layout (big-endian):
//
//	magic "DCTZ" | version u8 | width u32 | height u32 |
//	quality u8 | chroma reduction u8 | block rows u8 | block cols u8 |
//	gamma f64 (IEEE 754 bits) | 3 x (grid rows u32 | grid cols u32) |
//	zstd(payload)
//
// The payload holds every coefficient as a signed varint, channel by channel,
// block by block, row-major inside each block. Block shapes are not stored;
// they follow from the image size, block shape and truncation policy.
//
// This is general-purpose compression of the sparse coefficients, not JPEG
// entropy coding.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/klauspost/compress/zstd"

	"github.com/davesmith10/dctcodec/internal/block"
	"github.com/davesmith10/dctcodec/internal/ir"
	"github.com/davesmith10/dctcodec/internal/pipeline"
	"github.com/davesmith10/dctcodec/internal/quant"
)

const (
	// Magic identifies a coefficient container.
	Magic   = "DCTZ"
	version = 1

	gridOffset = len(Magic) + 1 + 4 + 4 + 4 + 8
	headerSize = gridOffset + ir.Channels*8
	// maxDimension bounds decoded sizes so a corrupt header cannot force a
	// huge allocation.
	maxDimension = 1 << 16
)

var (
	ErrInvalidMagic       = errors.New("container: invalid magic")
	ErrUnsupportedVersion = errors.New("container: unsupported version")
	ErrTruncated          = errors.New("container: truncated data")
)

// Header is the fixed-size prefix of a container.
type Header struct {
	Version         int
	Width           int
	Height          int
	Quality         int
	ChromaReduction int
	Gamma           float64
	BlockShape      block.Shape
	Grids           [ir.Channels]block.Grid
}

// Marshal encodes c.
func Marshal(c *pipeline.Compressed) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil compressed data", ir.ErrInvalidArgument)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > maxDimension || c.Height > maxDimension {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ir.ErrInvalidArgument, c.Width, c.Height)
	}
	for _, v := range []int{c.Quality, c.ChromaReduction, c.BlockShape.Rows, c.BlockShape.Cols} {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: header field %d does not fit a byte", ir.ErrInvalidArgument, v)
		}
	}
	if !validGamma(c.Gamma) {
		return nil, fmt.Errorf("%w: gamma %v", ir.ErrInvalidArgument, c.Gamma)
	}

	var b bytes.Buffer
	b.WriteString(Magic)
	b.WriteByte(version)
	writeU32(&b, c.Width)
	writeU32(&b, c.Height)
	b.Write([]byte{byte(c.Quality), byte(c.ChromaReduction), byte(c.BlockShape.Rows), byte(c.BlockShape.Cols)})
	_ = binary.Write(&b, binary.BigEndian, math.Float64bits(c.Gamma))
	for _, ch := range c.Channels {
		writeU32(&b, ch.Grid.Rows)
		writeU32(&b, ch.Grid.Cols)
	}

	raw := make([]byte, 0, c.Width*c.Height*ir.Channels)
	for i, ch := range c.Channels {
		for j, blk := range ch.Blocks {
			if blk == nil {
				return nil, fmt.Errorf("%w: channel %d block %d is nil", ir.ErrInvalidArgument, i, j)
			}
			for _, v := range blk.Vals {
				raw = binary.AppendVarint(raw, int64(v))
			}
		}
	}
	if err := encodeZstd(&b, raw); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	return b.Bytes(), nil
}

// ReadHeader parses the fixed-size header.
func ReadHeader(data []byte) (*Header, error) {
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return nil, ErrInvalidMagic
	}
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	r := bytes.NewReader(data[len(Magic):])
	v, _ := r.ReadByte()
	if v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	h := &Header{Version: int(v)}
	h.Width, h.Height = readU32(r), readU32(r)
	var fields [4]byte
	_, _ = r.Read(fields[:])
	h.Quality, h.ChromaReduction = int(fields[0]), int(fields[1])
	h.BlockShape = block.Shape{Rows: int(fields[2]), Cols: int(fields[3])}
	var bits uint64
	_ = binary.Read(r, binary.BigEndian, &bits)
	h.Gamma = math.Float64frombits(bits)
	for c := range h.Grids {
		h.Grids[c] = block.Grid{Rows: readU32(r), Cols: readU32(r)}
	}

	if h.Width <= 0 || h.Height <= 0 || h.Width > maxDimension || h.Height > maxDimension {
		return nil, fmt.Errorf("%w: image dimensions %dx%d", ir.ErrInvalidArgument, h.Width, h.Height)
	}
	if !validGamma(h.Gamma) {
		return nil, fmt.Errorf("%w: gamma %v", ir.ErrInvalidArgument, h.Gamma)
	}
	if s := h.BlockShape; s.Rows == 0 || s.Cols == 0 || s.Rows > quant.Size || s.Cols > quant.Size {
		return nil, fmt.Errorf("%w: block shape %dx%d", ir.ErrInvalidArgument, h.BlockShape.Rows, h.BlockShape.Cols)
	}
	want := block.GridOf(h.Height, h.Width, h.BlockShape)
	for c, g := range h.Grids {
		if g != want {
			return nil, fmt.Errorf("%w: channel %d grid %dx%d, want %dx%d",
				ir.ErrInvalidArgument, c, g.Rows, g.Cols, want.Rows, want.Cols)
		}
	}
	return h, nil
}

// Unmarshal decodes a container produced by Marshal.
func Unmarshal(data []byte) (*pipeline.Compressed, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	// Every coefficient takes at least one varint byte.
	count := uint64(h.Width) * uint64(h.Height) * ir.Channels
	raw, err := decodeZstd(data[headerSize:], count*binary.MaxVarintLen32)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if uint64(len(raw)) < count {
		return nil, fmt.Errorf("%w: %d payload bytes for %d coefficients", ErrTruncated, len(raw), count)
	}

	c := &pipeline.Compressed{
		Width:           h.Width,
		Height:          h.Height,
		Quality:         h.Quality,
		ChromaReduction: h.ChromaReduction,
		Gamma:           h.Gamma,
		BlockShape:      h.BlockShape,
	}
	pos := 0
	for ch := range c.Channels {
		grid := h.Grids[ch]
		blocks := make([]*ir.Coefficients, 0, grid.Len())
		for gy := 0; gy < grid.Rows; gy++ {
			for gx := 0; gx < grid.Cols; gx++ {
				ts := block.TileShape(h.Height, h.Width, h.BlockShape, gy, gx)
				blk := ir.NewCoefficients(ts.Rows, ts.Cols)
				for i := range blk.Vals {
					v, n := binary.Varint(raw[pos:])
					if n <= 0 {
						return nil, fmt.Errorf("%w: channel %d block %d", ErrTruncated, ch, len(blocks))
					}
					blk.Vals[i] = int32(v)
					pos += n
				}
				blocks = append(blocks, blk)
			}
		}
		c.Channels[ch] = pipeline.Channel{Grid: grid, Blocks: blocks}
	}
	if pos != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", ir.ErrInvalidArgument, len(raw)-pos)
	}
	return c, nil
}

func encodeZstd(b *bytes.Buffer, raw []byte) error {
	enc, err := zstd.NewWriter(b,
		zstd.WithEncoderConcurrency(runtime.NumCPU()),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func decodeZstd(payload []byte, limit uint64) ([]byte, error) {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(limit),
	)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(payload, nil)
}

func validGamma(g float64) bool {
	return g > 0 && !math.IsInf(g, 0)
}

func writeU32(b *bytes.Buffer, v int) {
	_ = binary.Write(b, binary.BigEndian, uint32(v))
}

func readU32(r *bytes.Reader) int {
	var v uint32
	_ = binary.Read(r, binary.BigEndian, &v)
	return int(v)
}
