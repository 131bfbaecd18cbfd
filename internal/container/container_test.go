package container

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davesmith10/dctcodec/internal/block"
	"github.com/davesmith10/dctcodec/internal/ir"
	"github.com/davesmith10/dctcodec/internal/pipeline"
	"github.com/davesmith10/dctcodec/internal/testimg"
)

func compressed(t *testing.T, w, h int) (*pipeline.Pipeline, *pipeline.Compressed) {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{Quality: 75, ChromaReduction: 10})
	require.NoError(t, err)
	c, err := p.Compress(testimg.Natural(w, h))
	require.NoError(t, err)
	return p, c
}

func TestRoundTrip(t *testing.T) {
	for _, size := range [][2]int{{64, 48}, {37, 29}, {1, 1}} {
		p, c := compressed(t, size[0], size[1])
		data, err := Marshal(c)
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)
		if diff := cmp.Diff(c, got); diff != "" {
			t.Fatalf("%dx%d: container round trip mismatch (-want +got):\n%s", size[0], size[1], diff)
		}

		want, err := p.Decompress(c)
		require.NoError(t, err)
		img, err := p.Decompress(got)
		require.NoError(t, err)
		assert.Equal(t, want.Pixels, img.Pixels)
	}
}

func TestPayloadIsSmallerThanRaw(t *testing.T) {
	_, c := compressed(t, 256, 256)
	data, err := Marshal(c)
	require.NoError(t, err)
	assert.Less(t, len(data), 256*256*3)
}

func TestReadHeader(t *testing.T) {
	_, c := compressed(t, 37, 29)
	data, err := Marshal(c)
	require.NoError(t, err)

	h, err := ReadHeader(data)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Version)
	assert.Equal(t, 37, h.Width)
	assert.Equal(t, 29, h.Height)
	assert.Equal(t, 75, h.Quality)
	assert.Equal(t, 10, h.ChromaReduction)
	assert.Equal(t, 0.45, h.Gamma)
	assert.Equal(t, block.DefaultShape, h.BlockShape)
	for _, g := range h.Grids {
		assert.Equal(t, block.Grid{Rows: 4, Cols: 5}, g)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	_, c := compressed(t, 16, 16)
	data, err := Marshal(c)
	require.NoError(t, err)

	_, err = Unmarshal([]byte("JPEG"))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = Unmarshal(data[:headerSize-1])
	assert.ErrorIs(t, err, ErrTruncated)

	bad := append([]byte(nil), data...)
	bad[len(Magic)] = 2
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	// Grid disagreeing with the image size.
	bad = append([]byte(nil), data...)
	bad[gridOffset+3] = 9
	_, err = Unmarshal(bad)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	// Damaged payload.
	_, err = Unmarshal(append(append([]byte(nil), data[:headerSize]...), 1, 2, 3, 4))
	assert.Error(t, err)
}

func TestMarshalRejects(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, c := compressed(t, 8, 8)
	c.Quality = 300
	_, err = Marshal(c)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, c = compressed(t, 8, 8)
	c.Channels[1].Blocks[0] = nil
	_, err = Marshal(c)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)
}

func TestGammaTravelsWithContainer(t *testing.T) {
	enc, err := pipeline.New(pipeline.Options{Gamma: 1.0})
	require.NoError(t, err)
	img := testimg.Natural(64, 64)
	c, err := enc.Compress(img)
	require.NoError(t, err)
	data, err := Marshal(c)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Gamma)

	def, err := pipeline.New(pipeline.Options{})
	require.NoError(t, err)
	_, err = def.Decompress(got)
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	dec, err := pipeline.New(pipeline.Options{Gamma: got.Gamma})
	require.NoError(t, err)
	out, err := dec.Decompress(got)
	require.NoError(t, err)
	rmse, err := pipeline.RMSE(img, out)
	require.NoError(t, err)
	assert.Less(t, rmse, 5.0)
}

// header builds a container whose header claims a width x height image and
// whose payload holds only a few bytes.
func header(width, height int, s block.Shape, gamma float64) []byte {
	var b bytes.Buffer
	b.WriteString(Magic)
	b.WriteByte(version)
	writeU32(&b, width)
	writeU32(&b, height)
	b.Write([]byte{50, 0, byte(s.Rows), byte(s.Cols)})
	_ = binary.Write(&b, binary.BigEndian, math.Float64bits(gamma))
	g := block.GridOf(height, width, s)
	for c := 0; c < ir.Channels; c++ {
		writeU32(&b, g.Rows)
		writeU32(&b, g.Cols)
	}
	_ = encodeZstd(&b, []byte{0, 0, 0})
	return b.Bytes()
}

func TestUnmarshalRejectsOversizedHeader(t *testing.T) {
	data := header(1<<16, 1<<16, block.DefaultShape, 0.45)
	require.Less(t, len(data), 128)
	_, err := Unmarshal(data)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Unmarshal(header(1<<16, 1<<16, block.Shape{Rows: 1, Cols: 1}, 0.45))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadHeaderRejectsBadFields(t *testing.T) {
	_, err := ReadHeader(header(64, 64, block.Shape{Rows: 16, Cols: 16}, 0.45))
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, err = ReadHeader(header(64, 64, block.DefaultShape, 0))
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, err = ReadHeader(header(64, 64, block.DefaultShape, math.NaN()))
	assert.ErrorIs(t, err, ir.ErrInvalidArgument)

	_, err = ReadHeader(header(64, 64, block.DefaultShape, 0.45))
	assert.NoError(t, err)
}
