package raster

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davesmith10/dctcodec/internal/testimg"
)

// iccSegment builds a complete APP2 segment (marker + length + payload).
func iccSegment(seq, count int, data []byte) []byte {
	payload := append([]byte(iccMarkerTag), byte(seq), byte(count))
	payload = append(payload, data...)
	seg := []byte{0xFF, markerAPP2, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

func encodeJPEG(t *testing.T, segments ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, ToImage(testimg.Natural(24, 16)), &jpeg.Options{Quality: 90}))
	data := buf.Bytes()

	out := append([]byte{}, data[:2]...)
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, data[2:]...)
}

func TestPNGRoundTrip(t *testing.T) {
	img := testimg.Natural(33, 21)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, "png", 0))

	dec, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", dec.Format)
	assert.Nil(t, dec.ICC)
	assert.Equal(t, img, dec.Image)
}

func TestDecodeJPEGWithICC(t *testing.T) {
	profile := bytes.Repeat([]byte("icc-profile-bytes/"), 10)
	data := encodeJPEG(t,
		iccSegment(2, 2, profile[90:]),
		iccSegment(1, 2, profile[:90]),
	)

	dec, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", dec.Format)
	assert.Equal(t, 24, dec.Image.Width)
	assert.Equal(t, 16, dec.Image.Height)
	assert.Equal(t, profile, dec.ICC)

	info, err := GetInfo(data)
	require.NoError(t, err)
	assert.Equal(t, 24, info.Width)
	assert.Equal(t, 16, info.Height)
	assert.Equal(t, "YCbCr", info.ColorModel)
	assert.Equal(t, 3, info.NumComponents)
	assert.Equal(t, profile, info.ICC)
}

func TestDecodeJPEGWithoutICC(t *testing.T) {
	dec, err := Decode(encodeJPEG(t))
	require.NoError(t, err)
	assert.Nil(t, dec.ICC)
}

func TestExtractICCErrors(t *testing.T) {
	strip := func(seg []byte) []byte { return seg[4:] }

	for name, markers := range map[string][][]byte{
		"inconsistent count": {strip(iccSegment(1, 2, []byte("a"))), strip(iccSegment(2, 3, []byte("b")))},
		"missing chunk":      {strip(iccSegment(1, 2, []byte("a")))},
		"zero sequence":      {strip(iccSegment(0, 1, []byte("a")))},
		"repeated chunk":     {strip(iccSegment(1, 2, []byte("a"))), strip(iccSegment(1, 2, []byte("b")))},
	} {
		_, err := ExtractICC(markers)
		assert.ErrorIs(t, err, ErrBadICC, name)
	}

	icc, err := ExtractICC([][]byte{[]byte("not an icc chunk")})
	require.NoError(t, err)
	assert.Nil(t, icc)
}

func TestScanAPP2RejectsNonJPEG(t *testing.T) {
	_, err := scanAPP2([]byte("\x89PNG\r\n\x1a\n"))
	assert.ErrorIs(t, err, errBadJPEG)

	_, err = scanAPP2([]byte{0xFF, markerSOI, 0xFF, markerAPP2, 0x00, 0x40})
	assert.ErrorIs(t, err, errBadJPEG)
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	sub := src.SubImage(image.Rect(1, 1, 4, 4))

	img := FromImage(sub)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 3, img.Height)
	i := (2*3 + 1) * 3
	assert.Equal(t, []byte{10, 20, 30}, img.Pixels[i:i+3])
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, testimg.Solid(2, 2, 1, 2, 3), "bmp", 0))
}
