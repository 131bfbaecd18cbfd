package color

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	iccHeaderSize  = 128
	maxProfileSize = 4 << 20
	acspMagic      = 0x61637370 // "acsp"
)

// ErrInvalidProfile reports bytes that are not a usable ICC profile header.
var ErrInvalidProfile = errors.New("invalid ICC profile")

// iccHeader mirrors the leading fields of the 128-byte ICC header.
type iccHeader struct {
	Size         uint32
	CMM          [4]byte
	Version      [4]byte
	Class        [4]byte
	ColorSpace   [4]byte
	PCS          [4]byte
	Created      [12]byte
	Magic        uint32
	Platform     [4]byte
	Flags        uint32
	Manufacturer [4]byte
	Model        uint32
	Attributes   uint64
	Intent       uint32
}

// ProfileInfo is the subset of an ICC profile header reported by identify
// and checked before compression. The converter always uses the fixed BT.601
// weights; an embedded profile is informational only.
type ProfileInfo struct {
	Size       uint32
	Version    string
	ColorSpace string // "RGB ", "CMYK", "GRAY", ...
	PCS        string // "XYZ ", "Lab "
	Class      string // "mntr", "prtr", ...
	Intent     string
}

// ParseProfileInfo decodes the ICC header of data. The declared profile size
// may not exceed the bytes supplied.
func ParseProfileInfo(data []byte) (*ProfileInfo, error) {
	if n := len(data); n < iccHeaderSize || n > maxProfileSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d..%d", ErrInvalidProfile, n, iccHeaderSize, maxProfileSize)
	}
	var h iccHeader
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if h.Magic != acspMagic {
		return nil, fmt.Errorf("%w: signature 0x%08x", ErrInvalidProfile, h.Magic)
	}
	if int(h.Size) > len(data) {
		return nil, fmt.Errorf("%w: header declares %d bytes, have %d", ErrInvalidProfile, h.Size, len(data))
	}
	return &ProfileInfo{
		Size:       h.Size,
		Version:    fmt.Sprintf("%d.%d.%d", h.Version[0], h.Version[1]>>4, h.Version[1]&0x0f),
		ColorSpace: string(h.ColorSpace[:]),
		PCS:        string(h.PCS[:]),
		Class:      string(h.Class[:]),
		Intent:     intentNames[h.Intent&0xffff],
	}, nil
}

// IsRGB reports whether the profile describes an RGB device space, the only
// input the converter's luma weights are meant for.
func (pi *ProfileInfo) IsRGB() bool { return pi.ColorSpace == "RGB " }

var intentNames = map[uint32]string{
	0: "perceptual",
	1: "relative colorimetric",
	2: "saturation",
	3: "absolute colorimetric",
}

var colorSpaceNames = map[string]string{
	"RGB ": "RGB",
	"CMYK": "CMYK",
	"GRAY": "Grayscale",
	"Lab ": "CIELAB",
	"XYZ ": "CIEXYZ",
	"YCbr": "YCbCr",
}

var profileClassNames = map[string]string{
	"mntr": "Display",
	"prtr": "Output",
	"scnr": "Input",
	"link": "DeviceLink",
	"spac": "ColorSpace",
	"abst": "Abstract",
	"nmcl": "NamedColor",
}

// ColorSpaceName returns a human-readable name for an ICC colour space signature.
func ColorSpaceName(sig string) string {
	if name, ok := colorSpaceNames[sig]; ok {
		return name
	}
	return strings.TrimSpace(sig)
}

// ProfileClassName returns a human-readable name for an ICC profile class.
func ProfileClassName(sig string) string {
	if name, ok := profileClassNames[sig]; ok {
		return name
	}
	return strings.TrimSpace(sig)
}
