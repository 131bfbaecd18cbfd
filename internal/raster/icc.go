package raster

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/samber/lo"
)

const (
	iccMarkerTag = "ICC_PROFILE\x00"
	iccHeaderLen = len(iccMarkerTag) + 2 // tag + seq + count

	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP2 = 0xE2
)

var (
	errBadJPEG = errors.New("malformed JPEG marker stream")

	// ErrBadICC reports an embedded ICC profile whose APP2 chunks do not
	// form a complete sequence.
	ErrBadICC = errors.New("malformed ICC chunk sequence")
)

// scanAPP2 walks the JPEG marker segments up to the first scan and returns
// the payload of every APP2 segment.
func scanAPP2(data []byte) ([][]byte, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, fmt.Errorf("%w: missing SOI", errBadJPEG)
	}
	var app2 [][]byte
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("%w: expected marker at offset %d", errBadJPEG, pos)
		}
		marker := data[pos+1]
		switch {
		case marker == 0xFF: // fill byte
			pos++
			continue
		case marker == markerSOS || marker == markerEOI:
			return app2, nil
		case marker >= 0xD0 && marker <= 0xD7, marker == 0x01:
			pos += 2 // standalone markers carry no length
			continue
		}
		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		if length < 2 || pos+2+length > len(data) {
			return nil, fmt.Errorf("%w: segment 0x%02X length %d at offset %d", errBadJPEG, marker, length, pos)
		}
		if marker == markerAPP2 {
			app2 = append(app2, data[pos+4:pos+2+length])
		}
		pos += 2 + length
	}
	return app2, nil
}

// ExtractICC reassembles an ICC profile from APP2 payloads. Each ICC chunk
// carries a 1-based sequence number and the total chunk count; chunks may
// arrive in any order but every slot must be filled exactly once. Non-ICC
// payloads are skipped, and nil is returned when no chunk is present.
func ExtractICC(markers [][]byte) ([]byte, error) {
	var slots [][]byte
	for _, m := range markers {
		if len(m) < iccHeaderLen || !bytes.HasPrefix(m, []byte(iccMarkerTag)) {
			continue
		}
		seq, total := int(m[len(iccMarkerTag)]), int(m[len(iccMarkerTag)+1])
		if slots == nil {
			slots = make([][]byte, total)
		}
		switch {
		case total != len(slots):
			return nil, fmt.Errorf("%w: chunk %d claims %d chunks, earlier chunks claimed %d", ErrBadICC, seq, total, len(slots))
		case seq < 1 || seq > total:
			return nil, fmt.Errorf("%w: chunk sequence %d outside 1..%d", ErrBadICC, seq, total)
		case slots[seq-1] != nil:
			return nil, fmt.Errorf("%w: chunk %d repeated", ErrBadICC, seq)
		}
		slots[seq-1] = m[iccHeaderLen:]
	}
	if slots == nil {
		return nil, nil
	}
	if _, i, missing := lo.FindIndexOf(slots, func(b []byte) bool { return b == nil }); missing {
		return nil, fmt.Errorf("%w: chunk %d of %d missing", ErrBadICC, i+1, len(slots))
	}
	return lo.Flatten(slots), nil
}
