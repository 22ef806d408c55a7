package course

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Layout file errors.
var (
	ErrInvalidLayoutMagic       = errors.New("invalid layout magic: expected 'CGRD'")
	ErrUnsupportedLayoutVersion = errors.New("unsupported layout version")
	ErrTruncatedLayoutData      = errors.New("truncated layout data")
)

const layoutMagic = "CGRD"

// LayoutVersion represents the layout file version.
type LayoutVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v LayoutVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentLayoutVersion is written by EncodeLayout.
var CurrentLayoutVersion = LayoutVersion{Major: 1, Minor: 0}

// ParseLayout parses a legacy grid file from raw bytes.
//
// Format (little endian): "CGRD", minor, major, uint32 width, uint32 height,
// uint8 background, then width*height cells of float32 elevation followed by
// uint8 terrain code, row by row.
func ParseLayout(data []byte) (*Layout, error) {
	if len(data) < 15 {
		return nil, ErrTruncatedLayoutData
	}
	if string(data[0:4]) != layoutMagic {
		return nil, ErrInvalidLayoutMagic
	}

	// Version is stored as [minor, major]
	version := LayoutVersion{Major: data[5], Minor: data[4]}
	if version.Major != 1 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayoutVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%w: reading width", ErrTruncatedLayoutData)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("%w: reading height", ErrTruncatedLayoutData)
	}
	if width == 0 || height == 0 || width > 8192 || height > 8192 {
		return nil, fmt.Errorf("invalid layout dimensions: %dx%d", width, height)
	}

	var background uint8
	if err := binary.Read(r, binary.LittleEndian, &background); err != nil {
		return nil, fmt.Errorf("%w: reading background", ErrTruncatedLayoutData)
	}

	l := NewLayout(int(width), int(height), TerrainCode(background))
	for z := range l.Height {
		for x := range l.Width {
			var elevation float32
			var code uint8
			if err := binary.Read(r, binary.LittleEndian, &elevation); err != nil {
				return nil, fmt.Errorf("%w: cell (%d,%d) elevation", ErrTruncatedLayoutData, x, z)
			}
			if err := binary.Read(r, binary.LittleEndian, &code); err != nil {
				return nil, fmt.Errorf("%w: cell (%d,%d) terrain", ErrTruncatedLayoutData, x, z)
			}
			l.Elevation[z][x] = float64(elevation)
			l.Terrain[z][x] = TerrainCode(code)
		}
	}

	return l, nil
}

// ParseLayoutFile parses a legacy grid file from disk.
func ParseLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return ParseLayout(data)
}

// EncodeLayout serializes l in the legacy grid format.
func EncodeLayout(l *Layout) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(layoutMagic)
	buf.WriteByte(CurrentLayoutVersion.Minor)
	buf.WriteByte(CurrentLayoutVersion.Major)
	binary.Write(buf, binary.LittleEndian, uint32(l.Width))
	binary.Write(buf, binary.LittleEndian, uint32(l.Height))
	buf.WriteByte(uint8(l.Background))
	for z := range l.Height {
		for x := range l.Width {
			binary.Write(buf, binary.LittleEndian, float32(l.ElevationAt(x, z)))
			buf.WriteByte(uint8(l.At(x, z)))
		}
	}
	return buf.Bytes()
}

// WriteLayoutFile writes l to path in the legacy grid format.
func WriteLayoutFile(path string, l *Layout) error {
	return os.WriteFile(path, EncodeLayout(l), 0644)
}
