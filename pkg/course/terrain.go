// Package course describes golf course inputs: terrain codes, polygonal
// terrain regions and legacy rectangular terrain grids.
package course

import (
	"fmt"
	"strings"
)

// TerrainCode classifies a mesh triangle or a grid cell.
type TerrainCode uint8

// Terrain codes. Values are persisted, do not reorder.
const (
	Fairway TerrainCode = 0
	Rough   TerrainCode = 1
	Green   TerrainCode = 2
	Bunker  TerrainCode = 3
	Water   TerrainCode = 4
	Tee     TerrainCode = 5
)

// NumTerrainCodes is the number of defined terrain codes.
const NumTerrainCodes = 6

// String returns the lower-case terrain name.
func (c TerrainCode) String() string {
	switch c {
	case Fairway:
		return "fairway"
	case Rough:
		return "rough"
	case Green:
		return "green"
	case Bunker:
		return "bunker"
	case Water:
		return "water"
	case Tee:
		return "tee"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Valid reports whether c is a defined terrain code.
func (c TerrainCode) Valid() bool {
	return c < NumTerrainCodes
}

// IsPlayable returns true for surfaces a ball can be played from.
func (c TerrainCode) IsPlayable() bool {
	return c != Water
}

// ParseTerrainCode parses a terrain name such as "green" (case-insensitive).
func ParseTerrainCode(s string) (TerrainCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fairway":
		return Fairway, nil
	case "rough":
		return Rough, nil
	case "green":
		return Green, nil
	case "bunker", "sand":
		return Bunker, nil
	case "water":
		return Water, nil
	case "tee":
		return Tee, nil
	}
	return 0, fmt.Errorf("unknown terrain %q", s)
}
