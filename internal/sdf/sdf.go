// Package sdf rasterizes a terrain-code grid into signed distance fields
// used for shader-side terrain blending.
//
// Four channels (fairway, green, bunker, water) are packed into one RGBA
// buffer; tee gets its own single-channel buffer. Distances are measured in
// grid cells and encoded to bytes with EncodeDistance, so 0 is deep inside a
// region, 255 is far outside and the boundary sits around 128.
package sdf

import (
	"errors"
	gomath "math"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// ErrSizeMismatch is returned when a field would have to change size to
// accept new data.
var ErrSizeMismatch = errors.New("sdf size mismatch")

const (
	DefaultResolution    = 4.0
	DefaultMaxDistance   = 8.0
	DefaultSplineSamples = 1
)

// Channel identifies one terrain distance channel.
type Channel int

const (
	ChannelFairway Channel = iota
	ChannelGreen
	ChannelBunker
	ChannelWater
	ChannelTee

	numChannels = 5
)

var channelTerrain = [numChannels]course.TerrainCode{
	course.Fairway, course.Green, course.Bunker, course.Water, course.Tee,
}

// Terrain returns the terrain code a channel tracks.
func (c Channel) Terrain() course.TerrainCode {
	return channelTerrain[c]
}

// Options controls rasterization.
type Options struct {
	// Resolution is the number of output pixels per world unit.
	Resolution float64
	// MaxDistance bounds the boundary search, in grid cells.
	MaxDistance float64
	// SplineSamples is the per-axis supersampling factor; 1 samples each
	// pixel once at its centre.
	SplineSamples int
}

func (o Options) withDefaults() Options {
	if !(o.Resolution > 0) {
		o.Resolution = DefaultResolution
	}
	if !(o.MaxDistance > 0) {
		o.MaxDistance = DefaultMaxDistance
	}
	if o.SplineSamples < 1 {
		o.SplineSamples = DefaultSplineSamples
	}
	return o
}

// Field holds the encoded distance images.
type Field struct {
	Width  int
	Height int

	// Combined is Width*Height RGBA pixels: fairway, green, bunker, water.
	Combined []byte
	// Tee is Width*Height single-channel pixels.
	Tee []byte

	WorldWidth  float64
	WorldHeight float64
	Options     Options
}

// EncodeDistance maps [-maxDistance, maxDistance] affinely onto [0, 255],
// clamping outside that range. Non-finite distances encode to 255.
func EncodeDistance(d, maxDistance float64) uint8 {
	if gomath.IsNaN(d) || gomath.IsInf(d, 0) || !(maxDistance > 0) {
		return 255
	}
	v := (d/maxDistance*0.5 + 0.5) * 255
	return uint8(gomath.Round(math.Clamp(v, 0, 255)))
}

// GenerateFromGrid allocates a field for a world of the given size and
// rasterizes layout into it. Missing rows or cells count as the layout's
// background terrain.
func GenerateFromGrid(layout *course.Layout, worldWidth, worldHeight float64, opts Options) *Field {
	opts = opts.withDefaults()
	w := max(1, int(gomath.Ceil(worldWidth*opts.Resolution)))
	h := max(1, int(gomath.Ceil(worldHeight*opts.Resolution)))
	f := &Field{
		Width:       w,
		Height:      h,
		Combined:    make([]byte, w*h*4),
		Tee:         make([]byte, w*h),
		WorldWidth:  worldWidth,
		WorldHeight: worldHeight,
		Options:     opts,
	}
	f.rasterize(layout)
	return f
}

// UpdateFromGrid recomputes the field in place from a new classification.
func (f *Field) UpdateFromGrid(layout *course.Layout) error {
	if len(f.Combined) != f.Width*f.Height*4 || len(f.Tee) != f.Width*f.Height {
		return ErrSizeMismatch
	}
	f.rasterize(layout)
	return nil
}

// At returns the encoded value of channel ch at pixel (x, y).
func (f *Field) At(x, y int, ch Channel) uint8 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 255
	}
	if ch == ChannelTee {
		return f.Tee[y*f.Width+x]
	}
	return f.Combined[(y*f.Width+x)*4+int(ch)]
}

func (f *Field) rasterize(layout *course.Layout) {
	if layout == nil {
		layout = course.NewLayout(0, 0, course.Rough)
	}
	g := newGridSampler(layout, f.WorldWidth, f.WorldHeight, f.Options.MaxDistance)
	n := f.Options.SplineSamples
	res := f.Options.Resolution
	maxD := f.Options.MaxDistance

	var sum [numChannels]float64
	var d [numChannels]float64
	for py := range f.Height {
		for px := range f.Width {
			clear(sum[:])
			for sy := range n {
				for sx := range n {
					wx := (float64(px) + (float64(sx)+0.5)/float64(n)) / res
					wz := (float64(py) + (float64(sy)+0.5)/float64(n)) / res
					g.distances(wx, wz, &d)
					for ch := range d {
						sum[ch] += math.Clamp(d[ch], -maxD, maxD)
					}
				}
			}
			samples := float64(n * n)
			i := py*f.Width + px
			for ch := range numChannels - 1 {
				f.Combined[i*4+ch] = EncodeDistance(sum[ch]/samples, maxD)
			}
			f.Tee[i] = EncodeDistance(sum[ChannelTee]/samples, maxD)
		}
	}
}

// gridSampler evaluates signed distances against the native layout grid.
type gridSampler struct {
	layout  *course.Layout
	cols    int
	rows    int
	scaleX  float64
	scaleZ  float64
	maxD    float64
	radius  int
	virtual bool
}

func newGridSampler(l *course.Layout, worldWidth, worldHeight, maxDistance float64) *gridSampler {
	g := &gridSampler{
		layout: l,
		cols:   l.Width,
		rows:   l.Height,
		maxD:   maxDistance,
		radius: int(gomath.Ceil(maxDistance)),
	}
	if g.cols < 1 || g.rows < 1 {
		// a single background cell stands in for an empty layout
		g.cols, g.rows, g.virtual = 1, 1, true
	}
	g.scaleX, g.scaleZ = 1, 1
	if worldWidth > 0 {
		g.scaleX = float64(g.cols) / worldWidth
	}
	if worldHeight > 0 {
		g.scaleZ = float64(g.rows) / worldHeight
	}
	return g
}

func (g *gridSampler) at(x, z int) course.TerrainCode {
	if g.virtual {
		return g.layout.Background
	}
	return g.layout.At(x, z)
}

// distances fills d with the signed distance, in grid cells, from world
// position (wx, wz) to the centre of the nearest cell whose membership in
// each channel differs from the current cell's. With no such cell within
// range the result is -maxD inside and +Inf outside.
func (g *gridSampler) distances(wx, wz float64, d *[numChannels]float64) {
	gx, gz := wx*g.scaleX, wz*g.scaleZ
	cx := min(max(int(gomath.Floor(gx)), 0), g.cols-1)
	cz := min(max(int(gomath.Floor(gz)), 0), g.rows-1)
	own := g.at(cx, cz)

	var best [numChannels]float64
	for ch := range best {
		best[ch] = gomath.Inf(1)
	}
	for z := max(cz-g.radius, 0); z <= min(cz+g.radius, g.rows-1); z++ {
		for x := max(cx-g.radius, 0); x <= min(cx+g.radius, g.cols-1); x++ {
			code := g.at(x, z)
			if code == own {
				continue
			}
			dist := gomath.Hypot(float64(x)+0.5-gx, float64(z)+0.5-gz)
			if dist > g.maxD {
				continue
			}
			for ch, terrain := range channelTerrain {
				if (code == terrain) != (own == terrain) && dist < best[ch] {
					best[ch] = dist
				}
			}
		}
	}

	for ch, terrain := range channelTerrain {
		inside := own == terrain
		switch {
		case inside && gomath.IsInf(best[ch], 1):
			d[ch] = -g.maxD
		case inside:
			d[ch] = -best[ch]
		default:
			d[ch] = best[ch]
		}
	}
}
