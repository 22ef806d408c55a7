// Package debug writes PNG dumps of rasterized course data for inspection.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/courseforge/internal/sdf"
	"github.com/Faultbox/courseforge/pkg/course"
)

// Dumper writes timestamped PNG files into one directory.
type Dumper struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewDumper creates a dumper. An empty outputDir writes to the working
// directory.
func NewDumper(outputDir, prefix string) *Dumper {
	return &Dumper{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// SetOutputDir sets the output directory for dumps.
func (d *Dumper) SetOutputDir(dir string) {
	d.outputDir = dir
}

// Filename returns the path a dump called name would be written to.
func (d *Dumper) Filename(name string) string {
	timestamp := d.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.png", d.prefix, name, timestamp)
	if d.outputDir != "" {
		filename = filepath.Join(d.outputDir, filename)
	}
	return filename
}

// WriteImage encodes img as PNG and returns the written path.
func (d *Dumper) WriteImage(name string, img image.Image) (string, error) {
	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := d.Filename(name)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// DumpSDF writes the combined RGBA field and the tee field.
func (d *Dumper) DumpSDF(f *sdf.Field) (combined, tee string, err error) {
	if f == nil || f.Width == 0 || f.Height == 0 {
		return "", "", fmt.Errorf("empty sdf field")
	}
	if combined, err = d.WriteImage("sdf", f.CombinedImage()); err != nil {
		return "", "", err
	}
	if tee, err = d.WriteImage("tee", f.TeeImage()); err != nil {
		return "", "", err
	}
	return combined, tee, nil
}

// DumpLayout writes a colour-coded rendering of l, one pixel per cell.
func (d *Dumper) DumpLayout(l *course.Layout) (string, error) {
	if l == nil || l.Width == 0 || l.Height == 0 {
		return "", fmt.Errorf("empty layout")
	}
	return d.WriteImage("layout", LayoutImage(l))
}

// LayoutImage renders l with one pixel per cell. Row 0 is z = 0.
func LayoutImage(l *course.Layout) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, l.Width, l.Height))
	for z := 0; z < l.Height; z++ {
		for x := 0; x < l.Width; x++ {
			img.SetNRGBA(x, z, TerrainColor(l.At(x, z)))
		}
	}
	return img
}

// TerrainColor returns the debug colour for a terrain code.
func TerrainColor(code course.TerrainCode) color.NRGBA {
	switch code {
	case course.Fairway:
		return color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	case course.Rough:
		return color.NRGBA{R: 46, G: 94, B: 46, A: 255}
	case course.Green:
		return color.NRGBA{R: 129, G: 230, B: 120, A: 255}
	case course.Bunker:
		return color.NRGBA{R: 230, G: 210, B: 150, A: 255}
	case course.Water:
		return color.NRGBA{R: 40, G: 110, B: 200, A: 255}
	case course.Tee:
		return color.NRGBA{R: 200, G: 90, B: 200, A: 255}
	default:
		return color.NRGBA{R: 255, A: 255}
	}
}
