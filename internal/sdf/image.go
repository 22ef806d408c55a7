package sdf

import "image"

// CombinedImage wraps the combined buffer as an NRGBA image. Row 0 is the
// z = 0 edge of the world. The pixel data is shared, not copied.
func (f *Field) CombinedImage() *image.NRGBA {
	return &image.NRGBA{
		Pix:    f.Combined,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// TeeImage wraps the tee buffer as a grayscale image sharing its pixels.
func (f *Field) TeeImage() *image.Gray {
	return &image.Gray{
		Pix:    f.Tee,
		Stride: f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}
