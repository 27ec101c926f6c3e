package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ThumbnailWidth is the archive preview width.
const ThumbnailWidth = 160

// Thumbnail scales src to width pixels wide, keeping its aspect ratio.
func Thumbnail(src image.Image, width int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 || b.Dx() == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// ThumbnailPNG decodes a PNG artifact and returns a scaled PNG preview.
func ThumbnailPNG(data []byte, width int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(src, width)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
