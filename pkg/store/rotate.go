package store

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Registered for decode only; webp has no encoder.
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// rotate180 returns a copy of src rotated by 180 degrees.
func rotate180(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Dx()-1-(x-b.Min.X), b.Dy()-1-(y-b.Min.Y), src.At(x, y))
		}
	}

	return dst
}

// rotateEncoded decodes an image payload, rotates it 180 degrees and encodes
// it back in the source format. Formats without an encoder (webp) fall back
// to PNG output.
func rotateEncoded(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	rotated := rotate180(img)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, rotated)
	case "gif":
		err = gif.Encode(&buf, rotated, nil)
	case "bmp":
		err = bmp.Encode(&buf, rotated)
	case "tiff":
		err = tiff.Encode(&buf, rotated, nil)
	default:
		err = png.Encode(&buf, rotated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", format, err)
	}

	return buf.Bytes(), nil
}
