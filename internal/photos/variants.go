package photos

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"ospreyBack/internal/config"
)

const variantContentType = "image/jpeg"

// Open decodes an image file with its EXIF orientation applied. JPEG, PNG,
// GIF, TIFF, BMP and WebP inputs are accepted.
func Open(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// RenderVariant scales img to the variant width, never enlarging, and encodes
// it as JPEG at the variant quality.
func RenderVariant(img image.Image, v config.Variant) ([]byte, error) {
	if v.Width > 0 && img.Bounds().Dx() > v.Width {
		img = imaging.Resize(img, v.Width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(v.Quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func variantFilename(base, variant string) string {
	return base + "-" + variant + ".jpg"
}
