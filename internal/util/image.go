package util

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageEdge = 1600
	JPEGQuality  = 85
)

// NormalizeImage 解码图片，按长边等比缩放到 maxEdge 以内并重新编码为 JPEG
func NormalizeImage(data []byte, maxEdge int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	if exceeds(img.Bounds(), maxEdge) {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exceeds(b image.Rectangle, maxEdge int) bool {
	return maxEdge > 0 && (b.Dx() > maxEdge || b.Dy() > maxEdge)
}
