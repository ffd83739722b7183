package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	// webp selections decode through the stdlib image registry.
	_ "golang.org/x/image/webp"
)

const (
	// maxEdge bounds the longest edge of a compressed photo in pixels.
	maxEdge = 1600
	// jpegQuality is the fixed re-encode quality.
	jpegQuality = 85
)

var (
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
)

type Compressor struct {
	log *zap.Logger
}

func NewCompressor(log *zap.Logger) *Compressor {
	return &Compressor{log: log}
}

// CompressFile reads, downscales and re-encodes one photo. The file handle
// is released on every path.
func (c *Compressor) CompressFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer file.Close()

	return c.Compress(file)
}

// Compress produces a JPEG whose longest edge is at most 1600 pixels.
// Smaller images keep their dimensions; nothing is ever upscaled.
func (c *Compressor) Compress(r io.Reader) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	c.log.Info("Image compressed",
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}
