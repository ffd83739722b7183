package client

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCompressDownscalesLargeImage(t *testing.T) {
	comp := NewCompressor(zap.NewNop())

	out, err := comp.Compress(bytes.NewReader(encodeJPEG(t, 4000, 3000)))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 1600, img.Bounds().Dx())
	require.Equal(t, 1200, img.Bounds().Dy())
}

func TestCompressNeverUpscales(t *testing.T) {
	comp := NewCompressor(zap.NewNop())

	out, err := comp.Compress(bytes.NewReader(encodeJPEG(t, 800, 600)))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 800, img.Bounds().Dx())
	require.Equal(t, 600, img.Bounds().Dy())
}

func TestCompressBoundsPortraitByLongestEdge(t *testing.T) {
	comp := NewCompressor(zap.NewNop())

	out, err := comp.Compress(bytes.NewReader(encodeJPEG(t, 1000, 4000)))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 1600, img.Bounds().Dy())
}

func TestCompressReencodesPNGAsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	comp := NewCompressor(zap.NewNop())
	out, err := comp.Compress(&buf)
	require.NoError(t, err)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
}

func TestCompressRejectsCorruptInput(t *testing.T) {
	comp := NewCompressor(zap.NewNop())

	_, err := comp.Compress(bytes.NewReader([]byte("definitely not an image")))
	require.ErrorIs(t, err, ErrDecode)
}

func TestCompressFileMissing(t *testing.T) {
	comp := NewCompressor(zap.NewNop())

	_, err := comp.CompressFile("/nonexistent/photo.jpg")
	require.ErrorIs(t, err, ErrDecode)
}
