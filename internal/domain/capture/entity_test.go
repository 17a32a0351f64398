package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame_PNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 180, 120, 90, 255

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	frame, err := DecodeFrame(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Width)
	assert.Equal(t, 3, frame.Height)
	assert.True(t, frame.Valid())
	assert.Equal(t, buf.Bytes(), frame.Encoded)

	r, g, b := frame.RGBAAt(0, 0)
	assert.Equal(t, uint8(180), r)
	assert.Equal(t, uint8(120), g)
	assert.Equal(t, uint8(90), b)
}

func TestDecodeFrame_JPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	frame, err := DecodeFrame(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, frame.Valid())
}

func TestDecodeFrame_CorruptBytes(t *testing.T) {
	_, err := DecodeFrame([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestFrame_Valid(t *testing.T) {
	assert.False(t, Frame{}.Valid())
	assert.False(t, Frame{Width: 2, Height: 2, Pix: make([]byte, 3)}.Valid())
	assert.True(t, Frame{Width: 2, Height: 2, Pix: make([]byte, 16)}.Valid())
}
