package capture

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
)

// Frame is a single decoded camera frame. Pix is RGBA, row-major,
// 8 bits per channel, 4 bytes per pixel. Encoded keeps the original
// container bytes (JPEG/PNG) for submission; Frames live only for the
// duration of one punch attempt.
type Frame struct {
	Width   int
	Height  int
	Pix     []byte
	Encoded []byte
}

// Valid reports whether the frame carries a well-formed pixel buffer.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*4
}

// RGBAAt returns the channel values at (x, y). The caller guarantees
// the coordinates are in bounds.
func (f Frame) RGBAAt(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// DecodeFrame decodes JPEG or PNG bytes into a Frame. The original
// bytes are retained on the frame for later upload.
func DecodeFrame(data []byte) (Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, err
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return Frame{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Pix:     rgba.Pix,
		Encoded: data,
	}, nil
}

// Result is what one capture yields: the frame plus a location fix if
// one happened to be available without waiting.
type Result struct {
	Frame Frame
	Geo   *attendance.GeoFix
}
