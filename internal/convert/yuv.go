// Package convert turns interleaved RGB pixel buffers into planar YUV420
// buffers using fixed-point BT.601 coefficients.
package convert

import (
	"errors"
	"fmt"
)

// Bytes per pixel of the interleaved layouts accepted by RGBToYUV420.
const (
	BytesPerPixelRGB  = 3
	BytesPerPixelRGBA = 4
)

var (
	ErrInvalidDimensions    = errors.New("invalid frame dimensions")
	ErrInvalidBytesPerPixel = errors.New("bytes per pixel must be at least 3")
	ErrShortBuffer          = errors.New("rgb buffer shorter than frame")
)

// Pixel converts one RGB pixel to Y, U and V using coefficients scaled by 256.
// The +128 rounding bias is added before the shift, and the shift floors
// negative sums, so results match the integer reference bit for bit.
func Pixel(r, g, b uint8) (y, u, v uint8) {
	ri, gi, bi := int(r), int(g), int(b)
	y = clamp((77*ri + 150*gi + 29*bi + 128) >> 8)
	u = clamp(((-43*ri - 84*gi + 127*bi + 128) >> 8) + 128)
	v = clamp(((127*ri - 106*gi - 21*bi + 128) >> 8) + 128)
	return y, u, v
}

func clamp(x int) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}

// FrameSize returns the length of a planar YUV420 buffer for the given dimensions.
func FrameSize(width, height int) int {
	return width * height * 3 / 2
}

// RGBToYUV420 converts an interleaved buffer with bytesPerPixel bytes per pixel
// (extra bytes after R, G, B are skipped) into a planar Y, U, V buffer of
// FrameSize(width, height) bytes.
//
// Chroma is not averaged: on even rows, every pixel with an even 1-based
// running index contributes its U and V, which selects the top-right pixel of
// each 2x2 block for even widths. U and V share one cursor, V being offset by
// width*height/4. For odd dimensions the trailing chroma bytes stay zero and
// writes that would fall past the end of the buffer are dropped.
func RGBToYUV420(width, height int, rgb []byte, bytesPerPixel int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if bytesPerPixel < BytesPerPixelRGB {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBytesPerPixel, bytesPerPixel)
	}

	frameSize := width * height
	if need := frameSize * bytesPerPixel; len(rgb) < need {
		return nil, fmt.Errorf("%w: %dx%d at %d bytes per pixel needs %d bytes, got %d",
			ErrShortBuffer, width, height, bytesPerPixel, need, len(rgb))
	}

	chromaSize := frameSize / 4
	yuv := make([]byte, FrameSize(width, height))

	yIndex := 0
	uvIndex := frameSize
	index := 0
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			off := index * bytesPerPixel
			y, u, v := Pixel(rgb[off], rgb[off+1], rgb[off+2])
			index++

			yuv[yIndex] = y
			yIndex++

			if j%2 == 0 && index%2 == 0 {
				if uvIndex < len(yuv) {
					yuv[uvIndex] = u
				}
				if vIndex := uvIndex + chromaSize; vIndex < len(yuv) {
					yuv[vIndex] = v
				}
				uvIndex++
			}
		}
	}

	return yuv, nil
}
