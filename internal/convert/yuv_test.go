package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixel(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		y, u, v uint8
	}{
		{"red", 255, 0, 0, 77, 85, 255},
		{"green", 0, 255, 0, 149, 44, 22},
		{"blue", 0, 0, 255, 29, 255, 107},
		{"white", 255, 255, 255, 255, 128, 128},
		{"black", 0, 0, 0, 0, 128, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, u, v := Pixel(tt.r, tt.g, tt.b)
			assert.Equal(t, tt.y, y, "y")
			assert.Equal(t, tt.u, u, "u")
			assert.Equal(t, tt.v, v, "v")
		})
	}
}

func TestPixelMatchesFloorReference(t *testing.T) {
	ref := func(sum float64, offset float64) uint8 {
		x := math.Floor(sum/256) + offset
		return uint8(math.Max(0, math.Min(255, x)))
	}

	for r := 0; r < 256; r += 3 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 7 {
				rf, gf, bf := float64(r), float64(g), float64(b)
				y, u, v := Pixel(uint8(r), uint8(g), uint8(b))
				require.Equal(t, ref(77*rf+150*gf+29*bf+128, 0), y, "y(%d,%d,%d)", r, g, b)
				require.Equal(t, ref(-43*rf-84*gf+127*bf+128, 128), u, "u(%d,%d,%d)", r, g, b)
				require.Equal(t, ref(127*rf-106*gf-21*bf+128, 128), v, "v(%d,%d,%d)", r, g, b)
			}
		}
	}
}

func TestRGBToYUV420(t *testing.T) {
	tests := []struct {
		name string
		rgb  []byte
		want []byte
	}{
		{
			name: "all white",
			rgb:  []byte{255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255},
			want: []byte{255, 255, 255, 255, 128, 128},
		},
		{
			name: "white top row black bottom row",
			rgb:  []byte{255, 255, 255, 255, 255, 255, 0, 0, 0, 0, 0, 0},
			want: []byte{255, 255, 0, 0, 128, 128},
		},
		{
			name: "white then black pixels",
			rgb:  []byte{255, 255, 255, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			want: []byte{255, 0, 0, 0, 128, 128},
		},
		{
			name: "white red green blue",
			rgb:  []byte{255, 255, 255, 255, 0, 0, 0, 255, 0, 0, 0, 255},
			want: []byte{255, 77, 149, 29, 85, 255},
		},
		{
			name: "all red",
			rgb:  []byte{255, 0, 0, 255, 0, 0, 255, 0, 0, 255, 0, 0},
			want: []byte{77, 77, 77, 77, 85, 255},
		},
		{
			name: "green red red green",
			rgb:  []byte{0, 255, 0, 255, 0, 0, 255, 0, 0, 0, 255, 0},
			want: []byte{149, 77, 77, 149, 85, 255},
		},
		{
			name: "blue white white blue",
			rgb:  []byte{0, 0, 255, 255, 255, 255, 255, 255, 255, 0, 0, 255},
			want: []byte{29, 255, 255, 29, 128, 128},
		},
		{
			name: "white white black red",
			rgb:  []byte{255, 255, 255, 255, 255, 255, 0, 0, 0, 255, 0, 0},
			want: []byte{255, 255, 0, 77, 128, 128},
		},
		{
			name: "grey and yellows",
			rgb:  []byte{42, 42, 42, 42, 42, 0, 42, 42, 0, 42, 42, 42},
			want: []byte{42, 37, 37, 42, 107, 131},
		},
		{
			name: "grey and greens",
			rgb:  []byte{42, 42, 42, 0, 42, 0, 0, 42, 0, 0, 42, 0},
			want: []byte{42, 25, 25, 25, 114, 111},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RGBToYUV420(2, 2, tt.rgb, BytesPerPixelRGB)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBToYUV420FourBytesPerPixel(t *testing.T) {
	rgba := []byte{42, 42, 42, 0, 0, 42, 0, 0, 0, 42, 0, 0, 0, 42, 0, 0}
	rgb := []byte{42, 42, 42, 0, 42, 0, 0, 42, 0, 0, 42, 0}

	got4, err := RGBToYUV420(2, 2, rgba, BytesPerPixelRGBA)
	require.NoError(t, err)
	got3, err := RGBToYUV420(2, 2, rgb, BytesPerPixelRGB)
	require.NoError(t, err)

	assert.Equal(t, []byte{42, 25, 25, 25, 114, 111}, got4)
	assert.Equal(t, got3, got4)
}

func TestRGBToYUV420Length(t *testing.T) {
	dims := [][2]int{
		{2, 2}, {4, 2}, {16, 8}, {64, 48}, {320, 240},
		{1, 1}, {3, 3}, {5, 1}, {2, 3}, {7, 5}, {1, 9}, {9, 1}, {0, 0},
	}

	for _, d := range dims {
		w, h := d[0], d[1]
		rgb := make([]byte, w*h*BytesPerPixelRGB)
		for i := range rgb {
			rgb[i] = 255
		}
		got, err := RGBToYUV420(w, h, rgb, BytesPerPixelRGB)
		require.NoError(t, err, "%dx%d", w, h)
		assert.Len(t, got, w*h*3/2, "%dx%d", w, h)
	}
}

func TestRGBToYUV420OddWidth(t *testing.T) {
	rgb := make([]byte, 5*BytesPerPixelRGB)
	for i := range rgb {
		rgb[i] = 255
	}

	got, err := RGBToYUV420(5, 1, rgb, BytesPerPixelRGB)
	require.NoError(t, err)

	// Two chroma samples are taken but only two bytes follow the Y plane and
	// chromaSize is 1, so the second U overwrites the first V and the second
	// V falls past the end.
	assert.Equal(t, []byte{255, 255, 255, 255, 255, 128, 128}, got)
}

func TestRGBToYUV420UnwrittenChromaStaysZero(t *testing.T) {
	rgb := make([]byte, 4*4*BytesPerPixelRGB)
	for i := range rgb {
		rgb[i] = 255
	}

	// 4x3: rows 0 and 2 are sampled, 4 chroma pairs over a 3 byte plane.
	got, err := RGBToYUV420(4, 3, rgb[:4*3*BytesPerPixelRGB], BytesPerPixelRGB)
	require.NoError(t, err)
	require.Len(t, got, 18)
	assert.Equal(t, []byte{128, 128, 128, 128, 128, 128}, got[12:])

	// 3x4: rows 0 and 2 hold pixels 2 and 8 (even running index), 2 pairs over
	// a 3 byte plane, leaving the third U and the third V at zero.
	got, err = RGBToYUV420(3, 4, rgb[:3*4*BytesPerPixelRGB], BytesPerPixelRGB)
	require.NoError(t, err)
	require.Len(t, got, 18)
	assert.Equal(t, []byte{128, 128, 0, 128, 128, 0}, got[12:])
}

func TestRGBToYUV420Preconditions(t *testing.T) {
	_, err := RGBToYUV420(2, 2, make([]byte, 11), BytesPerPixelRGB)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = RGBToYUV420(2, 2, make([]byte, 15), BytesPerPixelRGBA)
	assert.ErrorIs(t, err, ErrShortBuffer)

	_, err = RGBToYUV420(-1, 2, nil, BytesPerPixelRGB)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = RGBToYUV420(2, 2, make([]byte, 8), 2)
	assert.ErrorIs(t, err, ErrInvalidBytesPerPixel)
}
