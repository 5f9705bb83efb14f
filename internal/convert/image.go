package convert

import (
	"image"
	"image/color"
)

// ImageToRGB flattens img into a 3 bytes per pixel buffer, dropping alpha.
// Colors are taken non-premultiplied, so translucent pixels keep their RGB.
func ImageToRGB(img image.Image) (rgb []byte, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	rgb = make([]byte, width*height*BytesPerPixelRGB)

	if src, ok := img.(*image.NRGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for x := 0; x < width; x++ {
				rgb[i] = row[x*4]
				rgb[i+1] = row[x*4+1]
				rgb[i+2] = row[x*4+2]
				i += BytesPerPixelRGB
			}
		}
		return rgb, width, height
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb[i] = c.R
			rgb[i+1] = c.G
			rgb[i+2] = c.B
			i += BytesPerPixelRGB
		}
	}
	return rgb, width, height
}
