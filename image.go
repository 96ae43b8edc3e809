package atlas

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// PackARGB packs 8-bit channels into a 0xAARRGGBB pixel.
func PackARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackARGB splits a 0xAARRGGBB pixel into its channels.
func UnpackARGB(c uint32) (a, r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// ImageToARGB converts img to row-major, non-premultiplied 0xAARRGGBB
// pixels with stride equal to the image width.
func ImageToARGB(img image.Image) (pixels []uint32, width, height int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
		bounds = nrgba.Bounds()
	}

	pixels = make([]uint32, 0, width*height)
	for y := 0; y < height; y++ {
		off := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := nrgba.Pix[off : off+width*4]
		for x := 0; x < width; x++ {
			s := row[x*4 : x*4+4 : x*4+4]
			pixels = append(pixels, PackARGB(s[3], s[0], s[1], s[2]))
		}
	}
	return pixels, width, height
}

// ARGBToImage converts row-major 0xAARRGGBB pixels to an image.
func ARGBToImage(pixels []uint32, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, c := range pixels[:width*height] {
		a, r, g, b := UnpackARGB(c)
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}
	return img
}

// AllocateImage allocates a region the size of img and writes img into it.
// On write failure the region is freed again.
func (m *Manager) AllocateImage(img image.Image) (Handle, error) {
	pixels, w, h := ImageToARGB(img)
	handle, err := m.Allocate(w, h)
	if err != nil {
		return InvalidHandle, err
	}
	if err := m.Write(handle, pixels, w, h, 0, 0); err != nil {
		_ = m.Free(handle)
		return InvalidHandle, err
	}
	return handle, nil
}

// WriteImage writes img into the region of h at offset (dx, dy), cropped to
// the region.
func (m *Manager) WriteImage(h Handle, img image.Image, dx, dy int) error {
	pixels, w, hgt := ImageToARGB(img)
	return m.Write(h, pixels, w, hgt, dx, dy)
}

// PageImage returns the pixels of page i as an image.
func (m *Manager) PageImage(i int) (*image.NRGBA, error) {
	pixels, err := m.PagePixels(i)
	if err != nil {
		return nil, err
	}
	return ARGBToImage(pixels, m.pageSize, m.pageSize), nil
}
