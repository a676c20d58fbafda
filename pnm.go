package itm

// pnm: minimal binary PNM (P6) emission for the multiplier observers.
// The format is a fixed header followed by raw RGB triplets; nothing in
// the dependency set covers it and hand-rolling the few bytes is simpler
// than carrying an imaging library.

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// pnmImage is an RGB raster written as a binary P6 file.
type pnmImage struct {
	width  int
	height int
	pix    []byte
}

func newPnmImage(width, height int) *pnmImage {
	return &pnmImage{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*3),
	}
}

// at returns the pixel slice of (row, col); writing its first three bytes
// sets the color.
func (img *pnmImage) at(row, col int) []byte {
	off := (row*img.width + col) * 3
	return img.pix[off : off+3]
}

// appendRow grows the image by one row and returns its pixel slice.
func (img *pnmImage) appendRow() []byte {
	img.height++
	off := len(img.pix)
	img.pix = append(img.pix, make([]byte, img.width*3)...)
	return img.pix[off:]
}

// write dumps the image to path.
func (img *pnmImage) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating pnm file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "P6\n%d %d\n255\n", img.width, img.height)
	if _, err := w.Write(img.pix); err != nil {
		return errors.Wrapf(err, "writing pnm file %s", path)
	}
	return errors.Wrapf(w.Flush(), "writing pnm file %s", path)
}

// colormap maps a value in [lo, hi] onto a blue-white-red ramp, writing
// the RGB triplet into dst.
func colormap(value, lo, hi float64, dst []byte) {
	if hi <= lo {
		hi = lo + 1
	}
	t := (value - lo) / (hi - lo)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	// 0 -> blue, 0.5 -> white, 1 -> red.
	if t < 0.5 {
		u := t * 2
		dst[0] = byte(255 * u)
		dst[1] = byte(255 * u)
		dst[2] = 255
	} else {
		u := (t - 0.5) * 2
		dst[0] = 255
		dst[1] = byte(255 * (1 - u))
		dst[2] = byte(255 * (1 - u))
	}
}
