package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

// renderIcon draws a filled circle with a rising bar.
func renderIcon() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	fg := color.NRGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	bar := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	c := float64(iconSize-1) / 2
	r2 := c * c
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if dx*dx+dy*dy <= r2 {
				img.SetNRGBA(x, y, fg)
			}
		}
	}
	// three bars of increasing height
	for i, h := range []int{6, 11, 16} {
		x0 := 8 + i*6
		for x := x0; x < x0+4; x++ {
			for y := 24 - h; y < 24; y++ {
				img.SetNRGBA(x, y, bar)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
