package synth

import (
	"image"
	"image/color"

	"github.com/suyashkumar/dicom/pkg/frame"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// burnLabel draws text centered on a 16-bit frame, white with a black
// outline, scaled to roughly 40% of the frame width.
func burnLabel(nativeFrame *frame.NativeFrame[uint16], width, height int, text string) {
	if text == "" || width <= 0 || height <= 0 {
		return
	}

	face := basicfont.Face7x13
	baseWidth := font.MeasureString(face, text).Ceil()
	baseHeight := 13
	if baseWidth <= 0 {
		return
	}

	textImg := image.NewRGBA(image.Rect(0, 0, baseWidth, baseHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(11)},
	}
	drawer.DrawString(text)

	scale := float64(width) * 0.4 / float64(baseWidth)
	if scale < 1 {
		scale = 1
	}
	scaledW := int(float64(baseWidth) * scale)
	scaledH := int(float64(baseHeight) * scale)
	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), textImg, textImg.Bounds(), draw.Over, nil)

	posX := (width - scaledW) / 2
	posY := (height - scaledH) / 2
	outline := max(1, scaledH/10)

	set := func(x, y int, v uint16) {
		if x >= 0 && x < width && y >= 0 && y < height {
			nativeFrame.RawData[y*width+x] = v
		}
	}

	for sy := 0; sy < scaledH; sy++ {
		for sx := 0; sx < scaledW; sx++ {
			if _, _, _, a := scaled.At(sx, sy).RGBA(); a == 0 {
				continue
			}
			for dx := -outline; dx <= outline; dx++ {
				for dy := -outline; dy <= outline; dy++ {
					set(posX+sx+dx, posY+sy+dy, 0)
				}
			}
		}
	}

	for sy := 0; sy < scaledH; sy++ {
		for sx := 0; sx < scaledW; sx++ {
			r, g, b, a := scaled.At(sx, sy).RGBA()
			if a == 0 {
				continue
			}
			// 16-bit brightness in the 12-bit stored range.
			gray := (r + g + b) / 3
			set(posX+sx, posY+sy, uint16(gray>>4))
		}
	}
}
