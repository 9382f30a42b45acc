package studio

import (
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// The only face shipped with x/image is a 7x13 bitmap font, so text is
// rasterized at native size and scaled up to the requested pixel height.
var face = basicfont.Face7x13

// measureText returns the pixel size of text rendered at the given height.
func measureText(text string, size int) (w, h int) {
	native := font.MeasureString(face, text).Ceil()
	if native == 0 || size <= 0 {
		return 0, 0
	}

	return native * size / face.Height, size
}

// drawText renders text with its top-left corner at (x, y).
func drawText(dst xdraw.Image, x, y int, text string, size int, c color.Color) {
	native := font.MeasureString(face, text).Ceil()
	if native == 0 || size <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, native, face.Height))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	w, h := measureText(text, size)
	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	xdraw.DrawMask(dst, image.Rect(x, y, x+w, y+h), image.NewUniform(c), image.Point{}, scaled, image.Point{}, xdraw.Over)
}

// wrapText greedily packs words into lines no wider than maxWidth.
func wrapText(text string, size, maxWidth int) []string {
	var lines []string
	var current []string

	for _, word := range strings.Fields(text) {
		candidate := strings.Join(append(current, word), " ")
		if w, _ := measureText(candidate, size); w < maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
		current = []string{word}
	}

	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}

	return lines
}

func fillRect(dst xdraw.Image, r image.Rectangle, c color.Color) {
	xdraw.Draw(dst, r, image.NewUniform(c), image.Point{}, xdraw.Src)
}

func newCanvas(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, img.Bounds(), bg)

	return img
}
