package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"unicode/utf8"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

const maxDimension = 4096

type thumbnailInput struct {
	Text            string `json:"text"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	Style           string `json:"style"`
}

func (in *thumbnailInput) Validate() error {
	if in.Text == "" {
		return fmt.Errorf("text is required")
	}
	if in.Width < 1 || in.Height < 1 || in.Width > maxDimension || in.Height > maxDimension {
		return fmt.Errorf("dimensions must be between 1 and %d pixels", maxDimension)
	}

	return nil
}

func (s *Studio) thumbnailTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "generate_thumbnail",
		Description: "Generate a custom thumbnail image with text overlay. Styles: modern, gradient, minimal, bold.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string","description":"The text to display on the thumbnail"},"width":{"type":"integer","description":"Image width in pixels","default":1280},"height":{"type":"integer","description":"Image height in pixels","default":720},"background_color":{"type":"string","description":"Background color in hex format","default":"#FF6B6B"},"text_color":{"type":"string","description":"Text color in hex format","default":"#FFFFFF"},"style":{"type":"string","enum":["modern","gradient","minimal","bold"],"description":"Visual style","default":"modern"}},"required":["text"]}`),
		Handler:     s.handleThumbnail,
	}
}

func (s *Studio) handleThumbnail(_ context.Context, args map[string]any) (any, error) {
	in := thumbnailInput{
		Width:           1280,
		Height:          720,
		BackgroundColor: "#FF6B6B",
		TextColor:       "#FFFFFF",
		Style:           "modern",
	}
	if err := decode("generate_thumbnail", args, &in); err != nil {
		return nil, err
	}

	path, err := s.thumbnail(in)
	if err != nil {
		return failure("Failed to generate thumbnail: %v", err), nil
	}

	return success(path, Result{
		"dimensions": []int{in.Width, in.Height},
		"style":      in.Style,
	}), nil
}

func (s *Studio) thumbnail(in thumbnailInput) (string, error) {
	colors, err := parseColors(in.BackgroundColor, in.TextColor)
	if err != nil {
		return "", err
	}
	bg, fg := colors[0], colors[1]

	img := renderThumbnail(in, bg, fg)

	path, err := s.outputPath("thumbnail", "png")
	if err != nil {
		return "", err
	}

	return path, writePNG(path, img)
}

func renderThumbnail(in thumbnailInput, bg, fg color.RGBA) *image.RGBA {
	w, h := in.Width, in.Height

	var img *image.RGBA
	switch in.Style {
	case "gradient":
		img = image.NewRGBA(image.Rect(0, 0, w, h))
		for y := range h {
			shade := 255 * y / h
			row := color.RGBA{
				R: darken(bg.R, shade/2),
				G: darken(bg.G, shade/2),
				B: darken(bg.B, shade/2),
				A: 0xff,
			}
			fillRect(img, image.Rect(0, y, w, y+1), row)
		}
	case "minimal":
		img = newCanvas(w, h, color.White)
	default:
		img = newCanvas(w, h, bg)
	}

	if in.Style == "bold" {
		const border = 20
		outer := image.Rect(border, border, w-border, h-border)
		fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+border), fg)
		fillRect(img, image.Rect(outer.Min.X, outer.Max.Y-border, outer.Max.X, outer.Max.Y), fg)
		fillRect(img, image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+border, outer.Max.Y), fg)
		fillRect(img, image.Rect(outer.Max.X-border, outer.Min.Y, outer.Max.X, outer.Max.Y), fg)
	}

	size := thumbnailFontSize(w, h, in.Text)
	tw, th := measureText(in.Text, size)
	x := (w - tw) / 2
	y := (h - th) / 2

	if in.Style != "minimal" {
		const shadow = 5
		drawText(img, x+shadow, y+shadow, in.Text, size, color.Black)
	}
	drawText(img, x, y, in.Text, size, fg)

	return img
}

// thumbnailFontSize shrinks the text as it grows, never below 30px.
func thumbnailFontSize(w, h int, text string) int {
	return max(30, min(w, h)/10-utf8.RuneCountInString(text)*2)
}

func darken(v uint8, by int) uint8 {
	return uint8(max(0, int(v)-by))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is built inside the output directory
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}

	return f.Close()
}
