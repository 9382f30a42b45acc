package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // background image decoder
	_ "image/jpeg" // background image decoder
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "golang.org/x/image/bmp"  // background image decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // background image decoder

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/tools/toolbox"
)

type cardTheme struct {
	bg, title, subtitle, accent string
}

var (
	platformSizes = map[string]image.Point{
		"twitter":   {X: 1200, Y: 675},
		"facebook":  {X: 1200, Y: 630},
		"linkedin":  {X: 1200, Y: 627},
		"instagram": {X: 1080, Y: 1080},
	}
	defaultCardSize = image.Point{X: 1200, Y: 630}

	cardThemes = map[string]cardTheme{
		"dark":     {bg: "#1a1a2e", title: "#ffffff", subtitle: "#aaaaaa", accent: "#4ECDC4"},
		"light":    {bg: "#f8f9fa", title: "#2c3e50", subtitle: "#7f8c8d", accent: "#3498db"},
		"colorful": {bg: "#FF6B6B", title: "#ffffff", subtitle: "#ffe66d", accent: "#4ECDC4"},
	}
)

// backgroundAlpha is the weight of the feature image when blended over the
// theme background.
const backgroundAlpha = 0.3

type socialCardInput struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	ImagePath string `json:"image_path"`
	Platform  string `json:"platform"`
	Theme     string `json:"theme"`
}

func (in *socialCardInput) Validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required")
	}

	return nil
}

func (s *Studio) socialCardTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        "create_social_card",
		Description: "Create a social media preview card (Open Graph/Twitter Card style) sized for the target platform.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"title":{"type":"string","description":"Main heading text"},"subtitle":{"type":"string","description":"Secondary text","default":""},"image_path":{"type":"string","description":"Path to a background/feature image","default":""},"platform":{"type":"string","enum":["twitter","facebook","linkedin","instagram"],"description":"Target platform (affects dimensions)","default":"twitter"},"theme":{"type":"string","enum":["dark","light","colorful"],"description":"Color theme","default":"dark"}},"required":["title"]}`),
		Handler:     s.handleSocialCard,
	}
}

func (s *Studio) handleSocialCard(_ context.Context, args map[string]any) (any, error) {
	in := socialCardInput{
		Platform: "twitter",
		Theme:    "dark",
	}
	if err := decode("create_social_card", args, &in); err != nil {
		return nil, err
	}

	path, size, err := s.socialCard(in)
	if err != nil {
		return failure("Failed to create social card: %v", err), nil
	}

	return success(path, Result{
		"platform":   in.Platform,
		"dimensions": []int{size.X, size.Y},
		"theme":      in.Theme,
	}), nil
}

func (s *Studio) socialCard(in socialCardInput) (string, image.Point, error) {
	platform := strings.ToLower(in.Platform)
	size, ok := platformSizes[platform]
	if !ok {
		size = defaultCardSize
		platform = "custom"
	}

	theme, ok := cardThemes[in.Theme]
	if !ok {
		theme = cardThemes["dark"]
	}

	colors, err := parseColors(theme.bg, theme.title, theme.subtitle, theme.accent)
	if err != nil {
		return "", size, err
	}
	bg, titleColor, subtitleColor, accent := colors[0], colors[1], colors[2], colors[3]

	img := newCanvas(size.X, size.Y, bg)
	if in.ImagePath != "" {
		// An unreadable image leaves the solid background in place.
		if feature, err := loadImage(in.ImagePath); err == nil {
			blend(img, feature, backgroundAlpha)
		}
	}

	w, h := size.X, size.Y
	fillRect(img, image.Rect(50, h-150, 150, h-140), accent)

	const titleSize = 60
	if tw, _ := measureText(in.Title, titleSize); tw > w-100 {
		y := h / 3
		for i, line := range wrapText(in.Title, titleSize, w-100) {
			if i == 2 {
				break
			}
			drawText(img, 60, y, line, titleSize, titleColor)
			y += 80
		}
	} else {
		drawText(img, 60, h/3, in.Title, titleSize, titleColor)
	}

	if in.Subtitle != "" {
		drawText(img, 60, h/2+50, in.Subtitle, 30, subtitleColor)
	}

	drawText(img, 60, h-80, "Optimized for "+titleCase(in.Platform), 20, subtitleColor)

	path, err := s.outputPath("social_card_"+platform, "png")
	if err != nil {
		return "", size, err
	}

	return path, size, writePNG(path, img)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path supplied by the caller on purpose
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return img, nil
}

// blend resizes src to dst and mixes it in with weight alpha.
func blend(dst *image.RGBA, src image.Image, alpha float64) {
	b := dst.Bounds()
	resized := image.NewRGBA(b)
	xdraw.ApproxBiLinear.Scale(resized, b, src, src.Bounds(), xdraw.Src, nil)

	mix := func(a, c uint8) uint8 {
		return uint8(float64(a)*(1-alpha) + float64(c)*alpha)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := dst.RGBAAt(x, y)
			r := resized.RGBAAt(x, y)
			dst.SetRGBA(x, y, color.RGBA{
				R: mix(d.R, r.R),
				G: mix(d.G, r.G),
				B: mix(d.B, r.B),
				A: 0xff,
			})
		}
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, n := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[n:]
	}

	return strings.Join(words, " ")
}
