package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
)

// MaxPNGSide bounds either side of a rendered PNG, in pixels.
const MaxPNGSide = 16384

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale   float64
	labels  bool
	palette Palette
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGLabels draws tile ids with a fixed 7x13 bitmap font.
func WithPNGLabels() PNGOption {
	return func(r *pngRenderer) { r.labels = true }
}

// WithPNGPalette overrides the colors. Values are #rgb or #rrggbb.
func WithPNGPalette(p Palette) PNGOption {
	return func(r *pngRenderer) { r.palette = p }
}

// RenderPNG rasterises the layout directly, without going through SVG.
func RenderPNG(r layout.Result, tiles []layout.Tile, opts ...PNGOption) ([]byte, error) {
	pr := pngRenderer{scale: 2.0, palette: DefaultPalette}
	for _, opt := range opts {
		opt(&pr)
	}
	if !(pr.scale > 0) || math.IsInf(pr.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive (got %v)", pr.scale)
	}

	fw, fh := math.Ceil(r.Width*pr.scale), math.Ceil(r.Height*pr.scale)
	if !(fw > 0) || !(fh > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render (%vx%v)", r.Width, r.Height)
	}
	if fw > MaxPNGSide || fh > MaxPNGSide {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png would be %vx%v pixels (max %d per side)", fw, fh, MaxPNGSide)
	}
	w, h := int(fw), int(fh)

	colors, err := pr.palette.rgba()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colors.Background), image.Point{}, draw.Src)

	blocks := Blocks(r, tiles)
	for _, b := range blocks {
		rect := pr.rect(b)
		draw.Draw(img, rect, image.NewUniform(colors.Stroke), image.Point{}, draw.Src)
		if inner := rect.Inset(1); !inner.Empty() {
			draw.Draw(img, inner, image.NewUniform(colors.Fill), image.Point{}, draw.Src)
		}
	}
	if pr.labels {
		for _, b := range blocks {
			drawLabel(img, pr.rect(b), b.Label(), colors.Text)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (pr pngRenderer) rect(b Block) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X*pr.scale)),
		int(math.Round(b.Y*pr.scale)),
		int(math.Round((b.X+b.W)*pr.scale)),
		int(math.Round((b.Y+b.H)*pr.scale)),
	)
}

// drawLabel centers text in rect, dropping trailing runes until it fits.
func drawLabel(img draw.Image, rect image.Rectangle, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}

	runes := []rune(text)
	for len(runes) > 0 && d.MeasureString(string(runes)).Ceil() > rect.Dx()-2 {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 || rect.Dy() < face.Height {
		return
	}

	label := string(runes)
	x := rect.Min.X + (rect.Dx()-d.MeasureString(label).Ceil())/2
	y := rect.Min.Y + (rect.Dy()+face.Ascent-face.Descent)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(label)
}

type paletteRGBA struct {
	Background, Fill, Stroke, Text color.RGBA
}

func (p Palette) rgba() (paletteRGBA, error) {
	var out paletteRGBA
	for _, f := range []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"background", p.Background, &out.Background},
		{"fill", p.Fill, &out.Fill},
		{"stroke", p.Stroke, &out.Stroke},
		{"text", p.Text, &out.Text},
	} {
		c, err := parseHex(f.hex)
		if err != nil {
			return out, errors.Wrap(errors.ErrCodeInvalidInput, err, "palette %s", f.name)
		}
		*f.dst = c
	}
	return out, nil
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
