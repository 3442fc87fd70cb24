package imaging

import (
	"image"
	"image/color"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/purinelens/purinelens-backend/model"
)

const (
	strokeWidth = 3
	labelHeight = 20
	labelPad    = 4
)

type palette struct {
	box, text color.RGBA
}

var (
	white = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black = color.RGBA{0x00, 0x00, 0x00, 0xFF}

	tierPalette = map[model.Tier]palette{
		model.TierHigh:   {box: color.RGBA{0xFF, 0x00, 0x00, 0xFF}, text: white},
		model.TierMedium: {box: color.RGBA{0xFF, 0xD7, 0x00, 0xFF}, text: black},
		model.TierLow:    {box: color.RGBA{0x00, 0xFF, 0x00, 0xFF}, text: black},
	}
)

// Label is the caption drawn over a food's box.
func Label(f model.FoodItem) string {
	return f.Name + " (" + strconv.FormatFloat(f.PurineValue, 'f', -1, 64) + "mg/100g)"
}

// Annotate scales src to fit maxW x maxH and draws every food with a usable
// box in its tier colour. Foods without a box, or with one that cannot be
// drawn, are skipped.
func Annotate(src image.Image, result *model.AnalysisResult, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	s := FitScale(b.Dx(), b.Dy(), maxW, maxH)

	dst := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	if result == nil {
		return dst
	}

	face := basicfont.Face7x13
	for _, tier := range result.Tiers() {
		p := tierPalette[tier.Tier]
		for _, f := range tier.Foods {
			if f.Coordinates == nil {
				continue
			}
			box, ok := ClampBox(*f.Coordinates, s)
			if !ok {
				continue
			}
			strokeRect(dst, box, p.box)

			text := Label(f)
			w := font.MeasureString(face, text).Ceil() + 2*labelPad
			lr := LabelRect(box, w, labelHeight, dst.Bounds())
			xdraw.Draw(dst, lr, image.NewUniform(p.box), image.Point{}, xdraw.Src)

			d := font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(p.text),
				Face: face,
				Dot:  fixed.P(lr.Min.X+labelPad, lr.Max.Y-labelPad-2),
			}
			d.DrawString(text)
		}
	}
	return dst
}

// strokeRect draws a strokeWidth border just inside r.
func strokeRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	u := image.NewUniform(c)
	sw := min(strokeWidth, r.Dx(), r.Dy())
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+sw),
		image.Rect(r.Min.X, r.Max.Y-sw, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+sw, r.Max.Y),
		image.Rect(r.Max.X-sw, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		xdraw.Draw(dst, e, u, image.Point{}, xdraw.Src)
	}
}
