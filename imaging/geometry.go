package imaging

import (
	"image"
	"math"

	"github.com/purinelens/purinelens-backend/model"
)

// Scale maps source pixels to display pixels.
type Scale struct {
	X, Y          float64
	Width, Height int
}

// FitScale computes the display size of an imgW x imgH image inside a
// maxW x maxH container. The aspect ratio is kept and the image is never
// enlarged. A non-positive limit means unbounded on that axis.
func FitScale(imgW, imgH, maxW, maxH int) Scale {
	if imgW <= 0 || imgH <= 0 {
		return Scale{X: 1, Y: 1}
	}
	if maxW <= 0 {
		maxW = imgW
	}
	if maxH <= 0 {
		maxH = imgH
	}

	imgAspect := float64(imgW) / float64(imgH)
	boxAspect := float64(maxW) / float64(maxH)

	var w, h float64
	if imgAspect > boxAspect {
		w = float64(min(maxW, imgW))
		h = w / imgAspect
	} else {
		h = float64(min(maxH, imgH))
		w = h * imgAspect
	}

	s := Scale{
		Width:  max(1, int(math.Round(w))),
		Height: max(1, int(math.Round(h))),
	}
	s.X = float64(s.Width) / float64(imgW)
	s.Y = float64(s.Height) / float64(imgH)
	return s
}

// ClampBox scales a model box onto the display canvas and clamps it to the
// canvas bounds. ok is false for invalid boxes and for boxes that lie
// entirely outside the canvas.
func ClampBox(c model.Coordinates, s Scale) (image.Rectangle, bool) {
	if !c.Valid() {
		return image.Rectangle{}, false
	}
	x1 := clampInt(c.X1*s.X, s.Width)
	y1 := clampInt(c.Y1*s.Y, s.Height)
	x2 := clampInt(c.X2*s.X, s.Width)
	y2 := clampInt(c.Y2*s.Y, s.Height)

	r := image.Rect(x1, y1, x2, y2)
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return image.Rectangle{}, false
	}
	return r, true
}

func clampInt(v float64, limit int) int {
	return min(max(int(math.Round(v)), 0), limit)
}

// LabelRect places a w x h label on top of box. The label moves inside the
// box when there is no room above it, and slides left to stay on canvas.
func LabelRect(box image.Rectangle, w, h int, canvas image.Rectangle) image.Rectangle {
	y := box.Min.Y - h
	if y < canvas.Min.Y {
		y = box.Min.Y
	}
	if y+h > canvas.Max.Y {
		y = canvas.Max.Y - h
	}
	y = max(y, canvas.Min.Y)

	x := box.Min.X
	if x+w > canvas.Max.X {
		x = canvas.Max.X - w
	}
	x = max(x, canvas.Min.X)

	return image.Rect(x, y, x+w, y+h).Intersect(canvas)
}

// RescaleCoordinates maps every box in result from a fromW x fromH image to
// a toW x toH one, in place.
func RescaleCoordinates(result *model.AnalysisResult, fromW, fromH, toW, toH int) {
	if result == nil || fromW <= 0 || fromH <= 0 {
		return
	}
	sx := float64(toW) / float64(fromW)
	sy := float64(toH) / float64(fromH)
	for _, tier := range result.Tiers() {
		for i := range tier.Foods {
			c := tier.Foods[i].Coordinates
			if c == nil {
				continue
			}
			c.X1, c.X2 = c.X1*sx, c.X2*sx
			c.Y1, c.Y2 = c.Y1*sy, c.Y2*sy
		}
	}
}
