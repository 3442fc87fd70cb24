package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	xdraw "golang.org/x/image/draw"

	"github.com/purinelens/purinelens-backend/model"
)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, xdraw.Src)
	return img
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "shrimp (180mg/100g)", Label(model.FoodItem{Name: "shrimp", PurineValue: 180}))
	assert.Equal(t, "tofu (68.5mg/100g)", Label(model.FoodItem{Name: "tofu", PurineValue: 68.5}))
}

func TestAnnotateDrawsScaledBoxes(t *testing.T) {
	result := &model.AnalysisResult{
		High: []model.FoodItem{
			{Name: "shrimp", PurineValue: 180, Coordinates: &model.Coordinates{X1: 20, Y1: 60, X2: 120, Y2: 160}},
		},
		Medium: []model.FoodItem{
			{Name: "tofu", PurineValue: 68, Coordinates: &model.Coordinates{X1: 200, Y1: 60, X2: 380, Y2: 180}},
			{Name: "broken", PurineValue: 90, Coordinates: &model.Coordinates{X1: 50, Y1: 50, X2: 10, Y2: 10}},
		},
		Low: []model.FoodItem{
			{Name: "rice", PurineValue: 18},
		},
	}

	out := Annotate(blank(400, 200), result, 200, 200)

	assert.Equal(t, image.Rect(0, 0, 200, 100), out.Bounds())

	red := color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	gold := color.RGBA{0xFF, 0xD7, 0x00, 0xFF}

	// High box lands at (10,30)-(60,80) after halving.
	assert.Equal(t, red, out.RGBAAt(10, 50), "left edge of high box")
	assert.Equal(t, red, out.RGBAAt(59, 79), "bottom-right corner of high box")
	assert.Equal(t, white, out.RGBAAt(35, 55), "inside high box")
	assert.Equal(t, red, out.RGBAAt(11, 11), "label band above high box")

	// Medium box at (100,30)-(190,90).
	assert.Equal(t, gold, out.RGBAAt(100, 60), "left edge of medium box")
	assert.Equal(t, white, out.RGBAAt(145, 60), "inside medium box")
}

func TestAnnotateNilResult(t *testing.T) {
	out := Annotate(blank(30, 20), nil, 0, 0)
	assert.Equal(t, image.Rect(0, 0, 30, 20), out.Bounds())
	assert.Equal(t, white, out.RGBAAt(5, 5))
}
