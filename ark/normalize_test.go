package ark

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purinelens/purinelens-backend/model"
)

func normalize(t *testing.T, s string) (*model.AnalysisResult, error) {
	t.Helper()
	obj, err := ExtractJSON(s)
	require.NoError(t, err)
	return Normalize(obj)
}

func TestNormalizeCanonical(t *testing.T) {
	result, err := normalize(t, `{
		"high_purine_foods": [{"food_name": "anchovy", "purine_value": 411, "description": "small fish"}],
		"medium_purine_foods": [{"food_name": "tofu", "purine_value": 68, "coordinates": {"x1": 1, "y1": 2, "x2": 3, "y2": 4}}],
		"low_purine_foods": []
	}`)
	require.NoError(t, err)

	require.Len(t, result.High, 1)
	assert.Equal(t, model.FoodItem{Name: "anchovy", PurineValue: 411, Description: "small fish"}, result.High[0])
	require.Len(t, result.Medium, 1)
	assert.Equal(t, &model.Coordinates{X1: 1, Y1: 2, X2: 3, Y2: 4}, result.Medium[0].Coordinates)
	assert.NotNil(t, result.Low)
	assert.Empty(t, result.Low)
}

func TestNormalizeMissingTiersBecomeEmpty(t *testing.T) {
	result, err := normalize(t, `{"low_purine_foods": [{"food_name": "cucumber", "purine_value": 7}]}`)
	require.NoError(t, err)
	assert.NotNil(t, result.High)
	assert.NotNil(t, result.Medium)
	assert.Len(t, result.Low, 1)
}

func TestNormalizeVariants(t *testing.T) {
	t.Run("camelCase", func(t *testing.T) {
		result, err := normalize(t, `{"highPurineFoods": [{"food_name": "liver", "purine_value": 300}], "mediumPurineFoods": []}`)
		require.NoError(t, err)
		require.Len(t, result.High, 1)
		assert.Equal(t, "liver", result.High[0].Name)
	})

	t.Run("short keys", func(t *testing.T) {
		result, err := normalize(t, `{"high_purine": [], "lowPurine": [{"food_name": "apple", "purine_value": 5}]}`)
		require.NoError(t, err)
		require.Len(t, result.Low, 1)
	})

	t.Run("non-array canonical key falls through to variants", func(t *testing.T) {
		result, err := normalize(t, `{"high_purine_foods": "none", "low_purine": [{"food_name": "milk", "purine_value": 0}]}`)
		require.NoError(t, err)
		assert.Empty(t, result.High)
		require.Len(t, result.Low, 1)
	})

	t.Run("canonical wins over variants", func(t *testing.T) {
		result, err := normalize(t, `{"high_purine_foods": [], "highPurineFoods": [{"food_name": "ignored"}]}`)
		require.NoError(t, err)
		assert.Empty(t, result.High)
	})
}

func TestNormalizeSchemaError(t *testing.T) {
	_, err := normalize(t, `{"foods": [{"food_name": "x"}], "note": "hi"}`)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"foods", "note"}, schemaErr.Keys)
	assert.Contains(t, err.Error(), "foods, note")
}

func TestNormalizeItemLeniency(t *testing.T) {
	result, err := normalize(t, `{"high_purine_foods": [
		{"name": "sardine", "purine": "345mg", "bbox": [10, 20, 30, 40]},
		{"foodName": "mussel", "purineValue": "154.5", "box": {"x1": "1", "y1": 2, "x2": 3, "y2": 4}},
		42,
		{"food_name": "scallop", "purine_value": 200, "coordinates": {"x1": 1, "y1": 2, "x2": 3}}
	]}`)
	require.NoError(t, err)
	require.Len(t, result.High, 3)

	assert.Equal(t, "sardine", result.High[0].Name)
	assert.Equal(t, 345.0, result.High[0].PurineValue)
	assert.Equal(t, &model.Coordinates{X1: 10, Y1: 20, X2: 30, Y2: 40}, result.High[0].Coordinates)

	assert.Equal(t, "mussel", result.High[1].Name)
	assert.Equal(t, 154.5, result.High[1].PurineValue)
	assert.Equal(t, &model.Coordinates{X1: 1, Y1: 2, X2: 3, Y2: 4}, result.High[1].Coordinates)

	assert.Equal(t, "scallop", result.High[2].Name)
	assert.Nil(t, result.High[2].Coordinates, "incomplete box is dropped")
}

func TestNumber(t *testing.T) {
	cases := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{`180`, 180, true},
		{`"180"`, 180, true},
		{`"180mg"`, 180, true},
		{`" 42.5 mg/100g"`, 42.5, true},
		{`"level 3, 180mg"`, 0, false},
		{`"about 120-150"`, 0, false},
		{`"unknown"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := number(json.RawMessage(tc.raw))
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInvalidCoordinates(t *testing.T) {
	result := &model.AnalysisResult{
		High: []model.FoodItem{
			{Name: "ok", Coordinates: &model.Coordinates{X1: 0, Y1: 0, X2: 10, Y2: 10}},
			{Name: "negative", Coordinates: &model.Coordinates{X1: -1, Y1: 0, X2: 10, Y2: 10}},
		},
		Medium: []model.FoodItem{
			{Name: "inverted", Coordinates: &model.Coordinates{X1: 10, Y1: 0, X2: 5, Y2: 10}},
		},
		Low: []model.FoodItem{
			{Name: "no box"},
			{Name: "flat", Coordinates: &model.Coordinates{X1: 0, Y1: 5, X2: 10, Y2: 5}},
		},
	}

	var names []string
	for _, f := range InvalidCoordinates(result) {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"negative", "inverted", "flat"}, names)
}
