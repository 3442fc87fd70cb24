package ark

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/purinelens/purinelens-backend/model"
)

var (
	highKeys   = []string{"high_purine_foods", "highPurineFoods", "high_purine", "highPurine"}
	mediumKeys = []string{"medium_purine_foods", "mediumPurineFoods", "medium_purine", "mediumPurine"}
	lowKeys    = []string{"low_purine_foods", "lowPurineFoods", "low_purine", "lowPurine"}

	nameKeys        = []string{"food_name", "name", "foodName"}
	purineKeys      = []string{"purine_value", "purineValue", "purine"}
	coordinateKeys  = []string{"coordinates", "bbox", "box"}
	descriptionKeys = []string{"description", "desc"}

	leadingNumber = regexp.MustCompile(`^\s*-?\d+(?:\.\d+)?`)
)

// Normalize maps a parsed model object onto an AnalysisResult. The
// canonical snake_case tier keys win; camelCase and short variants are only
// consulted when none of the canonical keys holds an array. Missing tiers
// become empty lists and entries that are not objects are dropped.
func Normalize(obj map[string]json.RawMessage) (*model.AnalysisResult, error) {
	high, okHigh := tierArray(obj, highKeys[:1])
	medium, okMedium := tierArray(obj, mediumKeys[:1])
	low, okLow := tierArray(obj, lowKeys[:1])

	if !okHigh && !okMedium && !okLow {
		high, okHigh = tierArray(obj, highKeys[1:])
		medium, okMedium = tierArray(obj, mediumKeys[1:])
		low, okLow = tierArray(obj, lowKeys[1:])
		if !okHigh && !okMedium && !okLow {
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, &SchemaError{Keys: keys}
		}
	}

	result := &model.AnalysisResult{
		High:   decodeItems(high),
		Medium: decodeItems(medium),
		Low:    decodeItems(low),
	}
	result.Ensure()
	return result, nil
}

// InvalidCoordinates returns the foods whose box cannot be drawn.
func InvalidCoordinates(result *model.AnalysisResult) []model.FoodItem {
	var bad []model.FoodItem
	for _, tier := range result.Tiers() {
		for _, f := range tier.Foods {
			if f.Coordinates != nil && !f.Coordinates.Valid() {
				bad = append(bad, f)
			}
		}
	}
	return bad
}

func tierArray(obj map[string]json.RawMessage, keys []string) ([]json.RawMessage, bool) {
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

func decodeItems(raws []json.RawMessage) []model.FoodItem {
	items := make([]model.FoodItem, 0, len(raws))
	for _, raw := range raws {
		if item, ok := decodeFoodItem(raw); ok {
			items = append(items, item)
		}
	}
	return items
}

func decodeFoodItem(raw json.RawMessage) (model.FoodItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.FoodItem{}, false
	}

	var item model.FoodItem
	item.Name, _ = firstString(fields, nameKeys)
	item.Description, _ = firstString(fields, descriptionKeys)
	for _, k := range purineKeys {
		if v, ok := number(fields[k]); ok {
			item.PurineValue = v
			break
		}
	}
	for _, k := range coordinateKeys {
		if c, ok := coordinates(fields[k]); ok {
			item.Coordinates = c
			break
		}
	}
	return item, true
}

func firstString(fields map[string]json.RawMessage, keys []string) (string, bool) {
	for _, k := range keys {
		if s, ok := rawString(fields[k]); ok {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// number accepts a JSON number or a string that starts with one, such as
// "180" or "180mg".
func number(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	s, ok := rawString(raw)
	if !ok {
		return 0, false
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	return f, err == nil
}

// coordinates accepts {"x1":..,"y1":..,"x2":..,"y2":..} or [x1,y1,x2,y2].
// All four values are required.
func coordinates(raw json.RawMessage) (*model.Coordinates, bool) {
	if isNull(raw) {
		return nil, false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) != 4 {
			return nil, false
		}
		var v [4]float64
		for i := range arr {
			f, ok := number(arr[i])
			if !ok {
				return nil, false
			}
			v[i] = f
		}
		return &model.Coordinates{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	var c model.Coordinates
	for key, dst := range map[string]*float64{"x1": &c.X1, "y1": &c.Y1, "x2": &c.X2, "y2": &c.Y2} {
		f, ok := number(fields[key])
		if !ok {
			return nil, false
		}
		*dst = f
	}
	return &c, true
}
