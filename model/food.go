// Package model holds the request/response shapes shared by the analyzer,
// the image annotator and the HTTP layer.
package model

// Coordinates is a bounding box in pixels of the original image.
type Coordinates struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// FoodItem is one recognized food. PurineValue is in mg per 100 g.
type FoodItem struct {
	Name        string       `json:"food_name"`
	PurineValue float64      `json:"purine_value"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Description string       `json:"description,omitempty"`
}

// AnalysisResult partitions the recognized foods by purine tier. Lists are
// unordered and never nil once normalized.
type AnalysisResult struct {
	High   []FoodItem `json:"high_purine_foods"`
	Medium []FoodItem `json:"medium_purine_foods"`
	Low    []FoodItem `json:"low_purine_foods"`
}

// Total returns the number of foods across all tiers.
func (r *AnalysisResult) Total() int {
	if r == nil {
		return 0
	}
	return len(r.High) + len(r.Medium) + len(r.Low)
}

// Ensure replaces nil tiers with empty slices so they encode as [].
func (r *AnalysisResult) Ensure() {
	if r.High == nil {
		r.High = []FoodItem{}
	}
	if r.Medium == nil {
		r.Medium = []FoodItem{}
	}
	if r.Low == nil {
		r.Low = []FoodItem{}
	}
}

// Tiers returns the foods grouped by tier, highest first.
func (r *AnalysisResult) Tiers() []TierFoods {
	return []TierFoods{
		{Tier: TierHigh, Foods: r.High},
		{Tier: TierMedium, Foods: r.Medium},
		{Tier: TierLow, Foods: r.Low},
	}
}

// TierFoods pairs a tier with its foods.
type TierFoods struct {
	Tier  Tier
	Foods []FoodItem
}
