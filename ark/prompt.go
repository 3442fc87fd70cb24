package ark

const foodPrompt = `Analyze the food in this image and return the result as JSON.

Requirements:
1. Identify the edible food itself. Do not identify containers, plates, garnish or background.
2. Estimate the purine content of each food in mg per 100 g.
3. Classify: high purine > 150, medium purine 50-150, low purine < 50.
4. Coordinates (important):
   - Format {x1, y1, x2, y2} in pixels of the original image size.
   - Box the food itself, never the container, garnish or background.
   - If the food is in a container, box only the food.
   - If the same food appears in several regions, return one entry per region.

Return JSON in exactly this shape:
{
  "high_purine_foods": [
    {
      "food_name": "food name",
      "purine_value": 180,
      "coordinates": {"x1": 100, "y1": 150, "x2": 300, "y2": 250},
      "description": "short description of the food"
    }
  ],
  "medium_purine_foods": [
    {
      "food_name": "food name",
      "purine_value": 120,
      "coordinates": {"x1": 350, "y1": 200, "x2": 500, "y2": 350},
      "description": "short description of the food"
    }
  ],
  "low_purine_foods": [
    {
      "food_name": "food name",
      "purine_value": 30,
      "coordinates": {"x1": 100, "y1": 150, "x2": 300, "y2": 250},
      "description": "short description of the food (optional)"
    }
  ]
}

Return only the JSON, with no other text.`
