package model

// ErrorCode is the machine-readable failure reason returned to clients.
type ErrorCode string

const (
	CodeInvalidImageFormat ErrorCode = "INVALID_IMAGE_FORMAT"
	CodeImageTooLarge      ErrorCode = "IMAGE_TOO_LARGE"
	CodeNetworkError       ErrorCode = "NETWORK_ERROR"
	CodeModelError         ErrorCode = "MODEL_ERROR"
	CodeNoFoodDetected     ErrorCode = "NO_FOOD_DETECTED"
	CodeInvalidCoordinates ErrorCode = "INVALID_COORDINATES"
)

// APIResponse is the envelope of every /api JSON reply.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    *AnalysisResult `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    ErrorCode       `json:"code,omitempty"`
}
