// Package ark talks to the hosted ARK (Doubao) vision model and turns its
// loosely structured answers into an AnalysisResult.
package ark

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/purinelens/purinelens-backend/config"
	"github.com/purinelens/purinelens-backend/logging"
	"github.com/purinelens/purinelens-backend/model"
)

// Client calls the ARK responses endpoint.
type Client struct {
	http       *resty.Client
	endpointID string
	url        string
	timeout    time.Duration
	logger     *zap.Logger
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url,omitempty"`
	Text     string `json:"text,omitempty"`
}

func NewClient(cfg config.ARKConfig, logger *zap.Logger) *Client {
	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:       rc,
		endpointID: cfg.EndpointID,
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		logger:     logging.OrNop(logger).Named("ark"),
	}
}

// AnalyzeFood sends the image to the model and returns the foods it found.
// A result with no foods is not an error.
func (c *Client) AnalyzeFood(ctx context.Context, image []byte, mimeType string) (*model.AnalysisResult, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	body := responsesRequest{
		Model: c.endpointID,
		Input: []inputMessage{{
			Role: "user",
			Content: []inputContent{
				{Type: "input_image", ImageURL: dataURL},
				{Type: "input_text", Text: foodPrompt},
			},
		}},
	}

	c.logger.Info("calling model",
		zap.String("url", c.url),
		zap.String("endpoint_id", c.endpointID),
		zap.Int("image_bytes", len(image)),
		zap.Int("base64_bytes", len(dataURL)),
		zap.Duration("timeout", c.timeout))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(c.url)
	elapsed := time.Since(start)
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("model request timed out",
				zap.Duration("elapsed", elapsed),
				zap.Int("image_bytes", len(image)))
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, &NetworkError{Err: err}
	}

	c.logger.Info("model responded",
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", elapsed))

	if !resp.IsSuccess() {
		c.logger.Error("model returned error", zap.String("body", preview(resp.String(), 500)))
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       preview(strings.TrimSpace(resp.String()), 200),
		}
	}

	raw := resp.Body()
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w; first 500 chars: %s", ErrMalformedResponse, preview(string(raw), 500))
	}
	c.logger.Debug("raw model response", zap.ByteString("body", raw))

	result, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	if result.Total() == 0 {
		c.logger.Warn("model found no food")
		return result, nil
	}
	c.logger.Info("recognized foods",
		zap.Int("high", len(result.High)),
		zap.Int("medium", len(result.Medium)),
		zap.Int("low", len(result.Low)))
	for _, f := range InvalidCoordinates(result) {
		c.logger.Warn("food has unusable coordinates",
			zap.String("food", f.Name),
			zap.Any("coordinates", f.Coordinates))
	}
	return result, nil
}

// Parse runs the full normalization chain on a raw response body: envelope
// text extraction, JSON recovery and tier normalization. A body with no
// answer text is normalized as-is.
func Parse(body []byte) (*model.AnalysisResult, error) {
	text := ExtractText(body)

	var (
		obj map[string]json.RawMessage
		err error
	)
	if strings.TrimSpace(text) == "" {
		obj, err = ExtractJSON(string(body))
	} else {
		obj, err = ExtractJSON(text)
	}
	if err != nil {
		return nil, err
	}
	return Normalize(obj)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
