package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purinelens/purinelens-backend/config"
	"github.com/purinelens/purinelens-backend/imaging"
	"github.com/purinelens/purinelens-backend/logging"
	"github.com/purinelens/purinelens-backend/model"
)

// Analyzer recognizes foods in an image.
type Analyzer interface {
	AnalyzeFood(ctx context.Context, image []byte, mimeType string) (*model.AnalysisResult, error)
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

type Handler struct {
	analyzer Analyzer
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(analyzer Analyzer, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

type upload struct {
	data []byte
	mime string
	name string
}

type uploadError struct {
	code model.ErrorCode
	msg  string
}

// AnalyzeHandler handles POST /api/analyze with a multipart "image" field.
func (h *Handler) AnalyzeHandler(c *gin.Context) {
	log := h.requestLogger(c)

	img, uerr := h.readImage(c)
	if uerr != nil {
		log.Info("rejected upload", zap.String("code", string(uerr.code)), zap.String("reason", uerr.msg))
		c.JSON(http.StatusBadRequest, model.APIResponse{Error: uerr.msg, Code: uerr.code})
		return
	}
	log.Info("received image",
		zap.String("filename", img.name),
		zap.String("mime", img.mime),
		zap.Int("bytes", len(img.data)))

	prepared := h.compress(log, img)

	result, err := h.analyzer.AnalyzeFood(c.Request.Context(), prepared.Data, prepared.MIME)
	if err != nil {
		code, msg := classify(err)
		log.Error("analysis failed", zap.Error(err), zap.String("code", string(code)))
		c.JSON(http.StatusInternalServerError, model.APIResponse{Error: msg, Code: code})
		return
	}
	result.Ensure()
	// The model answered in the coordinates of the image it was sent.
	if prepared.Resized() {
		imaging.RescaleCoordinates(result, prepared.Width, prepared.Height, prepared.SourceWidth, prepared.SourceHeight)
	}

	// No food is a business outcome, not an HTTP failure.
	if result.Total() == 0 {
		c.JSON(http.StatusOK, model.APIResponse{
			Error: "no food recognized, please upload a photo that contains food",
			Code:  model.CodeNoFoodDetected,
		})
		return
	}

	c.JSON(http.StatusOK, model.APIResponse{
		Success: true,
		Data:    result,
		Message: "analysis succeeded",
	})
}

// AnnotateHandler handles POST /api/annotate: a multipart "image" and a
// "result" field holding an analysis result as JSON. It replies with a PNG
// of the image with the result's boxes drawn on it.
func (h *Handler) AnnotateHandler(c *gin.Context) {
	log := h.requestLogger(c)

	img, uerr := h.readImage(c)
	if uerr != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{Error: uerr.msg, Code: uerr.code})
		return
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(c.PostForm("result")), &result); err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Error: "result must be an analysis result in JSON: " + err.Error(),
			Code:  model.CodeInvalidCoordinates,
		})
		return
	}

	src, _, err := imaging.Decode(img.data, h.cfg.Upload.MaxPixels)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.APIResponse{
			Error: "image could not be decoded: " + err.Error(),
			Code:  model.CodeInvalidImageFormat,
		})
		return
	}

	maxW := formInt(c, "max_width", h.cfg.Upload.AnnotateMaxSide)
	maxH := formInt(c, "max_height", h.cfg.Upload.AnnotateMaxSide)
	out := imaging.Annotate(src, &result, maxW, maxH)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		log.Error("encode annotated image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.APIResponse{Error: "failed to encode image", Code: model.CodeModelError})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// EnvHandler handles GET /api/test and reports which model settings are present.
func (h *Handler) EnvHandler(c *gin.Context) {
	ark := h.cfg.ARK
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API test succeeded",
		"environment": gin.H{
			"hasArkApiKey":     ark.APIKey != "",
			"hasArkEndpointId": ark.EndpointID != "",
			"hasArkApiUrl":     ark.URL != "",
			"arkApiKeyLength":  len(ark.APIKey),
			"arkEndpointId":    orNotSet(ark.EndpointID),
			"arkApiUrl":        orNotSet(ark.URL),
			"arkTimeout":       ark.Timeout.String(),
		},
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) readImage(c *gin.Context) (*upload, *uploadError) {
	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, h.tooLarge(c.Request.ContentLength)
		}
		return nil, &uploadError{code: model.CodeInvalidImageFormat, msg: "please upload an image file"}
	}

	data, err := readFile(file)
	if err != nil {
		return nil, &uploadError{code: model.CodeInvalidImageFormat, msg: "failed to read image: " + err.Error()}
	}

	mimeType := imaging.DetectMIME(data, file.Header.Get("Content-Type"))
	if !allowedImageTypes[mimeType] {
		return nil, &uploadError{
			code: model.CodeInvalidImageFormat,
			msg:  "unsupported image format, please upload a JPG, PNG or WEBP image",
		}
	}
	if file.Size > h.cfg.Upload.MaxBytes {
		return nil, h.tooLarge(file.Size)
	}
	if _, err := imaging.CheckDimensions(data, h.cfg.Upload.MaxPixels); errors.Is(err, imaging.ErrTooManyPixels) {
		return nil, &uploadError{
			code: model.CodeImageTooLarge,
			msg: fmt.Sprintf("image dimensions exceed the %.1f megapixel limit",
				float64(h.cfg.Upload.MaxPixels)/1e6),
		}
	}
	return &upload{data: data, mime: mimeType, name: file.Filename}, nil
}

// tooLarge reports an oversized upload. A non-positive size means the
// request did not declare one.
func (h *Handler) tooLarge(size int64) *uploadError {
	msg := "image exceeds the " + megabytes(h.cfg.Upload.MaxBytes) + " limit"
	if size > 0 {
		msg += ", file size: " + megabytes(size)
	}
	return &uploadError{code: model.CodeImageTooLarge, msg: msg}
}

// compress shrinks large uploads. Any failure falls back to the original bytes.
func (h *Handler) compress(log *zap.Logger, img *upload) imaging.Result {
	res, err := imaging.Compress(img.data, img.mime, h.cfg.Upload.CompressAbove, h.cfg.Upload.MaxPixels)
	if err != nil {
		log.Warn("compression failed, sending original image", zap.Error(err))
		return imaging.Result{Data: img.data, MIME: img.mime}
	}
	if res.Compressed {
		log.Info("compressed image",
			zap.Int("original_bytes", len(img.data)),
			zap.Int("compressed_bytes", len(res.Data)),
			zap.Int("width", res.Width),
			zap.Int("height", res.Height))
	}
	return res
}

func (h *Handler) requestLogger(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", RequestIDFrom(c)))
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.PostForm(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func megabytes(n int64) string {
	return strconv.FormatFloat(float64(n)/(1<<20), 'f', 2, 64) + "MB"
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
