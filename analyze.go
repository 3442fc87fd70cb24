package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/purinelens/purinelens-backend/ark"
	"github.com/purinelens/purinelens-backend/imaging"
)

var annotatedOut string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze one food photo and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&annotatedOut, "out", "o", "", "write an annotated PNG to this path")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	mimeType := imaging.DetectMIME(data, "")

	if _, err := imaging.CheckDimensions(data, cfg.Upload.MaxPixels); errors.Is(err, imaging.ErrTooManyPixels) {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	prepared, err := imaging.Compress(data, mimeType, cfg.Upload.CompressAbove, cfg.Upload.MaxPixels)
	if err != nil {
		logger.Warn("compression failed, sending original image", zap.Error(err))
		prepared = imaging.Result{Data: data, MIME: mimeType}
	}

	client := ark.NewClient(cfg.ARK, logger)
	result, err := client.AnalyzeFood(cmd.Context(), prepared.Data, prepared.MIME)
	if err != nil {
		return err
	}
	if prepared.Resized() {
		imaging.RescaleCoordinates(result, prepared.Width, prepared.Height, prepared.SourceWidth, prepared.SourceHeight)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return err
	}

	if annotatedOut == "" {
		return nil
	}
	src, _, err := imaging.Decode(data, cfg.Upload.MaxPixels)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	side := cfg.Upload.AnnotateMaxSide
	f, err := os.Create(annotatedOut)
	if err != nil {
		return err
	}
	if err := writePNG(f, imaging.Annotate(src, result, side, side)); err != nil {
		return fmt.Errorf("write %s: %w", annotatedOut, err)
	}
	logger.Info("wrote annotated image", zap.String("path", annotatedOut))
	return nil
}

// writePNG encodes img to w and closes it. A failed close is reported, since
// the file may be incomplete.
func writePNG(w io.WriteCloser, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
