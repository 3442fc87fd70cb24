package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/purinelens/purinelens-backend/config"
	"github.com/purinelens/purinelens-backend/logging"
)

var (
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "purinelens",
	Short: "Food photo purine analyzer backed by a hosted vision model",
	Long: `purinelens recognizes foods in a photo with the ARK (Doubao) vision model
and classifies them by purine content: high (>150 mg/100g), medium (50-150)
and low (<50). Boxes returned by the model can be drawn back onto the photo.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if debug {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
