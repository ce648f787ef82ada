// Package cli implements the carousel command-line interface.
package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChaseRain/carouselgen/internal/infra/config"
	"github.com/ChaseRain/carouselgen/internal/infra/httpclient"
	"github.com/ChaseRain/carouselgen/internal/infra/limiter"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/service/gemini"
	"github.com/ChaseRain/carouselgen/internal/service/imagegen"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/internal/service/session"
)

// CLI holds shared state for all commands.
type CLI struct {
	Out    io.Writer
	Logger *logger.Logger

	// NewGenerator builds the generation pipeline from configuration.
	NewGenerator func(cfg *config.Config, log *logger.Logger) session.Generator

	verbose bool
}

// New creates a CLI that prints results to out. The logger is created when a
// command runs unless one is set beforehand.
func New(out io.Writer) *CLI {
	return &CLI{
		Out:          out,
		NewGenerator: newPipeline,
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "carousel",
		Short:         "Carousel generates Instagram carousels from a topic",
		Long:          `Carousel drafts the copy of an Instagram carousel with Gemini, optionally illustrates every slide with Imagen, and writes the finished 1080x1080 cards as PNG files and a zip archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initLogger()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.catalogCommand())

	return root
}

func (c *CLI) initLogger() error {
	if c.Logger != nil {
		return nil
	}
	level := "info"
	if c.verbose {
		level = "debug"
	}
	log, err := logger.New(level, "console")
	if err != nil {
		return err
	}
	c.Logger = log
	return nil
}

// newPipeline wires the Gemini and Imagen clients into an orchestrator. The
// CLI runs one generation at a time, so the limiter only bounds the rate.
func newPipeline(cfg *config.Config, log *logger.Logger) session.Generator {
	httpClient := httpclient.New(httpclient.Options{
		Timeout: time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
	})
	text := gemini.New(gemini.Options{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		BaseURL:     cfg.Gemini.BaseURL,
		Temperature: cfg.Gemini.Temperature,
		TopP:        cfg.Gemini.TopP,
	}, httpClient, log)
	images := imagegen.New(imagegen.Options{
		APIKey:  cfg.ImageGen.APIKey,
		Model:   cfg.ImageGen.Model,
		BaseURL: cfg.ImageGen.BaseURL,
	}, httpClient, log)

	return orchestrator.New(text, images, limiter.New(1, cfg.Limiter.RatePerSecond), nil, log, orchestrator.Options{
		ImageTimeout: time.Duration(cfg.ImageGen.TimeoutSeconds) * time.Second,
	})
}
