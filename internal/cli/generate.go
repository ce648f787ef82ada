package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ChaseRain/carouselgen/internal/catalog"
	"github.com/ChaseRain/carouselgen/internal/infra/config"
	"github.com/ChaseRain/carouselgen/internal/service/export"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/internal/service/render"
	"github.com/ChaseRain/carouselgen/internal/service/session"
	"github.com/ChaseRain/carouselgen/internal/service/storage"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	topic     string
	intention string
	username  string
	palette   string
	images    bool
	out       string // output directory, defaults to storage.base_path
	scale     int    // export scale, defaults to render.export_scale
}

func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{
		intention: catalog.DefaultIntention(),
		username:  render.DefaultUsername,
		palette:   catalog.DefaultPalette().Name,
		images:    true,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a carousel and write its slides to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "carousel topic")
	cmd.Flags().StringVarP(&opts.intention, "intention", "i", opts.intention, "post intention")
	cmd.Flags().StringVarP(&opts.username, "username", "u", opts.username, "handle shown on every card")
	cmd.Flags().StringVarP(&opts.palette, "palette", "p", opts.palette, "color palette name")
	cmd.Flags().BoolVar(&opts.images, "images", opts.images, "illustrate every slide with Imagen")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory")
	cmd.Flags().IntVar(&opts.scale, "scale", 0, "export scale (1 = 1080px)")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.out == "" {
		opts.out = cfg.Storage.BasePath
	}
	if opts.scale <= 0 {
		opts.scale = cfg.Render.ExportScale
	}

	form := session.Form{
		Topic:          opts.topic,
		Username:       opts.username,
		Intention:      opts.intention,
		Palette:        opts.palette,
		GenerateImages: opts.images,
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	exporter := export.New(renderer, opts.scale, nil, c.Logger)
	store := storage.New(opts.out, c.Logger)

	ctl := session.NewController(uuid.NewString(), c.NewGenerator(cfg, c.Logger), c.Logger)
	res, err := ctl.Submit(ctx, form, c.logProgress)
	if err != nil {
		return err
	}
	if res.Warning != nil {
		c.Logger.Warn(res.Warning.Message, "failed_images", len(res.FailedImages))
	}

	cards, err := ctl.BeginExport()
	if err != nil {
		return err
	}
	defer ctl.EndExport()

	for _, card := range cards {
		file, err := exporter.Slide(card)
		if err != nil {
			c.Logger.Warn("slide skipped", "slide", card.Index, "error", err)
			continue
		}
		path, err := store.Save(ctx, file.Name, file.Data)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.Out, path)
	}

	archive, skipped, err := exporter.Archive(ctx, cards)
	if err != nil {
		return err
	}
	path, err := store.Save(ctx, archive.Name, archive.Data)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, path)

	c.Logger.Info("carousel written",
		"dir", store.Dir(),
		"slides", len(cards)-len(skipped),
		"images", res.Deck.ImageCount(),
	)
	return nil
}

func (c *CLI) logProgress(event orchestrator.ProgressEvent) {
	c.Logger.Info(event.Message, "stage", event.Stage, "progress", event.Progress)
}
