package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mosaic/internal/composite"
	"github.com/samcharles93/mosaic/internal/imageio"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/project"
	"github.com/samcharles93/mosaic/pkg/wbuf"
)

func compositeCmd() *cli.Command {
	var (
		manifestPath string
		outPath      string
		rawOutPath   string
	)

	return &cli.Command{
		Name:  "composite",
		Usage: "Composite the frames of a manifest into one image",
		Flags: append(commonComputeFlags(),
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "path to a YAML or JSON manifest",
				Required:    true,
				Destination: &manifestPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output image (overrides the manifest; png, jpg, tiff or bmp)",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "raw-out",
				Usage:       "also write the un-normalized accumulator as a .wbuf file",
				Destination: &rawOutPath,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			m, err := project.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			applyComputeConfig(cmd, LoadConfig(), m)
			if outPath == "" {
				outPath = m.Output
			}
			if rawOutPath == "" {
				rawOutPath = m.RawOutput
			}
			if outPath == "" && rawOutPath == "" {
				outPath = "out.png"
			}

			job, err := project.Load(ctx, m, log)
			if err != nil {
				return err
			}
			c, closeBackends, err := newCompositor(log)
			if err != nil {
				return err
			}
			defer closeBackends()

			acc, err := composite.NewAccumulator(job.Shape())
			if err != nil {
				return err
			}
			start := time.Now()
			if err := c.Run(ctx, job.Frames, acc); err != nil {
				return err
			}
			log.Info("accumulated",
				"frames", len(job.Frames), "shape", acc.Shape.String(), "elapsed", time.Since(start))

			if rawOutPath != "" {
				if err := wbuf.WriteFile(rawOutPath, acc.Shape.Words(), 0, acc.Data); err != nil {
					return fmt.Errorf("write accumulator: %w", err)
				}
				log.Info("wrote accumulator", "path", rawOutPath)
			}
			if outPath == "" {
				return nil
			}

			if err := composite.NormalizeInPlace(acc); err != nil {
				return err
			}
			if imageio.FormatFromPath(outPath) == "wbuf" {
				if err := wbuf.WriteFile(outPath, acc.Shape.Words(), wbuf.FlagNormalized, acc.Data); err != nil {
					return err
				}
			} else {
				img, err := imageio.FromBuffer(acc)
				if err != nil {
					return err
				}
				if err := imageio.Save(outPath, img); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
			}
			log.Info("wrote composite", "path", outPath)
			return nil
		},
	}
}
