package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mosaic/internal/imageio"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/project"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

func warpCmd() *cli.Command {
	var (
		manifestPath string
		outPath      string
		frameIndex   int64
		background   string
		at           float64
	)

	return &cli.Command{
		Name:  "warp",
		Usage: "Resample one manifest frame onto the canvas without blending",
		Flags: []cli.Flag{
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
				Usage:       "output image (png, jpg, tiff or bmp)",
				Value:       "warped.png",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "frame",
				Usage:       "index of the frame to warp",
				Destination: &frameIndex,
			},
			&cli.StringFlag{
				Name:        "background",
				Usage:       "fill colour for uncovered pixels, one value or one per channel in [0,1]",
				Destination: &background,
			},
			&cli.Float64Flag{
				Name:        "at",
				Usage:       "interpolate the mapping at this frame position (e.g. 1.5) instead of using the frame's own",
				Destination: &at,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			m, err := project.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			job, err := project.Load(ctx, m, log)
			if err != nil {
				return err
			}
			n := int(frameIndex)
			if n < 0 || n >= len(job.Frames) {
				return fmt.Errorf("warp: frame %d out of range (manifest has %d)", n, len(job.Frames))
			}
			f := job.Frames[n]

			mapping := f.Mapping
			if cmd.IsSet("at") {
				mapping, err = mappingAt(job, float32(at))
				if err != nil {
					return err
				}
			}
			bg, err := parseBackground(background, job.Channels)
			if err != nil {
				return err
			}

			out, err := tensor.NewBuffer(job.Shape())
			if err != nil {
				return err
			}
			valid, err := warp.Warp(mapping, f.Image, out, bg)
			if err != nil {
				return err
			}
			covered := coverageMask(out, valid, bg != nil)
			log.Info("warped", "frame", f.Name, "shape", out.Shape.String(), "covered", covered)

			img, err := imageio.FromBuffer(out)
			if err != nil {
				return err
			}
			if err := imageio.Save(outPath, img); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			log.Info("wrote warp", "path", outPath)
			return nil
		},
	}
}

// mappingAt interpolates the placed frame mappings, keyed by frame index.
func mappingAt(job *project.Job, t float32) (warp.Mapping, error) {
	ts := make([]float32, len(job.Frames))
	maps := make([]warp.Mapping, len(job.Frames))
	for i, f := range job.Frames {
		ts[i] = float32(i)
		maps[i] = f.Mapping
	}
	ms, err := warp.Interpolate(ts, maps, []float32{t})
	if err != nil {
		return warp.Mapping{}, err
	}
	return ms[0], nil
}

// parseBackground turns a comma separated colour into a full pixel of
// channels values with an opaque weight. An empty string means no
// background. A single value fills every colour channel.
func parseBackground(s string, channels int) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	colors := channels - 1
	fields := strings.Split(s, ",")
	if len(fields) != 1 && len(fields) != colors {
		return nil, fmt.Errorf("background: got %d values for %d colour channels", len(fields), colors)
	}
	px := make([]float32, channels)
	for i := range colors {
		field := fields[0]
		if len(fields) > 1 {
			field = fields[i]
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("background: %v outside [0,1]", v)
		}
		px[i] = float32(v)
	}
	px[colors] = 1
	return px, nil
}

// coverageMask rewrites the weight channel as a mask: 1 where the frame was
// sampled, and 1 or 0 elsewhere depending on whether a background was
// painted. It returns the number of sampled pixels.
func coverageMask(out *tensor.Buffer, valid []bool, background bool) int {
	wc := out.Shape.WeightChannel()
	covered := 0
	for i, ok := range valid {
		row, col := i/out.Shape.Cols, i%out.Shape.Cols
		switch {
		case ok:
			covered++
			out.Set(row, col, wc, 1)
		case background:
			out.Set(row, col, wc, 1)
		default:
			out.Set(row, col, wc, 0)
		}
	}
	return covered
}
