package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mosaic/internal/composite"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/project"
	"github.com/samcharles93/mosaic/internal/shader"
)

func shaderCmd() *cli.Command {
	var (
		spirvOut     string
		bindingsDir  string
		manifestPath string
		frameIndex   int64
	)

	return &cli.Command{
		Name:  "shader",
		Usage: "Emit the WGSL kernel as source or SPIR-V; --bindings dumps one frame's buffers",
		Flags: append(commonComputeFlags(),
			&cli.StringFlag{
				Name:        "spirv",
				Usage:       "write SPIR-V to this path instead of printing WGSL",
				Destination: &spirvOut,
			},
			&cli.StringFlag{
				Name:        "bindings",
				Usage:       "write the binding buffers of one manifest frame into this directory",
				Destination: &bindingsDir,
			},
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "manifest used with --bindings",
				Destination: &manifestPath,
			},
			&cli.Int64Flag{
				Name:        "frame",
				Usage:       "frame index used with --bindings",
				Destination: &frameIndex,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyComputeConfig(cmd, LoadConfig(), nil)
			tiles := flagTiles()

			if bindingsDir != "" {
				return writeBindings(ctx, cmd, manifestPath, int(frameIndex), bindingsDir)
			}
			if spirvOut == "" {
				src, err := shader.Source(tiles)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(os.Stdout, src)
				return err
			}

			spirv, err := shader.Compile(tiles)
			if err != nil {
				return err
			}
			if err := os.WriteFile(spirvOut, spirv, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %d bytes of SPIR-V (workgroup %s)\n", len(spirv), tiles)
			return nil
		},
	}
}

// writeBindings packs one frame of a manifest against a zeroed accumulator,
// in the layout a device dispatch receives.
func writeBindings(ctx context.Context, cmd *cli.Command, manifestPath string, index int, dir string) error {
	if manifestPath == "" {
		return fmt.Errorf("shader: --bindings needs --manifest")
	}
	m, err := project.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	applyComputeConfig(cmd, LoadConfig(), m)
	job, err := project.Load(ctx, m, logger.FromContext(ctx))
	if err != nil {
		return err
	}
	if index < 0 || index >= len(job.Frames) {
		return fmt.Errorf("shader: frame %d out of range (manifest has %d)", index, len(job.Frames))
	}
	acc, err := composite.NewAccumulator(job.Shape())
	if err != nil {
		return err
	}
	f := job.Frames[index]
	bufs, err := shader.Pack(f.Mapping, f.Image, acc)
	if err != nil {
		return err
	}
	if err := bufs.WriteDir(dir); err != nil {
		return err
	}
	d := shader.DispatchSize(acc.Shape, flagTiles())
	fmt.Printf("frame %d (%s): bindings in %s, dispatch %dx%dx%d\n", index, f.Name, dir, d[0], d[1], d[2])
	return nil
}
