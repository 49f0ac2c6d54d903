package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mosaic/internal/project"
	"github.com/samcharles93/mosaic/pkg/wbuf"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show frame mappings and the planned canvas of a manifest, or the header of a .wbuf file",
		ArgsUsage: "<manifest|file.wbuf>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("inspect: expected a manifest or .wbuf path")
			}
			if strings.HasSuffix(strings.ToLower(path), ".wbuf") {
				return inspectBuffer(path)
			}
			return inspectManifest(ctx, path)
		},
	}
}

func inspectManifest(ctx context.Context, path string) error {
	m, err := project.LoadManifest(path)
	if err != nil {
		return err
	}
	job, err := project.Load(ctx, m, nil)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FRAME\tSIZE\tKIND\tDOF\tPARAMS\tEXTENT")
	for i, f := range job.Frames {
		s := f.Image.Shape
		kind := f.Mapping.Kind()
		extent := "-"
		if lo, hi, err := f.Mapping.Extent(s.Cols, s.Rows); err == nil {
			extent = fmt.Sprintf("(%.1f,%.1f)-(%.1f,%.1f)", lo.X, lo.Y, hi.X, hi.Y)
		}
		_, _ = fmt.Fprintf(tw, "%d %s\t%dx%dx%d\t%s\t%d\t%v\t%s\n",
			i, f.Name, s.Rows, s.Cols, s.Channels, kind, kind.NumParams(), formatParams(f.Mapping.Params(kind)), extent)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncanvas: %dx%d (%d channels)\n", job.Canvas.Rows, job.Canvas.Cols, job.Channels)
	fmt.Printf("offset: %v\n", formatParams(job.Canvas.Offset[:]))
	return nil
}

func inspectBuffer(path string) error {
	f, err := wbuf.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	h := f.Header
	fmt.Printf("version:  %d.%d\n", h.Major, h.Minor)
	fmt.Printf("shape:    %dx%dx%d\n", h.Rows, h.Cols, h.Channels)
	fmt.Printf("normalized: %t\n", h.Flags&wbuf.FlagNormalized != 0)

	data := f.Float32s()
	ch := int(h.Channels)
	minW, maxW := math.Inf(1), math.Inf(-1)
	covered := 0
	for i := ch - 1; i < len(data); i += ch {
		w := float64(data[i])
		minW, maxW = math.Min(minW, w), math.Max(maxW, w)
		if w > 0 {
			covered++
		}
	}
	pixels := len(data) / ch
	fmt.Printf("weight:   min %.4g max %.4g\n", minW, maxW)
	fmt.Printf("coverage: %d/%d pixels (%.1f%%)\n", covered, pixels, 100*float64(covered)/float64(pixels))
	return nil
}

func formatParams(p []float32) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%.4g", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
