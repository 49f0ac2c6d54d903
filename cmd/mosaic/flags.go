package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mosaic/internal/backend"
)

var (
	backendName string
	tileSizeX   int64
	tileSizeY   int64
	tileSizeZ   int64
	workers     int64
	noFallback  bool
	logLevel    string
	logFormat   string
	debug       bool
)

func commonComputeFlags() []cli.Flag {
	d := backend.DefaultTiles()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, cpu, serial)",
			Value:       backend.Auto,
			Destination: &backendName,
		},
		&cli.Int64Flag{
			Name:        "tile-size-x",
			Aliases:     []string{"tx"},
			Usage:       "tile width in columns",
			Value:       int64(d.X),
			Destination: &tileSizeX,
		},
		&cli.Int64Flag{
			Name:        "tile-size-y",
			Aliases:     []string{"ty"},
			Usage:       "tile height in rows",
			Value:       int64(d.Y),
			Destination: &tileSizeY,
		},
		&cli.Int64Flag{
			Name:        "tile-size-z",
			Aliases:     []string{"tz"},
			Usage:       "channels per tile layer",
			Value:       int64(d.Z),
			Destination: &tileSizeZ,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "cpu backend worker count (0 = GOMAXPROCS)",
			Destination: &workers,
		},
		&cli.BoolFlag{
			Name:        "no-fallback",
			Usage:       "do not retry a failed composite on the serial backend",
			Destination: &noFallback,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func flagTiles() backend.Tiles {
	return backend.Tiles{X: int(tileSizeX), Y: int(tileSizeY), Z: int(tileSizeZ)}
}
