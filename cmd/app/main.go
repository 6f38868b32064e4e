package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/logger"
)

var app = cli.NewApp()
var log = logger.Log

var playFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "synthetic",
		Usage:  "play a generated gray ramp of `WxH@RATE` instead of a file",
		EnvVar: "FRAMEREEL_SYNTHETIC",
	},
	cli.IntFlag{
		Name:   "pool",
		Value:  cfg.PoolCapacity,
		Usage:  "frame buffers allocated up front",
		EnvVar: "FRAMEREEL_POOL",
	},
	cli.IntFlag{
		Name:   "pool-ceiling",
		Value:  cfg.PoolCeiling,
		Usage:  "let the pool grow up to this many buffers, 0 disables growth",
		EnvVar: "FRAMEREEL_POOL_CEILING",
	},
	cli.BoolFlag{
		Name:   "truncate-interval",
		Usage:  "use a whole-millisecond tick interval",
		EnvVar: "FRAMEREEL_TRUNCATE_INTERVAL",
	},
	cli.BoolFlag{
		Name:   "os-timer",
		Usage:  "drive ticks from a kernel timer where available",
		EnvVar: "FRAMEREEL_OS_TIMER",
	},
	cli.DurationFlag{
		Name:   "limit",
		Usage:  "stop after this long, 0 plays until interrupted",
		EnvVar: "FRAMEREEL_LIMIT",
	},
	cli.IntFlag{
		Name:   "snapshot-every",
		Value:  cfg.SnapshotEvery,
		Usage:  "save every Nth frame, 0 disables snapshots",
		EnvVar: "FRAMEREEL_SNAPSHOT_EVERY",
	},
	cli.StringFlag{
		Name:   "snapshot-format",
		Value:  cfg.SnapshotFormat,
		Usage:  "png, qoi or ppm",
		EnvVar: "FRAMEREEL_SNAPSHOT_FORMAT",
	},
	cli.StringFlag{
		Name:   "snapshots-dir",
		Value:  cfg.PathSnapshotsDir,
		EnvVar: "FRAMEREEL_SNAPSHOTS_DIR",
	},
	cli.BoolFlag{
		Name:   "headless",
		Usage:  "show a progress bar instead of the terminal UI",
		EnvVar: "FRAMEREEL_HEADLESS",
	},
}

var sampleFlags = []cli.Flag{
	cli.StringFlag{Name: "size", Value: "640x480"},
	cli.IntFlag{Name: "rate", Value: cfg.FrameRate},
	cli.IntFlag{Name: "seconds", Value: 5},
}

func init() {
	app.Name = "framereel"
	app.Usage = "A frame pacing player"
	app.UsageText = "framereel [command] filename"
	app.HideHelp = true
	app.HideVersion = true
	app.ArgsUsage = ""
	app.Commands = []cli.Command{
		{
			Name:    "play",
			Aliases: []string{"p"},
			Usage:   "Play a video or a synthetic clip",
			Flags:   playFlags,
			Action:  play,
		},
		{
			Name:    "probe",
			Aliases: []string{"i"},
			Usage:   "Print the metadata of a video",
			Action: func(c *cli.Context) error {
				filename, err := getFilename(c)
				if err != nil {
					return err
				}
				return probe(os.Stdout, filename)
			},
		},
		{
			Name:    "sample",
			Aliases: []string{"s"},
			Usage:   "Generate a test clip with ffmpeg",
			Flags:   sampleFlags,
			Action:  sample,
		},
	}
}

func getFilename(c *cli.Context) (string, error) {
	f := c.Args().Get(0)
	if f == "" {
		return "", fmt.Errorf("Filename is required")
	}
	return f, nil
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
