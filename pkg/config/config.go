package config

import (
	"time"

	"github.com/pkg/errors"
)

// NOTE: pixels are RGBA, rows are written top to bottom
const (
	// all sizes are in bytes
	SizePixel       = 4
	SizeStrideAlign = 32

	// pool
	PoolCapacity = 16 // displayed + next, with room to spare
	PoolCeiling  = 0  // 0 disables growth

	// clock
	FrameRate       = 30 // used when the container does not report one
	TimerResolution = time.Millisecond

	// meta
	ProbeTimeout = 10 * time.Second

	// snapshots
	SnapshotEvery  = 0 // 0 disables snapshots
	SnapshotFormat = "png"

	// Path
	PathSnapshotsDir = "tmp/frames"
	PathSample       = "tmp/sample.mp4"
	PathTUILog       = "tmp/framereel.log"
)

// Config is the runtime configuration of the play command.
type Config struct {
	// Path to the media file; empty when Synthetic is set.
	Path      string
	Synthetic string // WxH@RATE

	PoolCapacity int
	PoolCeiling  int

	// TruncateInterval reproduces the millisecond-truncated tick interval.
	TruncateInterval bool
	OSTimer          bool
	Limit            time.Duration

	SnapshotEvery  int
	SnapshotFormat string
	SnapshotsDir   string

	Headless bool
}

// Default returns a Config with every field set to its package default.
func Default() Config {
	return Config{
		PoolCapacity:   PoolCapacity,
		PoolCeiling:    PoolCeiling,
		SnapshotEvery:  SnapshotEvery,
		SnapshotFormat: SnapshotFormat,
		SnapshotsDir:   PathSnapshotsDir,
	}
}

func (c Config) Validate() error {
	if c.Path == "" && c.Synthetic == "" {
		return errors.New("a media file or --synthetic is required")
	}
	if c.Path != "" && c.Synthetic != "" {
		return errors.New("a media file and --synthetic are mutually exclusive")
	}
	if c.PoolCapacity < 0 {
		return errors.Errorf("pool capacity must be >= 0, got %d", c.PoolCapacity)
	}
	if c.PoolCeiling != 0 && c.PoolCeiling < c.PoolCapacity {
		return errors.Errorf("pool ceiling %d is below capacity %d", c.PoolCeiling, c.PoolCapacity)
	}
	if c.Limit < 0 {
		return errors.Errorf("limit must be >= 0, got %s", c.Limit)
	}
	if c.SnapshotEvery < 0 {
		return errors.Errorf("snapshot interval must be >= 0, got %d", c.SnapshotEvery)
	}
	switch c.SnapshotFormat {
	case "png", "qoi", "ppm":
	default:
		return errors.Errorf("unknown snapshot format %q", c.SnapshotFormat)
	}
	return nil
}
