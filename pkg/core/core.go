// Package core wires metadata, the frame pool, the frame source and the
// playback clock into a player. Each clock tick advances the source and
// hands the new frame to a Display, all on the goroutine running Run.
package core

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/1F47E/go-framereel/pkg/clock"
	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/logger"
	"github.com/1F47E/go-framereel/pkg/meta"
	"github.com/1F47E/go-framereel/pkg/pool"
	"github.com/1F47E/go-framereel/pkg/source"
	"github.com/1F47E/go-framereel/pkg/workers"
)

// Display shows frames. Show runs on the playback goroutine and the frame's
// buffer is only valid until it returns.
type Display interface {
	Show(f *source.Frame, tick clock.Tick) error
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(f *source.Frame, tick clock.Tick) error

func (fn DisplayFunc) Show(f *source.Frame, tick clock.Tick) error { return fn(f, tick) }

// Source is the frame producer the player drives.
type Source interface {
	Advance() (*source.Frame, error)
	Current() *source.Frame
	Close() error
}

type Player struct {
	ctx       context.Context
	cfg       cfg.Config
	meta      meta.Metadata
	pool      *pool.Pool
	source    Source
	clock     *clock.PlaybackClock
	display   Display
	snapshots *workers.Snapshots
	log       *logrus.Entry

	frames uint64
	last   clock.Tick
}

// Open reads the metadata for c and builds a player for it. Unsupported
// files fail here, before any pool or clock exists.
func Open(ctx context.Context, c cfg.Config, display Display, opts ...clock.Option) (*Player, error) {
	m, err := Metadata(c)
	if err != nil {
		return nil, err
	}
	return New(ctx, m, c, display, opts...)
}

// Metadata validates c and reads the metadata of the clip it names.
func Metadata(c cfg.Config) (meta.Metadata, error) {
	if err := c.Validate(); err != nil {
		return meta.Metadata{}, err
	}
	if c.Synthetic != "" {
		return meta.ParseSynthetic(c.Synthetic)
	}
	return meta.Read(c.Path)
}

// New builds a player for known metadata. On error everything built so far
// is torn down again.
func New(ctx context.Context, m meta.Metadata, c cfg.Config, display Display, opts ...clock.Option) (_ *Player, err error) {
	log := logger.Scope("core")
	p := &Player{
		ctx:     ctx,
		cfg:     c,
		meta:    m,
		display: display,
		log:     log,
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, p.Close())
		}
	}()

	var poolOpts []pool.Option
	if c.PoolCeiling > 0 {
		poolOpts = append(poolOpts, pool.WithGrowth(c.PoolCeiling))
	}
	p.pool, err = pool.New(m.FrameSize.Width, m.FrameSize.Height, c.PoolCapacity, poolOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create frame pool")
	}
	p.source = source.New(p.pool)

	if c.TruncateInterval {
		opts = append(opts, clock.WithTruncatedInterval())
	}
	if c.OSTimer {
		opts = append(opts, clock.WithTimer(clock.NewOSTimer()))
	}
	p.clock, err = clock.New(m.FrameRate, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create playback clock")
	}

	if c.SnapshotEvery > 0 {
		p.snapshots, err = workers.StartSnapshots(ctx, 2, c.SnapshotEvery, c.SnapshotsDir, c.SnapshotFormat)
		if err != nil {
			return nil, errors.Wrap(err, "start snapshot workers")
		}
	}

	log.Debugf("player ready: %s, pool %d, interval %s", m.Print(), c.PoolCapacity, p.clock.Interval())
	return p, nil
}

func (p *Player) Metadata() meta.Metadata { return p.meta }

// Close stops the clock first so that the pool outlives the last tick.
// It is safe to call more than once.
func (p *Player) Close() error {
	var err error
	if p.clock != nil {
		err = multierr.Append(err, p.clock.Close())
	}
	if p.snapshots != nil {
		err = multierr.Append(err, p.snapshots.Close())
	}
	if p.source != nil {
		err = multierr.Append(err, p.source.Close())
	} else if p.pool != nil {
		err = multierr.Append(err, p.pool.Close())
	}
	return err
}
