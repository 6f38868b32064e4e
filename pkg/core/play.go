package core

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/1F47E/go-framereel/pkg/clock"
	"github.com/1F47E/go-framereel/pkg/job"
)

// Summary describes a finished playback.
type Summary struct {
	Frames    uint64
	Clock     clock.Stats
	Last      clock.Tick
	Snapshots uint64
}

// Run plays until ctx is done, the configured limit passes, or a frame
// cannot be produced. A pool running dry halts playback with
// pool.ErrPoolExhausted.
func (p *Player) Run(ctx context.Context) error {
	if p.cfg.Limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Limit)
		defer cancel()
	}

	if err := p.clock.Start(); err != nil {
		return pkgerrors.Wrap(err, "start playback clock")
	}
	p.log.Infof("playing %s at %d fps", p.meta.FrameSize, p.meta.FrameRate)

	err := p.clock.Run(ctx, p.tick)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if stopErr := p.clock.Stop(); err == nil {
		err = stopErr
	}
	return err
}

func (p *Player) tick(t clock.Tick) error {
	f, err := p.source.Advance()
	if err != nil {
		return pkgerrors.Wrapf(err, "advance to frame %d", p.frames+1)
	}
	p.frames++
	p.last = t

	if p.snapshots != nil && p.snapshots.Wants(f.Seq) {
		p.snapshots.Offer(job.New(f.Seq, f.Value, f.Buffer()))
	}
	if t.WindowReset {
		p.log.Debugf("frame %d: %s of %d", f.Seq, t, t.Requested)
	}
	return p.display.Show(f, t)
}

// Summary is meaningful once Run has returned.
func (p *Player) Summary() Summary {
	s := Summary{
		Frames: p.frames,
		Clock:  p.clock.Stats(),
		Last:   p.last,
	}
	if p.snapshots != nil {
		s.Snapshots = p.snapshots.Saved()
	}
	return s
}
