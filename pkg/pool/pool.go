// Package pool hands out pre-allocated frame buffers under a single-owner
// discipline: every buffer is either free or held by exactly one caller.
package pool

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/1F47E/go-framereel/pkg/buffer"
	"github.com/1F47E/go-framereel/pkg/logger"
)

var (
	ErrPoolExhausted = errors.New("no more space in the pool")
	ErrUnknownBuffer = errors.New("buffer is not in use by this pool")
	ErrPoolClosed    = errors.New("pool is closed")
)

type Option func(*Pool)

// WithGrowth lets the pool allocate one more buffer on demand while its
// capacity is below ceiling. A ceiling at or below the initial capacity
// disables growth.
func WithGrowth(ceiling int) Option {
	return func(p *Pool) { p.ceiling = ceiling }
}

func WithLogger(log *logrus.Entry) Option {
	return func(p *Pool) { p.log = log }
}

// Pool is a bounded set of equally sized buffers. It is safe for concurrent
// use, though playback only touches it from the consumer goroutine.
type Pool struct {
	mu      sync.Mutex
	width   int
	height  int
	ceiling int
	log     *logrus.Entry

	all    map[*buffer.Buffer]struct{}
	free   []*buffer.Buffer // LIFO, the last released buffer is reused first
	inUse  map[*buffer.Buffer]struct{}
	closed bool
}

// New pre-allocates capacity buffers of width x height in one arena.
func New(width, height, capacity int, opts ...Option) (*Pool, error) {
	if capacity < 0 {
		return nil, errors.Wrapf(buffer.ErrInvalidArgument, "pool capacity %d", capacity)
	}
	bufs, err := buffer.NewArena(width, height, capacity)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		width:  width,
		height: height,
		log:    logger.Scope("pool"),
		all:    make(map[*buffer.Buffer]struct{}, capacity),
		free:   make([]*buffer.Buffer, 0, capacity),
		inUse:  make(map[*buffer.Buffer]struct{}, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, b := range bufs {
		p.all[b] = struct{}{}
		p.free = append(p.free, b)
	}
	p.log.Debugf("allocated %d buffers of %dx%d (%d bytes each)", capacity, width, height, buffer.Size(width, height))
	return p, nil
}

// Acquire checks a buffer out. It never blocks: with no free buffer and no
// room to grow it fails with ErrPoolExhausted.
func (p *Pool) Acquire() (*buffer.Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}

	var b *buffer.Buffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		if len(p.all) >= p.ceiling {
			return nil, errors.Wrapf(ErrPoolExhausted, "%d buffers in use", len(p.inUse))
		}
		var err error
		b, err = buffer.Allocate(p.width, p.height)
		if err != nil {
			return nil, err
		}
		p.all[b] = struct{}{}
		p.log.Debugf("grew to %d buffers (ceiling %d)", len(p.all), p.ceiling)
	}
	p.inUse[b] = struct{}{}
	return b, nil
}

// Release gives a checked out buffer back. The pixels are left as they are.
func (p *Pool) Release(b *buffer.Buffer) error {
	if b == nil {
		return errors.Wrap(ErrUnknownBuffer, "nil buffer")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[b]; !ok {
		if _, owned := p.all[b]; owned {
			return errors.Wrapf(ErrUnknownBuffer, "%s is already free", b.ID())
		}
		return errors.Wrapf(ErrUnknownBuffer, "%s does not belong to this pool", b.ID())
	}
	delete(p.inUse, b)
	p.free = append(p.free, b)
	return nil
}

// Close forces every checked out buffer back and destroys all of them.
// Calling it again is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if n := len(p.inUse); n > 0 {
		p.log.Debugf("reclaiming %d buffers still in use", n)
	}
	for b := range p.inUse {
		delete(p.inUse, b)
		p.free = append(p.free, b)
	}
	for _, b := range p.free {
		b.Destroy()
	}
	p.log.Debugf("destroyed %d buffers", len(p.free))
	p.free = nil
	p.all = nil
	return nil
}

// Free returns the number of buffers ready to be acquired.
func (p *Pool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// InUse returns the number of checked out buffers.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}

// Capacity returns the number of buffers the pool currently owns.
func (p *Pool) Capacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// Ceiling returns the most buffers the pool may ever own.
func (p *Pool) Ceiling() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ceiling < len(p.all) {
		return len(p.all)
	}
	return p.ceiling
}

func (p *Pool) FrameSize() (int, int) {
	return p.width, p.height
}
