// Package source produces frames on demand. Synthetic stands in for a real
// decoder: every frame is a solid gray whose value cycles through 0..255.
package source

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/1F47E/go-framereel/pkg/buffer"
	"github.com/1F47E/go-framereel/pkg/logger"
)

// ErrEnd marks the end of a finite stream. Synthetic never returns it; a
// decoder backed source would return it once the container is drained.
var ErrEnd = errors.New("end of stream")

// Pool is the part of pool.Pool a source needs.
type Pool interface {
	Acquire() (*buffer.Buffer, error)
	Release(*buffer.Buffer) error
	Close() error
}

// Frame is a checked out buffer with content painted into it.
type Frame struct {
	Seq   uint64
	Value byte
	buf   *buffer.Buffer
}

func (f *Frame) Buffer() *buffer.Buffer { return f.buf }

func (f *Frame) String() string {
	return fmt.Sprintf("frame #%d value=%d %s", f.Seq, f.Value, f.buf.ID())
}

// Synthetic is a lazy, forward only, endless frame sequence.
// It is not safe for concurrent use.
type Synthetic struct {
	pool    Pool
	color   int
	seq     uint64
	current *Frame
	closed  bool
	log     *logrus.Entry
}

func New(pool Pool) *Synthetic {
	return &Synthetic{
		pool: pool,
		log:  logger.Scope("source"),
	}
}

// Advance releases the current frame, then acquires, paints and returns the
// next one. A single consumer therefore never holds more than one buffer.
func (s *Synthetic) Advance() (*Frame, error) {
	if s.closed {
		return nil, ErrEnd
	}
	if s.current != nil {
		if err := s.pool.Release(s.current.buf); err != nil {
			return nil, errors.Wrap(err, "release previous frame")
		}
		s.current = nil
	}

	buf, err := s.pool.Acquire()
	if err != nil {
		return nil, errors.Wrap(err, "acquire frame buffer")
	}
	value := byte(s.color)
	if err := buf.Fill(value); err != nil {
		_ = s.pool.Release(buf)
		return nil, err
	}
	s.color = (s.color + 1) % 256
	s.seq++

	s.current = &Frame{Seq: s.seq, Value: value, buf: buf}
	return s.current, nil
}

// Current returns the last produced frame, or nil before the first Advance.
func (s *Synthetic) Current() *Frame {
	return s.current
}

// Reset does nothing; the sequence cannot be rewound.
func (s *Synthetic) Reset() {
	s.log.Debug("reset is not supported, ignoring")
}

// Close tears down the pool, reclaiming the current frame's buffer.
func (s *Synthetic) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.current = nil
	return s.pool.Close()
}
