package source

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"github.com/1F47E/go-framereel/pkg/buffer"
	"github.com/1F47E/go-framereel/pkg/pool"
)

func newSource(t *testing.T, capacity int) (*Synthetic, *pool.Pool) {
	t.Helper()
	p, err := pool.New(32, 24, capacity)
	test.That(t, err, test.ShouldBeNil)
	return New(p), p
}

func TestAdvanceValues(t *testing.T) {
	s, p := newSource(t, 2)
	defer s.Close()

	test.That(t, s.Current(), test.ShouldBeNil)

	for n := 1; n <= 600; n++ {
		f, err := s.Advance()
		test.That(t, err, test.ShouldBeNil)
		want := byte((n - 1) % 256)
		test.That(t, f.Value, test.ShouldEqual, want)
		test.That(t, f.Seq, test.ShouldEqual, uint64(n))
		test.That(t, f.Buffer().Bytes()[0], test.ShouldEqual, want)
		test.That(t, f.Buffer().Bytes()[f.Buffer().Len()-1], test.ShouldEqual, want)
		test.That(t, s.Current(), test.ShouldEqual, f)
		test.That(t, p.InUse(), test.ShouldEqual, 1)
	}
}

func TestAdvanceWithSingleBuffer(t *testing.T) {
	// releasing before acquiring means one buffer is enough
	s, _ := newSource(t, 1)
	defer s.Close()

	first, err := s.Advance()
	test.That(t, err, test.ShouldBeNil)
	second, err := s.Advance()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Buffer(), test.ShouldEqual, first.Buffer())
	test.That(t, second.Value, test.ShouldEqual, byte(1))
}

type countingPool struct {
	*pool.Pool
	live map[*buffer.Buffer]bool
	t    *testing.T
}

func (c *countingPool) Acquire() (*buffer.Buffer, error) {
	b, err := c.Pool.Acquire()
	if err == nil {
		if c.live[b] {
			c.t.Fatalf("buffer %s handed out twice", b.ID())
		}
		c.live[b] = true
	}
	return b, err
}

func (c *countingPool) Release(b *buffer.Buffer) error {
	delete(c.live, b)
	return c.Pool.Release(b)
}

func TestNoSharedBuffers(t *testing.T) {
	p, err := pool.New(4, 4, 3)
	test.That(t, err, test.ShouldBeNil)
	cp := &countingPool{Pool: p, live: map[*buffer.Buffer]bool{}, t: t}
	s := New(cp)
	defer s.Close()

	for i := 0; i < 100; i++ {
		_, err := s.Advance()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cp.live, test.ShouldHaveLength, 1)
	}
}

func TestAdvanceExhausted(t *testing.T) {
	s, _ := newSource(t, 0)
	defer s.Close()

	_, err := s.Advance()
	test.That(t, errors.Is(err, pool.ErrPoolExhausted), test.ShouldBeTrue)
	test.That(t, s.Current(), test.ShouldBeNil)
}

func TestReset(t *testing.T) {
	s, _ := newSource(t, 2)
	defer s.Close()

	for i := 0; i < 3; i++ {
		_, err := s.Advance()
		test.That(t, err, test.ShouldBeNil)
	}
	s.Reset()
	f, err := s.Advance()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f.Value, test.ShouldEqual, byte(3))
}

func TestClose(t *testing.T) {
	s, p := newSource(t, 2)

	f, err := s.Advance()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, s.Close(), test.ShouldBeNil)
	test.That(t, s.Close(), test.ShouldBeNil)
	test.That(t, f.Buffer().Destroyed(), test.ShouldBeTrue)
	test.That(t, p.InUse(), test.ShouldEqual, 0)
	test.That(t, s.Current(), test.ShouldBeNil)

	_, err = s.Advance()
	test.That(t, errors.Is(err, ErrEnd), test.ShouldBeTrue)
}
