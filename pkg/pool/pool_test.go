package pool

import (
	"errors"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/1F47E/go-framereel/pkg/buffer"
)

func checkPartition(t *testing.T, p *Pool, capacity int) {
	t.Helper()
	test.That(t, p.Free()+p.InUse(), test.ShouldEqual, capacity)
	test.That(t, p.Capacity(), test.ShouldEqual, capacity)
}

func TestNew(t *testing.T) {
	for _, c := range []int{0, 1, 2, 16} {
		p, err := New(32, 24, c)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p.Free(), test.ShouldEqual, c)
		test.That(t, p.InUse(), test.ShouldEqual, 0)
		test.That(t, p.Capacity(), test.ShouldEqual, c)
		test.That(t, p.Close(), test.ShouldBeNil)
	}

	_, err := New(32, 24, -1)
	test.That(t, errors.Is(err, buffer.ErrInvalidArgument), test.ShouldBeTrue)

	_, err = New(0, 24, 4)
	var sizeErr *buffer.InvalidSizeError
	test.That(t, errors.As(err, &sizeErr), test.ShouldBeTrue)
}

func TestExhaustion(t *testing.T) {
	p, err := New(32, 24, 16)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	held := make([]*buffer.Buffer, 0, 16)
	for i := 0; i < 16; i++ {
		b, err := p.Acquire()
		test.That(t, err, test.ShouldBeNil)
		held = append(held, b)
		checkPartition(t, p, 16)
	}

	_, err = p.Acquire()
	test.That(t, errors.Is(err, ErrPoolExhausted), test.ShouldBeTrue)
	checkPartition(t, p, 16)

	test.That(t, p.Release(held[5]), test.ShouldBeNil)
	b, err := p.Acquire()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b, test.ShouldEqual, held[5])
	test.That(t, p.Free(), test.ShouldEqual, 0)
	test.That(t, p.InUse(), test.ShouldEqual, 16)
}

func TestExclusiveOwnership(t *testing.T) {
	p, err := New(8, 8, 4)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	seen := map[*buffer.Buffer]bool{}
	for i := 0; i < 4; i++ {
		b, err := p.Acquire()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, seen[b], test.ShouldBeFalse)
		seen[b] = true
	}
}

func TestRelease(t *testing.T) {
	p, err := New(8, 8, 2)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	b, err := p.Acquire()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Fill(200), test.ShouldBeNil)
	test.That(t, p.Release(b), test.ShouldBeNil)

	t.Run("double release", func(t *testing.T) {
		err := p.Release(b)
		test.That(t, errors.Is(err, ErrUnknownBuffer), test.ShouldBeTrue)
		checkPartition(t, p, 2)
	})

	t.Run("foreign buffer", func(t *testing.T) {
		foreign, err := buffer.Allocate(8, 8)
		test.That(t, err, test.ShouldBeNil)
		err = p.Release(foreign)
		test.That(t, errors.Is(err, ErrUnknownBuffer), test.ShouldBeTrue)
		checkPartition(t, p, 2)
	})

	t.Run("nil", func(t *testing.T) {
		test.That(t, errors.Is(p.Release(nil), ErrUnknownBuffer), test.ShouldBeTrue)
	})

	t.Run("stale pixels", func(t *testing.T) {
		again, err := p.Acquire()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again, test.ShouldEqual, b)
		test.That(t, again.Bytes()[0], test.ShouldEqual, byte(200))
		test.That(t, p.Release(again), test.ShouldBeNil)
	})
}

func TestRandomSequenceKeepsPartition(t *testing.T) {
	const capacity = 6
	p, err := New(4, 4, capacity)
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	rnd := rand.New(rand.NewSource(1))
	var held []*buffer.Buffer
	for i := 0; i < 1000; i++ {
		if rnd.Intn(2) == 0 {
			b, err := p.Acquire()
			if len(held) == capacity {
				test.That(t, errors.Is(err, ErrPoolExhausted), test.ShouldBeTrue)
			} else {
				test.That(t, err, test.ShouldBeNil)
				held = append(held, b)
			}
		} else if len(held) > 0 {
			k := rnd.Intn(len(held))
			test.That(t, p.Release(held[k]), test.ShouldBeNil)
			held = append(held[:k], held[k+1:]...)
		}
		checkPartition(t, p, capacity)
		test.That(t, p.InUse(), test.ShouldEqual, len(held))
	}
}

func TestClose(t *testing.T) {
	p, err := New(8, 8, 3)
	test.That(t, err, test.ShouldBeNil)

	b1, err := p.Acquire()
	test.That(t, err, test.ShouldBeNil)
	b2, err := p.Acquire()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, p.Close(), test.ShouldBeNil)
	test.That(t, b1.Destroyed(), test.ShouldBeTrue)
	test.That(t, b2.Destroyed(), test.ShouldBeTrue)
	test.That(t, p.InUse(), test.ShouldEqual, 0)
	test.That(t, p.Free(), test.ShouldEqual, 0)

	test.That(t, p.Close(), test.ShouldBeNil)

	_, err = p.Acquire()
	test.That(t, errors.Is(err, ErrPoolClosed), test.ShouldBeTrue)
	test.That(t, errors.Is(p.Release(b1), ErrUnknownBuffer), test.ShouldBeTrue)
}

func TestGrowth(t *testing.T) {
	p, err := New(8, 8, 2, WithGrowth(4))
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()
	test.That(t, p.Ceiling(), test.ShouldEqual, 4)

	for i := 0; i < 4; i++ {
		_, err := p.Acquire()
		test.That(t, err, test.ShouldBeNil)
		checkPartition(t, p, max(2, i+1))
	}
	test.That(t, p.Capacity(), test.ShouldEqual, 4)

	_, err = p.Acquire()
	test.That(t, errors.Is(err, ErrPoolExhausted), test.ShouldBeTrue)
	checkPartition(t, p, 4)
}

func TestGrowthBelowCapacityIsDisabled(t *testing.T) {
	p, err := New(8, 8, 1, WithGrowth(1))
	test.That(t, err, test.ShouldBeNil)
	defer p.Close()

	_, err = p.Acquire()
	test.That(t, err, test.ShouldBeNil)
	_, err = p.Acquire()
	test.That(t, errors.Is(err, ErrPoolExhausted), test.ShouldBeTrue)
}
