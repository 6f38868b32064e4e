//go:build linux

package clock

import (
	"encoding/binary"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/1F47E/go-framereel/pkg/logger"
)

// OSTimer is a PeriodicTimer on a Linux timerfd. The descriptor is
// non-blocking, so reads park in the runtime poller and Close wakes them.
type OSTimer struct {
	mu   sync.Mutex
	fd   int // kept apart from file: File.Fd would switch it back to blocking
	file *os.File
	done chan struct{}
}

func NewOSTimer() PeriodicTimer {
	return &OSTimer{}
}

func (t *OSTimer) Start(interval time.Duration, onTick func()) error {
	if interval <= 0 {
		return &TimerError{Op: "start", Err: unix.EINVAL}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file != nil {
		return &TimerError{Op: "start", Err: unix.EBUSY}
	}

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return &TimerError{Op: "create", Err: err}
	}
	ts := unix.NsecToTimespec(int64(interval))
	spec := unix.ItimerSpec{Interval: ts, Value: ts}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		_ = unix.Close(fd)
		return &TimerError{Op: "arm", Err: err}
	}

	t.fd = fd
	t.file = os.NewFile(uintptr(fd), "timerfd")
	t.done = make(chan struct{})
	go t.loop(t.file, t.done, onTick)
	return nil
}

// loop fires once per read; expirations that piled up meanwhile are folded
// into that single call.
func (t *OSTimer) loop(f *os.File, done chan struct{}, onTick func()) {
	defer close(done)
	log := logger.Scope("timerfd")
	var buf [8]byte
	for {
		if _, err := f.Read(buf[:]); err != nil {
			log.Debugf("read loop exit: %v", err)
			return
		}
		if n := binary.NativeEndian.Uint64(buf[:]); n > 1 {
			log.Debugf("folded %d expirations into one tick", n)
		}
		onTick()
	}
}

func (t *OSTimer) Stop() error {
	t.mu.Lock()
	f, fd := t.file, t.fd
	if f == nil {
		t.mu.Unlock()
		return nil
	}
	done := t.done
	t.file = nil
	t.mu.Unlock()

	var disarmErr error
	if err := unix.TimerfdSettime(fd, 0, &unix.ItimerSpec{}, nil); err != nil {
		disarmErr = &TimerError{Op: "disarm", Err: err}
	}
	closeErr := f.Close()
	<-done
	if disarmErr != nil {
		return disarmErr
	}
	if closeErr != nil {
		return &TimerError{Op: "close", Err: closeErr}
	}
	return nil
}
