// Package buffer provides fixed-size RGBA pixel surfaces whose backing memory
// is allocated once and never moves, so the address can be handed to a
// display without copying.
package buffer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	cfg "github.com/1F47E/go-framereel/pkg/config"
)

var (
	// ErrInvalidArgument is returned for negative counts.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDestroyed is returned when a destroyed buffer is written to.
	ErrDestroyed = errors.New("buffer destroyed")
)

// InvalidSizeError reports a non-positive frame dimension.
type InvalidSizeError struct {
	Width  int
	Height int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid frame size %dx%d: dimensions must be positive", e.Width, e.Height)
}

// Is lets errors.Is(err, ErrInvalidArgument) match size errors too.
func (e *InvalidSizeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Stride returns the row length in bytes for the given width, padded to a
// 32 byte boundary.
func Stride(width int) int {
	stride := width * cfg.SizePixel
	if rem := stride % cfg.SizeStrideAlign; rem != 0 {
		stride += cfg.SizeStrideAlign - rem
	}
	return stride
}

// Size returns the byte length of a buffer for the given dimensions.
func Size(width, height int) int {
	return Stride(width) * height
}

// Buffer is a pixel surface with a stable address. Only one goroutine may
// write to it at a time and nobody may read it during Fill.
type Buffer struct {
	id     uuid.UUID
	width  int
	height int
	stride int
	pix    []byte
}

// Allocate creates a standalone buffer with its own memory block.
func Allocate(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidSizeError{Width: width, Height: height}
	}
	return newBuffer(width, height, make([]byte, Size(width, height))), nil
}

// NewArena allocates count buffers carved out of a single contiguous block.
// Each buffer's slice is capped at its own length so appends can never spill
// into a neighbour.
func NewArena(width, height, count int) ([]*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidSizeError{Width: width, Height: height}
	}
	if count < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "arena count %d", count)
	}
	size := Size(width, height)
	block := make([]byte, size*count)
	bufs := make([]*Buffer, count)
	for i := range bufs {
		off := i * size
		bufs[i] = newBuffer(width, height, block[off:off+size:off+size])
	}
	return bufs, nil
}

func newBuffer(width, height int, pix []byte) *Buffer {
	return &Buffer{
		id:     uuid.New(),
		width:  width,
		height: height,
		stride: Stride(width),
		pix:    pix,
	}
}

func (b *Buffer) ID() uuid.UUID { return b.id }
func (b *Buffer) Width() int    { return b.width }
func (b *Buffer) Height() int   { return b.height }
func (b *Buffer) Stride() int   { return b.stride }
func (b *Buffer) Len() int      { return len(b.pix) }

// Destroyed reports whether the buffer memory has been dropped.
func (b *Buffer) Destroyed() bool { return b.pix == nil }

// Fill overwrites every byte of the surface with value.
func (b *Buffer) Fill(value byte) error {
	if b.pix == nil {
		return errors.Wrapf(ErrDestroyed, "fill %s", b.id)
	}
	fill(b.pix, value)
	return nil
}

// fill is a memset: seed one byte, then double the copied span.
func fill(p []byte, value byte) {
	if len(p) == 0 {
		return
	}
	p[0] = value
	for n := 1; n < len(p); n *= 2 {
		copy(p[n:], p[:n])
	}
}

// Address returns the start of the pixel memory, or 0 once destroyed.
// Callers must not keep it past Destroy.
func (b *Buffer) Address() uintptr {
	if len(b.pix) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b.pix[0]))
}

// Bytes returns the pixel memory itself, not a copy.
func (b *Buffer) Bytes() []byte {
	return b.pix
}

// Image wraps the pixel memory as an RGBA image without copying.
func (b *Buffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    b.pix,
		Stride: b.stride,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// Destroy drops the pixel memory. It is safe to call more than once; the
// pool is the only caller.
func (b *Buffer) Destroy() {
	b.pix = nil
}

func (b *Buffer) String() string {
	return fmt.Sprintf("buffer %s (%dx%d, %d bytes)", b.id, b.width, b.height, len(b.pix))
}
