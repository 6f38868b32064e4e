package job

import (
	"fmt"
	"image"

	"github.com/1F47E/go-framereel/pkg/buffer"
)

// job for the snapshot worker
type Snapshot struct {
	Seq    uint64
	Value  byte
	Width  int
	Height int
	Stride int
	Pix    []byte
}

// New copies the buffer pixels; the buffer goes back to the pool on the next
// tick and will be painted over.
func New(seq uint64, value byte, b *buffer.Buffer) Snapshot {
	j := Snapshot{
		Seq:    seq,
		Value:  value,
		Width:  b.Width(),
		Height: b.Height(),
		Stride: b.Stride(),
	}
	j.Update(b.Bytes())
	return j
}

func (j *Snapshot) Update(pix []byte) {
	// copy buffer to avoid overwriting of the same buffer
	cp := make([]byte, len(pix))
	_ = copy(cp, pix)
	// the fourth byte is padding in the frame, make it opaque for encoders
	for i := 3; i < len(cp); i += 4 {
		cp[i] = 0xff
	}
	j.Pix = cp
}

func (j *Snapshot) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    j.Pix,
		Stride: j.Stride,
		Rect:   image.Rect(0, 0, j.Width, j.Height),
	}
}

func (j *Snapshot) Print() string {
	return fmt.Sprintf("Snapshot: Seq: %d, Value: %d, Size: %dx%d, Buffer len: %d", j.Seq, j.Value, j.Width, j.Height, len(j.Pix))
}
