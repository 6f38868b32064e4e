// Package video generates sample clips with ffmpeg.
package video

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/1F47E/go-framereel/pkg/logger"
)

var log = logger.Scope("video")

type Sample struct {
	Path    string
	Width   int
	Height  int
	Rate    int
	Seconds int
}

// Args returns the ffmpeg arguments for a test pattern with a sine tone,
// so that the clip carries both a video and an audio stream.
func (s Sample) Args() []string {
	v := ffmpeg.Input(
		fmt.Sprintf("testsrc=size=%dx%d:rate=%d:duration=%d", s.Width, s.Height, s.Rate, s.Seconds),
		ffmpeg.KwArgs{"f": "lavfi"})
	a := ffmpeg.Input(
		fmt.Sprintf("sine=frequency=440:duration=%d", s.Seconds),
		ffmpeg.KwArgs{"f": "lavfi"})
	return ffmpeg.Output([]*ffmpeg.Stream{v, a}, s.Path, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"shortest": "",
	}).OverWriteOutput().GetArgs()
}

func (s Sample) validate() error {
	if s.Path == "" {
		return errors.New("output path is required")
	}
	if s.Width <= 0 || s.Height <= 0 || s.Rate <= 0 || s.Seconds <= 0 {
		return errors.Errorf("invalid sample %dx%d@%d for %ds", s.Width, s.Height, s.Rate, s.Seconds)
	}
	return nil
}

// Generate calls ffmpeg to write the sample clip.
func Generate(ctx context.Context, s Sample) error {
	if err := s.validate(); err != nil {
		return err
	}
	args := s.Args()
	log.Debugf("Running ffmpeg command: ffmpeg %s", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "ffmpeg: %s", lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return lines[len(lines)-1]
}
