package video

import (
	"context"
	"testing"

	"go.viam.com/test"
)

func TestSampleArgs(t *testing.T) {
	args := Sample{Path: "out.mp4", Width: 320, Height: 240, Rate: 25, Seconds: 2}.Args()

	test.That(t, args, test.ShouldContain, "testsrc=size=320x240:rate=25:duration=2")
	test.That(t, args, test.ShouldContain, "sine=frequency=440:duration=2")
	test.That(t, args, test.ShouldContain, "libx264")
	test.That(t, args, test.ShouldContain, "aac")
	test.That(t, args, test.ShouldContain, "-y")
	test.That(t, args, test.ShouldContain, "-shortest")
	test.That(t, args, test.ShouldContain, "out.mp4")
}

func TestGenerateValidates(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
	}{
		{"no path", Sample{Width: 1, Height: 1, Rate: 1, Seconds: 1}},
		{"zero size", Sample{Path: "x.mp4", Rate: 30, Seconds: 1}},
		{"zero rate", Sample{Path: "x.mp4", Width: 1, Height: 1, Seconds: 1}},
		{"zero length", Sample{Path: "x.mp4", Width: 1, Height: 1, Rate: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.That(t, Generate(context.Background(), tt.sample), test.ShouldNotBeNil)
		})
	}
}

func TestLastLine(t *testing.T) {
	test.That(t, lastLine([]byte("a\nb\nno such filter\n")), test.ShouldEqual, "no such filter")
	test.That(t, lastLine(nil), test.ShouldEqual, "")
}
