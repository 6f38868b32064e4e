package meta

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

const reportMP4 = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720,
     "r_frame_rate": "30000/1001", "avg_frame_rate": "30000/1001"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000"}
  ],
  "format": {"filename": "clip.mp4", "duration": "12.500000"}
}`

const reportVideoOnly = `{
  "streams": [
    {"codec_name": "vp9", "codec_type": "video", "width": 640, "height": 360, "avg_frame_rate": "25/1"}
  ],
  "format": {"duration": "3.0"}
}`

func TestParseRate(t *testing.T) {
	testCases := []struct {
		name string
		rate string
		want int
	}{
		{name: "ntsc", rate: "30000/1001", want: 30},
		{name: "pal", rate: "25/1", want: 25},
		{name: "film", rate: "24000/1001", want: 24},
		{name: "plain", rate: "60", want: 60},
		{name: "unknown", rate: "0/0", want: 0},
		{name: "empty", rate: "", want: 0},
		{name: "garbage", rate: "abc/1", want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, parseRate(tc.rate), test.ShouldEqual, tc.want)
		})
	}
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(reportMP4))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FrameSize, test.ShouldResemble, Size{Width: 1280, Height: 720})
	test.That(t, m.FrameRate, test.ShouldEqual, 30)
	test.That(t, m.Duration, test.ShouldEqual, 12500*time.Millisecond)
	test.That(t, m.VideoCodec, test.ShouldEqual, "h264")
	test.That(t, m.AudioCodec, test.ShouldEqual, "aac")
	test.That(t, m.Frames(), test.ShouldEqual, 375)

	_, err = Parse([]byte("{"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Parse([]byte(`{"format": {"duration": "soon"}}`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestParseDefaultsRate(t *testing.T) {
	m, err := Parse([]byte(`{"streams": [{"codec_type": "video", "codec_name": "mjpeg", "width": 2, "height": 2, "avg_frame_rate": "0/0"}]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FrameRate, test.ShouldEqual, 30)
	test.That(t, m.Duration, test.ShouldEqual, time.Duration(0))
}

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	test.That(t, os.WriteFile(path, []byte("not really a video"), 0o644), test.ShouldBeNil)
	return path
}

func TestRead(t *testing.T) {
	path := tempFile(t)

	t.Run("ok", func(t *testing.T) {
		r := NewReader(func(string) (string, error) { return reportMP4, nil })
		m, err := r.Read(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.Path, test.ShouldEqual, path)
		test.That(t, m.FrameSize.String(), test.ShouldEqual, "1280x720")
	})

	testCases := []struct {
		name   string
		path   string
		probe  ProbeFunc
		reason string
	}{
		{
			name:   "missing file",
			path:   filepath.Join(t.TempDir(), "nope.mp4"),
			probe:  func(string) (string, error) { return reportMP4, nil },
			reason: "file not found",
		},
		{
			name:   "probe error",
			path:   path,
			probe:  func(string) (string, error) { return "", errors.New("exit status 1") },
			reason: "probe failed",
		},
		{
			name:   "garbage",
			path:   path,
			probe:  func(string) (string, error) { return "<html>", nil },
			reason: "bad probe report",
		},
		{
			name:   "no audio",
			path:   path,
			probe:  func(string) (string, error) { return reportVideoOnly, nil },
			reason: "a video and an audio stream are required",
		},
		{
			name: "no size",
			path: path,
			probe: func(string) (string, error) {
				return `{"streams": [{"codec_type": "video", "codec_name": "h264"}, {"codec_type": "audio", "codec_name": "aac"}]}`, nil
			},
			reason: "missing frame size",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(tc.probe).Read(tc.path)
			var unsupported *UnsupportedFormatError
			test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
			test.That(t, unsupported.Reason, test.ShouldEqual, tc.reason)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.reason)
		})
	}

	_, err := NewReader(nil).Read(filepath.Join(t.TempDir(), "gone.mp4"))
	test.That(t, errors.Is(err, fs.ErrNotExist), test.ShouldBeTrue)
}

func TestParseSynthetic(t *testing.T) {
	m, err := ParseSynthetic("32x24@25")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FrameSize, test.ShouldResemble, Size{Width: 32, Height: 24})
	test.That(t, m.FrameRate, test.ShouldEqual, 25)

	m, err = ParseSynthetic("640x480")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.FrameRate, test.ShouldEqual, 30)

	for _, bad := range []string{"640", "ax480", "640xb", "640x480@0", "640x480@fast"} {
		_, err := ParseSynthetic(bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
}
