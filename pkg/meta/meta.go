// Package meta reads the container metadata playback needs: frame size,
// frame rate and duration. It shells out to ffprobe and accepts only files
// carrying at least one video and one audio stream.
package meta

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	cfg "github.com/1F47E/go-framereel/pkg/config"
	"github.com/1F47E/go-framereel/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Metadata is read once when a file is opened and never changes.
type Metadata struct {
	Path       string
	FrameSize  Size
	FrameRate  int
	Duration   time.Duration
	VideoCodec string
	AudioCodec string
}

// New builds metadata for a clip that has no file behind it.
func New(width, height, rate int, duration time.Duration) Metadata {
	return Metadata{
		FrameSize: Size{Width: width, Height: height},
		FrameRate: rate,
		Duration:  duration,
	}
}

// Frames returns the number of frames in the clip, 0 when the duration is
// unknown.
func (m Metadata) Frames() int {
	return int(m.Duration.Seconds() * float64(m.FrameRate))
}

func (m Metadata) Print() string {
	return fmt.Sprintf("Size: %s, Rate: %d fps, Duration: %s", m.FrameSize, m.FrameRate, m.Duration)
}

// UnsupportedFormatError is returned when a file cannot be probed or lacks
// the required streams.
type UnsupportedFormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	msg := fmt.Sprintf("unsupported video format %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}

// ProbeFunc returns ffprobe's JSON report for a file.
type ProbeFunc func(path string) (string, error)

func ffprobe(path string) (string, error) {
	return ffmpeg.ProbeWithTimeout(path, cfg.ProbeTimeout, ffmpeg.KwArgs{})
}

// Reader turns probe reports into Metadata.
type Reader struct {
	probe ProbeFunc
}

func NewReader(probe ProbeFunc) *Reader {
	if probe == nil {
		probe = ffprobe
	}
	return &Reader{probe: probe}
}

// Read probes the file at path with ffprobe.
func Read(path string) (Metadata, error) {
	return NewReader(nil).Read(path)
}

func (r *Reader) Read(path string) (Metadata, error) {
	log := logger.Scope("meta reader")

	if _, err := os.Stat(path); err != nil {
		return Metadata{}, &UnsupportedFormatError{Path: path, Reason: "file not found", Err: err}
	}

	report, err := r.probe(path)
	if err != nil {
		return Metadata{}, &UnsupportedFormatError{Path: path, Reason: "probe failed", Err: err}
	}
	log.Debugf("probe report: %d bytes", len(report))

	m, err := Parse([]byte(report))
	if err != nil {
		return Metadata{}, &UnsupportedFormatError{Path: path, Reason: "bad probe report", Err: err}
	}
	m.Path = path
	if m.VideoCodec == "" || m.AudioCodec == "" {
		return Metadata{}, &UnsupportedFormatError{Path: path, Reason: "a video and an audio stream are required"}
	}
	if m.FrameSize.Width <= 0 || m.FrameSize.Height <= 0 {
		return Metadata{}, &UnsupportedFormatError{Path: path, Reason: "missing frame size"}
	}
	log.Debug(m.Print())
	return m, nil
}

type probeReport struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Parse decodes an ffprobe JSON report. The first video and audio streams
// win. Without a usable frame rate the default of 30 fps is assumed.
func Parse(report []byte) (Metadata, error) {
	var r probeReport
	if err := json.Unmarshal(report, &r); err != nil {
		return Metadata{}, errors.Wrap(err, "decode probe report")
	}

	m := Metadata{FrameRate: cfg.FrameRate}
	for _, s := range r.Streams {
		switch s.CodecType {
		case "video":
			if m.VideoCodec != "" {
				continue
			}
			m.VideoCodec = s.CodecName
			m.FrameSize = Size{Width: s.Width, Height: s.Height}
			if rate := parseRate(s.AvgFrameRate); rate > 0 {
				m.FrameRate = rate
			} else if rate := parseRate(s.RFrameRate); rate > 0 {
				m.FrameRate = rate
			}
		case "audio":
			if m.AudioCodec == "" {
				m.AudioCodec = s.CodecName
			}
		}
	}

	if r.Format.Duration != "" {
		secs, err := strconv.ParseFloat(r.Format.Duration, 64)
		if err != nil {
			return Metadata{}, errors.Wrapf(err, "parse duration %q", r.Format.Duration)
		}
		m.Duration = time.Duration(secs * float64(time.Second))
	}
	return m, nil
}

// parseRate turns "30000/1001" or "25" into a whole frame rate, rounded.
func parseRate(s string) int {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d := 1.0
	if found {
		if d, err = strconv.ParseFloat(den, 64); err != nil || d == 0 {
			return 0
		}
	}
	return int(math.Round(n / d))
}

// ParseSize reads "640x480".
func ParseSize(s string) (Size, error) {
	w, h, found := strings.Cut(s, "x")
	if !found {
		return Size{}, errors.Errorf("invalid size format: %s", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, errors.Errorf("invalid width: %s", w)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, errors.Errorf("invalid height: %s", h)
	}
	return Size{Width: width, Height: height}, nil
}

// ParseSynthetic reads "640x480@30" into metadata for a fileless clip.
func ParseSynthetic(s string) (Metadata, error) {
	size, rate, found := strings.Cut(s, "@")
	sz, err := ParseSize(size)
	if err != nil {
		return Metadata{}, err
	}
	fps := cfg.FrameRate
	if found {
		if fps, err = strconv.Atoi(rate); err != nil || fps <= 0 {
			return Metadata{}, errors.Errorf("invalid frame rate: %s", rate)
		}
	}
	return New(sz.Width, sz.Height, fps, 0), nil
}
