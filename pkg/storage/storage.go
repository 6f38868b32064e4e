// All files related functions
package storage

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
)

const framePrefix = "frame_"

func CreateFramesDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "create frames dir %s", dir)
	}
	return nil
}

// FramePath names frame seq inside dir; the zero padding keeps lexical
// order equal to playback order.
func FramePath(dir string, seq uint64, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%08d.%s", framePrefix, seq, format))
}

// SaveFrame encodes img as png, qoi or ppm.
func SaveFrame(path string, img image.Image) error {
	if err := CreateFramesDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create frame file")
	}
	if err := encode(f, path, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

func encode(w io.Writer, path string, img image.Image) error {
	switch ext := strings.TrimPrefix(filepath.Ext(path), "."); ext {
	case "png":
		return png.Encode(w, img)
	case "qoi":
		return qoi.Encode(w, img)
	case "ppm":
		return ppm.Encode(w, img)
	default:
		return errors.Errorf("unknown frame format %q", ext)
	}
}

func FrameRead(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.TrimPrefix(filepath.Ext(path), "."); ext {
	case "png":
		return png.Decode(f)
	case "qoi":
		return qoi.Decode(f)
	case "ppm":
		return ppm.Decode(f)
	default:
		return nil, errors.Errorf("unknown frame format %q", ext)
	}
}

// ScanFrames lists saved frames in dir in playback order.
func ScanFrames(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	list := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasPrefix(file.Name(), framePrefix) {
			list = append(list, filepath.Join(dir, file.Name()))
		}
	}
	sort.Strings(list)
	return list, nil
}
