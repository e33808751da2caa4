package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-speedcam/images"
	"github.com/pkg/errors"
)

// FramePrefix is the file name prefix of an image sequence: frame-<n>.<ext>.
const FramePrefix = "frame-"

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the frame number of the image file.
	Frame int
	// Format is the encoding inferred from the extension.
	Format images.ImageFormat
}

// LoadDirectoryImageFiles reads all frame-<n> image files from a directory,
// ordered by frame number. Files with other extensions are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails or a supported file has no frame number.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read frame directory %s", dir)
	}

	var frames []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		format, ok := images.FormatFromPath(file.Name())
		if !ok {
			continue
		}

		ext := filepath.Ext(file.Name())
		frame, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSuffix(file.Name(), ext), FramePrefix))
		if err != nil {
			return nil, errors.Wrapf(err, "frame number missing from %s", file.Name())
		}

		imgPath := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(imgPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", imgPath)
		}
		frames = append(frames, ImageFile{
			Path:   imgPath,
			Data:   data,
			Frame:  frame,
			Format: format,
		})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Frame < frames[j].Frame
	})

	return frames, nil
}
