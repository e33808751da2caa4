// Package images - Named capture resolutions accepted by the configuration.
package images

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// AspectRatio represents a camera aspect ratio by name (e.g., "16:9").
type AspectRatio string

const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
)

// Resolution is a named capture size.
type Resolution struct {
	Name        string
	AspectRatio AspectRatio
	Width       int
	Height      int
}

// MegaPixels returns the pixel count in megapixels rounded to two decimals
// (e.g., 2.07 for 1080p).
func (r Resolution) MegaPixels() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Width, r.Height, r.MegaPixels())
}

// resolutions is keyed by lower-case name.
var resolutions = map[string]Resolution{
	"360p":  {Name: "360p", AspectRatio: AspectRatio169, Width: 640, Height: 360},
	"vga":   {Name: "vga", AspectRatio: AspectRatio43, Width: 640, Height: 480},
	"480p":  {Name: "480p", AspectRatio: AspectRatio169, Width: 854, Height: 480},
	"540p":  {Name: "540p", AspectRatio: AspectRatio169, Width: 960, Height: 540},
	"720p":  {Name: "720p", AspectRatio: AspectRatio169, Width: 1280, Height: 720},
	"1080p": {Name: "1080p", AspectRatio: AspectRatio169, Width: 1920, Height: 1080},
	"1440p": {Name: "1440p", AspectRatio: AspectRatio169, Width: 2560, Height: 1440},
	"4k":    {Name: "4k", AspectRatio: AspectRatio169, Width: 3840, Height: 2160},
}

// Resolutions returns every named resolution ordered by pixel count.
func Resolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Width*all[i].Height < all[j].Width*all[j].Height
	})
	return all
}

// ResolutionByName looks up a resolution, ignoring case.
func ResolutionByName(name string) (Resolution, bool) {
	res, ok := resolutions[strings.ToLower(strings.TrimSpace(name))]
	return res, ok
}

// HighestResolutionUnder returns the largest named resolution that fits
// within width x height.
//
// Arguments:
//   - width: The maximum width.
//   - height: The maximum height.
//
// Returns:
//   - Resolution: The largest resolution that fits.
//   - bool: True if one was found.
func HighestResolutionUnder(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range Resolutions() {
		if res.Width <= width && res.Height <= height {
			highest = res
			found = true
		}
	}
	return highest, found
}
