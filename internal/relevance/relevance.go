// Package relevance implements the pure geometric filter that decides
// whether a focused window is worth a capture, grounded on
// active_window_likely_relevant from the original implementation's
// get_window_info.py.
package relevance

import "github.com/clepsy/deskagent/internal/events"

const (
	minAspect   = 0.25
	maxAspect   = 4.0
	minSidePx   = 200
	minCoverage = 0.10
)

// intersectionArea returns the area of overlap between two bboxes, or 0
// if they don't overlap.
func intersectionArea(a, b events.Bbox) int {
	left := max(a.Left, b.Left)
	top := max(a.Top, b.Top)
	right := min(a.Left+a.Width, b.Left+b.Width)
	bottom := min(a.Top+a.Height, b.Top+b.Height)
	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

func area(b events.Bbox) int {
	return b.Width * b.Height
}

// IsRelevant reports whether w is large enough, well-proportioned enough,
// and covers enough of the monitor layout to be worth capturing.
func IsRelevant(w events.WindowInfo, monitors []events.Bbox) bool {
	b := w.Bbox
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}

	aspect := float64(b.Width) / float64(b.Height)
	if aspect < minAspect || aspect > maxAspect {
		return false
	}

	if b.Width < minSidePx || b.Height < minSidePx {
		return false
	}

	if len(monitors) == 0 {
		return false
	}

	for _, m := range monitors {
		if area(m) == 0 {
			continue
		}
		if float64(intersectionArea(b, m))/float64(area(m)) >= minCoverage {
			return true
		}
	}

	// Fall back to coverage of the union of monitors, normalized against
	// the largest monitor (mirrors the Python original's union-intersection
	// fallback for windows spanning multiple displays).
	largest := 0
	for _, m := range monitors {
		if a := area(m); a > largest {
			largest = a
		}
	}
	if largest == 0 {
		return false
	}

	unionOverlap := 0
	for _, m := range monitors {
		unionOverlap += intersectionArea(b, m)
	}
	if float64(unionOverlap)/float64(largest) >= minCoverage {
		return true
	}

	return false
}
