package diagram

import (
	"image"
	"image/color"
)

// Detector counts candidate hand-drawn diagrams on rendered answer-sheet
// pages. The heuristic binarizes the page, labels connected strokes of ink,
// and measures the area each stroke encloses: outline plus sealed interior,
// the contour area of the figure. A thin-stroke outline therefore measures
// like the filled figure it outlines. Body text encloses almost nothing,
// page borders and scan shadows enclose far too much; both fall outside the
// window.
type Detector struct {
	// Pixels darker than Threshold (0-255 luma) count as ink.
	Threshold uint8
	// Enclosed-area window, exclusive on both ends.
	MinArea int
	MaxArea int
}

func NewDetector(threshold uint8, minArea, maxArea int) *Detector {
	return &Detector{Threshold: threshold, MinArea: minArea, MaxArea: maxArea}
}

// CountPage counts diagram candidates on a single rendered page.
func (d *Detector) CountPage(img image.Image) int {
	mask := d.binarize(img)

	count := 0
	for _, area := range enclosedAreas(mask) {
		if area > d.MinArea && area < d.MaxArea {
			count++
		}
	}
	return count
}

// Count sums diagram candidates across all pages of a document.
func (d *Detector) Count(pages []image.Image) int {
	total := 0
	for _, img := range pages {
		total += d.CountPage(img)
	}
	return total
}

// binarize converts the page to an inverse binary ink mask.
func (d *Detector) binarize(img image.Image) *mask {
	bounds := img.Bounds()
	m := newMask(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < d.Threshold {
				m.set(x-bounds.Min.X, y-bounds.Min.Y)
			}
		}
	}
	return m
}

type mask struct {
	w, h int
	ink  []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, ink: make([]bool, w*h)}
}

func (m *mask) set(x, y int) { m.ink[y*m.w+x] = true }
func (m *mask) inside(x, y int) bool {
	return x >= 0 && x < m.w && y >= 0 && y < m.h
}

// enclosedAreas returns the area of each figure on the page. A figure is an
// 8-connected region of pixels the border fill could not reach: stroke plus
// the paper it seals off. A hollow outline therefore measures like the
// filled figure it outlines, and marks drawn inside an outline merge into
// the outline's figure. Flood fills are iterative; a full page of ink at
// 200 DPI would overflow the goroutine stack if done recursively.
func enclosedAreas(m *mask) []int {
	outside := outsidePaper(m)

	seen := make([]bool, m.w*m.h)
	var areas []int
	var stack []point

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if outside[y*m.w+x] || seen[y*m.w+x] {
				continue
			}

			area := 0
			stack = append(stack[:0], point{x, y})
			seen[y*m.w+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.x+dx, p.y+dy
						if !m.inside(nx, ny) {
							continue
						}
						ni := ny*m.w + nx
						if !outside[ni] && !seen[ni] {
							seen[ni] = true
							stack = append(stack, point{nx, ny})
						}
					}
				}
			}

			areas = append(areas, area)
		}
	}
	return areas
}

// outsidePaper flood-fills blank paper 4-connected from the page border.
// Ink walls are 8-connected, so the complementary 4-connectivity keeps the
// fill from leaking through diagonal stroke joints.
func outsidePaper(m *mask) []bool {
	outside := make([]bool, m.w*m.h)
	if m.w == 0 || m.h == 0 {
		return outside
	}
	var stack []point

	push := func(x, y int) {
		i := y*m.w + x
		if !m.ink[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, point{x, y})
		}
	}

	for x := 0; x < m.w; x++ {
		push(x, 0)
		push(x, m.h-1)
	}
	for y := 0; y < m.h; y++ {
		push(0, y)
		push(m.w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range [4]point{{p.x - 1, p.y}, {p.x + 1, p.y}, {p.x, p.y - 1}, {p.x, p.y + 1}} {
			if m.inside(n.x, n.y) {
				push(n.x, n.y)
			}
		}
	}
	return outside
}

type point struct {
	x, y int
}
