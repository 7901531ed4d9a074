package text

import (
	"math"
	"sort"
	"strings"
)

// GetText assembles the fragments into lines in reading order. Lines with
// a vertical gap of more than 1.5 line heights are separated by a blank
// line.
func (e *Extractor) GetText() string {
	lines := groupFragmentsByLine(e.fragments)
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range lines {
		dir := detectLineDirection(line)
		ordered := reorderFragmentsForReading(line, dir)
		metrics := calculateLineMetrics(ordered, dir)

		for j, frag := range ordered {
			sb.WriteString(frag.Text)
			if j == len(ordered)-1 {
				break
			}
			next := ordered[j+1]
			gap := calculateHorizontalDistance(frag, next, dir)
			if e.shouldInsertSpace(frag, next, gap, metrics) {
				sb.WriteByte(' ')
			}
		}

		if i < len(lines)-1 {
			vertical := math.Abs(lines[i+1][0].Y - line[0].Y)
			if vertical > line[0].Height*1.5 {
				sb.WriteString("\n\n")
			} else {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// lineMetrics summarises a line for the spacing heuristic.
type lineMetrics struct {
	// characterLevel is set when fragments average two characters or
	// fewer, as with producers that position every glyph.
	characterLevel    bool
	hasExplicitSpaces bool
	// lowGap and typicalGap are the 10th and 25th percentile gaps between
	// non-space fragments.
	lowGap     float64
	typicalGap float64
}

func calculateLineMetrics(fragments []TextFragment, dir Direction) lineMetrics {
	var m lineMetrics
	if len(fragments) == 0 {
		return m
	}

	chars := 0
	for _, frag := range fragments {
		chars += len([]rune(frag.Text))
		if strings.TrimSpace(frag.Text) == "" || strings.Contains(frag.Text, " ") {
			m.hasExplicitSpaces = true
		}
	}
	m.characterLevel = float64(chars)/float64(len(fragments)) <= 2.0

	var gaps []float64
	for i := 0; i+1 < len(fragments); i++ {
		if strings.TrimSpace(fragments[i].Text) == "" || strings.TrimSpace(fragments[i+1].Text) == "" {
			continue
		}
		if gap := calculateHorizontalDistance(fragments[i], fragments[i+1], dir); gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) > 0 {
		sort.Float64s(gaps)
		m.lowGap = gaps[len(gaps)/10]
		m.typicalGap = gaps[len(gaps)/4]
	}
	return m
}

// shouldInsertSpace decides whether the gap between two fragments is a
// word break.
func (e *Extractor) shouldInsertSpace(frag, next TextFragment, gap float64, m lineMetrics) bool {
	if strings.HasSuffix(frag.Text, " ") || strings.HasPrefix(next.Text, " ") {
		return false
	}
	if gap < 0 || gap < frag.FontSize*0.05 {
		return false
	}

	if m.characterLevel && m.hasExplicitSpaces {
		if m.typicalGap > 0 {
			return gap >= m.typicalGap*5.0
		}
		return false
	}

	if m.characterLevel {
		threshold := frag.FontSize * 0.8
		if m.lowGap*3.0 > threshold {
			threshold = m.lowGap * 3.0
		}
		return gap >= threshold
	}

	return gap >= e.spaceWidth(frag.FontName, frag.FontSize)*0.5
}

// spaceWidth returns the width of the space glyph at size.
func (e *Extractor) spaceWidth(fontName string, size float64) float64 {
	if f, ok := e.fonts[fontName]; ok {
		return f.GetWidth(' ') * size / 1000.0
	}
	return size * 0.25
}

// groupFragmentsByLine starts a new line whenever the baseline moves by
// more than half the previous fragment's height.
func groupFragmentsByLine(fragments []TextFragment) [][]TextFragment {
	if len(fragments) == 0 {
		return nil
	}

	var lines [][]TextFragment
	current := []TextFragment{fragments[0]}
	for i := 1; i < len(fragments); i++ {
		prev := fragments[i-1]
		if math.Abs(fragments[i].Y-prev.Y) <= prev.Height*0.5 {
			current = append(current, fragments[i])
			continue
		}
		lines = append(lines, current)
		current = []TextFragment{fragments[i]}
	}
	return append(lines, current)
}

// detectLineDirection returns the majority direction of the strong
// fragments in a line, LTR when there are none.
func detectLineDirection(fragments []TextFragment) Direction {
	ltr, rtl := 0, 0
	for _, frag := range fragments {
		switch frag.Direction {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	if rtl > ltr {
		return RTL
	}
	return LTR
}

// reorderFragmentsForReading sorts a line by X, descending for RTL lines.
func reorderFragmentsForReading(fragments []TextFragment, dir Direction) []TextFragment {
	ordered := make([]TextFragment, len(fragments))
	copy(ordered, fragments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if dir == RTL {
			return ordered[i].X > ordered[j].X
		}
		return ordered[i].X < ordered[j].X
	})
	return ordered
}

// calculateHorizontalDistance returns the gap between two fragments in
// reading order.
func calculateHorizontalDistance(frag, next TextFragment, dir Direction) float64 {
	if dir == RTL {
		return frag.X - (next.X + next.Width)
	}
	return next.X - (frag.X + frag.Width)
}
