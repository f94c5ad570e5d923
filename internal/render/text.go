package render

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const ellipsis = "…"

// truncateToWidth cuts s to the widest prefix whose rendered width fits
// maxWidth, appending an ellipsis when withEllipsis is set.
//
// With an ellipsis the cut is made against maxWidth minus the ellipsis
// width, and if even the bare ellipsis does not fit the result is empty.
// Without an ellipsis (very narrow blocks) the prefix simply fills
// maxWidth, preserving as many legible characters as possible.
func truncateToWidth(face font.Face, s string, maxWidth fixed.Int26_6, withEllipsis bool) string {
	if maxWidth <= 0 {
		return ""
	}
	if font.MeasureString(face, s) <= maxWidth {
		return s
	}

	target := maxWidth
	suffix := ""
	if withEllipsis {
		ellWidth := font.MeasureString(face, ellipsis)
		if ellWidth > maxWidth {
			return ""
		}
		target = maxWidth - ellWidth
		suffix = ellipsis
	}

	return widestPrefix(face, s, target) + suffix
}

// widestPrefix returns the longest prefix of s (on rune boundaries) whose
// width is <= target. Width is monotone in prefix length, so a greedy
// accumulate-and-stop walk finds the answer in one pass.
func widestPrefix(face font.Face, s string, target fixed.Int26_6) string {
	var width fixed.Int26_6
	var prev rune
	for i, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			// Missing glyph: faces substitute the notdef box; measure that.
			adv, _ = face.GlyphAdvance('�')
		}
		if i > 0 {
			width += face.Kern(prev, r)
		}
		if width+adv > target {
			return s[:i]
		}
		width += adv
		prev = r
	}
	return s
}
