package render

import (
	"knwidget/internal/model"
)

// Grid metrics in density-independent units, matching the app widget.
const (
	headerHeightDp  = 60
	timeColWidthDp  = 80
	blockInsetDp    = 2
	cornerRadiusDp  = 8
	gridLineDp      = 1
	narrowBlockDp   = 40 // below this width, blocks drop secondary lines

	// Default visible time window; expands but never shrinks.
	defaultStartHour = 9
	defaultEndHour   = 18

	visibleDays = 5 // Mon-Fri
)

// Options parameterizes one render pass.
type Options struct {
	Width   int // px
	Height  int // px
	Density float64
	Theme   model.Theme

	// FontPath optionally selects a Hangul-capable font file.
	FontPath string
}

func (o *Options) normalize() {
	if o.Width <= 0 {
		o.Width = 1080
	}
	if o.Height <= 0 {
		o.Height = 1080
	}
	if o.Density <= 0 {
		o.Density = 1.0
	}
	if !o.Theme.Valid() {
		o.Theme = model.ThemeDark
	}
}

// geometry is the resolved pixel geometry for one render pass.
type geometry struct {
	width, height float64
	headerH       float64
	timeColW      float64
	inset         float64
	corner        float64
	lineW         float64

	startHour, endHour int
	cellW, cellH       float64 // one day column x one hour row
}

// rect is a float pixel rectangle, closed-open like image.Rectangle.
type rect struct {
	x0, y0, x1, y1 float64
}

func (r rect) width() float64  { return r.x1 - r.x0 }
func (r rect) height() float64 { return r.y1 - r.y0 }

// TimeRange returns the visible hour window for the given slots; exported
// for the HTML timetable page, which shares the grid's vertical sizing.
func TimeRange(slots []model.LaidOutSlot) (startHour, endHour int) {
	return timeRange(slots)
}

// timeRange returns the visible hour window [start, end) for the given
// slots. It starts from the 09:00-18:00 default and only widens: a class
// starting before 09:00 pulls the start down to its floor hour, a class
// ending after 18:00 pushes the end up to its ceiling hour.
func timeRange(slots []model.LaidOutSlot) (startHour, endHour int) {
	startHour, endHour = defaultStartHour, defaultEndHour
	for _, s := range slots {
		if h := s.StartMinute / 60; h < startHour {
			startHour = h
		}
		if h := (s.EndMinute + 59) / 60; h > endHour {
			endHour = h
		}
	}
	return startHour, endHour
}

// computeGeometry sizes the grid for the given slots and options.
func computeGeometry(slots []model.LaidOutSlot, opts Options) geometry {
	g := geometry{
		width:    float64(opts.Width),
		height:   float64(opts.Height),
		headerH:  headerHeightDp * opts.Density,
		timeColW: timeColWidthDp * opts.Density,
		inset:    blockInsetDp * opts.Density,
		corner:   cornerRadiusDp * opts.Density,
		lineW:    gridLineDp * opts.Density,
	}
	g.startHour, g.endHour = timeRange(slots)

	totalHours := g.endHour - g.startHour
	g.cellW = (g.width - g.timeColW) / visibleDays
	g.cellH = (g.height - g.headerH) / float64(totalHours)
	return g
}

// blockRect maps a laid-out slot to its pixel rectangle: the day column is
// split into ColumnCount equal sub-columns, the slot occupies sub-column
// ColumnIndex, and the vertical extent is the proportional mapping of
// start/end minutes into the hour rows. The inset keeps adjacent blocks
// from touching.
func (g geometry) blockRect(s model.LaidOutSlot) (rect, bool) {
	dayIndex := s.Day - 1 // 1=Mon -> column 0
	if dayIndex < 0 || dayIndex >= visibleDays {
		return rect{}, false
	}

	cols := s.ColumnCount
	if cols < 1 {
		cols = 1
	}
	colW := g.cellW / float64(cols)
	dayX := g.timeColW + float64(dayIndex)*g.cellW

	gridStartMin := g.startHour * 60
	pxPerMin := g.cellH / 60

	r := rect{
		x0: dayX + float64(s.ColumnIndex)*colW + g.inset,
		y0: g.headerH + float64(s.StartMinute-gridStartMin)*pxPerMin + g.inset,
		x1: dayX + float64(s.ColumnIndex+1)*colW - g.inset,
		y1: g.headerH + float64(s.EndMinute-gridStartMin)*pxPerMin - g.inset,
	}
	if r.x1 <= r.x0 || r.y1 <= r.y0 {
		return rect{}, false
	}
	return r, true
}

// narrow reports whether a block is too tight for secondary text lines.
func (g geometry) narrow(r rect, density float64) bool {
	return r.width() < narrowBlockDp*density
}
