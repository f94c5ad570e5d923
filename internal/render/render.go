// Package render draws the weekly timetable grid into a pixel bitmap and
// derives the "today only" list view. Rendering is total: a slot that
// cannot be drawn (bad color, degenerate rectangle, any panic inside its
// draw path) is skipped with a log line and the rest of the grid still
// renders.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
)

var dayHeaders = [visibleDays]string{"월", "화", "수", "목", "금"}

// DrawTimetable renders the Mon-Fri weekly grid for the snapshot. Sat/Sun
// slots in the data are kept for the today list but fall outside the
// visible grid.
func DrawTimetable(snap *model.WidgetSnapshot, opts Options) (*image.NRGBA, error) {
	opts.normalize()
	if snap != nil && snap.Theme.Valid() {
		opts.Theme = snap.Theme
	}

	var slots []model.LaidOutSlot
	if snap != nil {
		slots = snap.Slots
	}

	faces, err := loadFaces(opts.FontPath, opts.Density)
	if err != nil {
		return nil, err
	}

	pal := paletteFor(opts.Theme)
	g := computeGeometry(slots, opts)

	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pal.bg), image.Point{}, draw.Src)

	drawChrome(img, g, pal, faces)

	drawn := 0
	for _, s := range slots {
		if drawSlot(img, g, pal, faces, s, opts.Density) {
			drawn++
		}
	}

	appLog.Debug("timetable rendered",
		"size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"slots", len(slots),
		"drawn", drawn,
		"range", fmt.Sprintf("%02d:00-%02d:00", g.startHour, g.endHour),
	)
	return img, nil
}

// drawChrome paints the hour/day grid lines, time labels and day headers.
func drawChrome(img *image.NRGBA, g geometry, pal palette, faces *faceSet) {
	totalHours := g.endHour - g.startHour

	// Horizontal hour lines and time labels.
	for i := 0; i <= totalHours; i++ {
		y := g.headerH + float64(i)*g.cellH
		fillRect(img, rect{g.timeColW, y, g.width, y + g.lineW}, pal.gridLine)

		if i < totalHours {
			label := fmt.Sprintf("%02d:00", g.startHour+i)
			drawTextCentered(img, faces.timeLabel, label, g.timeColW/2, y+g.cellH*0.25, pal.timeText)
		}
	}

	// Vertical day lines and headers.
	for i := 0; i <= visibleDays; i++ {
		x := g.timeColW + float64(i)*g.cellW
		fillRect(img, rect{x, 0, x + g.lineW, g.height}, pal.gridLine)

		if i < visibleDays {
			drawTextCentered(img, faces.header, dayHeaders[i], x+g.cellW/2, g.headerH/2, pal.headerText)
		}
	}
}

// drawSlot paints one class block. Returns false when the slot was skipped.
// Any panic inside the block's draw path is contained here so a single bad
// slot can never abort the whole render.
func drawSlot(img *image.NRGBA, g geometry, pal palette, faces *faceSet, s model.LaidOutSlot, density float64) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			appLog.Error("slot draw panicked, skipped", fmt.Errorf("%v", r), "slot_id", s.ID)
			ok = false
		}
	}()

	r, visible := g.blockRect(s)
	if !visible {
		return false
	}

	fillRoundRect(img, r, g.corner, blockColor(s.ColorHex))

	// Text: title (bold), then location and time, top-aligned and clipped
	// to the block. Very narrow blocks keep only a bare title cut without
	// an ellipsis.
	pad := 4 * density
	narrow := g.narrow(r, density)
	maxTextW := fixed.I(int(r.width() - 2*pad))

	clip := image.Rect(int(r.x0), int(r.y0), int(r.x1), int(r.y1))
	dst, isNRGBA := img.SubImage(clip).(*image.NRGBA)
	if !isNRGBA {
		return false
	}

	titleMetrics := faces.title.Metrics()
	y := r.y0 + pad + float64(titleMetrics.Ascent.Round())

	title := truncateToWidth(faces.title, s.Title, maxTextW, !narrow)
	drawText(dst, faces.title, title, r.x0+pad, y, pal.blockTitle)

	if narrow {
		return true
	}

	lineGap := 3 * density
	secMetrics := faces.secondary.Metrics()
	lineH := float64(secMetrics.Height.Round()) + lineGap

	y += float64(titleMetrics.Descent.Round()) + lineGap + float64(secMetrics.Ascent.Round())
	for _, line := range []string{s.Location, s.TimeDisplay} {
		if y > r.y1-pad {
			break
		}
		drawText(dst, faces.secondary, truncateToWidth(faces.secondary, line, maxTextW, true),
			r.x0+pad, y, pal.blockSecondary)
		y += lineH
	}
	return true
}

// drawText draws s with its baseline at (x, y). dst may be a sub-image;
// coordinates stay in the parent image's space.
func drawText(dst draw.Image, face font.Face, s string, x, y float64, col color.NRGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(s)
}

// drawTextCentered draws s horizontally centered on cx with its baseline
// at y.
func drawTextCentered(dst draw.Image, face font.Face, s string, cx, y float64, col color.NRGBA) {
	w := font.MeasureString(face, s)
	x := cx - float64(w.Round())/2
	drawText(dst, face, s, x, y, col)
}

// fillRect fills a float rectangle, clamped to the image bounds.
func fillRect(img *image.NRGBA, r rect, col color.NRGBA) {
	ir := image.Rect(int(r.x0), int(r.y0), int(r.x1), int(r.y1)).Intersect(img.Bounds())
	draw.Draw(img, ir, image.NewUniform(col), image.Point{}, draw.Src)
}

// fillRoundRect fills r with rounded corners of the given radius. The
// radius collapses when the block is smaller than the corner circles.
func fillRoundRect(img *image.NRGBA, r rect, radius float64, col color.NRGBA) {
	if radius > r.width()/2 {
		radius = r.width() / 2
	}
	if radius > r.height()/2 {
		radius = r.height() / 2
	}
	if radius < 1 {
		fillRect(img, r, col)
		return
	}

	// Center cross.
	fillRect(img, rect{r.x0 + radius, r.y0, r.x1 - radius, r.y1}, col)
	fillRect(img, rect{r.x0, r.y0 + radius, r.x0 + radius, r.y1 - radius}, col)
	fillRect(img, rect{r.x1 - radius, r.y0 + radius, r.x1, r.y1 - radius}, col)

	// Corner quarters, per-pixel circle test.
	corners := [4][2]float64{
		{r.x0 + radius, r.y0 + radius},
		{r.x1 - radius, r.y0 + radius},
		{r.x0 + radius, r.y1 - radius},
		{r.x1 - radius, r.y1 - radius},
	}
	bounds := img.Bounds()
	rr := radius * radius
	for _, c := range corners {
		x0 := int(c[0] - radius)
		y0 := int(c[1] - radius)
		x1 := int(c[0] + radius + 1)
		y1 := int(c[1] + radius + 1)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
					continue
				}
				fx := float64(x) + 0.5
				fy := float64(y) + 0.5
				if fx < r.x0 || fx > r.x1 || fy < r.y0 || fy > r.y1 {
					continue
				}
				dx := fx - c[0]
				dy := fy - c[1]
				if dx*dx+dy*dy <= rr {
					img.SetNRGBA(x, y, col)
				}
			}
		}
	}
}
