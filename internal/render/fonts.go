package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	appLog "knwidget/internal/log"
)

// Text sizes in dp, matching the app widget (sp there, but the widget
// bitmap has no user font scaling).
const (
	titleTextDp     = 13
	secondaryTextDp = 10
	headerTextDp    = 14
	timeLabelDp     = 11
)

// faceSet holds the sized faces for one render pass. Faces are not safe
// for concurrent use, so a fresh set is built per DrawTimetable call.
type faceSet struct {
	title     font.Face
	secondary font.Face
	header    font.Face
	timeLabel font.Face
}

// loadFaces builds the face set at the given density. fontPath, when
// non-empty, must point to a TTF/OTF; it is used for every role so that a
// single Hangul-capable font covers all text. With an empty path the
// bundled Go fonts are used (regular + bold); Hangul then renders as
// missing-glyph boxes, which keeps layout and measurement correct.
func loadFaces(fontPath string, density float64) (*faceSet, error) {
	var regular, bold *opentype.Font

	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			appLog.Error("render: custom font unreadable, using bundled fonts", err, "path", fontPath)
		} else if f, perr := opentype.Parse(data); perr != nil {
			appLog.Error("render: custom font unparseable, using bundled fonts", perr, "path", fontPath)
		} else {
			regular, bold = f, f
		}
	}

	if regular == nil {
		r, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("render: parse goregular: %w", err)
		}
		b, err := opentype.Parse(gobold.TTF)
		if err != nil {
			return nil, fmt.Errorf("render: parse gobold: %w", err)
		}
		regular, bold = r, b
	}

	face := func(f *opentype.Font, dp float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    dp * density,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	var fs faceSet
	var err error
	if fs.title, err = face(bold, titleTextDp); err != nil {
		return nil, err
	}
	if fs.secondary, err = face(regular, secondaryTextDp); err != nil {
		return nil, err
	}
	if fs.header, err = face(bold, headerTextDp); err != nil {
		return nil, err
	}
	if fs.timeLabel, err = face(regular, timeLabelDp); err != nil {
		return nil, err
	}
	return &fs, nil
}
