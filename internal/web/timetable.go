package web

import (
	"html/template"
	"net/http"

	appLog "knwidget/internal/log"
	"knwidget/internal/model"
	"knwidget/internal/render"
	"knwidget/internal/schedule"
)

// The /timetable page renders the same grid as the bitmap renderer, but as
// HTML/CSS. It exists for two consumers: a browser (quick inspection) and
// the share-image capture, which waits on data-ready="true".

type ttBlock struct {
	Title    string
	Location string
	Time     string
	Color    string
	// Percent positions within the day column / hour span.
	Top, Height, Left, Width float64
	Narrow                   bool
}

type ttDay struct {
	Name   string
	Blocks []ttBlock
}

type ttPage struct {
	Dark        bool
	DateDisplay string
	GeneratedAt string
	Hours       []string
	Days        []ttDay
}

var dayNamesKo = [5]string{"월", "화", "수", "목", "금"}

func (s *Server) handleTimetablePage(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)

	snap, ok := s.st.LoadSnapshot()
	if !ok {
		snap = &model.WidgetSnapshot{
			DateDisplay: schedule.FormatKoreanDate(now),
			Theme:       model.Theme(s.cfg.Widget.Theme),
			IsEmpty:     true,
		}
	}

	page := buildTimetablePage(snap)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := timetableTmpl.Execute(w, page); err != nil {
		appLog.Error("timetable page render failed", err)
	}
}

func buildTimetablePage(snap *model.WidgetSnapshot) ttPage {
	startHour, endHour := render.TimeRange(snap.Slots)
	totalMin := float64((endHour - startHour) * 60)

	page := ttPage{
		Dark:        snap.Theme != model.ThemeLight,
		DateDisplay: snap.DateDisplay,
		GeneratedAt: snap.GeneratedAtDisplay,
	}
	for h := startHour; h < endHour; h++ {
		page.Hours = append(page.Hours, schedule.CanonicalHour(h))
	}

	for day := 0; day < len(dayNamesKo); day++ {
		d := ttDay{Name: dayNamesKo[day]}
		for _, sl := range snap.SlotsForDay(day + 1) { // 1=Mon
			cols := sl.ColumnCount
			if cols < 1 {
				cols = 1
			}
			colW := 100.0 / float64(cols)
			d.Blocks = append(d.Blocks, ttBlock{
				Title:    sl.Title,
				Location: sl.Location,
				Time:     sl.TimeDisplay,
				Color:    sl.ColorHex,
				Top:      float64(sl.StartMinute-startHour*60) / totalMin * 100,
				Height:   float64(sl.EndMinute-sl.StartMinute) / totalMin * 100,
				Left:     float64(sl.ColumnIndex) * colW,
				Width:    colW,
				Narrow:   cols >= 3,
			})
		}
		page.Days = append(page.Days, d)
	}
	return page
}

var timetableTmpl = template.Must(template.New("timetable").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>시간표</title>
<style>
:root { --bg:#ffffff; --line:#e5e7eb; --fg:#111827; --sub:#6b7280; }
.dark { --bg:#1a1b23; --line:#2c2d3a; --fg:#ffffff; --sub:#9ca3af; }
* { box-sizing:border-box; margin:0; }
body { background:var(--bg); color:var(--fg); font-family:sans-serif; }
.meta { display:flex; justify-content:space-between; padding:8px 12px; color:var(--sub); font-size:12px; }
.grid { display:flex; height:calc(100vh - 34px); }
.times { width:56px; border-right:1px solid var(--line); }
.times div { height:calc(100% / {{len .Hours}}); font-size:11px; color:var(--sub); text-align:center; padding-top:2px; }
.day { flex:1; border-right:1px solid var(--line); display:flex; flex-direction:column; }
.day h2 { height:28px; font-size:14px; text-align:center; border-bottom:1px solid var(--line); line-height:28px; }
.col { position:relative; flex:1; }
.block { position:absolute; border-radius:6px; padding:3px 4px; overflow:hidden; color:#fff; }
.block .t { font-size:12px; font-weight:bold; white-space:nowrap; overflow:hidden; text-overflow:ellipsis; }
.block .s { font-size:10px; color:#ddd; white-space:nowrap; overflow:hidden; text-overflow:ellipsis; }
.block.narrow .s { display:none; }
.block.narrow .t { text-overflow:clip; }
</style>
</head>
<body class="{{if .Dark}}dark{{end}}" data-ready="true">
<div class="meta"><span>{{.DateDisplay}}</span><span>{{.GeneratedAt}}</span></div>
<div class="grid">
  <div class="times">{{range .Hours}}<div>{{.}}</div>{{end}}</div>
  {{range .Days}}
  <div class="day"><h2>{{.Name}}</h2><div class="col">
    {{range .Blocks}}
    <div class="block{{if .Narrow}} narrow{{end}}" style="top:{{printf "%.3f" .Top}}%;height:{{printf "%.3f" .Height}}%;left:{{printf "%.3f" .Left}}%;width:{{printf "%.3f" .Width}}%;background:{{.Color}}">
      <div class="t">{{.Title}}</div>
      <div class="s">{{.Location}}</div>
      <div class="s">{{.Time}}</div>
    </div>
    {{end}}
  </div></div>
  {{end}}
</div>
</body>
</html>
`))
