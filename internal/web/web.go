// Package web is the bridge surface between the timetable web app and the
// widget core: schedule saves, logout, notification settings and system
// events come in over HTTP; the rendered grid, the today list and the ICS
// feed go out.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"knwidget/internal/alarm"
	"knwidget/internal/capture"
	"knwidget/internal/config"
	"knwidget/internal/convert"
	"knwidget/internal/export"
	appLog "knwidget/internal/log"
	"knwidget/internal/model"
	"knwidget/internal/render"
	"knwidget/internal/schedule"
	"knwidget/internal/store"
)

// WidgetFile is the pre-rendered grid written under the data dir.
const WidgetFile = "widget.png"

// Server provides the HTTP bridge API.
type Server struct {
	cfg   *config.Config
	st    *store.Store
	sched *alarm.Scheduler
	loc   *time.Location
	now   func() time.Time
	mux   *http.ServeMux
}

// NewServer constructs a new Server. now is injectable for tests; nil
// means time.Now.
func NewServer(cfg *config.Config, st *store.Store, sched *alarm.Scheduler, loc *time.Location, now func() time.Time) *Server {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	s := &Server{cfg: cfg, st: st, sched: sched, loc: loc, now: now, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/today", s.handleToday)
	s.mux.HandleFunc("/api/system-event", s.handleSystemEvent)
	s.mux.HandleFunc("/api/schedule.ics", s.handleICS)
	s.mux.HandleFunc("/widget.png", s.handleWidgetPNG)
	s.mux.HandleFunc("/timetable", s.handleTimetablePage)
	s.mux.HandleFunc("/share.png", s.handleSharePNG)
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health and /timetable
// (the local capture target) with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/timetable" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="knwidget", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleSchedule is the schedule blob lifecycle:
//
//	POST   — scheduleSaved: normalize + layout + persist, then reschedule
//	GET    — current snapshot (absent -> 404)
//	DELETE — logout: cancel alarms, clear snapshot, drop widget.png
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var raw model.RawSchedule
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid schedule payload")
			return
		}

		snap := schedule.BuildSnapshot(&raw, model.Theme(s.cfg.Widget.Theme), s.now().In(s.loc))
		if err := s.st.SaveSnapshot(snap); err != nil {
			appLog.Error("snapshot save failed", err)
			writeError(w, http.StatusInternalServerError, "failed to persist schedule")
			return
		}

		if err := s.RenderWidgetFile(); err != nil {
			// Widget refresh failure degrades the launcher view but must
			// not fail the save.
			appLog.Error("widget pre-render failed", err)
		}
		s.sched.OnScheduleDataChanged()

		writeJSON(w, http.StatusOK, map[string]any{
			"slot_count": len(snap.Slots),
			"is_empty":   snap.IsEmpty,
		})

	case http.MethodGet:
		snap, ok := s.st.LoadSnapshot()
		if !ok {
			writeError(w, http.StatusNotFound, "no schedule stored")
			return
		}
		writeJSON(w, http.StatusOK, snap)

	case http.MethodDelete:
		s.sched.CancelAll()
		if err := s.st.ClearSnapshot(); err != nil {
			appLog.Error("snapshot clear failed", err)
			writeError(w, http.StatusInternalServerError, "failed to clear schedule")
			return
		}
		_ = os.Remove(filepath.Join(s.st.Dir(), WidgetFile))
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// settingsBody mirrors the bridge's notificationSettingsChanged payload.
type settingsBody struct {
	Enabled       bool `json:"enabled"`
	OffsetMinutes int  `json:"offset_minutes"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.st.LoadSettings())

	case http.MethodPut:
		var body settingsBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid settings payload")
			return
		}
		if err := s.sched.OnSettingsChanged(body.Enabled, body.OffsetMinutes); err != nil {
			appLog.Error("settings save failed", err)
			writeError(w, http.StatusInternalServerError, "failed to persist settings")
			return
		}
		writeJSON(w, http.StatusOK, s.st.LoadSettings())

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)

	snap, ok := s.st.LoadSnapshot()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"date_display": schedule.FormatKoreanDate(now),
			"slots":        []model.LaidOutSlot{},
			"lines":        []string{},
		})
		return
	}

	slots := render.TodayList(snap, now)
	writeJSON(w, http.StatusOK, map[string]any{
		"date_display": snap.DateDisplay,
		"slots":        slots,
		"lines":        render.TodayLines(snap, now),
	})
}

// handleSystemEvent funnels host broadcasts (boot, time/timezone change,
// forced rollover) into the scheduler.
func (s *Server) handleSystemEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Event string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	switch ev := alarm.SystemEvent(body.Event); ev {
	case alarm.EventBootCompleted, alarm.EventTimeChanged, alarm.EventTimezoneChanged, alarm.EventMidnightRollover:
		s.sched.OnSystemEvent(ev)
		writeJSON(w, http.StatusOK, map[string]any{"handled": string(ev)})
	default:
		writeError(w, http.StatusBadRequest, "unknown event")
	}
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.st.LoadSnapshot()
	body, err := export.BuildICS(snap, s.loc, s.now())
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export schedule")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handleWidgetPNG renders the weekly grid on demand.
//
// GET /widget.png?w=1080&h=1080&theme=dark
func (s *Server) handleWidgetPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := render.Options{
		Width:    parseIntDefault(q.Get("w"), s.cfg.Widget.WidthPx),
		Height:   parseIntDefault(q.Get("h"), s.cfg.Widget.HeightPx),
		Density:  s.cfg.Widget.Density,
		Theme:    model.Theme(s.cfg.Widget.Theme),
		FontPath: s.cfg.Widget.FontPath,
	}
	if t := model.Theme(q.Get("theme")); t.Valid() {
		opts.Theme = t
	}

	snap, _ := s.st.LoadSnapshot()
	img, err := render.DrawTimetable(snap, opts)
	if err != nil {
		appLog.Error("widget render failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render widget")
		return
	}

	data, err := convert.EncodePNG(img)
	if err != nil {
		appLog.Error("widget encode failed", err)
		writeError(w, http.StatusInternalServerError, "failed to encode widget")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleSharePNG captures the /timetable page with headless Chromium and
// optionally center-crops the result.
//
// GET /share.png?w=1080&h=1350
func (s *Server) handleSharePNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width := parseIntDefault(q.Get("w"), capture.DefaultWidth)
	height := parseIntDefault(q.Get("h"), capture.DefaultHeight)

	data, err := capture.TimetablePNG(r.Context(), capture.Options{
		URL:    "http://" + s.cfg.Listen + "/timetable",
		Width:  width,
		Height: height,
	})
	if err != nil {
		appLog.Error("share capture failed", err)
		writeError(w, http.StatusInternalServerError, "failed to capture timetable")
		return
	}

	// Full screenshots can come back taller than the viewport; crop back
	// to the requested frame.
	if img, derr := convert.DecodePNG(data); derr == nil {
		if cropped, cerr := convert.CenterCrop(img, width, height); cerr == nil {
			if enc, eerr := convert.EncodePNG(cropped); eerr == nil {
				data = enc
			}
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// RenderWidgetFile pre-renders the configured grid into the data dir so
// launchers polling the file always have a current bitmap. Called on every
// schedule save and from the refresh cron.
func (s *Server) RenderWidgetFile() error {
	snap, _ := s.st.LoadSnapshot()
	img, err := render.DrawTimetable(snap, render.Options{
		Width:    s.cfg.Widget.WidthPx,
		Height:   s.cfg.Widget.HeightPx,
		Density:  s.cfg.Widget.Density,
		Theme:    model.Theme(s.cfg.Widget.Theme),
		FontPath: s.cfg.Widget.FontPath,
	})
	if err != nil {
		return err
	}
	data, err := convert.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.st.Dir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.st.Dir(), WidgetFile), data, 0o644)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
