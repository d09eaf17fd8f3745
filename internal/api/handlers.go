package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"district-map/internal/district"
	"district-map/internal/events"
	"district-map/internal/geo"
	"district-map/internal/session"
)

var errBadUpload = eris.New("bad upload")

// Settings configures the handlers
type Settings struct {
	Columns        events.Columns
	Years          []int
	District       district.Options
	Boundaries     string // path or URL of the boundary layer
	Stations       string // path or URL of the station layer, empty disables it
	ExportFilename string
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	sessions *session.Store
	loader   *geo.Loader
	settings Settings
}

// NewHandlers creates a new Handlers instance
func NewHandlers(sessions *session.Store, loader *geo.Loader, settings Settings) *Handlers {
	if settings.ExportFilename == "" {
		settings.ExportFilename = district.DefaultExportFilename
	}
	if settings.MaxUploadBytes <= 0 {
		settings.MaxUploadBytes = 32 << 20
	}
	if settings.District.Max <= 0 {
		settings.District = district.DefaultOptions()
	}
	return &Handlers{sessions: sessions, loader: loader, settings: settings}
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Upload handles POST /api/upload. The CSV is read from the multipart field
// "file" or, for any other content type, the raw body.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.settings.MaxUploadBytes)

	body, err := uploadBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	table, err := events.ReadTable(body, h.settings.Columns)
	if err != nil {
		writeError(w, err)
		return
	}

	// a rejected CSV must not supersede an upload still in flight
	gen := s.Begin()

	agg := events.Aggregate(table.Rows, events.AggregateOptions{Years: h.settings.Years})

	fc, err := h.loader.Load(r.Context(), h.settings.Boundaries)
	if err != nil {
		zap.L().Error("api: load boundaries", zap.String("source", h.settings.Boundaries), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load boundaries"})
		return
	}

	m := district.Join(fc, agg.Records, agg.Years, h.settings.District)
	m.SetStations(h.stations(r.Context()))

	if err := s.Commit(gen, table, agg, m); err != nil {
		writeError(w, err)
		return
	}

	zap.L().Info("api: upload loaded",
		zap.String("session", s.ID),
		zap.Int("rows", len(table.Rows)),
		zap.Int("records", len(agg.Records)),
		zap.Int("matched", m.Index().Len()),
		zap.Int("unmatched", m.Unmatched()),
		zap.Int("orphans", len(m.Orphans())),
	)

	h.writeState(w, s)
}

func uploadBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		if err != nil {
			return nil, eris.Wrapf(errBadUpload, "multipart field \"file\": %v", err)
		}
		return f, nil
	}
	return r.Body, nil
}

func (h *Handlers) writeState(w http.ResponseWriter, s *session.Session) {
	summary, err := s.Summary()
	if err != nil {
		writeError(w, err)
		return
	}
	fc, err := s.Render()
	if err != nil {
		writeError(w, err)
		return
	}
	legend, err := s.Legend()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"map":     fc,
		"legend":  legendResponse(legend),
	})
}

// GetMap handles GET /api/map
func (h *Handlers) GetMap(w http.ResponseWriter, r *http.Request) {
	fc, err := sessionFrom(r).Render()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// GetLegend handles GET /api/legend
func (h *Handlers) GetLegend(w http.ResponseWriter, r *http.Request) {
	legend, err := sessionFrom(r).Legend()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, legendResponse(legend))
}

func legendResponse(l district.Legend) map[string]interface{} {
	return map[string]interface{}{
		"years":     l.Years,
		"rows":      l.Rows,
		"lines":     l.Lines(),
		"unmatched": l.Unmatched,
		"orphans":   l.Orphans,
	}
}

// Reassign handles POST /api/regions/{key}/district
func (h *Handlers) Reassign(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		District int `json:"district"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s := sessionFrom(r)
	features, legend, err := s.Reassign(key, req.District)
	if err != nil {
		writeError(w, err)
		return
	}

	zap.L().Info("api: district reassigned",
		zap.String("session", s.ID),
		zap.String("key", key),
		zap.Int("district", req.District),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features": features,
		"legend":   legendResponse(legend),
	})
}

// Export handles GET /api/export
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	var buf bytes.Buffer
	if err := s.Export(&buf, h.settings.Columns.District); err != nil {
		writeError(w, err)
		return
	}

	zap.L().Info("api: export written", zap.String("session", s.ID), zap.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.settings.ExportFilename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetStations handles GET /api/stations
func (h *Handlers) GetStations(w http.ResponseWriter, r *http.Request) {
	if h.settings.Stations == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "station layer not configured"})
		return
	}

	fc, err := h.loader.Load(r.Context(), h.settings.Stations)
	if err != nil {
		zap.L().Error("api: load stations", zap.String("source", h.settings.Stations), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "could not load stations"})
		return
	}

	geo.LabelStations(fc)
	writeJSON(w, http.StatusOK, fc)
}

// stations returns the station points for tooltips. A missing layer only
// loses the nearest-station line, so errors are logged and swallowed.
func (h *Handlers) stations(ctx context.Context) []geo.Station {
	if h.settings.Stations == "" {
		return nil
	}
	fc, err := h.loader.Load(ctx, h.settings.Stations)
	if err != nil {
		zap.L().Warn("api: station layer unavailable", zap.String("source", h.settings.Stations), zap.Error(err))
		return nil
	}
	return geo.Stations(fc)
}

func (h *Handlers) districtChoices() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, h.settings.District.Max)
	for d := 1; d <= h.settings.District.Max; d++ {
		out = append(out, map[string]interface{}{
			"Number": d,
			"Color":  h.settings.District.Palette.Color(d),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case eris.Is(err, session.ErrNoData), eris.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case eris.Is(err, district.ErrInvalidDistrict):
		return http.StatusUnprocessableEntity
	case eris.Is(err, district.ErrUnknownRegion):
		return http.StatusNotFound
	case eris.Is(err, events.ErrEmptyFile), eris.Is(err, events.ErrMissingColumn):
		return http.StatusBadRequest
	case eris.Is(err, errBadUpload):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
