// Package server delivers edit notifications to a workbook over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/ukaji3/lapsync-go/internal/logging"
	"github.com/ukaji3/lapsync-go/pkg/lapsync"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/models"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/output"
	"github.com/ukaji3/lapsync-go/pkg/lapsync/workbook"
)

// maxBodyBytes bounds an edit request body.
const maxBodyBytes = 64 << 10

// Timeouts for the listening http.Server.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server applies edits posted over HTTP to a single workbook file.
// Edits are serialized: each one opens, synchronizes and saves the
// workbook before the next starts.
type Server struct {
	router *chi.Mux
	path   string
	syncer *lapsync.Synchronizer
	log    *logging.Logger
	mu     sync.Mutex
}

// New creates a Server for the workbook at path.
func New(path string, s *lapsync.Synchronizer, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	srv := &Server{
		router: chi.NewRouter(),
		path:   path,
		syncer: s,
		log:    logger,
	}
	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	// Request lines are info-level output.
	if s.log.Level() >= logging.LevelInfo {
		s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.New(s.log.Writer(), "", log.LstdFlags),
			NoColor: true,
		}))
	}
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/edits", s.handleEdit)
		r.Get("/totals", s.handleTotals)
		r.Get("/regions", s.handleRegions)
	})
}

// HTTPServer returns an http.Server listening on addr with bounded
// read, write and idle timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	edit, err := ParseEdit(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Nothing below is cancellable once the workbook is open.
	if err := r.Context().Err(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	wb, err := workbook.Open(s.path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer wb.Close()

	result, err := workbook.ApplyEdit(wb, s.syncer, edit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := wb.Save(""); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to save workbook: %w", err))
		return
	}

	data, err := output.ToJSON(result, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := workbook.Open(s.path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer wb.Close()

	sheet := r.URL.Query().Get("sheet")
	if sheet == "" {
		sheet = wb.File().GetSheetName(wb.File().GetActiveSheetIndex())
	}
	totals, err := s.syncer.Totals(wb, sheet)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	data, err := output.TotalsToJSON(totals, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wb, err := workbook.Open(s.path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer wb.Close()

	regions := wb.Regions()
	if r.URL.Query().Get("all") == "" {
		sheet := r.URL.Query().Get("sheet")
		if sheet == "" {
			sheet = wb.File().GetSheetName(wb.File().GetActiveSheetIndex())
		}
		laps, durations, err := s.syncer.Regions(wb, sheet)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		regions = []models.Region{laps, durations}
	}

	data, err := output.RegionsToJSON(regions, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ParseEdit decodes an edit request body:
//
//	{"id": "...", "sheet": "Sheet1", "cell": "E5", "value": 4}
//
// The JSON type of value selects the cell value kind. Strings are parsed the
// way a spreadsheet parses typed input, so "4" is a number. The value key is
// required; an explicit null clears the cell. A missing id is replaced by a
// fresh UUID.
func ParseEdit(body []byte) (models.Edit, error) {
	if !gjson.ValidBytes(body) {
		return models.Edit{}, errors.New("request body is not valid JSON")
	}
	doc := gjson.ParseBytes(body)

	sheet := doc.Get("sheet").String()
	if sheet == "" {
		return models.Edit{}, errors.New("sheet is required")
	}
	ref, err := models.ParseCellRef(sheet, doc.Get("cell").String())
	if err != nil {
		return models.Edit{}, fmt.Errorf("invalid cell: %w", err)
	}

	value := doc.Get("value")
	if !value.Exists() {
		return models.Edit{}, errors.New("value is required")
	}

	id := doc.Get("id").String()
	if id == "" {
		id = uuid.NewString()
	}
	return models.Edit{ID: id, Ref: ref, Value: cellValueOf(value)}, nil
}

func cellValueOf(v gjson.Result) models.CellValue {
	switch v.Type {
	case gjson.Number:
		return models.Number(v.Float())
	case gjson.String:
		return models.ParseCellValue(v.Str)
	case gjson.Null:
		return models.Empty()
	default:
		return models.NonNumeric(v.Raw)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lapsync.ErrRegionNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workbook.ErrSheetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	data, _ := output.ErrorToJSON(err)
	writeJSON(w, status, data)
}
