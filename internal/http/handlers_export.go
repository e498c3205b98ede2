package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"baketrack/internal/core"
	"baketrack/internal/export"
	"baketrack/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "text/csv; charset=utf-8", export.CSVFilename(s.now()), export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, xlsxContentType, export.XLSXFilename(s.now()), export.WriteXLSX)
}

// serveExport writes every transaction, unfiltered, as a download.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(io.Writer, []core.Transaction) error) {
	logger := log.FromContext(r.Context())

	dash, err := s.dash.Snapshot(r.Context())
	if err != nil {
		s.appMetrics.backendFailures.Add(1)
		logger.ErrorContext(r.Context(), "Export failed to load transactions", log.FieldError, err)
		http.Error(w, "failed to load transactions", http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, dash.Transactions); err != nil {
		logger.ErrorContext(r.Context(), "Export encoding failed", log.FieldError, err, "file", filename)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	s.appMetrics.exportsServed.Add(1)
	logger.InfoContext(r.Context(), "Report exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(dash.Transactions),
		"file", filename)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
