package server

import (
	"fmt"
	"net/http"
	"time"
)

var exportContentTypes = map[string]string{
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":  "text/csv",
	"json": "application/json",
}

// handleExport serves the stored invoices in the requested format. The
// window comes from optional "from"/"to" query params in YYYY-MM-DD form.
func (h *handlers) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.deps.Export == nil {
			http.Error(w, "exports unavailable", http.StatusServiceUnavailable)
			return
		}

		from, err := parseDateParam(r.URL.Query().Get("from"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		to, err := parseDateParam(r.URL.Query().Get("to"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var data []byte
		switch format {
		case "xlsx":
			data, err = h.deps.Export.ExportXLSX(r.Context(), from, to)
		case "csv":
			data, err = h.deps.Export.ExportCSV(r.Context(), from, to)
		case "json":
			data, err = h.deps.Export.ExportJSON(r.Context(), from, to)
		default:
			http.Error(w, "unsupported format", http.StatusBadRequest)
			return
		}
		if err != nil {
			h.logger.Error("export failed", "format", format, "error", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}

		name := fmt.Sprintf("facturas_%s.%s", time.Now().Format("20060102_150405"), format)
		w.Header().Set("Content-Type", exportContentTypes[format])
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return &t, nil
}
