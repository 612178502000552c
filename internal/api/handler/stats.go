package handler

import (
	"errors"
	"net/http"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/services/roster"
	"github.com/mcoot/arise-roster/internal/services/spreadsheet"
)

// uploadField is the multipart field carrying the workbook
const uploadField = "excelFile"

// StatsHandler handles the summary and spreadsheet endpoints
type StatsHandler struct {
	roster        *roster.Service
	spreadsheet   *spreadsheet.Service
	maxUploadSize int64
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(roster *roster.Service, spreadsheet *spreadsheet.Service, maxUploadSize int64) *StatsHandler {
	return &StatsHandler{
		roster:        roster,
		spreadsheet:   spreadsheet,
		maxUploadSize: maxUploadSize,
	}
}

// Summary handles GET /api/stats/summary
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.roster.Summary(r.Context(), middleware.GetSession(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

// Export handles GET /api/stats/export/excel
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	wb, err := h.spreadsheet.Export(r.Context(), middleware.MustGetSession(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Attachment(w, spreadsheet.ContentTypeXLSX, wb.Filename, wb.Data)
}

// Import handles POST /api/stats/import/excel
func (h *StatsHandler) Import(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	// multipart framing adds a little on top of the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+64<<10)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, NewPayloadTooLargeError())
			return
		}
		WriteError(w, NewInvalidRequestError("No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		WriteError(w, NewPayloadTooLargeError())
		return
	}
	if err := spreadsheet.CheckContentType(header.Header.Get("Content-Type")); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.spreadsheet.Import(r.Context(), session, file)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Import{Message: "Import completed", ImportResult: *result})
}
