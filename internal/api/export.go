package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dharsanguruparan/RecruitDesk/internal/export"
)

// handleExport godoc
// @Summary Download candidates as an xlsx workbook
// @Description GET reads the filter from the query string, POST from a JSON body. Dates follow Accept-Language.
// @Tags export
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param ids query string false "Comma separated candidate ids"
// @Param name query string false "Name contains"
// @Param jobType query string false "Exact job type"
// @Param company query string false "Current company contains"
// @Param school query string false "School contains"
// @Param status query string false "Exact status"
// @Success 200 {file} binary
// @Failure 404 {object} result
// @Router /export [get]
// @Router /export [post]
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var filter export.Filter
	switch r.Method {
	case http.MethodGet:
		filter = filterFromQuery(r)
	case http.MethodPost:
		if err := decodeJSON(w, r, &filter); err != nil {
			respondError(w, err)
			return
		}
	default:
		methodNotAllowed(w)
		return
	}
	opts := export.Options{DateLayout: export.DateLayout(r.Header.Get("Accept-Language"))}
	file, err := s.deps.Exports.Export(r.Context(), filter, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func filterFromQuery(r *http.Request) export.Filter {
	q := r.URL.Query()
	f := export.Filter{
		Name:           strings.TrimSpace(q.Get("name")),
		JobType:        strings.TrimSpace(q.Get("jobType")),
		CurrentCompany: strings.TrimSpace(q.Get("company")),
		School:         strings.TrimSpace(q.Get("school")),
		Status:         strings.TrimSpace(q.Get("status")),
	}
	for _, id := range strings.Split(q.Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			f.IDs = append(f.IDs, id)
		}
	}
	return f
}
