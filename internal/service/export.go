package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dharsanguruparan/RecruitDesk/internal/apperr"
	"github.com/dharsanguruparan/RecruitDesk/internal/export"
)

// ExportFile is a generated spreadsheet download.
type ExportFile struct {
	Name  string
	Data  []byte
	Count int
}

// ExportService renders the caller's candidates as a spreadsheet.
type ExportService struct {
	store CandidateStore
	now   func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(store CandidateStore) *ExportService {
	return &ExportService{store: store, now: time.Now}
}

// Export builds a workbook of the caller's candidates narrowed by filter. An
// active filter that matches nothing is reported as not found; an
// unfiltered export of an empty list yields a header-only sheet.
func (s *ExportService) Export(ctx context.Context, filter export.Filter, opts export.Options) (*ExportFile, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListCandidates(ctx, userID)
	if err != nil {
		return nil, apperr.Boundary(err, "failed to export candidates")
	}
	selected := filter.Apply(all)
	if filter.Active() && len(selected) == 0 {
		return nil, apperr.NotFound("no candidates found matching the filter criteria")
	}
	data, err := export.Write(selected, opts)
	if err != nil {
		slog.Error("export write failed", "user_id", userID, "error", err)
		return nil, apperr.Boundary(err, "failed to export candidates")
	}
	return &ExportFile{Name: export.FileName(filter.Active(), s.now()), Data: data, Count: len(selected)}, nil
}
