// Package export flattens candidates into an xlsx workbook.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

// SheetName is the single worksheet in every export.
const SheetName = "Candidates"

// ContentType is the media type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers is the fixed column order.
var Headers = []string{
	"Name", "Email", "Phone", "WeChat", "Job Type", "Current Company", "School",
	"LinkedIn", "Google Scholar", "Status", "Resume URL", "Created At", "Updated At",
}

// Filter narrows an export. Zero fields match everything.
type Filter struct {
	IDs            []string `json:"ids,omitempty"`
	Name           string   `json:"name,omitempty"`
	JobType        string   `json:"jobType,omitempty"`
	CurrentCompany string   `json:"currentCompany,omitempty"`
	School         string   `json:"school,omitempty"`
	Status         string   `json:"status,omitempty"`
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return len(f.IDs) > 0 || f.Name != "" || f.JobType != "" || f.CurrentCompany != "" || f.School != "" || f.Status != ""
}

// Match reports whether c satisfies every criterion.
func (f Filter) Match(c model.Candidate) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, c.ID) {
		return false
	}
	if f.JobType != "" && string(c.JobType) != f.JobType {
		return false
	}
	if f.Status != "" && string(c.Status) != f.Status {
		return false
	}
	return containsFold(c.Name, f.Name) &&
		containsFold(model.StringValue(c.CurrentCompany), f.CurrentCompany) &&
		containsFold(model.StringValue(c.School), f.School)
}

// Apply returns the candidates that match, preserving order.
func (f Filter) Apply(candidates []model.Candidate) []model.Candidate {
	if !f.Active() {
		return candidates
	}
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsFold(value, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

// Options controls how values are rendered.
type Options struct {
	DateLayout string
	Location   *time.Location
}

func (o Options) withDefaults() Options {
	if o.DateLayout == "" {
		o.DateLayout = defaultLayout
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Rows flattens candidates into string cells, one slice per candidate in
// Headers order. Absent values become empty strings.
func Rows(candidates []model.Candidate, opts Options) [][]string {
	opts = opts.withDefaults()
	date := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(opts.Location).Format(opts.DateLayout)
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			c.Name,
			model.StringValue(c.Email),
			model.StringValue(c.Phone),
			model.StringValue(c.Wechat),
			string(c.JobType),
			model.StringValue(c.CurrentCompany),
			model.StringValue(c.School),
			model.StringValue(c.LinkedinURL),
			model.StringValue(c.GoogleScholar),
			string(c.Status),
			model.StringValue(c.ResumeURL),
			date(c.CreatedAt),
			date(c.UpdatedAt),
		})
	}
	return rows
}

// ColumnWidths sizes each column to its widest cell, header included, plus
// two characters of padding.
func ColumnWidths(rows [][]string) []int {
	widths := make([]int, len(Headers))
	for i, h := range Headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}
	return widths
}

// Write renders candidates as an xlsx workbook.
func Write(candidates []model.Candidate, opts Options) ([]byte, error) {
	rows := Rows(candidates, opts)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, 1, Headers); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}
	for i, w := range ColumnWidths(rows) {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(w)); err != nil {
			return nil, fmt.Errorf("set width %s: %w", col, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

// FileName names the download. Filtered exports carry a full timestamp.
func FileName(filtered bool, now time.Time) string {
	now = now.UTC()
	if filtered {
		return "candidates_filtered_export_" + now.Format("2006-01-02T15-04-05") + ".xlsx"
	}
	return "candidates-" + now.Format("2006-01-02") + ".xlsx"
}

const defaultLayout = "1/2/2006"

var (
	localeTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Chinese,
		language.Japanese,
		language.Korean,
	}
	localeLayouts = []string{
		defaultLayout,
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2006/1/2",
		"2006/01/02",
		"2006. 1. 2.",
	}
	localeMatcher = language.NewMatcher(localeTags)
)

// DateLayout picks a short date layout for an Accept-Language header value.
// Unknown or empty preferences fall back to the US layout.
func DateLayout(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return defaultLayout
	}
	_, idx, conf := localeMatcher.Match(prefs...)
	if conf == language.No {
		return defaultLayout
	}
	return localeLayouts[idx]
}
