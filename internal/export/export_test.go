package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dharsanguruparan/RecruitDesk/internal/model"
)

func strPtr(s string) *string { return &s }

func sampleCandidates() []model.Candidate {
	created := time.Date(2024, 3, 7, 15, 4, 0, 0, time.UTC)
	return []model.Candidate{
		{
			ID:             "c1",
			Name:           "Ada Lovelace",
			Email:          strPtr("ada@x.com"),
			JobType:        model.JobSoftwareEngineer,
			CurrentCompany: strPtr("Analytical Engines Ltd"),
			School:         strPtr("UCL"),
			Status:         model.StatusInterviewing,
			CreatedAt:      created,
			UpdatedAt:      created.Add(48 * time.Hour),
		},
		{
			ID:        "c2",
			Name:      "Bob",
			JobType:   model.JobDesigner,
			Status:    model.StatusNew,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func TestRowsFlattenInHeaderOrder(t *testing.T) {
	rows := Rows(sampleCandidates(), Options{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	ada := rows[0]
	if len(ada) != len(Headers) {
		t.Fatalf("row has %d cells, want %d", len(ada), len(Headers))
	}
	if ada[0] != "Ada Lovelace" || ada[1] != "ada@x.com" || ada[4] != "software_engineer" || ada[9] != "interviewing" {
		t.Fatalf("unexpected row %v", ada)
	}
	if ada[11] != "3/7/2024" || ada[12] != "3/9/2024" {
		t.Fatalf("dates should use the default layout: %v", ada[11:])
	}
	bob := rows[1]
	if bob[1] != "" || bob[2] != "" || bob[10] != "" {
		t.Fatalf("absent values should be empty strings: %v", bob)
	}
}

func TestColumnWidthsUseHeaderFloor(t *testing.T) {
	widths := ColumnWidths(Rows(sampleCandidates(), Options{}))
	if widths[0] != len("Ada Lovelace")+2 {
		t.Fatalf("name width = %d", widths[0])
	}
	if widths[2] != len("Phone")+2 {
		t.Fatalf("empty column should fall back to header width, got %d", widths[2])
	}
	if widths[5] != len("Analytical Engines Ltd")+2 {
		t.Fatalf("company width = %d", widths[5])
	}
}

func TestWriteProducesReadableWorkbook(t *testing.T) {
	data, err := Write(sampleCandidates(), Options{DateLayout: "2006-01-02"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Name" || rows[0][12] != "Updated At" {
		t.Fatalf("unexpected sheet contents %v", rows)
	}
	if rows[1][0] != "Ada Lovelace" || rows[1][11] != "2024-03-07" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	width, err := f.GetColWidth(SheetName, "A")
	if err != nil || width != float64(len("Ada Lovelace")+2) {
		t.Fatalf("column A width = %v %v", width, err)
	}
}

func TestWriteEmptyStillHasHeader(t *testing.T) {
	data, err := Write(nil, Options{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 || len(rows[0]) != len(Headers) {
		t.Fatalf("expected header only, got %v", rows)
	}
}

func TestFilter(t *testing.T) {
	all := sampleCandidates()
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"c1", "c2"}},
		{"name contains", Filter{Name: "LOVE"}, []string{"c1"}},
		{"company", Filter{CurrentCompany: "engines"}, []string{"c1"}},
		{"company absent", Filter{CurrentCompany: "x"}, nil},
		{"job type exact", Filter{JobType: "designer"}, []string{"c2"}},
		{"job type partial", Filter{JobType: "design"}, nil},
		{"status", Filter{Status: "interviewing"}, []string{"c1"}},
		{"ids", Filter{IDs: []string{"c2", "c9"}}, []string{"c2"}},
		{"combined", Filter{Name: "a", School: "ucl"}, []string{"c1"}},
	}
	for _, tc := range cases {
		got := tc.filter.Apply(all)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %d candidates, want %v", tc.name, len(got), tc.want)
			continue
		}
		for i, c := range got {
			if c.ID != tc.want[i] {
				t.Errorf("%s: got %s at %d, want %s", tc.name, c.ID, i, tc.want[i])
			}
		}
	}
}

func TestDateLayout(t *testing.T) {
	cases := map[string]string{
		"":               "1/2/2006",
		"en-US,en;q=0.9": "1/2/2006",
		"en-GB,en;q=0.8": "02/01/2006",
		"de-DE":          "2.1.2006",
		"zh-CN,zh;q=0.9": "2006/1/2",
	}
	for header, want := range cases {
		if got := DateLayout(header); got != want {
			t.Errorf("DateLayout(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := FileName(false, at); got != "candidates-2024-03-07.xlsx" {
		t.Fatalf("full export name %q", got)
	}
	if got := FileName(true, at); got != "candidates_filtered_export_2024-03-07T15-04-05.xlsx" {
		t.Fatalf("filtered export name %q", got)
	}
}
