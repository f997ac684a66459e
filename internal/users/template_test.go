package users

import (
	"bytes"
	"testing"

	"github.com/qualitrack/backend/internal/models"
)

func TestBuildTemplateRoundTrips(t *testing.T) {
	f, err := BuildTemplate(TemplateData{
		Locations:      []string{"Pune", "Bengaluru"},
		LineOfBusiness: []models.LineOfBusiness{{Name: "Banking"}, {Name: "Retail"}},
		ProcessesByLOB: map[string][]string{
			"Banking": {"Cards Support", "Collections"},
		},
		IncludeExamples: true,
	})
	if err != nil {
		t.Fatalf("BuildTemplate: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{BulkSheet, "Locations", "Processes", "Roles"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}

	// The generated workbook must parse back through the upload path.
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	rows, rowErrs, err := ParseWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseWorkbook on template: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Errorf("example rows fail validation: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Errorf("example rows = %d, want 2", len(rows))
	}

	procRows, err := f.GetRows("Processes")
	if err != nil {
		t.Fatal(err)
	}
	// Header, two Banking processes, a blank-process Retail line.
	if len(procRows) != 4 {
		t.Errorf("Processes rows = %d, want 4", len(procRows))
	}
}

func TestBuildTemplateWithoutExamples(t *testing.T) {
	f, err := BuildTemplate(TemplateData{})
	if err != nil {
		t.Fatalf("BuildTemplate: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	rows, rowErrs, err := ParseWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseWorkbook on empty template: %v", err)
	}
	if len(rows) != 0 || len(rowErrs) != 0 {
		t.Errorf("empty template parsed rows %v errs %v, want none", rows, rowErrs)
	}
}
