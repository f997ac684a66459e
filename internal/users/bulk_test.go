package users

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, header []string, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), BulkSheet)
	if err := f.SetSheetRow(BulkSheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(BulkSheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParseWorkbookValidRows(t *testing.T) {
	r := workbook(t, BulkHeaders, [][]string{
		{"Asha Rao", "asha@example.com", "E-100", "Trainer", "Pune", "", "Banking", "Collections"},
		{"Dev Nair", "dev@example.com", "E-101", "trainee", "", "asha@example.com", "Banking", ""},
	})

	rows, rowErrs, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Line != 2 || first.FullName != "Asha Rao" || first.Email != "asha@example.com" {
		t.Errorf("row 1 parsed wrong: %+v", first)
	}
	if first.Role != "trainer" {
		t.Errorf("role not lowercased: %q", first.Role)
	}
	if rows[1].ManagerEmail != "asha@example.com" {
		t.Errorf("manager email = %q", rows[1].ManagerEmail)
	}
}

func TestParseWorkbookRowValidation(t *testing.T) {
	r := workbook(t, BulkHeaders, [][]string{
		{"", "noname@example.com", "E-1", "trainee", "", "", "", ""},
		{"Bad Email", "not-an-email", "E-2", "trainee", "", "", "", ""},
		{"Bad Role", "role@example.com", "E-3", "ceo", "", "", "", ""},
		{"Fine", "fine@example.com", "E-4", "manager", "", "", "", ""},
	})

	rows, rowErrs, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 1 || rows[0].Email != "fine@example.com" {
		t.Fatalf("valid rows = %+v, want only fine@example.com", rows)
	}
	if len(rowErrs) != 3 {
		t.Fatalf("rowErrs = %v, want 3 entries", rowErrs)
	}
	if !strings.Contains(rowErrs[0], "row 2") || !strings.Contains(rowErrs[0], "full name is required") {
		t.Errorf("missing-name error = %q", rowErrs[0])
	}
	if !strings.Contains(rowErrs[1], "not a valid email") {
		t.Errorf("bad-email error = %q", rowErrs[1])
	}
	if !strings.Contains(rowErrs[2], "role must be one of") {
		t.Errorf("bad-role error = %q", rowErrs[2])
	}
}

func TestParseWorkbookRequiresLOBForOperationalRoles(t *testing.T) {
	r := workbook(t, BulkHeaders, [][]string{
		{"No LOB Trainee", "t1@example.com", "E-1", "trainee", "", "", "", ""},
		{"No LOB Trainer", "t2@example.com", "E-2", "trainer", "", "", "", ""},
		{"No LOB QA", "t3@example.com", "E-3", "quality_analyst", "", "", "", ""},
		{"No LOB Manager", "m1@example.com", "E-4", "manager", "", "", "", ""},
		{"With LOB", "t4@example.com", "E-5", "trainee", "", "", "Banking", ""},
	})

	rows, rowErrs, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("valid rows = %d, want manager and LOB-carrying trainee only", len(rows))
	}
	if len(rowErrs) != 3 {
		t.Fatalf("rowErrs = %v, want 3 entries", rowErrs)
	}
	for i, e := range rowErrs {
		if !strings.Contains(e, "line of business is required for role") {
			t.Errorf("rowErrs[%d] = %q", i, e)
		}
	}
}

func TestParseWorkbookDuplicateEmail(t *testing.T) {
	r := workbook(t, BulkHeaders, [][]string{
		{"One", "same@example.com", "E-1", "trainee", "", "", "Banking", ""},
		{"Two", "Same@Example.com", "E-2", "trainee", "", "", "Banking", ""},
	})

	rows, rowErrs, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want first occurrence only", len(rows))
	}
	if len(rowErrs) != 1 || !strings.Contains(rowErrs[0], "duplicate email") {
		t.Errorf("rowErrs = %v, want one duplicate-email entry", rowErrs)
	}
}

func TestParseWorkbookSkipsBlankRows(t *testing.T) {
	r := workbook(t, BulkHeaders, [][]string{
		{"", "", "", "", "", "", "", ""},
		{"Real", "real@example.com", "E-1", "trainee", "", "", "Banking", ""},
	})

	rows, rowErrs, err := ParseWorkbook(r)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Errorf("blank row reported as error: %v", rowErrs)
	}
	if len(rows) != 1 || rows[0].Line != 3 {
		t.Errorf("rows = %+v, want the single real row at line 3", rows)
	}
}

func TestParseWorkbookBadHeader(t *testing.T) {
	header := append([]string{}, BulkHeaders...)
	header[1] = "E-mail Address"
	r := workbook(t, header, nil)

	if _, _, err := ParseWorkbook(r); err == nil {
		t.Fatal("ParseWorkbook accepted a mismatched header")
	}
}

func TestParseWorkbookWrongSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	if _, _, err := ParseWorkbook(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("ParseWorkbook accepted a workbook without the Users sheet")
	}
}
