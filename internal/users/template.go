package users

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/qualitrack/backend/internal/models"
)

// TemplateData carries the organization specific values rendered into the
// reference sheets of the bulk upload template.
type TemplateData struct {
	Locations       []string
	LineOfBusiness  []models.LineOfBusiness
	ProcessesByLOB  map[string][]string
	IncludeExamples bool
}

// BuildTemplate produces the workbook users download before a bulk upload.
// The Users sheet carries the expected headers and optional example rows, and
// the reference sheets list the valid locations, lines of business with their
// processes, and the role hierarchy.
func BuildTemplate(data TemplateData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", BulkSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(BulkSheet, "A1", toAnySlice(BulkHeaders)); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(BulkHeaders))
		_ = f.SetCellStyle(BulkSheet, "A1", lastCol+"1", bold)
	}
	for i := range BulkHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(BulkSheet, col, col, 24)
	}

	if data.IncludeExamples {
		examples := [][]any{
			{"Asha Nair", "asha.nair@example.com", "EMP-1042", "trainer", "Bengaluru", "ravi.menon@example.com", "Banking", "Cards Support"},
			{"Ravi Menon", "ravi.menon@example.com", "EMP-0917", "manager", "Bengaluru", "", "Banking", ""},
		}
		for i, row := range examples {
			if err := f.SetSheetRow(BulkSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
				return nil, err
			}
		}
	}

	if err := writeListSheet(f, "Locations", "Location", data.Locations); err != nil {
		return nil, err
	}
	if err := writeProcessSheet(f, data); err != nil {
		return nil, err
	}
	if err := writeRoleSheet(f); err != nil {
		return nil, err
	}
	return f, nil
}

func writeListSheet(f *excelize.File, sheet, header string, values []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", header); err != nil {
		return err
	}
	for i, v := range values {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), v); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func writeProcessSheet(f *excelize.File, data TemplateData) error {
	const sheet = "Processes"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Line of Business", "Process"}); err != nil {
		return err
	}
	row := 2
	for _, lob := range data.LineOfBusiness {
		procs := data.ProcessesByLOB[lob.Name]
		if len(procs) == 0 {
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{lob.Name, ""}); err != nil {
				return err
			}
			row++
			continue
		}
		for _, p := range procs {
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{lob.Name, p}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(sheet, "A", "B", 28)
}

func writeRoleSheet(f *excelize.File) error {
	const sheet = "Roles"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Role", "Reports to"},
		{"admin", ""},
		{"manager", "admin"},
		{"trainer", "manager"},
		{"quality_analyst", "manager"},
		{"trainee", "trainer"},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "B", 20)
}

func toAnySlice(in []string) *[]any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return &out
}
