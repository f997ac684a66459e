package users

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"github.com/qualitrack/backend/internal/models"
)

// BulkSheet is the worksheet bulk uploads are read from.
const BulkSheet = "Users"

// BulkHeaders is the expected first row of the upload worksheet, in order.
var BulkHeaders = []string{
	"Full Name", "Email", "Employee ID", "Role", "Location",
	"Manager Email", "Line of Business", "Process",
}

// MaxBulkRows caps a single upload. Larger rosters go through several files.
const MaxBulkRows = 2000

// BulkRow is one parsed and trimmed row of an upload workbook.
type BulkRow struct {
	Line         int    `json:"line"`
	FullName     string `json:"fullName" validate:"required,min=2,max=120"`
	Email        string `json:"email" validate:"required,email"`
	EmployeeID   string `json:"employeeId" validate:"required,max=40"`
	Role         string `json:"role" validate:"required,oneof=admin manager trainer quality_analyst trainee"`
	Location     string `json:"location" validate:"max=120"`
	ManagerEmail string `json:"managerEmail" validate:"omitempty,email"`
	LOB          string `json:"lineOfBusiness" validate:"max=120"`
	Process      string `json:"process" validate:"max=120"`
}

var validate = validator.New()

// ParseWorkbook reads the upload worksheet into rows, validating each one.
// Rows that fail validation are reported by line number and excluded from the
// result; a header or file level problem aborts the parse.
func ParseWorkbook(r io.Reader) ([]BulkRow, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(BulkSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("worksheet %q not found", BulkSheet)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("worksheet %q is empty", BulkSheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, nil, err
	}
	if len(rows)-1 > MaxBulkRows {
		return nil, nil, fmt.Errorf("too many rows: %d, maximum is %d", len(rows)-1, MaxBulkRows)
	}

	var (
		parsed []BulkRow
		errs   []string
		seen   = make(map[string]int)
	)
	for i, cells := range rows[1:] {
		line := i + 2
		row := rowFromCells(line, cells)
		if row.isBlank() {
			continue
		}
		if err := validate.Struct(&row); err != nil {
			errs = append(errs, describeRowErr(line, err))
			continue
		}
		if models.RoleRequiresLineOfBusiness(models.Role(row.Role)) && row.LOB == "" {
			errs = append(errs, fmt.Sprintf("row %d: line of business is required for role %s", line, row.Role))
			continue
		}
		key := strings.ToLower(row.Email)
		if first, dup := seen[key]; dup {
			errs = append(errs, fmt.Sprintf("row %d: duplicate email %s (first used on row %d)", line, row.Email, first))
			continue
		}
		seen[key] = line
		parsed = append(parsed, row)
	}
	return parsed, errs, nil
}

func checkHeader(header []string) error {
	for i, want := range BulkHeaders {
		if i >= len(header) || !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("unexpected header in column %d: want %q", i+1, want)
		}
	}
	return nil
}

func rowFromCells(line int, cells []string) BulkRow {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	return BulkRow{
		Line:         line,
		FullName:     cell(0),
		Email:        cell(1),
		EmployeeID:   cell(2),
		Role:         strings.ToLower(cell(3)),
		Location:     cell(4),
		ManagerEmail: cell(5),
		LOB:          cell(6),
		Process:      cell(7),
	}
}

func (r *BulkRow) isBlank() bool {
	return r.FullName == "" && r.Email == "" && r.EmployeeID == "" && r.Role == "" &&
		r.Location == "" && r.ManagerEmail == "" && r.LOB == "" && r.Process == ""
}

func describeRowErr(line int, err error) string {
	var verr validator.ValidationErrors
	if ok := isValidationErrors(err, &verr); ok && len(verr) > 0 {
		fe := verr[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("row %d: %s is required", line, fieldLabel(fe.Field()))
		case "email":
			return fmt.Sprintf("row %d: %s is not a valid email", line, fieldLabel(fe.Field()))
		case "oneof":
			return fmt.Sprintf("row %d: %s must be one of %s", line, fieldLabel(fe.Field()), fe.Param())
		default:
			return fmt.Sprintf("row %d: %s is invalid", line, fieldLabel(fe.Field()))
		}
	}
	return fmt.Sprintf("row %d: %v", line, err)
}

func isValidationErrors(err error, out *validator.ValidationErrors) bool {
	verr, ok := err.(validator.ValidationErrors)
	if ok {
		*out = verr
	}
	return ok
}

func fieldLabel(field string) string {
	switch field {
	case "FullName":
		return "full name"
	case "EmployeeID":
		return "employee ID"
	case "ManagerEmail":
		return "manager email"
	case "LOB":
		return "line of business"
	default:
		return strings.ToLower(field)
	}
}
