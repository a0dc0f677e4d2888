package user

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/frahmantamala/business-management/internal/core/query"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Nhân sự"

var ExportHeader = []string{
	"Email",
	"Họ và tên",
	"Phòng ban",
	"Chức vụ",
	"Cấp truy cập",
	"Trạng thái",
	"Dự án",
}

var exportWidths = []float64{32, 28, 20, 20, 14, 14, 30}

var accessLevelNames = map[int]string{
	userDatamodel.AccessAdmin:    "Admin",
	userDatamodel.AccessDirector: "Director",
	userDatamodel.AccessManager:  "Manager",
	userDatamodel.AccessStaff:    "Staff",
}

// Export writes the filtered personnel list as an xlsx workbook.
func (s *Service) Export(ctx context.Context, f query.Filter) ([]byte, error) {
	res, err := s.repo.List(ctx, f, query.Page{PageSize: query.AllRows})
	if err != nil {
		return nil, err
	}
	data, err := BuildWorkbook(res.Data)
	if err != nil {
		s.logger.Error("Personnel: failed to build export", "error", err)
		return nil, err
	}
	s.logger.Info("Personnel: exported users", "count", len(res.Data))
	return data, nil
}

func BuildWorkbook(users []userDatamodel.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range ExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(exportSheet, colName, colName, exportWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, u := range users {
		row := []interface{}{
			u.Email,
			u.FullName,
			u.Department,
			u.Position,
			accessLevelNames[u.AccessLevel],
			u.WorkStatus,
			strings.Join(u.ProjectIDs, ", "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
