package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// extractXLSX returns one element per non-empty row, prefixed with its sheet name.
func extractXLSX(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var rows []string
	for _, sheet := range f.GetSheetList() {
		values, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		for _, row := range values {
			if line := rowLine(sheet, row); line != "" {
				rows = append(rows, line)
			}
		}
	}
	return rows, nil
}

// extractXLS handles legacy BIFF workbooks.
func extractXLS(data []byte) ([]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var rows []string
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		for _, row := range sheet.GetRows() {
			if line := rowLine(sheet.GetName(), xlsRowValues(row.GetCols())); line != "" {
				rows = append(rows, line)
			}
		}
	}
	return rows, nil
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}

func rowLine(sheet string, cells []string) string {
	empty := true
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			empty = false
			break
		}
	}
	if empty {
		return ""
	}
	return sheet + ": " + strings.TrimRight(strings.Join(cells, "\t"), "\t")
}
