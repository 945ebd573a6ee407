package utils

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"cosmosfeed/internal/models"
)

const samplesSheet = "Samples"

// CreateSamplesExcel создает Excel файл с записями space_caches одного источника.
// Записи ожидаются в порядке от новых к старым.
func CreateSamplesExcel(filepath, source string, records []models.SpaceCache) error {
	f := excelize.NewFile()
	defer f.Close()

	// лист по умолчанию переименовываем под данные
	if err := f.SetSheetName("Sheet1", samplesSheet); err != nil {
		return err
	}

	headers := []string{"ID", "Source", "Fetched At", "Payload"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(samplesSheet, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, record := range records {
		rowNum := rowIdx + 2

		values := []interface{}{
			record.ID,
			record.Source,
			record.FetchedAt.UTC().Format(time.RFC3339),
			string(record.Payload),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowNum)
			if err := f.SetCellValue(samplesSheet, cell, value); err != nil {
				return err
			}
		}
	}

	// Ширина колонок
	widths := []float64{10, 12, 24, 80}
	for i, width := range widths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(samplesSheet, colName, colName, width); err != nil {
			return err
		}
	}

	if err := createInfoSheet(f, source, records); err != nil {
		return err
	}

	index, err := f.GetSheetIndex(samplesSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	return f.SaveAs(filepath)
}

func createInfoSheet(f *excelize.File, source string, records []models.SpaceCache) error {
	if _, err := f.NewSheet("Info"); err != nil {
		return err
	}

	rows := [][2]interface{}{
		{"Report Generated", time.Now().UTC().Format(time.RFC3339)},
		{"Source", source},
		{"Total Records", len(records)},
	}
	if len(records) > 0 {
		newest := records[0].FetchedAt.UTC().Format(time.RFC3339)
		oldest := records[len(records)-1].FetchedAt.UTC().Format(time.RFC3339)
		rows = append(rows, [2]interface{}{"Time Range", fmt.Sprintf("%s to %s", oldest, newest)})
	}

	for i, row := range rows {
		if err := f.SetCellValue("Info", fmt.Sprintf("A%d", i+1), row[0]); err != nil {
			return err
		}
		if err := f.SetCellValue("Info", fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return err
		}
	}
	return nil
}
