package sheet

import (
	"errors"
	"fmt"
	"strings"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	ColumnRecordingURL = "recording_url"
	ColumnMobileNumber = "mobile_number"
	ColumnTranscript   = "transcript"
)

// ErrMissingRecordingURL is the run-fatal precondition for a workbook
// without the mandatory recording_url column.
var ErrMissingRecordingURL = errors.New("workbook has no recording_url column")

// ErrNoRows is returned for a workbook with a header but no data rows.
var ErrNoRows = errors.New("workbook has no data rows")

// Workbook wraps an open xlsx file together with the resolved column
// layout. All columns other than transcript are passed through untouched.
type Workbook struct {
	file          *excelize.File
	sheetName     string
	urlCol        int // 0-based
	labelCol      int // -1 when absent
	transcriptCol int
	rowCount      int
}

// Load opens a workbook and extracts one Row per data row of the first
// sheet. Row indices are 0-based and match input order.
func Load(path string) (*Workbook, []model.Row, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheetName := file.GetSheetName(0)
	allRows, err := file.GetRows(sheetName)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	if len(allRows) == 0 {
		file.Close()
		return nil, nil, ErrMissingRecordingURL
	}

	header := allRows[0]
	urlCol := findColumn(header, ColumnRecordingURL)
	if urlCol < 0 {
		file.Close()
		return nil, nil, ErrMissingRecordingURL
	}
	labelCol := findColumn(header, ColumnMobileNumber)

	transcriptCol := findColumn(header, ColumnTranscript)
	if transcriptCol < 0 {
		transcriptCol = len(header)
	}

	dataRows := allRows[1:]
	if len(dataRows) == 0 {
		file.Close()
		return nil, nil, ErrNoRows
	}

	rows := make([]model.Row, 0, len(dataRows))
	for i, cells := range dataRows {
		rows = append(rows, model.Row{
			Index:        i,
			RecordingURL: cellAt(cells, urlCol),
			Label:        cellAt(cells, labelCol),
		})
	}

	logger.Info("Workbook loaded",
		zap.String("path", path),
		zap.String("sheet", sheetName),
		zap.Int("rows", len(rows)))

	return &Workbook{
		file:          file,
		sheetName:     sheetName,
		urlCol:        urlCol,
		labelCol:      labelCol,
		transcriptCol: transcriptCol,
		rowCount:      len(rows),
	}, rows, nil
}

// WriteTranscripts writes each row's transcript into the transcript column,
// creating the column header when the input lacked one. Row order and count
// must match the rows returned by Load.
func (w *Workbook) WriteTranscripts(rows []model.Row) error {
	if len(rows) != w.rowCount {
		return fmt.Errorf("row count mismatch: loaded %d, got %d", w.rowCount, len(rows))
	}

	headerCell, err := excelize.CoordinatesToCellName(w.transcriptCol+1, 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header cell: %w", err)
	}
	if err := w.file.SetCellValue(w.sheetName, headerCell, ColumnTranscript); err != nil {
		return fmt.Errorf("failed to write transcript header: %w", err)
	}

	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(w.transcriptCol+1, row.Index+2)
		if err != nil {
			return fmt.Errorf("failed to resolve cell for row %d: %w", row.Index, err)
		}
		if err := w.file.SetCellValue(w.sheetName, cell, row.Transcript); err != nil {
			return fmt.Errorf("failed to write transcript for row %d: %w", row.Index, err)
		}
	}

	return nil
}

// Save writes the workbook to path.
func (w *Workbook) Save(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Info("Workbook saved", zap.String("path", path))
	return nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func findColumn(header []string, name string) int {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), name) {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}
