package services

import (
	"context"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/iftarlantern/internal/errors"
)

// HistorySheet is the worksheet name in the history workbook
const HistorySheet = "History"

// HistoryWorkbook exports the combo history as an XLSX file: an "At" column
// followed by one column per category, newest combo first
func (s *PlannerService) HistoryWorkbook(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	doc := s.doc.Clone()
	s.mu.Unlock()

	cats := s.registry.All()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to prepare workbook")
	}
	sw, err := f.NewStreamWriter(HistorySheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to prepare workbook")
	}

	header := make([]interface{}, 0, len(cats)+1)
	header = append(header, "At")
	for _, cat := range cats {
		header = append(header, cat.Label)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to write workbook")
	}

	for i, entry := range doc.History {
		row := make([]interface{}, 0, len(cats)+1)
		row = append(row, entry.At.UTC().Format(time.RFC3339))
		for _, cat := range cats {
			row = append(row, strings.Join(entry.Combo[cat.ID], ", "))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(cell, row); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to write workbook")
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to write workbook")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode workbook")
	}
	s.log.Debug("history workbook exported", "rows", len(doc.History))
	return buf.Bytes(), nil
}
