// Package reminders serves the personal reminder lists stored in the
// spreadsheet. Reads come from the tab synced down from the phone; new
// reminders go to a separate inbox tab that an automation syncs back up.
package reminders

import (
	"context"
	"fmt"
	"time"

	"jazzy/internal/model"
)

// DefaultList is the reminder list used when the caller does not name one.
const DefaultList = "Family Reminders"

// SheetClient is the slice of the sheets client this service needs.
type SheetClient interface {
	Values(ctx context.Context, rangeA1 string) ([][]string, error)
	Append(ctx context.Context, rangeA1 string, row []string) error
	Update(ctx context.Context, rangeA1 string, values [][]string) error
}

// Service reads and writes reminder rows.
type Service struct {
	sheet   SheetClient
	listTab string
	addTab  string
	now     func() time.Time
}

// New creates a reminders Service over the given tabs.
func New(sheet SheetClient, listTab, addTab string) *Service {
	return &Service{
		sheet:   sheet,
		listTab: listTab,
		addTab:  addTab,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for created-at stamps. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns open reminders: rows with a task and no completed marker.
// Columns: ID (A), Task (B), Due Date (C), List (D), Completed (E),
// Created At (F); data starts at row 2.
func (s *Service) List(ctx context.Context) ([]model.Reminder, error) {
	rows, err := s.sheet.Values(ctx, s.listTab+"!A2:F100")
	if err != nil {
		return nil, err
	}

	out := make([]model.Reminder, 0, len(rows))
	for i, row := range rows {
		r := model.Reminder{
			ID:        cell(row, 0),
			Task:      cell(row, 1),
			DueDate:   cell(row, 2),
			List:      cell(row, 3),
			Completed: cell(row, 4),
			CreatedAt: cell(row, 5),
			RowNumber: i + 2,
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("row-%d", r.RowNumber)
		}
		if r.Task == "" || r.Completed != "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Add appends a reminder to the inbox tab. list defaults to DefaultList.
func (s *Service) Add(ctx context.Context, task, dueDate, list string) error {
	if list == "" {
		list = DefaultList
	}
	now := s.now()
	createdAt := fmt.Sprintf("%d/%d", int(now.Month()), now.Day())

	// ID and Completed stay blank; the sync automation assigns them.
	row := []string{"", task, dueDate, list, "", createdAt}
	return s.sheet.Append(ctx, s.addTab+"!A:F", row)
}

// Complete marks the reminder at the given sheet row as done by writing the
// completed column.
func (s *Service) Complete(ctx context.Context, rowNumber int) error {
	if rowNumber < 2 {
		return fmt.Errorf("reminders: row %d is not a data row", rowNumber)
	}
	rangeA1 := fmt.Sprintf("%s!E%d", s.listTab, rowNumber)
	return s.sheet.Update(ctx, rangeA1, [][]string{{"Yes"}})
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
