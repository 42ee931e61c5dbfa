// Package tasks serves the work task list. Reads come from the spreadsheet
// tab an automation keeps in sync with the upstream task manager; writes go
// through the automation webhooks, which own the real mutations.
package tasks

import (
	"context"
	"fmt"

	"jazzy/internal/model"
	"jazzy/internal/webhook"
)

// SheetClient is the read slice of the sheets client this service needs.
type SheetClient interface {
	Values(ctx context.Context, rangeA1 string) ([][]string, error)
}

// Service lists work tasks and forwards mutations to the automation.
type Service struct {
	sheet       SheetClient
	hooks       *webhook.Client
	tab         string
	addURL      string
	completeURL string
}

// New creates a tasks Service.
func New(sheet SheetClient, hooks *webhook.Client, tab, addURL, completeURL string) *Service {
	return &Service{
		sheet:       sheet,
		hooks:       hooks,
		tab:         tab,
		addURL:      addURL,
		completeURL: completeURL,
	}
}

// List returns titled work task rows. Columns: Title (A), Due Date (B),
// Attachment (C), Notes (D); row 1 is the header.
func (s *Service) List(ctx context.Context) ([]model.WorkTask, error) {
	rows, err := s.sheet.Values(ctx, s.tab+"!A2:D100")
	if err != nil {
		return nil, err
	}

	out := make([]model.WorkTask, 0, len(rows))
	for i, row := range rows {
		t := model.WorkTask{
			ID:       fmt.Sprintf("work-task-%d", i),
			Title:    cell(row, 0),
			DueDate:  cell(row, 1),
			Attach:   cell(row, 2),
			Notes:    cell(row, 3),
			RowIndex: i + 2,
		}
		if t.Title == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Add forwards a new task to the creation webhook.
func (s *Service) Add(ctx context.Context, task, dueDate, notes string) error {
	return s.hooks.Post(ctx, s.addURL, map[string]string{
		"task":    task,
		"dueDate": dueDate,
		"notes":   notes,
	})
}

// Complete forwards a completion to the completion webhook. taskID may be
// empty; the automation matches on the title in that case.
func (s *Service) Complete(ctx context.Context, task, taskID string) error {
	return s.hooks.Post(ctx, s.completeURL, map[string]string{
		"task":   task,
		"taskId": taskID,
	})
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
