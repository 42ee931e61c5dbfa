package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"

	"jazzy/internal/ics"
	"jazzy/internal/model"
)

// AgendaService is the day-agenda engine slice used by the agenda tool.
type AgendaService interface {
	Day(ctx context.Context, source string, target *ics.Date) ([]model.CalendarEvent, error)
	Sources() []string
}

// AgendaTool lets the model look up a day's events on any configured
// calendar source.
type AgendaTool struct {
	svc AgendaService
}

func NewAgendaTool(svc AgendaService) *AgendaTool {
	return &AgendaTool{svc: svc}
}

func (a *AgendaTool) Name() string {
	return "get_day_agenda"
}

func (a *AgendaTool) Definition() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        a.Name(),
		Description: openai.String("Get the calendar events for one day from a calendar source"),
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"source": map[string]any{
					"type":        "string",
					"description": "Calendar source name, one of: " + strings.Join(a.svc.Sources(), ", "),
				},
				"date": map[string]any{
					"type":        "string",
					"description": "Target date as YYYY-MM-DD; omit for today",
				},
			},
			"required": []string{"source"},
		},
	})
}

func (a *AgendaTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var payload struct {
		Source string `json:"source"`
		Date   string `json:"date"`
	}
	if err := json.Unmarshal(args, &payload); err != nil {
		return "", err
	}
	if payload.Source == "" {
		return "", errors.New("source is required")
	}

	var target *ics.Date
	if payload.Date != "" {
		d, err := ics.ParseDate(payload.Date)
		if err != nil {
			return "", err
		}
		target = &d
	}

	events, err := a.svc.Day(ctx, payload.Source, target)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "No events scheduled.", nil
	}

	var b strings.Builder
	for _, ev := range events {
		if ev.AllDay {
			fmt.Fprintf(&b, "- %s (all day)\n", ev.Title)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s to %s", ev.Title, ev.Start.Format("15:04"), ev.End.Format("15:04"))
		if ev.Location != "" {
			fmt.Fprintf(&b, " at %s", ev.Location)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
