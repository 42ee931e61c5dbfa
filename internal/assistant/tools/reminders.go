package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"

	"jazzy/internal/model"
)

// ReminderLister is the reminders service slice used by the reminders tool.
type ReminderLister interface {
	List(ctx context.Context) ([]model.Reminder, error)
}

// RemindersTool lets the model read the open reminder list.
type RemindersTool struct {
	svc ReminderLister
}

func NewRemindersTool(svc ReminderLister) *RemindersTool {
	return &RemindersTool{svc: svc}
}

func (r *RemindersTool) Name() string {
	return "list_reminders"
}

func (r *RemindersTool) Definition() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        r.Name(),
		Description: openai.String("List the user's open reminders"),
	})
}

func (r *RemindersTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	items, err := r.svc.List(ctx)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "No open reminders.", nil
	}

	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s", item.Task)
		if item.DueDate != "" {
			fmt.Fprintf(&b, " (due %s)", item.DueDate)
		}
		if item.List != "" {
			fmt.Fprintf(&b, " [%s]", item.List)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
