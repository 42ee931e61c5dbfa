package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/openai/openai-go/v2"
)

// DateTool reports the current date and time in the reference timezone, so
// the model can resolve "today" and "tomorrow" the same way the calendar
// endpoints do.
type DateTool struct {
	loc *time.Location
	now func() time.Time
}

func NewDateTool(loc *time.Location) *DateTool {
	if loc == nil {
		loc = time.Local
	}
	return &DateTool{loc: loc, now: time.Now}
}

// WithClock overrides the clock. Test hook.
func (d *DateTool) WithClock(now func() time.Time) *DateTool {
	d.now = now
	return d
}

func (d *DateTool) Name() string {
	return "get_today_date"
}

func (d *DateTool) Definition() openai.ChatCompletionToolUnionParam {
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        d.Name(),
		Description: openai.String("Get the current date and time in RFC3339 format"),
	})
}

func (d *DateTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return d.now().In(d.loc).Format(time.RFC3339), nil
}
