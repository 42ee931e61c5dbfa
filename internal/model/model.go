package model

import "time"

// CalendarTag names the logical calendar an event belongs to. A merged feed
// carries no authoritative source metadata, so the tag is assigned by the
// classifier heuristics in internal/ics.
type CalendarTag string

const (
	CalendarWork   CalendarTag = "work"
	CalendarFamily CalendarTag = "family"
)

// CalendarEvent represents a single concrete occurrence of an event on the
// requested day (after recurrence expansion). Identity is unique per
// occurrence: recurring instances derive ID from UID plus the occurrence
// start key. Events are built fresh from the parsed feed on every request and
// never persisted.
type CalendarEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	AllDay      bool        `json:"allDay"`
	Calendar    CalendarTag `json:"calendar"`
}

// Reminder is a row from the reminders tab of the spreadsheet store.
// RowNumber is the 1-based sheet row, kept so completion can address the row
// later.
type Reminder struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	DueDate   string `json:"dueDate"`
	List      string `json:"list"`
	Completed string `json:"completed"`
	CreatedAt string `json:"createdAt"`
	RowNumber int    `json:"rowNumber"`
}

// WorkTask is a row from the work tasks tab.
type WorkTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Attach   string `json:"attachment"`
	Notes    string `json:"notes"`
	RowIndex int    `json:"rowIndex"`
}

// EmailSummary is a triaged email row from the email tab. Summary is the
// upstream automation's digest of the message body, not the body itself.
type EmailSummary struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Summary  string `json:"summary"`
	Date     string `json:"date"`
	ThreadID string `json:"threadId"`
	Read     bool   `json:"read"`
	RowIndex int    `json:"rowIndex"`
}

// ChatMessage is a single turn in an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
