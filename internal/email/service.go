// Package email serves the triaged inbox: an automation summarizes incoming
// mail into a spreadsheet tab; this service reads it, tracks read/reviewed
// state, and hands reply drafting to the LLM or the draft webhook.
package email

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"jazzy/internal/model"
	"jazzy/internal/webhook"
)

// SheetClient is the slice of the sheets client this service needs.
type SheetClient interface {
	Values(ctx context.Context, rangeA1 string) ([][]string, error)
	Update(ctx context.Context, rangeA1 string, values [][]string) error
	DeleteRow(ctx context.Context, sheetTitle string, rowIndex int) error
}

// ReplyDrafter produces an email reply body from the triage fields.
type ReplyDrafter interface {
	DraftEmailReply(ctx context.Context, from, subject, summary, instructions string) (string, error)
}

// Service reads the email tab and drives the triage actions.
type Service struct {
	sheet    SheetClient
	hooks    *webhook.Client
	drafter  ReplyDrafter
	tab      string
	draftURL string
}

// New creates an email Service.
func New(sheet SheetClient, hooks *webhook.Client, drafter ReplyDrafter, tab, draftURL string) *Service {
	return &Service{
		sheet:    sheet,
		hooks:    hooks,
		drafter:  drafter,
		tab:      tab,
		draftURL: draftURL,
	}
}

// List returns unread emails with a sender, newest first. Columns: ID (A),
// From (B), Subject (C), Summary (D), Date (E), Thread ID (F), Read (G);
// row 1 is the header.
func (s *Service) List(ctx context.Context) ([]model.EmailSummary, error) {
	rows, err := s.sheet.Values(ctx, s.tab+"!A2:G200")
	if err != nil {
		return nil, err
	}

	out := make([]model.EmailSummary, 0, len(rows))
	for i, row := range rows {
		e := model.EmailSummary{
			ID:       cell(row, 0),
			From:     cell(row, 1),
			Subject:  cell(row, 2),
			Summary:  cell(row, 3),
			Date:     cell(row, 4),
			ThreadID: cell(row, 5),
			Read:     isTrue(cell(row, 6)),
			RowIndex: i + 2,
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("email-%d", i)
		}
		if e.From == "" || e.Read {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return parseDate(out[i].Date).After(parseDate(out[j].Date))
	})
	return out, nil
}

// MarkRead flags the email at the given sheet row as read.
func (s *Service) MarkRead(ctx context.Context, rowIndex int) error {
	if rowIndex < 2 {
		return fmt.Errorf("email: row %d is not a data row", rowIndex)
	}
	rangeA1 := fmt.Sprintf("%s!G%d", s.tab, rowIndex)
	return s.sheet.Update(ctx, rangeA1, [][]string{{"TRUE"}})
}

// MarkReviewed removes the email row entirely; reviewed mail leaves the
// triage queue for good.
func (s *Service) MarkReviewed(ctx context.Context, rowIndex int) error {
	if rowIndex < 2 {
		return fmt.Errorf("email: row %d is not a data row", rowIndex)
	}
	return s.sheet.DeleteRow(ctx, s.tab, rowIndex)
}

// CreateDraft forwards a reply-draft request to the automation webhook, which
// creates the draft in the real mailbox.
func (s *Service) CreateDraft(ctx context.Context, from, subject, summary, instructions, threadID string) error {
	return s.hooks.Post(ctx, s.draftURL, map[string]string{
		"to":              ExtractAddress(from),
		"subject":         "Re: " + subject,
		"originalFrom":    from,
		"originalSubject": subject,
		"summary":         summary,
		"instructions":    instructions,
		"threadId":        threadID,
	})
}

// DraftReply asks the LLM for a reply body without creating anything.
func (s *Service) DraftReply(ctx context.Context, from, subject, summary, instructions string) (string, error) {
	if s.drafter == nil {
		return "", fmt.Errorf("email: reply drafting not configured")
	}
	return s.drafter.DraftEmailReply(ctx, from, subject, summary, instructions)
}

var addrRe = regexp.MustCompile(`<([^>]+)>`)

// ExtractAddress pulls the bare address out of a "Name <addr>" sender field,
// returning the input unchanged when no angle-bracket form is present.
func ExtractAddress(from string) string {
	if m := addrRe.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return from
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isTrue(v string) bool {
	switch strings.TrimSpace(v) {
	case "true", "TRUE", "True", "1":
		return true
	}
	return false
}

// parseDate best-effort parses the sheet's date column for ordering. Unknown
// formats sort last (zero time).
func parseDate(v string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
		"1/2/2006 15:04",
		"1/2/2006",
	} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t
		}
	}
	return time.Time{}
}
