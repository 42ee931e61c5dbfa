package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jazzy/internal/webhook"
)

type fakeSheet struct {
	values [][]string
	err    error

	updateRange  string
	updateValues [][]string

	deletedTab string
	deletedRow int
}

func (f *fakeSheet) Values(ctx context.Context, rangeA1 string) ([][]string, error) {
	return f.values, f.err
}

func (f *fakeSheet) Update(ctx context.Context, rangeA1 string, values [][]string) error {
	f.updateRange = rangeA1
	f.updateValues = values
	return f.err
}

func (f *fakeSheet) DeleteRow(ctx context.Context, sheetTitle string, rowIndex int) error {
	f.deletedTab = sheetTitle
	f.deletedRow = rowIndex
	return f.err
}

type fakeDrafter struct {
	reply string
	err   error
}

func (f *fakeDrafter) DraftEmailReply(ctx context.Context, from, subject, summary, instructions string) (string, error) {
	return f.reply, f.err
}

func TestList(t *testing.T) {
	sheet := &fakeSheet{values: [][]string{
		{"e1", "Alice <alice@example.com>", "Lunch?", "Asks about Friday", "2025-03-08", "t-1", ""},
		{"e2", "Bob <bob@example.com>", "Invoice", "March invoice attached", "2025-03-10", "t-2", "FALSE"},
		{"e3", "Carol <carol@example.com>", "Old thread", "Already handled", "2025-03-01", "t-3", "TRUE"},
		{"", "", "", "", "", "", ""},
	}}
	svc := New(sheet, webhook.NewClient(nil), nil, "Jazzy Email", "")

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first; read rows and blank rows dropped.
	assert.Equal(t, "e2", got[0].ID)
	assert.Equal(t, "e1", got[1].ID)
	assert.Equal(t, 3, got[0].RowIndex)
	assert.False(t, got[0].Read)
}

func TestList_FallbackID(t *testing.T) {
	sheet := &fakeSheet{values: [][]string{
		{"", "dave@example.com", "Hello", "", "", "", ""},
	}}
	svc := New(sheet, webhook.NewClient(nil), nil, "Jazzy Email", "")

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "email-0", got[0].ID)
}

func TestList_SheetError(t *testing.T) {
	svc := New(&fakeSheet{err: errors.New("boom")}, webhook.NewClient(nil), nil, "Jazzy Email", "")
	_, err := svc.List(context.Background())
	assert.Error(t, err)
}

func TestMarkRead(t *testing.T) {
	sheet := &fakeSheet{}
	svc := New(sheet, webhook.NewClient(nil), nil, "Jazzy Email", "")

	require.NoError(t, svc.MarkRead(context.Background(), 7))
	assert.Equal(t, "Jazzy Email!G7", sheet.updateRange)
	assert.Equal(t, [][]string{{"TRUE"}}, sheet.updateValues)

	assert.Error(t, svc.MarkRead(context.Background(), 1))
}

func TestMarkReviewed(t *testing.T) {
	sheet := &fakeSheet{}
	svc := New(sheet, webhook.NewClient(nil), nil, "Jazzy Email", "")

	require.NoError(t, svc.MarkReviewed(context.Background(), 9))
	assert.Equal(t, "Jazzy Email", sheet.deletedTab)
	assert.Equal(t, 9, sheet.deletedRow)

	assert.Error(t, svc.MarkReviewed(context.Background(), 0))
}

func TestCreateDraft(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	svc := New(&fakeSheet{}, webhook.NewClient(srv.Client()), nil, "Jazzy Email", srv.URL)
	err := svc.CreateDraft(context.Background(),
		"Alice <alice@example.com>", "Lunch?", "Asks about Friday", "accept politely", "t-1")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", got["to"])
	assert.Equal(t, "Re: Lunch?", got["subject"])
	assert.Equal(t, "Alice <alice@example.com>", got["originalFrom"])
	assert.Equal(t, "accept politely", got["instructions"])
	assert.Equal(t, "t-1", got["threadId"])
}

func TestDraftReply(t *testing.T) {
	svc := New(&fakeSheet{}, webhook.NewClient(nil), &fakeDrafter{reply: "Sounds great, see you Friday."}, "Jazzy Email", "")

	body, err := svc.DraftReply(context.Background(), "Alice <alice@example.com>", "Lunch?", "Asks about Friday", "accept")
	require.NoError(t, err)
	assert.Equal(t, "Sounds great, see you Friday.", body)
}

func TestDraftReply_NoDrafter(t *testing.T) {
	svc := New(&fakeSheet{}, webhook.NewClient(nil), nil, "Jazzy Email", "")
	_, err := svc.DraftReply(context.Background(), "a", "b", "c", "d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestExtractAddress(t *testing.T) {
	assert.Equal(t, "alice@example.com", ExtractAddress("Alice Smith <alice@example.com>"))
	assert.Equal(t, "bob@example.com", ExtractAddress("bob@example.com"))
	assert.Equal(t, "", ExtractAddress(""))
}
