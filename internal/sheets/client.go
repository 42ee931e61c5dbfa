// Package sheets is a minimal Google Sheets v4 values client, enough to run
// the spreadsheet-as-database pattern: read a range, append a row, update a
// cell, delete a row. Authentication is a service-account JWT bearer grant
// with the spreadsheets scope.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/google"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"

	scopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
)

// Client talks to the Google Sheets API for one spreadsheet.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	spreadsheetID string
}

// New creates a Client authenticated with the given service-account key JSON.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet ID is empty")
	}
	conf, err := google.JWTConfigFromJSON(credentialsJSON, scopeSpreadsheets)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse service account key: %w", err)
	}

	hc := conf.Client(ctx)
	hc.Timeout = 20 * time.Second

	return &Client{
		httpClient:    hc,
		baseURL:       defaultBaseURL,
		spreadsheetID: spreadsheetID,
	}, nil
}

// NewWithHTTPClient creates a Client with a caller-supplied HTTP client and
// base URL. Tests point this at an httptest server.
func NewWithHTTPClient(spreadsheetID, baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:    hc,
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
	}
}

// Values reads the rows of an A1-notation range (e.g. "Tab!A2:F100").
func (c *Client) Values(ctx context.Context, rangeA1 string) ([][]string, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rangeA1))

	var out struct {
		Values [][]string `json:"values"`
	}
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// Append appends one row to the given range's table.
func (c *Client) Append(ctx context.Context, rangeA1 string, row []string) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rangeA1))

	body := map[string]any{"values": [][]string{row}}
	return c.doJSON(ctx, http.MethodPost, u, body, nil)
}

// Update overwrites the given range with values.
func (c *Client) Update(ctx context.Context, rangeA1 string, values [][]string) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rangeA1))

	body := map[string]any{"values": values}
	return c.doJSON(ctx, http.MethodPut, u, body, nil)
}

// DeleteRow removes a single 1-based row from the named sheet tab. The
// values API addresses tabs by title but batchUpdate needs the numeric sheet
// ID, so this does a metadata lookup first.
func (c *Client) DeleteRow(ctx context.Context, sheetTitle string, rowIndex int) error {
	gid, err := c.sheetID(ctx, sheetTitle)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/v4/spreadsheets/%s:batchUpdate", c.baseURL, c.spreadsheetID)
	body := map[string]any{
		"requests": []any{
			map[string]any{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    gid,
						"dimension":  "ROWS",
						"startIndex": rowIndex - 1,
						"endIndex":   rowIndex,
					},
				},
			},
		},
	}
	return c.doJSON(ctx, http.MethodPost, u, body, nil)
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties", c.baseURL, c.spreadsheetID)

	var out struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil {
		return 0, err
	}
	for _, sh := range out.Sheets {
		if sh.Properties.Title == title {
			return sh.Properties.SheetID, nil
		}
	}
	return 0, fmt.Errorf("sheets: tab %q not found", title)
}

func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets: %s %s: status %d: %s", method, resp.Request.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("sheets: decode response: %w", err)
		}
	}
	return nil
}
