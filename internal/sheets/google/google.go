package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"moodjournal/internal/core"
	ports "moodjournal/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultSheetName = "Journal"
	lastColumn       = "I"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.EntryExporter = (*Client)(nil)

// New creates a client for the given spreadsheet. Extra options are passed
// to the Sheets service; without any, service account credentials are read
// from the environment.
func New(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	if len(opts) == 0 {
		creds, err := credentialsFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// credentialsFromEnv loads service account JSON from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	}

	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Reading credentials from file", "path", path)
	creds, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return creds, nil
}

// ExportEntry writes e on the row already holding its date, or on the first
// free row. An empty sheet gets a header first.
func (c *Client) ExportEntry(ctx context.Context, e core.MoodEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	dates, err := c.readDates(ctx)
	if err != nil {
		return err
	}

	if len(dates) == 0 {
		if err := c.writeRow(ctx, 1, ports.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		dates = []string{ports.Header[0]}
	}

	row := rowFor(dates, e.Date.String())
	if err := c.writeRow(ctx, row, ports.EntryRow(e)); err != nil {
		return err
	}

	slog.DebugContext(ctx, "Entry exported to sheet", "date", e.Date.String(), "row", row, "sheet", c.sheetName)
	return nil
}

// RemoveEntry blanks the row for date so later exports can reuse it.
func (c *Client) RemoveEntry(ctx context.Context, date core.Date) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	dates, err := c.readDates(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(dates, date.String())
	if idx < 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, idx+1, lastColumn, idx+1)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// ClearEntries removes every data row and keeps the header.
func (c *Client) ClearEntries(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:%s", c.sheetName, lastColumn)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// readDates returns column A, one string per row, blanks included.
func (c *Client) readDates(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (c *Client) writeRow(ctx context.Context, row int, cells []string) error {
	rng := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, lastColumn, row)
	values := make([]any, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	vr := &gsheet.ValueRange{Values: [][]any{values}}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// rowFor returns the 1-based row for date: its existing row, else the first
// blank data row, else the row after the last one.
func rowFor(dates []string, date string) int {
	if idx := indexOf(dates, date); idx >= 0 {
		return idx + 1
	}
	for i := 1; i < len(dates); i++ {
		if dates[i] == "" {
			return i + 1
		}
	}
	return len(dates) + 1
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.TrimSpace(v) == target {
			return i
		}
	}
	return -1
}
