package quire

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient is the subset of the Google Sheets values API used by the
// sheets backend. Ranges are in A1 notation.
type SheetsClient interface {
	Read(ctx context.Context, range_ string) ([][]any, error)
	Write(ctx context.Context, range_ string, values [][]any) error
	Append(ctx context.Context, range_ string, values [][]any) error
}

const (
	renderUnformatted = "UNFORMATTED_VALUE"
	inputRaw          = "RAW"
	insertRows        = "INSERT_ROWS"
)

type sheetsClient struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
}

func newSheetsClient(cfg Config) (*sheetsClient, error) {
	ctx := context.Background()

	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(cfg.Credentials),
		option.WithScopes(sheets.SpreadsheetsScope),
		option.WithUserAgent("quire"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &sheetsClient{
		values:        srv.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// Read returns raw cell values so numbers and booleans keep their types.
func (c *sheetsClient) Read(ctx context.Context, range_ string) ([][]any, error) {
	resp, err := c.values.Get(c.spreadsheetID, range_).
		ValueRenderOption(renderUnformatted).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", range_, err)
	}
	return resp.Values, nil
}

// Write overwrites the cells of range_.
func (c *sheetsClient) Write(ctx context.Context, range_ string, values [][]any) error {
	_, err := c.values.Update(c.spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write range %s: %w", range_, err)
	}
	return nil
}

// Append inserts values as new rows after the table found at range_.
func (c *sheetsClient) Append(ctx context.Context, range_ string, values [][]any) error {
	_, err := c.values.Append(c.spreadsheetID, range_, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append range %s: %w", range_, err)
	}
	return nil
}
