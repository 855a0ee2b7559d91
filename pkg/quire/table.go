package quire

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// sheetsTransport serves the read/write protocol directly from a
// spreadsheet through the Sheets API. The first row of every sheet holds
// the column headers. Read ignores filter parameters and returns the whole
// sheet; the query builder filters client-side.
type sheetsTransport struct {
	client SheetsClient
}

// NewSheetsTransport adapts a SheetsClient to the Transport interface.
func NewSheetsTransport(client SheetsClient) Transport {
	return &sheetsTransport{client: client}
}

func (t *sheetsTransport) Name() string {
	return BackendSheets
}

func (t *sheetsTransport) Read(ctx context.Context, sheet string, _ map[string]string) ([]byte, error) {
	headers, rows, err := t.load(ctx, sheet)
	if err != nil {
		return nil, err
	}

	objects := make([]Row, 0, len(rows))
	for _, row := range rows {
		objects = append(objects, rowObject(headers, row))
	}
	return json.Marshal(objects)
}

func (t *sheetsTransport) Write(ctx context.Context, action Action, sheet string, payload any) ([]byte, error) {
	switch action {
	case ActionCreate:
		return t.create(ctx, sheet, payload)
	case ActionUpdate:
		row, err := toRow(payload)
		if err != nil {
			return nil, err
		}
		return t.update(ctx, sheet, row)
	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}
}

func (t *sheetsTransport) create(ctx context.Context, sheet string, payload any) ([]byte, error) {
	var records []Row
	single := false
	if row, err := toRow(payload); err == nil {
		records = []Row{row}
		single = true
	} else if records, err = toRows(payload); err != nil {
		return nil, err
	}

	headers, err := t.headers(ctx, sheet)
	if err != nil {
		return nil, err
	}
	headers, err = t.extendHeaders(ctx, sheet, headers, records)
	if err != nil {
		return nil, err
	}

	values := make([][]interface{}, 0, len(records))
	for _, r := range records {
		values = append(values, rowValues(headers, r, nil))
	}
	if err := t.client.Append(ctx, a1(sheet, "A1"), values); err != nil {
		return nil, err
	}

	if single {
		return json.Marshal(records[0])
	}
	return json.Marshal(records)
}

// update serves the merged wire payload, where filters and values are
// indistinguishable. Rows are selected by the payload id and every other
// column is written.
func (t *sheetsTransport) update(ctx context.Context, sheet string, patch Row) ([]byte, error) {
	id, ok := patch["id"]
	if !ok {
		return nil, fmt.Errorf("update on sheet %s requires an id column", sheet)
	}

	values := make(Row, len(patch))
	for k, v := range patch {
		if k != "id" {
			values[k] = v
		}
	}
	return t.Patch(ctx, sheet, []Filter{{Column: "id", Value: id}}, values)
}

// Patch writes values into every row matching all filters and echoes the
// patched rows. Filter columns are never written.
func (t *sheetsTransport) Patch(ctx context.Context, sheet string, filters []Filter, values Row) ([]byte, error) {
	if len(filters) == 0 {
		return nil, ErrMissingFilter
	}

	headers, rows, err := t.load(ctx, sheet)
	if err != nil {
		return nil, err
	}
	headers, err = t.extendHeaders(ctx, sheet, headers, []Row{values})
	if err != nil {
		return nil, err
	}

	updated := []Row{}
	endCol := columnIndexToLetter(len(headers) - 1)
	for i, row := range rows {
		if !matchesFilters(rowObject(headers, row), filters) {
			continue
		}

		patched := rowValues(headers, values, row)
		actualRow := i + 2
		range_ := a1(sheet, fmt.Sprintf("A%d:%s%d", actualRow, endCol, actualRow))
		if err := t.client.Write(ctx, range_, [][]interface{}{patched}); err != nil {
			return nil, fmt.Errorf("failed to update row %d: %w", i, err)
		}
		updated = append(updated, rowObject(headers, patched))
	}

	return json.Marshal(updated)
}

func (t *sheetsTransport) load(ctx context.Context, sheet string) ([]string, [][]interface{}, error) {
	data, err := t.client.Read(ctx, a1(sheet, ""))
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, nil
	}
	return headerNames(data[0]), data[1:], nil
}

func (t *sheetsTransport) headers(ctx context.Context, sheet string) ([]string, error) {
	data, err := t.client.Read(ctx, a1(sheet, "1:1"))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return headerNames(data[0]), nil
}

// extendHeaders appends columns present in records but missing from the
// header row, in sorted order, and writes the header row back if it grew.
func (t *sheetsTransport) extendHeaders(ctx context.Context, sheet string, headers []string, records []Row) ([]string, error) {
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	var added []string
	for _, r := range records {
		for k := range r {
			if !known[k] {
				known[k] = true
				added = append(added, k)
			}
		}
	}
	if len(added) == 0 {
		return headers, nil
	}

	sort.Strings(added)
	headers = append(headers, added...)

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := t.client.Write(ctx, a1(sheet, "A1"), [][]interface{}{row}); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	return headers, nil
}

func headerNames(row []interface{}) []string {
	names := make([]string, len(row))
	for i, h := range row {
		names[i] = fmt.Sprintf("%v", h)
	}
	return names
}

// rowObject keys a raw row by header. Cells the API trimmed from the end of
// the row read as empty strings.
func rowObject(headers []string, row []interface{}) Row {
	obj := make(Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(row) {
			obj[h] = row[i]
		} else {
			obj[h] = ""
		}
	}
	return obj
}

// rowValues lays r out in header order, starting from base when patching an
// existing row.
func rowValues(headers []string, r Row, base []interface{}) []interface{} {
	values := make([]interface{}, len(headers))
	for i := range headers {
		if i < len(base) {
			values[i] = base[i]
		} else {
			values[i] = ""
		}
	}
	for i, h := range headers {
		if v, ok := r[h]; ok {
			if v == nil {
				v = ""
			}
			values[i] = v
		}
	}
	return values
}

// a1 builds an A1-notation range on sheet. An empty rng addresses the
// whole sheet.
func a1(sheet, rng string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if rng == "" {
		return quoted
	}
	return quoted + "!" + rng
}

func columnIndexToLetter(index int) string {
	if index < 0 {
		return "A"
	}
	result := ""
	for index >= 0 {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
	}
	return result
}
