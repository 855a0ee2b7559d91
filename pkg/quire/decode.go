package quire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
)

// parseRows normalises a response body into rows. A top-level array must
// hold objects; a lone object is a one-row result unless it carries an
// error field.
func parseRows(body []byte) ([]Row, error) {
	res := gjson.ParseBytes(body)

	switch {
	case res.IsArray():
		for i, elem := range res.Array() {
			if !elem.IsObject() {
				return nil, fmt.Errorf("row %d is not an object: %s", i, elem.Type)
			}
		}
		var rows []Row
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
		if rows == nil {
			rows = []Row{}
		}
		return rows, nil

	case res.IsObject():
		if err := backendError(res); err != nil {
			return nil, err
		}
		var row Row
		if err := json.Unmarshal(body, &row); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		return []Row{row}, nil

	case res.Type == gjson.Null:
		return []Row{}, nil
	}

	return nil, fmt.Errorf("unexpected response: %s", snippet(body))
}

// backendError extracts an error field from an otherwise successful response.
func backendError(res gjson.Result) error {
	e := res.Get("error")
	switch {
	case !e.Exists(), e.Type == gjson.Null, e.Type == gjson.False:
		return nil
	case e.Type == gjson.String && e.Str == "":
		return nil
	case e.IsObject():
		if msg := e.Get("message"); msg.Exists() {
			return fmt.Errorf("%w: %s", ErrBackend, msg.String())
		}
	}
	return fmt.Errorf("%w: %s", ErrBackend, e.String())
}

func decodeRows[T any](rows []Row) ([]T, error) {
	if rs, ok := any(rows).([]T); ok {
		return rs, nil
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := decodeRow(row, &v); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeRow(row Row, dest any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           dest,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(row)
}

// toRow converts a write payload into a flat row. Structs go through their
// JSON encoding so json tags name the columns.
func toRow(v any) (Row, error) {
	switch r := v.(type) {
	case nil:
		return nil, fmt.Errorf("row is nil")
	case Row:
		return r, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("row must be an object: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("row is nil")
	}
	return row, nil
}

func toRows(v any) ([]Row, error) {
	switch r := v.(type) {
	case nil:
		return nil, fmt.Errorf("rows are nil")
	case []Row:
		return r, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("rows must be a list of objects: %w", err)
	}
	return rows, nil
}
