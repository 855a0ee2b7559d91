package quire

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Filter is an exact-match condition on one column.
type Filter struct {
	Column string
	Value  any
}

func applyFilters(rows []Row, filters []Filter) []Row {
	if len(filters) == 0 {
		return rows
	}

	result := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matchesFilters(row, filters) {
			result = append(result, row)
		}
	}
	return result
}

func matchesFilters(row Row, filters []Filter) bool {
	for _, f := range filters {
		cell, ok := row[f.Column]
		if !ok {
			return false
		}
		if !valuesEqual(cell, f.Value) {
			return false
		}
	}
	return true
}

// valuesEqual is strict equality over decoded JSON values. Numbers compare
// by value across Go numeric kinds; values of different kinds never match.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := toFloat(a); ok {
		bn, ok := toFloat(b)
		return ok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// paramValue renders a filter value for the read query string.
func paramValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

func filterParams(filters []Filter) map[string]string {
	params := make(map[string]string, len(filters))
	for _, f := range filters {
		params[f.Column] = paramValue(f.Value)
	}
	return params
}

// parseFields splits Select arguments into column names. An empty result
// means every column.
func parseFields(fields []string) []string {
	var cols []string
	for _, f := range fields {
		for _, c := range strings.Split(f, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if c == "*" {
				return nil
			}
			cols = append(cols, c)
		}
	}
	return cols
}

func project(rows []Row, fields []string) []Row {
	if len(fields) == 0 {
		return rows
	}

	result := make([]Row, len(rows))
	for i, row := range rows {
		out := make(Row, len(fields))
		for _, f := range fields {
			if v, ok := row[f]; ok {
				out[f] = v
			}
		}
		result[i] = out
	}
	return result
}
