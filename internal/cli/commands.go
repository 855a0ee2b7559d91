package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/elbader17/quire/pkg/quire"
	"github.com/elbader17/quire/pkg/workshop"
)

var errUnhealthy = errors.New("backend not connected")

func newHealthCmd(flags *globalFlags, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend configuration and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			st := workshop.New(db).Health(cmd.Context())
			if err := writeJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if !st.Connected {
				return errUnhealthy
			}
			return nil
		},
	}
}

func newSelectCmd(flags *globalFlags, open opener) *cobra.Command {
	var (
		eqs    []string
		fields string
		single bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Read rows from a sheet",
		Example: `  quire select Vehicles --eq status=active --fields id,make
  quire select Customers --eq id=c1 --single`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(eqs)
			if err != nil {
				return err
			}

			db, err := open(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			q := db.From(args[0])
			if fields != "" {
				q = q.Select(fields)
			}
			for _, f := range filters {
				q = q.Eq(f.Column, f.Value)
			}
			if limit > 0 {
				q = q.Limit(limit)
			}

			if single {
				res := q.Single().Execute(cmd.Context())
				return printResult(cmd.OutOrStdout(), res, res.Err())
			}
			res := q.Execute(cmd.Context())
			return printResult(cmd.OutOrStdout(), res, res.Err())
		},
	}

	cmd.Flags().StringArrayVar(&eqs, "eq", nil, "Equality filter column=value (repeatable)")
	cmd.Flags().StringVar(&fields, "fields", "", "Comma-separated columns to return")
	cmd.Flags().BoolVar(&single, "single", false, "Return the first matching row or null")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows")
	return cmd
}

func newInsertCmd(flags *globalFlags, open opener) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Append a row (object) or rows (array) to a sheet",
		Example: `  quire insert Customers --data '{"first_name":"Hodan","phone":"252617"}'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseData(data)
			if err != nil {
				return err
			}

			db, err := open(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if rows, ok := payload.([]any); ok {
				res := db.From(args[0]).InsertMany(rows).Select(cmd.Context())
				return printResult(cmd.OutOrStdout(), res, res.Err())
			}
			res := db.From(args[0]).Insert(payload).Select(cmd.Context())
			return printResult(cmd.OutOrStdout(), res, res.Err())
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "JSON object or array of objects")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newUpdateCmd(flags *globalFlags, open opener) *cobra.Command {
	var (
		eqs  []string
		data string
	)

	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Patch the rows matching the --eq filters",
		Example: `  quire update WorkOrders --eq id=w1 --data '{"status":"completed"}'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilters(eqs)
			if err != nil {
				return err
			}
			values, err := parseData(data)
			if err != nil {
				return err
			}

			db, err := open(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			u := db.From(args[0]).Update(values)
			for _, f := range filters {
				u = u.Eq(f.Column, f.Value)
			}
			res := u.Select(cmd.Context())
			return printResult(cmd.OutOrStdout(), res, res.Err())
		},
	}

	cmd.Flags().StringArrayVar(&eqs, "eq", nil, "Equality filter column=value (repeatable)")
	cmd.Flags().StringVar(&data, "data", "", "JSON object of column values")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// parseEq splits column=value. A value that is valid JSON is decoded, so
// year=2015 filters on a number and year='"2015"' on a string; anything
// else is taken as a plain string.
func parseEq(s string) (quire.Filter, error) {
	column, value, found := strings.Cut(s, "=")
	column = strings.TrimSpace(column)
	if !found || column == "" {
		return quire.Filter{}, fmt.Errorf("invalid filter %q: expected column=value", s)
	}
	if gjson.Valid(value) {
		return quire.Filter{Column: column, Value: gjson.Parse(value).Value()}, nil
	}
	return quire.Filter{Column: column, Value: value}, nil
}

func parseFilters(eqs []string) ([]quire.Filter, error) {
	filters := make([]quire.Filter, 0, len(eqs))
	for _, s := range eqs {
		f, err := parseEq(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// parseData decodes --data into a map or a list of maps.
func parseData(data string) (any, error) {
	if !gjson.Valid(data) {
		return nil, fmt.Errorf("--data is not valid JSON")
	}
	res := gjson.Parse(data)
	if !res.IsObject() && !res.IsArray() {
		return nil, fmt.Errorf("--data must be a JSON object or array")
	}
	return res.Value(), nil
}

// printResult writes the envelope and returns err so the exit status
// reflects a failed operation.
func printResult(w io.Writer, envelope any, err error) error {
	if werr := writeJSON(w, envelope); werr != nil {
		return werr
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
