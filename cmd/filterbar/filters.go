package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filterbar/internal/filter"
	"filterbar/internal/query"
	"filterbar/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			saved, err := sess.store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(saved) == 0 {
				fmt.Fprintln(out, "No saved filters.")
				return nil
			}
			for _, sf := range saved {
				fmt.Fprintf(out, "%-20s %s\n", sf.Name, filter.Format(filter.Deserialize(sess.schema, sf.Filters)))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a saved filter as text, JSON, SQL or CEL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			saved, err := sess.store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			exprs := filter.Deserialize(sess.schema, saved.Filters)
			rendered, err := renderFilter(sess.schema, exprs, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text|json|sql|cel")
	return cmd
}

// renderFilter renders exprs in one of the supported output formats.
func renderFilter(schema *filter.Schema, exprs []filter.Expression, output string) (string, error) {
	switch strings.ToLower(output) {
	case "text", "":
		return filter.Format(exprs), nil
	case "json":
		data, err := json.MarshalIndent(filter.Serialize(schema, exprs), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode filters: %w", err)
		}
		return string(data), nil
	case "sql":
		where, args, err := query.ToSQL(exprs, query.SQLOptions{Allowed: store.RecordColumns})
		if err != nil {
			return "", err
		}
		if where == "" {
			return "-- no conditions", nil
		}
		return fmt.Sprintf("WHERE %s\n-- args: %v", where, args), nil
	case "cel":
		return query.ToCEL(exprs)
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json, sql or cel)", output)
}

func newSaveCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:     "save NAME",
		Short:   "Save a filter written in the text grammar",
		Example: `  filterbar save urgent --query 'priority <= 1 AND status != closed'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			exprs, err := sess.parseFilter(text)
			if err != nil {
				return err
			}
			if err := sess.store.Save(cmd.Context(), args[0], filter.Serialize(sess.schema, exprs)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q: %s\n", args[0], filter.Format(exprs))
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "query", "q", "", "filter text")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", args[0])
			return nil
		},
	}
}
