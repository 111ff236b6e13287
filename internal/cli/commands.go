package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfields/pkg/query"
)

// NewRootCommand creates the formfields command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "formfields",
		Short:         "Inspect admin resources, forms and index queries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "config file (default ./formfields.yaml)")
	root.PersistentFlags().StringVar(&flags.schema, "schema", "", "directory of YAML/JSON resource definitions")
	root.PersistentFlags().StringVar(&flags.openapi, "openapi", "", "OpenAPI document whose component schemas become resources")

	root.AddCommand(
		newResourcesCommand(flags),
		newFormCommand(flags),
		newPayloadCommand(flags),
		newIndexCommand(flags),
		newQueryCommand(flags),
	)
	return root
}

func bindRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVar(&f.resource, "resource", "", "resource key (post-resource)")
	cmd.Flags().StringVar(&f.input, "input", "", "URL-encoded submission")
	cmd.Flags().StringVar(&f.old, "old", "", "URL-encoded previous submission")
	cmd.Flags().StringVar(&f.actor, "actor", "", "actor passed to policies and can-see checks")
	_ = cmd.MarkFlagRequired("resource")
}

type resourceSummary struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Table  string   `json:"table"`
	Fields int      `json:"fields"`
	Tags   []string `json:"tags,omitempty"`
}

func newResourcesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List registered resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			out := make([]resourceSummary, 0)
			for _, res := range a.registry.List() {
				summary := resourceSummary{
					Key:    res.Key(),
					Title:  res.Title(),
					Table:  res.Table(),
					Fields: res.Tree().Len(),
				}
				for _, tag := range res.QueryTags() {
					summary.Tags = append(summary.Tags, tag.URI())
				}
				out = append(out, summary)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newFormCommand(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Print the create or edit form of a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			req, err := rf.request()
			if err != nil {
				return err
			}
			view, err := a.orch.Form(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
	bindRequestFlags(cmd, rf)
	cmd.Flags().StringVar(&rf.record, "record", "", "JSON record file; omit for a create form")
	return cmd
}

func newPayloadCommand(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Print the values a submission would persist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			req, err := rf.request()
			if err != nil {
				return err
			}
			payload, err := a.orch.Payload(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}
	bindRequestFlags(cmd, rf)
	cmd.Flags().StringVar(&rf.record, "record", "", "JSON record file")
	return cmd
}

func newIndexCommand(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	var dsn string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Run the index query against a database and print the listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			req, err := rf.request()
			if err != nil {
				return err
			}
			db, err := sql.Open(driverName(a.dialect), dsn)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			view, err := a.orch.Index(cmd.Context(), db, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
	bindRequestFlags(cmd, rf)
	cmd.Flags().StringVar(&rf.tag, "tag", "", "query tag URI")
	cmd.Flags().StringVar(&dsn, "db", "", "database DSN")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

type statement struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

func newQueryCommand(flags *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the SQL of the index query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			req, err := rf.request()
			if err != nil {
				return err
			}
			q, err := a.orch.Query(cmd.Context(), req)
			if err != nil {
				return err
			}
			stmt, args, err := q.ToSQL(a.dialect)
			if err != nil {
				return err
			}
			if args == nil {
				args = []any{}
			}
			return writeJSON(cmd.OutOrStdout(), statement{SQL: stmt, Args: args})
		},
	}
	bindRequestFlags(cmd, rf)
	cmd.Flags().StringVar(&rf.tag, "tag", "", "query tag URI")
	return cmd
}

func driverName(d query.Dialect) string {
	if d == query.Postgres {
		return "postgres"
	}
	return "sqlite3"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
