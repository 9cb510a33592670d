package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daveio/golinks/internal/db"
	"github.com/daveio/golinks/internal/seed"
	"github.com/daveio/golinks/internal/service"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the redirects table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(cmd.Context(), a.conn); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var slug, dest string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a redirect",
		Long: `Add a redirect from /go/<slug> to a destination.

When --slug is omitted a random six character slug is generated.
An existing slug is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.service.Create(cmd.Context(), slug, dest)
			if errors.Is(err, service.ErrDuplicateSlug) {
				return fmt.Errorf("slug %q already exists", slug)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", rec.Slug, rec.Destination)
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "slug to register (generated when empty)")
	cmd.Flags().StringVar(&dest, "dest", "", "destination URL or absolute path")
	cmd.MarkFlagRequired("dest")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a redirect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.service.Delete(cmd.Context(), args[0])
			if errors.Is(err, service.ErrNotFound) {
				return fmt.Errorf("slug %q not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List redirects ordered by slug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.service.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tDESTINATION")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\n", r.Slug, r.Destination)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import redirects from a YAML seed file",
		Long: `Import redirects from a YAML file of the form:

  redirects:
    - slug: docs
      destination: https://example.com/documentation

Slugs that already exist are skipped and keep their destination.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := seed.ParseFile(args[0])
			if err != nil {
				return err
			}
			res, err := a.service.Import(cmd.Context(), recs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
			return nil
		},
	}
}
