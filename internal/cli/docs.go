package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davidayox123/acadrepo-tui/internal/api"
)

// newDocsCommand groups the document listing subcommands.
func newDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Work with documents",
	}
	cmd.AddCommand(newDocsListCommand())
	return cmd
}

func newDocsListCommand() *cobra.Command {
	var (
		search     string
		status     string
		department string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			page, err := e.client.ListDocuments(cmd.Context(), api.DocumentFilter{
				Search:     search,
				Status:     api.DocumentStatus(status),
				Department: department,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDEPARTMENT\tDOWNLOADS")
			for _, d := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					d.ID, d.Title, d.Status, d.Department, d.DownloadCount)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d documents\n", len(page.Items), page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by title or description")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|under_review|approved|rejected)")
	cmd.Flags().StringVar(&department, "department", "", "filter by department")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum results")
	return cmd
}

// newUploadCommand uploads a file as a new document.
func newUploadCommand() *cobra.Command {
	var (
		title       string
		description string
		department  string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			path := args[0]
			if title == "" {
				title = filepath.Base(path)
			}
			doc, err := e.client.UploadDocument(cmd.Context(), title, description, department, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s, status %s)\n", doc.Title, doc.ID, doc.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "document title (defaults to the file name)")
	cmd.Flags().StringVar(&description, "description", "", "document description")
	cmd.Flags().StringVar(&department, "department", "", "owning department")
	return cmd
}

// newDownloadCommand fetches a document's file.
func newDownloadCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download a document's file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := e.requireAuth(); err != nil {
				return err
			}

			id := args[0]
			if out == "" {
				doc, err := e.client.GetDocument(cmd.Context(), id)
				if err != nil {
					return err
				}
				out = doc.FileName
				if out == "" {
					out = id
				}
			}
			out = filepath.Clean(out)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := e.client.DownloadDocument(cmd.Context(), id, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (defaults to the stored file name)")
	return cmd
}
