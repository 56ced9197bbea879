package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
)

func newUploadCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file and print its share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := e.token()
			if err != nil {
				return err
			}

			f, err := e.deps.Fs.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			rec, err := e.client.Upload(cmd.Context(), token, filepath.Base(args[0]), f)
			if err != nil {
				return apiError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %s (%s)\n", rec.Name, file.FormatSize(rec.Size))
			fmt.Fprintf(out, "ID:    %s\n", rec.ID)
			fmt.Fprintf(out, "Share: %s\n", rec.ShareURL)
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your files, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := e.token()
			if err != nil {
				return err
			}

			files, err := e.client.List(cmd.Context(), token, search)
			if err != nil {
				return apiError(err)
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tUPLOADED")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, f.Name, file.FormatSize(f.Size), f.UploadedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only names containing this text")

	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a file and invalidate its share link",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := e.token()
			if err != nil {
				return err
			}
			if err = e.client.Delete(cmd.Context(), token, args[0]); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newOpenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Print the share link and a temporary download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := e.token()
			if err != nil {
				return err
			}
			f, err := e.client.Get(cmd.Context(), token, args[0])
			if err != nil {
				return apiError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %s)\n", f.Name, file.FormatSize(f.Size), f.Kind)
			fmt.Fprintf(out, "Share:    %s\n", f.ShareURL)
			fmt.Fprintf(out, "Download: %s\n", f.AccessURL)
			return nil
		},
	}
}
