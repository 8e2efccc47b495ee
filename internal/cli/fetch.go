package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorcad/pkg/storage"
)

// fetchCommand creates the fetch command, which copies a stored artifact
// out of the artifact store.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		format string
		output string
		dir    string
		list   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [id]",
		Short: "Download a stored drawing artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], format, output, dir, list)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dxf", "artifact format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: floor_plan_<id>.<format>); - for stdout")
	cmd.Flags().StringVar(&dir, "store", "", "read from this directory instead of the configured store")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list stored formats instead of downloading")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, id, format, output, dir string, list bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, dir)
	if err != nil {
		return err
	}
	defer store.Close()

	if list {
		return listArtifacts(ctx, store, id)
	}

	a, err := store.Get(ctx, id, format)
	if err != nil {
		return err
	}
	if output == "-" {
		_, err := os.Stdout.Write(a.Data)
		return err
	}
	if output == "" {
		output = a.Filename()
	}
	if err := writeArtifact(output, a.Data); err != nil {
		return err
	}

	printSuccess("Fetched %s", id)
	printFile(output)
	printDetail("%s, %d bytes, stored %s", a.ContentType(), len(a.Data), a.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func listArtifacts(ctx context.Context, store storage.Store, id string) error {
	formats, err := store.List(ctx, id)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		printInfo("No artifacts stored for %s", id)
		return nil
	}
	printSuccess("%s", id)
	for _, f := range formats {
		printDetail("%s", f)
	}
	return nil
}
