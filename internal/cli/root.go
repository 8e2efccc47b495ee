package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorcad/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "floorcad",
		Short: "floorcad compiles floor plans into CAD drawings",
		Long: `floorcad turns a structured floor-plan description (rooms with positions,
dimensions, doors and windows) into a layered DXF drawing, with optional SVG
previews and a JSON export of the drawing.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+defaultConfigFile+" when present)")

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
