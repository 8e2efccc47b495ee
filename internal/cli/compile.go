package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/floorplan"
	"github.com/matzehuels/floorcad/pkg/pipeline"
	"github.com/matzehuels/floorcad/pkg/storage"
)

// compileFlags holds the command-line flags of the compile command.
type compileFlags struct {
	output     string
	formats    string
	id         string
	textHeight float64
	strict     bool
	precision  int
	noCache    bool
	refresh    bool
	store      string
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var f compileFlags

	cmd := &cobra.Command{
		Use:   "compile [plan.json]",
		Short: "Compile a floor plan into a DXF drawing",
		Long: `Compile a floor-plan JSON document into a layered DXF drawing.

Rooms become closed polygons on ROOMS, labels are centered on TEXT, and doors
and windows become segments on DOORS and WINDOWS. Use "-" to read the plan
from stdin.

Formats:
  dxf   ASCII DXF (R12), the default
  svg   preview image
  json  the drawing's entity list

With --store (or a configured storage backend and --id) every artifact is
also persisted under the drawing id for 'floorcad fetch' and the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := cfg.PipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("format") {
				opts.Formats = pipeline.ParseFormats(f.formats)
			}
			if flags.Changed("text-height") {
				opts.TextHeight = f.textHeight
			}
			if flags.Changed("strict") {
				opts.StrictOpenings = f.strict
			}
			if flags.Changed("precision") {
				opts.Precision = &f.precision
			}
			opts.DrawingID = f.id
			opts.Refresh = f.refresh
			return c.runCompile(cmd.Context(), args[0], opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): dxf (default), svg, json (comma-separated)")
	cmd.Flags().StringVar(&f.id, "id", "", "drawing id for stored artifacts")
	cmd.Flags().Float64Var(&f.textHeight, "text-height", 10, "room label height in drawing units")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on openings with an unknown wall side instead of skipping them")
	cmd.Flags().IntVar(&f.precision, "precision", 6, "decimal places in DXF coordinates")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVar(&f.store, "store", "", "persist artifacts in this directory")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runCompile loads the plan, runs the pipeline and writes the artifacts.
func (c *CLI) runCompile(ctx context.Context, input string, opts pipeline.Options, f compileFlags) error {
	prog := newProgress(c.Logger)
	plan, err := readPlan(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded floor plan", "input", input, "rooms", len(plan.Rooms))

	cfg, err := c.config()
	if err != nil {
		return err
	}

	var store storage.Store
	if f.store != "" || f.id != "" {
		if store, err = openStore(ctx, cfg, f.store); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(cfg, f.noCache, store)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	toStdout := f.output == "-"
	if toStdout && len(opts.Formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format, got %d", len(opts.Formats))
	}

	var paths map[string]string
	if !toStdout {
		paths = outputPaths(input, f.output, opts.Formats)
		for _, format := range opts.Formats {
			if overwritesInput(input, paths[format]) {
				return errors.New(errors.ErrCodeInvalidPath, "output %s would overwrite the input plan", paths[format])
			}
		}
	}

	spinner := newSpinnerWithContext(ctx, "Compiling floor plan...")
	if !toStdout {
		spinner.Start()
	}
	result, err := runner.Execute(ctx, plan, opts)
	if err != nil {
		spinner.StopWithError("Compile failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if toStdout {
		_, err := os.Stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	for _, format := range opts.Formats {
		if err := writeArtifact(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done("compile finished", "input", input)

	printSuccess("Compiled %s", displayName(input))
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	printStats(result.Stats.Rooms, result.Stats.Entities, result.Stats.Dropped,
		result.CacheInfo.CompileHit && result.CacheInfo.RenderHit)
	for _, d := range result.Drawing.Meta().Dropped {
		printWarning("%s: skipped %s[%d] on unknown wall %q", d.Room, strings.ToLower(d.Layer.String()), d.Index, d.Side)
	}
	if store != nil {
		printDetail("Stored as %s", result.DrawingID)
		printNewline()
		printNextStep("Fetch", "floorcad fetch "+result.DrawingID)
	}
	return nil
}

// readPlan decodes the floor plan at path, or stdin for "-".
func readPlan(path string) (floorplan.Document, error) {
	if path == "-" {
		return floorplan.Read(os.Stdin)
	}
	return floorplan.ReadFile(path)
}

// outputPaths maps each format to its output file. A single format uses
// output verbatim; several formats share output as base path.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path. An empty output strips the
// extension from input; a known format extension is stripped from output.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "floor_plan"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// overwritesInput reports whether output names the same file as input.
func overwritesInput(input, output string) bool {
	if input == "-" {
		return false
	}
	in, errIn := filepath.Abs(input)
	out, errOut := filepath.Abs(output)
	if errIn == nil && errOut == nil && in == out {
		return true
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return false
	}
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	return os.SameFile(inInfo, outInfo)
}

func writeArtifact(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeSinkFailure, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailure, err, "write %s", path)
	}
	return nil
}

func displayName(input string) string {
	if input == "-" {
		return "stdin"
	}
	return input
}
