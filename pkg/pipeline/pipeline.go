// Package pipeline runs the floorcad compile pipeline shared by the CLI and
// the HTTP server.
//
// A run takes a decoded floor plan through four stages:
//
//  1. Validate: reject malformed geometry before any work is done
//  2. Compile: build the layered drawing ([compiler.Compile])
//  3. Render: encode the drawing in each requested format (dxf, svg, json)
//  4. Store: persist every artifact under the drawing id (optional)
//
// Compile and render results are cached by content hash, so recompiling an
// unchanged plan is a cache lookup.
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	result, err := runner.Execute(ctx, plan, pipeline.Options{
//	    DrawingID: "42",
//	    Formats:   []string{"dxf", "svg"},
//	})
//	dxf := result.Artifacts["dxf"]
package pipeline

import (
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorcad/pkg/cache"
	"github.com/matzehuels/floorcad/pkg/compiler"
	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/render/dxf"
)

// Output formats.
const (
	FormatDXF  = "dxf"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// DefaultFormat is rendered when Options.Formats is empty.
const DefaultFormat = FormatDXF

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDXF:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// Options configures one pipeline run.
type Options struct {
	// DrawingID keys stored artifacts. When a store is configured and the
	// id is empty, the runner generates one.
	DrawingID string `json:"id,omitempty"`

	Formats []string `json:"formats,omitempty"`

	// TextHeight is the room label height; zero means the compiler default.
	TextHeight float64 `json:"text_height,omitempty"`
	// StrictOpenings turns an unknown opening side into an error.
	StrictOpenings bool `json:"strict_openings,omitempty"`
	// Precision is the number of decimals in DXF coordinates; nil means
	// the writer default. Zero rounds to whole units.
	Precision *int `json:"precision,omitempty"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a pipeline run.
type Result struct {
	DrawingID string
	PlanHash  string
	Drawing   *drawing.Document
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds counts and stage timings of a run.
type Stats struct {
	Rooms    int `json:"rooms"`
	Doors    int `json:"doors"`
	Windows  int `json:"windows"`
	Entities int `json:"entities"`
	Dropped  int `json:"dropped_openings"`

	CompileTime time.Duration `json:"compile_ns"`
	RenderTime  time.Duration `json:"render_ns"`
	StoreTime   time.Duration `json:"store_ns"`
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	CompileHit bool `json:"compile_hit"`
	RenderHit  bool `json:"render_hit"` // every requested format was cached
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: dxf, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, trimming blanks and dropping
// duplicates. An empty string yields the default format.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{DefaultFormat}
	}
	return out
}

// ValidateAndSetDefaults checks the options and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.DrawingID != "" {
		if err := errors.ValidateDrawingID(o.DrawingID); err != nil {
			return err
		}
	}
	if o.TextHeight == 0 {
		o.TextHeight = compiler.DefaultTextHeight
	}
	if o.TextHeight < 0 || math.IsNaN(o.TextHeight) || math.IsInf(o.TextHeight, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "text height must be positive, got %g", o.TextHeight)
	}
	if p := o.DXFPrecision(); p < 0 || p > 15 {
		return errors.New(errors.ErrCodeInvalidInput, "precision must be between 0 and 15, got %d", p)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// DXFPrecision returns the DXF coordinate precision, or the writer default
// when none is set.
func (o *Options) DXFPrecision() int {
	if o.Precision == nil {
		return dxf.DefaultPrecision
	}
	return *o.Precision
}

// CompilerOptions translates the options for compiler.Compile.
func (o *Options) CompilerOptions() []compiler.Option {
	opts := []compiler.Option{compiler.WithTextHeight(o.TextHeight)}
	if o.StrictOpenings {
		opts = append(opts, compiler.WithStrictOpenings())
	}
	return opts
}

// DrawingKeyOpts returns the cache key options of the compile stage.
func (o *Options) DrawingKeyOpts() cache.DrawingKeyOpts {
	return cache.DrawingKeyOpts{TextHeight: o.TextHeight, Strict: o.StrictOpenings}
}

// ArtifactKeyOpts returns the cache key options of the render stage.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatDXF {
		k.Precision = o.DXFPrecision()
	}
	return k
}
