package cache

import "strconv"

// Keyer derives cache keys. Swapping the Keyer lets callers namespace keys
// without touching the pipeline.
type Keyer interface {
	DrawingKey(planHash string, opts DrawingKeyOpts) string
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string
}

// DrawingKeyOpts are the compile options that change the drawing.
type DrawingKeyOpts struct {
	TextHeight float64 `json:"text_height"`
	Strict     bool    `json:"strict"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Precision int    `json:"precision,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DrawingKey returns the key of a compiled drawing.
func (DefaultKeyer) DrawingKey(planHash string, opts DrawingKeyOpts) string {
	return hashKey("drawing", planHash, opts)
}

// ArtifactKey returns the key of a rendered artifact. The format stays
// readable in the key so that entries can be inspected by hand.
func (DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, drawingHash, strconv.Itoa(opts.Precision))
}
