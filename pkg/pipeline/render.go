package pipeline

import (
	"github.com/matzehuels/floorcad/pkg/drawing"
	"github.com/matzehuels/floorcad/pkg/errors"
	"github.com/matzehuels/floorcad/pkg/render/dxf"
	"github.com/matzehuels/floorcad/pkg/render/svg"
)

// RenderFormat encodes doc in one format.
func RenderFormat(doc *drawing.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDXF:
		return dxf.Render(doc, dxf.WithPrecision(opts.DXFPrecision())), nil
	case FormatSVG:
		return svg.Render(doc), nil
	case FormatJSON:
		data, err := drawing.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode drawing json")
		}
		return data, nil
	}
	return nil, ValidateFormat(format)
}

// Render encodes doc in every format of opts.
func Render(doc *drawing.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, err := RenderFormat(doc, f, opts)
		if err != nil {
			return nil, err
		}
		out[f] = data
	}
	return out, nil
}
