package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Client resolves a template id to its document.
type Client interface {
	Fetch(ctx context.Context, id string) (model.Template, error)
}

// Format identifies a template document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ErrNotFound is returned when no document exists for an id.
var ErrNotFound = errors.New("source: template not found")

// ErrInvalidID is returned for ids that could escape the template root.
var ErrInvalidID = errors.New("source: invalid template id")

// FormatFromName infers the format from a file extension.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".hcl":
		return FormatHCL, true
	default:
		return "", false
	}
}

// Decode parses a template document. filename is only used in HCL
// diagnostics.
func Decode(data []byte, format Format, filename string) (model.Template, error) {
	var tpl model.Template
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &tpl); err != nil {
			return model.Template{}, fmt.Errorf("source: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return model.Template{}, fmt.Errorf("source: decode yaml: %w", err)
		}
	case FormatHCL:
		decoded, err := decodeHCL(data, filename)
		if err != nil {
			return model.Template{}, err
		}
		tpl = decoded
	default:
		return model.Template{}, fmt.Errorf("source: unsupported format %q", format)
	}
	tpl.Fields = model.WithDefaultLabels(tpl.Fields)
	return tpl, nil
}

func validID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
