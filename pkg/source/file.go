package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goliatone/go-formpreview/pkg/model"
)

var documentExtensions = []string{".json", ".yaml", ".yml", ".hcl"}

// FSClient reads template documents from an fs.FS.
type FSClient struct {
	files fs.FS
	dir   string
}

var _ Client = (*FSClient)(nil)

// NewFSClient serves documents found under dir inside files.
func NewFSClient(files fs.FS, dir string) *FSClient {
	if dir == "" {
		dir = "."
	}
	return &FSClient{files: files, dir: dir}
}

// NewFileClient serves documents from a directory on disk.
func NewFileClient(dir string) *FSClient {
	return NewFSClient(os.DirFS(filepath.Clean(dir)), ".")
}

// Fetch loads the first of <id>.json, <id>.yaml, <id>.yml, <id>.hcl.
func (c *FSClient) Fetch(ctx context.Context, id string) (model.Template, error) {
	if err := validID(id); err != nil {
		return model.Template{}, err
	}
	if c.files == nil {
		return model.Template{}, errors.New("source: filesystem is not configured")
	}

	for _, ext := range documentExtensions {
		if err := ctx.Err(); err != nil {
			return model.Template{}, err
		}
		name := id + ext
		if c.dir != "." {
			name = c.dir + "/" + name
		}
		data, err := fs.ReadFile(c.files, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return model.Template{}, fmt.Errorf("source: read %s: %w", name, err)
		}
		format, _ := FormatFromName(name)
		tpl, err := Decode(data, format, name)
		if err != nil {
			return model.Template{}, err
		}
		if tpl.ID == "" {
			tpl.ID = id
		}
		return tpl, nil
	}
	return model.Template{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// List returns the ids of every document in the directory.
func (c *FSClient) List() ([]string, error) {
	entries, err := fs.ReadDir(c.files, c.dir)
	if err != nil {
		return nil, fmt.Errorf("source: list %s: %w", c.dir, err)
	}
	seen := make(map[string]bool)
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := FormatFromName(entry.Name()); !ok {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(filepath.Ext(entry.Name()))]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
