package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/formulac/internal/catalog"
)

// CatalogOptions name the sources a catalog can come from. Exactly one
// of Catalog or DB must be set.
type CatalogOptions struct {
	Catalog string // CUE directory or YAML file
	DB      string // SQLite database path
}

// LoadCatalog resolves the catalog from the configured source:
//   - --db: an existing SQLite catalog database
//   - --catalog pointing at a directory: CUE declarations
//   - --catalog pointing at a .yaml/.yml file: a YAML declaration
func LoadCatalog(ctx context.Context, opts CatalogOptions) (*catalog.Catalog, error) {
	if opts.Catalog != "" && opts.DB != "" {
		return nil, NewExitError(ExitCommandError, "use either --catalog or --db, not both")
	}

	switch {
	case opts.DB != "":
		if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB), err)
		}
		store, err := catalog.OpenStore(opts.DB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "opening catalog database", err)
		}
		defer store.Close()
		c, err := store.Load(ctx)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "loading catalog from database", err)
		}
		return c, nil

	case opts.Catalog != "":
		info, err := os.Stat(opts.Catalog)
		if os.IsNotExist(err) {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("catalog not found: %s", opts.Catalog), err)
		}
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "accessing catalog", err)
		}
		if info.IsDir() {
			c, err := catalog.LoadCUE(opts.Catalog)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "loading CUE catalog", err)
			}
			return c, nil
		}
		switch filepath.Ext(opts.Catalog) {
		case ".yaml", ".yml":
			c, err := catalog.LoadYAML(opts.Catalog)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "loading YAML catalog", err)
			}
			return c, nil
		}
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unsupported catalog file %s: want a directory of .cue files or a .yaml file", opts.Catalog))
	}

	return nil, NewExitError(ExitCommandError, "a catalog is required: pass --catalog or --db")
}
