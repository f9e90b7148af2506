package vfs

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// ErrConfig reports that the project manifest could not be read or
// parsed. It is fatal and is surfaced to the caller of Plan/Repair.
type ErrConfig struct {
	Path string
	Err  error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("vfs: reading project manifest %s: %v", e.Path, e.Err)
}

func (e *ErrConfig) Unwrap() error { return e.Err }

// FromProject reads the project manifest at configPath (a go.mod file
// or a directory containing one), enumerates the project's initial
// file set via go/packages, and returns a VFS seeded with each file's
// current on-disk text as both Original and current content.
func FromProject(configPath string) (*VFS, error) {
	dir := configPath
	if fi, err := os.Stat(configPath); err == nil && !fi.IsDir() {
		dir = filepath.Dir(configPath)
	}
	modPath := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		return nil, &ErrConfig{Path: modPath, Err: err}
	}
	if _, err := modfile.Parse(modPath, data, nil); err != nil {
		return nil, &ErrConfig{Path: modPath, Err: err}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, &ErrConfig{Path: modPath, Err: err}
	}

	files := make(map[Path]string)
	for _, pkg := range pkgs {
		for _, f := range pkg.CompiledGoFiles {
			if _, ok := files[f]; ok {
				continue
			}
			b, err := os.ReadFile(f)
			if err != nil {
				continue
			}
			files[f] = string(b)
		}
	}

	v := New()
	v.Seed(files)
	return v, nil
}
