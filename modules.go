// modules.go: import resolution.
//
// OVERVIEW
// --------
// The parser asks a ModuleResolver to turn an import name into source text.
// The stock resolver, FileResolver, checks two places in order:
//
//  1. Bundled modules. `math` and `utils` ship inside the binary (stdlib/).
//  2. The filesystem. If the name has no extension, ".cb" is appended. The
//     file is looked up relative to the importing file's directory, then the
//     working directory, then each SearchPath root. Absolute names are used
//     as they are.
//
// Module.Path is the canonical identity of the module: "stdlib/<name>.cb"
// for bundled modules, the cleaned absolute path otherwise. The parser uses
// it for include-once splicing and cycle detection.
//
// PUBLIC API
// ----------
//   - Module, ModuleResolver, ErrModuleNotFound
//   - FileResolver, NewFileResolver(searchPath...), DefaultResolver()
//   - ModuleExt
package cobra

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ModuleExt is appended to import names that have no extension.
const ModuleExt = ".cb"

// Module is a resolved import.
type Module struct {
	Name   string
	Path   string
	Source string
}

// ModuleResolver maps an import name to source. importer is the file that
// contains the import ("" or a label such as "<repl>" when there is none).
type ModuleResolver interface {
	Resolve(name, importer string) (Module, error)
}

var ErrModuleNotFound = errors.New("module not found")

//go:embed stdlib/*.cb
var stdlibFS embed.FS

// FileResolver resolves bundled modules first, then files on disk.
type FileResolver struct {
	Bundled    map[string]string // name -> source
	SearchPath []string
}

// NewFileResolver returns a resolver with the bundled modules and the given
// extra search roots.
func NewFileResolver(searchPath ...string) *FileResolver {
	return &FileResolver{Bundled: bundledModules(), SearchPath: searchPath}
}

// DefaultResolver is NewFileResolver with no extra roots.
func DefaultResolver() *FileResolver { return NewFileResolver() }

func (r *FileResolver) Resolve(name, importer string) (Module, error) {
	if src, ok := r.Bundled[name]; ok {
		return Module{Name: name, Path: bundledPath(name), Source: src}, nil
	}
	p, err := r.find(name, importer)
	if err != nil {
		return Module{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return Module{}, fmt.Errorf("read %s: %w", p, err)
	}
	return Module{Name: name, Path: p, Source: string(b)}, nil
}

// Source returns the text of a module previously returned by Resolve, keyed
// by its Path. It is used to render snippets for errors inside imports.
func (r *FileResolver) Source(p string) (string, bool) {
	if r.isBundled(p) {
		return r.Bundled[strings.TrimSuffix(path.Base(p), ModuleExt)], true
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return "", false
	}
	return string(b), true
}

//// END_OF_PUBLIC

func bundledPath(name string) string { return path.Join("stdlib", name+ModuleExt) }

func bundledModules() map[string]string {
	out := map[string]string{}
	entries, err := fs.ReadDir(stdlibFS, "stdlib")
	if err != nil {
		return out
	}
	for _, e := range entries {
		b, err := fs.ReadFile(stdlibFS, path.Join("stdlib", e.Name()))
		if err != nil {
			continue
		}
		out[strings.TrimSuffix(e.Name(), ModuleExt)] = string(b)
	}
	return out
}

// isBundled reports whether p is the Path of a bundled module. Bundled
// modules have no directory on disk.
func (r *FileResolver) isBundled(p string) bool {
	for name := range r.Bundled {
		if bundledPath(name) == p {
			return true
		}
	}
	return false
}

func (r *FileResolver) find(name, importer string) (string, error) {
	file := name
	if filepath.Ext(file) == "" {
		file += ModuleExt
	}

	try := func(base string) (string, bool) {
		c := filepath.Join(base, file)
		fi, err := os.Stat(c)
		if err != nil || fi.IsDir() {
			return "", false
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return filepath.Clean(c), true
		}
		return abs, true
	}

	if filepath.IsAbs(file) {
		if p, ok := try(""); ok {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, file)
	}

	var bases []string
	if importer != "" && !strings.HasPrefix(importer, "<") && !r.isBundled(importer) {
		bases = append(bases, filepath.Dir(importer))
	}
	if cwd, err := os.Getwd(); err == nil {
		bases = append(bases, cwd)
	}
	for _, root := range r.SearchPath {
		if root != "" {
			bases = append(bases, root)
		}
	}
	for _, b := range bases {
		if p, ok := try(b); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrModuleNotFound, file, strings.Join(bases, ", "))
}
