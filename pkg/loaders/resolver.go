package loaders

import (
	"os"
	"path/filepath"
)

// Resolver looks up relative resource paths in an ordered list of directories.
// One resolver is created per render session and handed to scene builders.
type Resolver struct {
	paths []string
}

// NewResolver creates a resolver searching the given directories in order
func NewResolver(paths ...string) *Resolver {
	return &Resolver{paths: append([]string(nil), paths...)}
}

// Prepend adds a directory that is searched before all others
func (r *Resolver) Prepend(path string) {
	r.paths = append([]string{path}, r.paths...)
}

// Append adds a directory that is searched after all others
func (r *Resolver) Append(path string) {
	r.paths = append(r.paths, path)
}

// Paths returns the search list
func (r *Resolver) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Resolve returns the first existing candidate for name. Absolute names and
// names that cannot be found are returned unchanged.
func (r *Resolver) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	for _, dir := range r.paths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}
