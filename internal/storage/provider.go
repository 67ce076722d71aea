// Package storage gives access to the articles directory.
package storage

import "github.com/starford/quire/internal/models"

// Provider is the interface for article file operations. Names are file
// names relative to the articles directory.
type Provider interface {
	// Root returns the absolute path of the articles directory.
	Root() string
	// List returns every top-level, regular, non-hidden file.
	List() ([]models.ArticleFile, error)
	// Read returns the raw bytes of the named file.
	Read(name string) ([]byte, error)
	// Resolve returns the file backing slug.
	Resolve(slug string) (models.ArticleFile, error)
	// Write atomically replaces the named file.
	Write(name string, content []byte) error
	// Create writes the named file, failing if it already exists.
	Create(name string, content []byte) error
}
