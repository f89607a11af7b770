package skill

import (
	"embed"
	"io/fs"

	"github.com/rs/zerolog"
)

//go:embed skills/*.md
var defaultFS embed.FS

// DefaultFS returns the built-in skill documents.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(defaultFS, "skills")
	if err != nil {
		panic(err)
	}
	return sub
}

// Embedded opens a store over the built-in skill documents.
func Embedded(logger zerolog.Logger) *Store {
	return Open(DefaultFS(), logger)
}
